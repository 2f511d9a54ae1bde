// Package usecase implements sentiment scoring for a symbol with a neutral fallback.
package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	marketentity "stock_watchlist/internal/feature/marketdata/domain/entity"
	"stock_watchlist/internal/feature/sentiment/domain/entity"
)

const (
	DefaultNewsLimit = 8
	fallbackSummary  = "Sentiment analysis is currently unavailable. Showing a neutral reading."
)

// Input is what a provider scores.
type Input struct {
	Symbol    string
	Portfolio []string
	News      []marketentity.NewsItem
}

// Result is a provider's raw answer.
type Result struct {
	Score   int
	Summary string
	Source  string
}

// Provider scores market sentiment for a symbol.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type Provider interface {
	Name() string
	Analyze(ctx context.Context, in Input) (Result, error)
}

type NewsSource interface {
	News(ctx context.Context, symbol string, limit int) ([]marketentity.NewsItem, error)
}

// PortfolioSource returns the symbols a user watches.
type PortfolioSource interface {
	Symbols(ctx context.Context, userID uint) ([]string, error)
}

// Recorder counts fallbacks and provider failures. *metrics.Metrics satisfies it.
type Recorder interface {
	ProviderFailed(provider, op string)
	SentimentFellBack()
}

// fallbackProvider answers with a neutral reading whenever the wrapped provider cannot.
type fallbackProvider struct {
	inner Provider
	rec   Recorder
}

// WithFallback wraps p so Analyze never fails. p may be nil, in which case every call falls back.
func WithFallback(p Provider, rec Recorder) Provider {
	return &fallbackProvider{inner: p, rec: rec}
}

func (f *fallbackProvider) Name() string {
	if f.inner == nil {
		return entity.SourceFallback
	}
	return f.inner.Name()
}

func (f *fallbackProvider) Analyze(ctx context.Context, in Input) (Result, error) {
	if f.inner != nil {
		res, err := f.inner.Analyze(ctx, in)
		if err == nil {
			if res.Source == "" {
				res.Source = f.inner.Name()
			}
			return res, nil
		}
		slog.Warn("sentiment provider failed, using neutral fallback", "provider", f.inner.Name(), "symbol", in.Symbol, "error", err)
		if f.rec != nil {
			f.rec.ProviderFailed(f.inner.Name(), "sentiment")
		}
	}
	if f.rec != nil {
		f.rec.SentimentFellBack()
	}
	return Result{Score: entity.NeutralScore, Summary: fallbackSummary, Source: entity.SourceFallback}, nil
}

type SentimentUsecase struct {
	provider  Provider
	news      NewsSource
	portfolio PortfolioSource
	newsLimit int
	now       func() time.Time
}

// NewSentimentUsecase wires the usecase. provider should already be wrapped by WithFallback;
// news and portfolio may be nil.
func NewSentimentUsecase(provider Provider, news NewsSource, portfolio PortfolioSource, newsLimit int) *SentimentUsecase {
	if newsLimit <= 0 {
		newsLimit = DefaultNewsLimit
	}
	return &SentimentUsecase{
		provider:  provider,
		news:      news,
		portfolio: portfolio,
		newsLimit: newsLimit,
		now:       time.Now,
	}
}

// Analyze scores symbol. An empty portfolio is replaced by the watchlist of userID when it is
// non-zero. Missing headlines do not stop the analysis.
func (u *SentimentUsecase) Analyze(ctx context.Context, symbol string, portfolio []string, userID uint) (entity.Sentiment, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	if len(portfolio) == 0 && userID != 0 && u.portfolio != nil {
		watched, err := u.portfolio.Symbols(ctx, userID)
		if err != nil {
			slog.Warn("could not load watchlist as portfolio", "user_id", userID, "error", err)
		}
		portfolio = watched
	}
	if portfolio == nil {
		portfolio = []string{}
	}

	var news []marketentity.NewsItem
	if u.news != nil {
		items, err := u.news.News(ctx, symbol, u.newsLimit)
		if err != nil {
			slog.Warn("no headlines for sentiment", "symbol", symbol, "error", err)
		}
		news = items
	}

	res, err := u.provider.Analyze(ctx, Input{Symbol: symbol, Portfolio: portfolio, News: news})
	if err != nil {
		return entity.Sentiment{}, err
	}
	score := entity.Clamp(res.Score)
	return entity.Sentiment{
		Symbol:     symbol,
		Score:      score,
		Label:      entity.Label(score),
		Summary:    res.Summary,
		Portfolio:  portfolio,
		Source:     res.Source,
		AnalyzedAt: u.now().UTC(),
	}, nil
}
