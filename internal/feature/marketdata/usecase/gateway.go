// Package usecase implements the market data gateway: provider fallback, quote caching and
// concurrent batch fetches with placeholder substitution.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"stock_watchlist/internal/feature/marketdata/domain"
	"stock_watchlist/internal/feature/marketdata/domain/entity"
	seriesentity "stock_watchlist/internal/feature/series/domain/entity"
)

type QuoteProvider interface {
	Name() string
	Quote(ctx context.Context, symbol string) (entity.Quote, error)
}

type HistoryProvider interface {
	Name() string
	// History returns up to days daily bars in any order.
	History(ctx context.Context, symbol string, days int) ([]seriesentity.Bar, error)
}

type SearchProvider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]entity.SearchResult, error)
}

type NewsProvider interface {
	Name() string
	News(ctx context.Context, symbol string, limit int) ([]entity.NewsItem, error)
}

// Recorder receives provider failure counts. *metrics.Metrics satisfies it.
type Recorder interface {
	ProviderFailed(provider, op string)
	PlaceholderUsed()
}

type Options struct {
	QuoteTimeout   time.Duration
	QuoteCacheTTL  time.Duration
	MaxConcurrency int
}

type Gateway struct {
	quotes  []QuoteProvider
	history []HistoryProvider
	search  SearchProvider
	news    NewsProvider
	cache   *gocache.Cache
	rec     Recorder
	opts    Options
	now     func() time.Time
}

// NewGateway wires providers in priority order. Any slice may be empty and search, news and rec
// may be nil.
func NewGateway(quotes []QuoteProvider, history []HistoryProvider, search SearchProvider, news NewsProvider, rec Recorder, opts Options) *Gateway {
	if opts.QuoteTimeout <= 0 {
		opts.QuoteTimeout = 5 * time.Second
	}
	if opts.QuoteCacheTTL <= 0 {
		opts.QuoteCacheTTL = time.Minute
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 8
	}
	return &Gateway{
		quotes:  quotes,
		history: history,
		search:  search,
		news:    news,
		cache:   gocache.New(opts.QuoteCacheTTL, 2*opts.QuoteCacheTTL),
		rec:     rec,
		opts:    opts,
		now:     time.Now,
	}
}

func normalise(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func (g *Gateway) failed(provider, op string, err error) {
	slog.Warn("market data provider failed", "provider", provider, "op", op, "error", err)
	if g.rec != nil {
		g.rec.ProviderFailed(provider, op)
	}
}

// combine folds per-provider errors: not-found only when every provider said so.
func combine(symbol string, errs []error) error {
	if len(errs) == 0 {
		return domain.ErrNoProvider
	}
	allNotFound := true
	for _, err := range errs {
		if !errors.Is(err, domain.ErrSymbolNotFound) {
			allNotFound = false
			break
		}
	}
	if allNotFound {
		return fmt.Errorf("%s: %w", symbol, domain.ErrSymbolNotFound)
	}
	return fmt.Errorf("%s: %w: %w", symbol, domain.ErrProviderUnavailable, errors.Join(errs...))
}

// Quote returns the latest quote from the first provider that has one, cached for QuoteCacheTTL.
func (g *Gateway) Quote(ctx context.Context, symbol string) (entity.Quote, error) {
	symbol = normalise(symbol)
	if v, ok := g.cache.Get(symbol); ok {
		return v.(entity.Quote), nil
	}

	var errs []error
	for _, p := range g.quotes {
		q, err := p.Quote(ctx, symbol)
		if err != nil {
			if ctx.Err() != nil {
				return entity.Quote{}, ctx.Err()
			}
			if !errors.Is(err, domain.ErrSymbolNotFound) {
				g.failed(p.Name(), "quote", err)
			}
			errs = append(errs, err)
			continue
		}
		q.Symbol = symbol
		q.Source = p.Name()
		q.Normalise()
		g.cache.SetDefault(symbol, q)
		return q, nil
	}
	return entity.Quote{}, combine(symbol, errs)
}

// Quotes fetches every symbol concurrently, each under its own timeout. A symbol that fails is
// replaced by a placeholder quote; the result has the same order and length as symbols.
func (g *Gateway) Quotes(ctx context.Context, symbols []string) []entity.Quote {
	out := make([]entity.Quote, len(symbols))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.opts.MaxConcurrency)

	for i, s := range symbols {
		eg.Go(func() error {
			qctx, cancel := context.WithTimeout(egCtx, g.opts.QuoteTimeout)
			defer cancel()

			q, err := g.Quote(qctx, s)
			if err != nil {
				slog.Warn("quote fetch failed, using placeholder", "symbol", s, "error", err)
				if g.rec != nil {
					g.rec.PlaceholderUsed()
				}
				q = entity.Placeholder(normalise(s), g.now())
			}
			out[i] = q
			return nil
		})
	}
	_ = eg.Wait()
	return out
}

// History returns up to days daily bars from the first provider that has them.
func (g *Gateway) History(ctx context.Context, symbol string, days int) ([]seriesentity.Bar, error) {
	symbol = normalise(symbol)
	var errs []error
	for _, p := range g.history {
		bars, err := p.History(ctx, symbol, days)
		if err == nil && len(bars) == 0 {
			err = fmt.Errorf("%s returned no bars: %w", p.Name(), domain.ErrSymbolNotFound)
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !errors.Is(err, domain.ErrSymbolNotFound) {
				g.failed(p.Name(), "history", err)
			}
			errs = append(errs, err)
			continue
		}
		for i := range bars {
			bars[i].Symbol = symbol
		}
		return bars, nil
	}
	return nil, combine(symbol, errs)
}

// Exists reports whether any quote provider knows symbol. Provider outages are returned as errors
// so callers can tell "unknown" from "could not check".
func (g *Gateway) Exists(ctx context.Context, symbol string) (bool, error) {
	_, err := g.Quote(ctx, symbol)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrSymbolNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (g *Gateway) Search(ctx context.Context, query string, limit int) ([]entity.SearchResult, error) {
	if g.search == nil {
		return nil, domain.ErrNoProvider
	}
	res, err := g.search.Search(ctx, query, limit)
	if err != nil {
		g.failed(g.search.Name(), "search", err)
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	for i := range res {
		res[i].Symbol = normalise(res[i].Symbol)
		if res[i].Source == "" {
			res[i].Source = g.search.Name()
		}
	}
	return res, nil
}

func (g *Gateway) News(ctx context.Context, symbol string, limit int) ([]entity.NewsItem, error) {
	if g.news == nil {
		return nil, domain.ErrNoProvider
	}
	items, err := g.news.News(ctx, normalise(symbol), limit)
	if err != nil {
		g.failed(g.news.Name(), "news", err)
		return nil, fmt.Errorf("news %s: %w", symbol, err)
	}
	return items, nil
}
