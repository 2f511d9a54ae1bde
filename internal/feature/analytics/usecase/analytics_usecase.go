// Package usecase loads a symbol's series and runs the insight and risk reductions over it.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"stock_watchlist/internal/feature/analytics/domain/insight"
	"stock_watchlist/internal/feature/analytics/domain/risk"
	marketdomain "stock_watchlist/internal/feature/marketdata/domain"
	"stock_watchlist/internal/feature/series/domain/entity"
)

const (
	insightBars = 30

	KindInsight = "insight"
	KindRisk    = "risk"
)

// SeriesSource returns up to limit bars, stored first and live otherwise.
type SeriesSource interface {
	History(ctx context.Context, symbol string, limit int) ([]entity.Bar, string, error)
}

// Recorder counts computations. *metrics.Metrics satisfies it.
type Recorder interface {
	Computed(kind, outcome string)
}

type AnalyticsUsecase struct {
	series SeriesSource
	rec    Recorder
	now    func() time.Time
}

func NewAnalyticsUsecase(series SeriesSource, rec Recorder) *AnalyticsUsecase {
	return &AnalyticsUsecase{series: series, rec: rec, now: time.Now}
}

func (u *AnalyticsUsecase) record(kind, outcome string) {
	if u.rec != nil {
		u.rec.Computed(kind, outcome)
	}
}

func unavailable(err error) bool {
	return errors.Is(err, marketdomain.ErrProviderUnavailable) || errors.Is(err, marketdomain.ErrNoProvider)
}

// Insights computes the short-horizon summary. An upstream outage yields an empty summary rather
// than an error; an unknown symbol is still an error.
func (u *AnalyticsUsecase) Insights(ctx context.Context, symbol string) (insight.Summary, error) {
	bars, _, err := u.series.History(ctx, symbol, insightBars)
	if err != nil {
		if !unavailable(err) {
			u.record(KindInsight, "error")
			return insight.Summary{}, fmt.Errorf("insights %s: %w", symbol, err)
		}
		slog.Warn("series unavailable, returning empty insights", "symbol", symbol, "error", err)
		bars = nil
	}

	s := insight.Compute(symbol, bars)
	if len(s.Trends) == 0 {
		u.record(KindInsight, "empty")
	} else {
		u.record(KindInsight, "ok")
	}
	return s, nil
}

// Risk scores the trailing year. Too little data returns risk.ErrInsufficientData; an upstream
// outage returns the wrapped provider error.
func (u *AnalyticsUsecase) Risk(ctx context.Context, symbol string) (risk.Summary, error) {
	bars, _, err := u.series.History(ctx, symbol, risk.WindowSize)
	if err != nil {
		u.record(KindRisk, "error")
		return risk.Summary{}, fmt.Errorf("risk %s: %w", symbol, err)
	}

	s, err := risk.Score(symbol, bars, u.now())
	if err != nil {
		u.record(KindRisk, "insufficient_data")
		return risk.Summary{}, err
	}
	u.record(KindRisk, "ok")
	return s, nil
}

// Now returns the analysis clock in UTC.
func (u *AnalyticsUsecase) Now() time.Time {
	return u.now().UTC()
}
