// Package usecase implements reading, importing and ingesting daily bar series.
package usecase

import (
	"context"
	"fmt"

	"stock_watchlist/internal/feature/series/domain/entity"
)

const (
	DefaultLimit = 200
	MaxLimit     = 5000

	SourceStore = "store"
	SourceLive  = "live"
)

// BarRepository abstracts the durable bar store.
type BarRepository interface {
	// Find returns up to limit bars, newest first. limit <= 0 means all.
	Find(ctx context.Context, symbol string, limit int) ([]entity.Bar, error)
	// UpsertBatch inserts or overwrites bars keyed by (symbol, date).
	UpsertBatch(ctx context.Context, bars []entity.Bar) error
}

// LiveHistory fetches a daily series from a market data provider. Results are not persisted here.
type LiveHistory interface {
	History(ctx context.Context, symbol string, days int) ([]entity.Bar, error)
}

type seriesUsecase struct {
	bars BarRepository
	live LiveHistory
}

// NewSeriesUsecase builds the read side of the series store. live may be nil.
func NewSeriesUsecase(bars BarRepository, live LiveHistory) *seriesUsecase {
	return &seriesUsecase{bars: bars, live: live}
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxLimit {
		return DefaultLimit
	}
	return limit
}

// Stored returns imported bars only, newest first.
func (u *seriesUsecase) Stored(ctx context.Context, symbol string, limit int) ([]entity.Bar, error) {
	bs, err := u.bars.Find(ctx, symbol, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("find bars %s: %w", symbol, err)
	}
	return bs, nil
}

// History returns imported bars newest first, or a live series when nothing has been imported.
// The second return value names where the bars came from.
func (u *seriesUsecase) History(ctx context.Context, symbol string, limit int) ([]entity.Bar, string, error) {
	limit = clampLimit(limit)
	bs, err := u.Stored(ctx, symbol, limit)
	if err != nil {
		return nil, "", err
	}
	if len(bs) > 0 || u.live == nil {
		return bs, SourceStore, nil
	}

	live, err := u.live.History(ctx, symbol, limit)
	if err != nil {
		return nil, SourceLive, fmt.Errorf("live history %s: %w", symbol, err)
	}
	live = entity.SortNewestFirst(live)
	if len(live) > limit {
		live = live[:limit]
	}
	return live, SourceLive, nil
}
