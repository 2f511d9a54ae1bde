package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stock_watchlist/internal/feature/series/domain/entity"
	"stock_watchlist/internal/shared/ratelimiter"
)

// BarFileReader parses one exported daily history file. skipped counts rows that were dropped.
type BarFileReader interface {
	ReadBars(ctx context.Context, path, symbol string) (bars []entity.Bar, skipped int, err error)
}

// Catalog keeps the stock directory in step with stored bars.
type Catalog interface {
	// RecordLatest ensures symbol exists in the catalog and stores its latest close and change.
	RecordLatest(ctx context.Context, symbol string, price, change float64, at time.Time) error
}

// ImportReport summarises a bulk import or ingest run.
type ImportReport struct {
	Files   int
	Bars    int
	Skipped int
	Failed  []string
}

// latest returns the newest close, its change against the prior close and its date.
func latest(bars []entity.Bar) (price, change float64, at time.Time, ok bool) {
	if len(bars) == 0 {
		return 0, 0, time.Time{}, false
	}
	sorted := entity.SortNewestFirst(bars)
	top := sorted[0]
	prev := top.PrevClose
	if len(sorted) > 1 {
		prev = sorted[1].Close
	}
	if prev > 0 {
		change = top.Close - prev
	}
	return top.Close, change, top.Date, true
}

func store(ctx context.Context, repo BarRepository, catalog Catalog, symbol string, bars []entity.Bar) error {
	if err := repo.UpsertBatch(ctx, bars); err != nil {
		return fmt.Errorf("upsert %s: %w", symbol, err)
	}
	if catalog == nil {
		return nil
	}
	if price, change, at, ok := latest(bars); ok {
		if err := catalog.RecordLatest(ctx, symbol, price, change, at); err != nil {
			return fmt.Errorf("catalog %s: %w", symbol, err)
		}
	}
	return nil
}

type ImportUsecase struct {
	reader  BarFileReader
	bars    BarRepository
	catalog Catalog
}

func NewImportUsecase(reader BarFileReader, bars BarRepository, catalog Catalog) *ImportUsecase {
	return &ImportUsecase{reader: reader, bars: bars, catalog: catalog}
}

// ImportDir imports every *.csv file in dir, one symbol per file named <SYMBOL>.csv.
// A file that fails is logged, listed in the report and does not stop the run.
func (iu *ImportUsecase) ImportDir(ctx context.Context, dir string) (ImportReport, error) {
	var rep ImportReport
	entries, err := os.ReadDir(dir)
	if err != nil {
		return rep, fmt.Errorf("read dir %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		symbol := strings.ToUpper(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		n, skipped, err := iu.ImportFile(ctx, filepath.Join(dir, e.Name()), symbol)
		rep.Files++
		rep.Skipped += skipped
		if err != nil {
			slog.Error("failed to import file", "file", e.Name(), "symbol", symbol, "error", err)
			rep.Failed = append(rep.Failed, symbol)
			continue
		}
		rep.Bars += n
		slog.Info("imported file", "file", e.Name(), "symbol", symbol, "bars", n, "skipped", skipped)
	}
	return rep, nil
}

// ImportFile reads and stores one file. It returns the number of bars stored and rows skipped.
func (iu *ImportUsecase) ImportFile(ctx context.Context, path, symbol string) (int, int, error) {
	bars, skipped, err := iu.reader.ReadBars(ctx, path, symbol)
	if err != nil {
		return 0, skipped, err
	}
	if len(bars) == 0 {
		return 0, skipped, nil
	}
	if err := store(ctx, iu.bars, iu.catalog, symbol, bars); err != nil {
		return 0, skipped, err
	}
	return len(bars), skipped, nil
}

// IngestUsecase fetches daily history from a live provider and persists it.
type IngestUsecase struct {
	live    LiveHistory
	bars    BarRepository
	catalog Catalog
	limiter ratelimiter.Waiter
}

func NewIngestUsecase(live LiveHistory, bars BarRepository, catalog Catalog, limiter ratelimiter.Waiter) *IngestUsecase {
	return &IngestUsecase{live: live, bars: bars, catalog: catalog, limiter: limiter}
}

func (iu *IngestUsecase) ingestOne(ctx context.Context, symbol string, days int) (int, error) {
	bs, err := iu.live.History(ctx, symbol, days)
	if err != nil {
		return 0, err
	}
	for i := range bs {
		bs[i].Symbol = symbol
		bs[i].Date = entity.Truncate(bs[i].Date)
	}
	if len(bs) == 0 {
		return 0, nil
	}
	if err := store(ctx, iu.bars, iu.catalog, symbol, bs); err != nil {
		return 0, err
	}
	return len(bs), nil
}

// IngestAll fetches and stores up to days bars for each symbol, pacing requests through the
// limiter. A failing symbol is logged and skipped. Only a cancelled ctx stops the run early.
func (iu *IngestUsecase) IngestAll(ctx context.Context, symbols []string, days int) (ImportReport, error) {
	var rep ImportReport
	for _, s := range symbols {
		if iu.limiter != nil {
			if err := iu.limiter.Wait(ctx); err != nil {
				return rep, err
			}
		}
		n, err := iu.ingestOne(ctx, s, days)
		rep.Files++
		if err != nil {
			if ctx.Err() != nil {
				return rep, ctx.Err()
			}
			slog.Error("failed to ingest data", "symbol", s, "error", err)
			rep.Failed = append(rep.Failed, s)
			continue
		}
		rep.Bars += n
	}
	slog.Info("ingest finished", "symbols", rep.Files, "bars", rep.Bars, "failed", len(rep.Failed))
	return rep, nil
}
