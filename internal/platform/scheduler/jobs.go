package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// SessionPurger deletes expired sessions and returns how many were removed.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// PurgeRecorder is the metric hook for session cleanup.
type PurgeRecorder interface {
	Purged(n int64)
}

// SessionCleanup returns a job removing expired sessions.
func SessionCleanup(p SessionPurger, rec PurgeRecorder) Job {
	return func(ctx context.Context) error {
		n, err := p.PurgeExpiredSessions(ctx)
		if err != nil {
			return fmt.Errorf("purge expired sessions: %w", err)
		}
		if rec != nil {
			rec.Purged(n)
		}
		slog.Info("expired sessions purged", "count", n)
		return nil
	}
}

// SymbolLister returns the symbols whose history should be refreshed.
type SymbolLister interface {
	ActiveSymbols(ctx context.Context) ([]string, error)
}

// Ingester fetches and stores daily bars for symbols.
type Ingester interface {
	IngestAll(ctx context.Context, symbols []string, days int) (int, []string, error)
}

// IngestRecorder is the metric hook for stored bars.
type IngestRecorder interface {
	Ingested(source string, n int)
}

// IngestFunc adapts a plain function to Ingester.
type IngestFunc func(ctx context.Context, symbols []string, days int) (int, []string, error)

func (f IngestFunc) IngestAll(ctx context.Context, symbols []string, days int) (int, []string, error) {
	return f(ctx, symbols, days)
}

// Ingest returns a job refreshing daily history for every active symbol.
func Ingest(symbols SymbolLister, in Ingester, days int, rec IngestRecorder) Job {
	return func(ctx context.Context) error {
		list, err := symbols.ActiveSymbols(ctx)
		if err != nil {
			return fmt.Errorf("list active symbols: %w", err)
		}
		if len(list) == 0 {
			slog.Info("no active symbols to ingest")
			return nil
		}
		n, failed, err := in.IngestAll(ctx, list, days)
		if rec != nil && n > 0 {
			rec.Ingested("scheduler", n)
		}
		if err != nil {
			return fmt.Errorf("ingest: %w", err)
		}
		if len(failed) == len(list) {
			return errors.New("ingest failed for every symbol")
		}
		return nil
	}
}
