// Package ratelimiter paces outbound calls to quota-limited market data providers.
package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// Waiter blocks until the next call is allowed or ctx ends. *rate.Limiter satisfies it.
type Waiter interface {
	Wait(ctx context.Context) error
}

// NewPerMinute allows n calls per minute, evenly spaced, with no burst.
// n <= 0 disables limiting.
func NewPerMinute(n int) *rate.Limiter {
	if n <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
}

// Logged wraps a limiter and logs whenever a call had to wait noticeably.
type Logged struct {
	name string
	l    *rate.Limiter
}

func NewLogged(name string, l *rate.Limiter) *Logged {
	return &Logged{name: name, l: l}
}

func (w *Logged) Wait(ctx context.Context) error {
	r := w.l.Reserve()
	if !r.OK() {
		return w.l.Wait(ctx)
	}
	delay := r.Delay()
	if delay <= 0 {
		return nil
	}
	if delay > time.Second {
		slog.Info("rate limit reached, waiting", "limiter", w.name, "delay", delay)
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}
