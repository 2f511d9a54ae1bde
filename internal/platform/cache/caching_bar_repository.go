// Package cache provides caching decorators for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"stock_watchlist/internal/feature/series/domain/entity"
	"stock_watchlist/internal/feature/series/usecase"
)

// CachingBarRepository decorates a BarRepository with a Redis read-through cache.
// A nil client turns it into a pass-through.
type CachingBarRepository struct {
	inner     usecase.BarRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string

	// refreshHour >= 0 caps entries at the next refreshHour:00 in loc.
	refreshHour int
	loc         *time.Location
	now         func() time.Time
}

var _ usecase.BarRepository = (*CachingBarRepository)(nil)

// NewCachingBarRepository defaults ttl to 5 minutes and namespace to "bars".
func NewCachingBarRepository(rdb *redis.Client, ttl time.Duration, inner usecase.BarRepository, namespace string) *CachingBarRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "bars"
	}
	return &CachingBarRepository{
		inner:       inner,
		rdb:         rdb,
		ttl:         ttl,
		namespace:   namespace,
		refreshHour: -1,
		now:         time.Now,
	}
}

// ExpireBefore makes cached reads expire no later than the next hour:00 in loc, so bars
// written by the daily ingest are never hidden behind an older entry.
func (c *CachingBarRepository) ExpireBefore(hour int, loc *time.Location) *CachingBarRepository {
	if hour < 0 || hour > 23 {
		return c
	}
	c.refreshHour = hour
	c.loc = loc
	return c
}

func (c *CachingBarRepository) entryTTL() time.Duration {
	if c.refreshHour < 0 {
		return c.ttl
	}
	if until := TimeUntilNext(c.now(), c.refreshHour, c.loc); until < c.ttl {
		return until
	}
	return c.ttl
}

// UpsertBatch writes through to the store, then drops every cached read for the touched symbols.
func (c *CachingBarRepository) UpsertBatch(ctx context.Context, bars []entity.Bar) error {
	if err := c.inner.UpsertBatch(ctx, bars); err != nil {
		return err
	}
	if c.rdb == nil || len(bars) == 0 {
		return nil
	}

	seen := map[string]struct{}{}
	for _, b := range bars {
		if _, ok := seen[b.Symbol]; ok {
			continue
		}
		seen[b.Symbol] = struct{}{}
		// best effort; entries expire on their own
		_ = c.deleteByPattern(ctx, c.keyPrefix(b.Symbol)+"*")
	}
	return nil
}

func (c *CachingBarRepository) Find(ctx context.Context, symbol string, limit int) ([]entity.Bar, error) {
	if c.rdb == nil {
		return c.inner.Find(ctx, symbol, limit)
	}

	key := c.key(symbol, limit)

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Bar
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.Find(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}
	// Empty reads are not cached so a fresh import is visible immediately.
	if len(out) == 0 {
		return out, nil
	}

	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.entryTTL()).Err()
	}
	return out, nil
}

func (c *CachingBarRepository) key(symbol string, limit int) string {
	return fmt.Sprintf("%s%d", c.keyPrefix(symbol), limit)
}

func (c *CachingBarRepository) keyPrefix(symbol string) string {
	return fmt.Sprintf("%s:%s:", c.namespace, safe(symbol))
}

func (c *CachingBarRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}
