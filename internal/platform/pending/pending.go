// Package pending stores signups awaiting OTP verification, in process or in Redis.
package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"stock_watchlist/internal/feature/auth/domain/entity"
	"stock_watchlist/internal/feature/auth/usecase"
)

var (
	_ usecase.PendingStore = (*MemoryStore)(nil)
	_ usecase.PendingStore = (*RedisStore)(nil)
)

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// MemoryStore keeps pending signups in process. Records are lost on restart.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore evicts expired records every cleanupInterval.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{cache: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func (s *MemoryStore) Get(_ context.Context, email string) (*entity.PendingSignup, error) {
	v, ok := s.cache.Get(normalize(email))
	if !ok {
		return nil, usecase.ErrPendingNotFound
	}
	p := v.(entity.PendingSignup)
	return &p, nil
}

// Set replaces any record for the same email.
func (s *MemoryStore) Set(_ context.Context, p *entity.PendingSignup, ttl time.Duration) error {
	s.cache.Set(normalize(p.Email), *p, ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, email string) error {
	s.cache.Delete(normalize(email))
	return nil
}

// RedisStore keeps pending signups as JSON values with a native TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(email string) string {
	return fmt.Sprintf("%s:%s", s.prefix, normalize(email))
}

func (s *RedisStore) Get(ctx context.Context, email string) (*entity.PendingSignup, error) {
	data, err := s.client.Get(ctx, s.key(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, usecase.ErrPendingNotFound
		}
		return nil, err
	}
	var p entity.PendingSignup
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending signup: %w", err)
	}
	return &p, nil
}

func (s *RedisStore) Set(ctx context.Context, p *entity.PendingSignup, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal pending signup: %w", err)
	}
	return s.client.Set(ctx, s.key(p.Email), data, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, email string) error {
	return s.client.Del(ctx, s.key(email)).Err()
}
