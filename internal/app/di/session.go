package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "stock_watchlist/internal/feature/auth/adapters"
	"stock_watchlist/internal/feature/auth/usecase"
	"stock_watchlist/internal/platform/pending"
	"stock_watchlist/internal/platform/session"
)

// NewSessionRepository creates a SessionRepository implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to PostgreSQL.
func NewSessionRepository(rdb *redis.Client, db *gorm.DB) usecase.SessionRepository {
	if rdb != nil {
		return session.NewRedisStore(rdb, "session")
	}
	return authadapters.NewSessionRepository(db)
}

// NewPendingStore keeps unverified signups in Redis when available and in process memory otherwise.
func NewPendingStore(rdb *redis.Client) usecase.PendingStore {
	if rdb != nil {
		return pending.NewRedisStore(rdb, "pending")
	}
	return pending.NewMemoryStore(10 * time.Minute)
}
