package usecase

import (
	"context"
	"errors"
	"time"

	"stock_watchlist/internal/feature/auth/domain/entity"
)

// Errors the stores below report. The usecase maps them to domain errors.
var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrSessionNotFound    = errors.New("session not found")
	ErrPendingNotFound    = errors.New("pending signup not found")
)

// SessionRepository stores login sessions. It is backed by Redis when available and by the
// sessions table otherwise.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	// FindByID returns ErrSessionNotFound for unknown ids. Revoked and expired sessions are
	// still returned; callers check IsValidAt.
	FindByID(ctx context.Context, id string) (*entity.Session, error)
	// FindByUserID lists the user's valid sessions, oldest first.
	FindByUserID(ctx context.Context, userID uint) ([]*entity.Session, error)
	Revoke(ctx context.Context, id string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	// DeleteExpired reports how many sessions it removed.
	DeleteExpired(ctx context.Context) (int64, error)
	CountByUserID(ctx context.Context, userID uint) (int64, error)
	// DeleteOldestByUserID makes room for a new login once the per-user cap is reached.
	DeleteOldestByUserID(ctx context.Context, userID uint) error
}

// PendingStore keeps signups that are waiting for OTP verification, keyed by email.
// Entries expire on their own after the TTL given to Set.
type PendingStore interface {
	Get(ctx context.Context, email string) (*entity.PendingSignup, error)
	Set(ctx context.Context, p *entity.PendingSignup, ttl time.Duration) error
	Delete(ctx context.Context, email string) error
}
