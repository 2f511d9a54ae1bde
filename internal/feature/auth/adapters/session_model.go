package adapters

import (
	"time"

	"gorm.io/gorm"

	"stock_watchlist/internal/feature/auth/domain/entity"
)

// SessionModel is a row of the sessions table, the fallback session store when Redis is down.
type SessionModel struct {
	ID        string     `gorm:"primaryKey;size:64"`
	UserID    uint       `gorm:"index;not null"`
	Email     string     `gorm:"size:255;not null"`
	Name      string     `gorm:"size:100"`
	UserAgent string     `gorm:"size:512"`
	IPAddress string     `gorm:"size:45"`
	CreatedAt time.Time  `gorm:"not null"`
	ExpiresAt time.Time  `gorm:"index;not null"`
	RevokedAt *time.Time `gorm:"index"`
}

func (SessionModel) TableName() string {
	return "sessions"
}

func newSessionModel(s *entity.Session) *SessionModel {
	m := SessionModel(*s)
	return &m
}

func (m SessionModel) toSession() *entity.Session {
	s := entity.Session(m)
	return &s
}

// validSessionsOf scopes a query to the sessions that still authenticate userID at now.
func validSessionsOf(userID uint, now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, now)
	}
}

// expiredBy scopes a query to sessions whose expiry has passed at now.
func expiredBy(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("expires_at < ?", now)
	}
}
