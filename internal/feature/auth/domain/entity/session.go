package entity

import "time"

// Session backs the session cookie set at login. It holds the same identity as the bearer
// token so either credential resolves to one user.
type Session struct {
	ID     string // 64 hex chars, the cookie value
	UserID uint
	Email  string
	Name   string

	UserAgent string
	IPAddress string

	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// Remaining is how long the session has left at now. It is never negative.
func (s *Session) Remaining(now time.Time) time.Duration {
	if d := s.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

func (s *Session) IsExpiredAt(now time.Time) bool {
	return s.Remaining(now) == 0
}

func (s *Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

// IsValidAt reports whether the cookie still authenticates at now.
func (s *Session) IsValidAt(now time.Time) bool {
	return !s.IsRevoked() && !s.IsExpiredAt(now)
}
