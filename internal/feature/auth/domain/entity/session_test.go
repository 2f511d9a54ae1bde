package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_IsValidAt(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	revoked := now.Add(-time.Minute)

	tests := []struct {
		name          string
		session       Session
		wantValid     bool
		wantRemaining time.Duration
	}{
		{
			name:          "active",
			session:       Session{ExpiresAt: now.Add(time.Hour)},
			wantValid:     true,
			wantRemaining: time.Hour,
		},
		{
			name:    "expires exactly now",
			session: Session{ExpiresAt: now},
		},
		{
			name:    "expired",
			session: Session{ExpiresAt: now.Add(-time.Second)},
		},
		{
			name:          "revoked before expiry",
			session:       Session{ExpiresAt: now.Add(time.Hour), RevokedAt: &revoked},
			wantRemaining: time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantValid, tt.session.IsValidAt(now))
			assert.Equal(t, tt.wantRemaining, tt.session.Remaining(now))
		})
	}
}
