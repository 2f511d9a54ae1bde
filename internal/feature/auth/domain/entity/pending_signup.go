package entity

import "time"

// PendingSignup is a signup awaiting OTP verification.
// It only lives in the pending store and carries the raw password until the account is created.
type PendingSignup struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	OTP       string    `json:"otp"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpiredAt reports whether the OTP has passed its expiry at now.
func (p *PendingSignup) IsExpiredAt(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
