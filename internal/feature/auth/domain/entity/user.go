// Package entity defines the domain entities for the auth feature.
package entity

import (
	"time"

	"gorm.io/datatypes"
)

// User represents a verified account.
// Rows are only created once the signup OTP has been validated.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	Name string `gorm:"size:100;not null"`

	// Email is the user's email address used for authentication.
	// It must be unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Password is the bcrypt hash of the user's password.
	// This should never store plaintext passwords.
	Password string `gorm:"size:255;not null"`

	IsVerified bool `gorm:"not null;default:false"`

	// Preferences holds the selected stock categories as a JSON array.
	Preferences          datatypes.JSONSlice[string]
	PreferencesUpdatedAt *time.Time

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time
}

// Categories returns the stored preference categories, never nil.
func (u *User) Categories() []string {
	if len(u.Preferences) == 0 {
		return []string{}
	}
	return []string(u.Preferences)
}
