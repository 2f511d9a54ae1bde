// Package domain defines domain-level errors for the auth feature.
package domain

import "errors"

// Domain errors for account and session operations.
// Handlers map each of them to a fixed client message.
var (
	// ErrEmailAlreadyRegistered is returned by signup when a verified account already uses the email.
	ErrEmailAlreadyRegistered = errors.New("email already registered")

	// ErrWeakPassword indicates the password is shorter than the minimum length.
	ErrWeakPassword = errors.New("password too short")

	// ErrUserNotFound indicates that no account or pending signup exists for the email.
	ErrUserNotFound = errors.New("user not found")

	// ErrOTPExpired is returned when the pending signup outlived its OTP expiry.
	// The pending record is discarded when this is returned.
	ErrOTPExpired = errors.New("otp has expired")

	// ErrInvalidOTP indicates the submitted OTP does not match the pending signup.
	ErrInvalidOTP = errors.New("invalid otp")

	// ErrNotVerified is returned by login for an account whose email is not verified.
	ErrNotVerified = errors.New("email not verified")

	// ErrInvalidCredentials indicates that the password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated indicates a missing, revoked or expired session.
	ErrUnauthenticated = errors.New("not authenticated")
)
