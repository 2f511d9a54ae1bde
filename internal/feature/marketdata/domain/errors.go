// Package domain defines domain-level errors for the marketdata feature.
package domain

import "errors"

var (
	// ErrSymbolNotFound means every provider that answered says the symbol does not exist.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrProviderUnavailable wraps transport failures, quota errors and malformed replies.
	ErrProviderUnavailable = errors.New("market data provider unavailable")

	// ErrNoProvider is returned when no provider is configured for an operation.
	ErrNoProvider = errors.New("no market data provider configured")
)
