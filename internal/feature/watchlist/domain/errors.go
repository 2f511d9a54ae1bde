// Package domain defines domain-level errors for the watchlist feature.
package domain

import "errors"

var (
	// ErrAlreadyInWatchlist is returned when the symbol is already on the user's list.
	ErrAlreadyInWatchlist = errors.New("stock already in watchlist")

	// ErrNotInWatchlist is returned when removing a symbol the user does not watch.
	ErrNotInWatchlist = errors.New("stock not in watchlist")

	// ErrUnknownSymbol is returned when the symbol is neither catalogued nor known to any provider.
	ErrUnknownSymbol = errors.New("unknown stock symbol")
)
