// Package domain defines domain-level errors for the stocks feature.
package domain

import "errors"

var (
	// ErrStockNotFound is returned when a symbol is neither catalogued nor known to any provider.
	ErrStockNotFound = errors.New("stock not found")

	// ErrEmptyQuery is returned by search for a blank query.
	ErrEmptyQuery = errors.New("search query is empty")
)
