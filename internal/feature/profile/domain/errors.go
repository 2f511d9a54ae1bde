// Package domain defines domain-level errors for the profile feature.
package domain

import "errors"

var (
	// ErrInvalidName is returned for a blank or over-long display name.
	ErrInvalidName = errors.New("invalid name")

	// ErrInvalidCategory is returned when a preference names an unknown stock category.
	ErrInvalidCategory = errors.New("invalid stock category")
)

// Categories is the set of stock categories a user may follow.
var Categories = []string{
	"tech", "finance", "health", "consumer", "energy",
	"industrial", "materials", "utilities", "realestate",
}
