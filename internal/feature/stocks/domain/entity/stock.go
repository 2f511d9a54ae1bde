// Package entity defines the domain models for the stocks feature.
package entity

import "time"

// Stock is one row of the stock catalog. LatestPrice and LatestChange are refreshed from stored
// bars by imports and ingests; LastUpdated is nil until that first happens.
type Stock struct {
	ID           uint       `gorm:"primaryKey"`
	Symbol       string     `gorm:"size:32;not null;uniqueIndex"`
	Name         string     `gorm:"size:255;not null"`
	Exchange     string     `gorm:"size:100"`
	Industry     string     `gorm:"size:100"`
	IsActive     bool       `gorm:"not null;default:true"`
	SortKey      int        `gorm:"not null;default:0"`
	LatestPrice  float64    `gorm:"not null;default:0"`
	LatestChange float64    `gorm:"not null;default:0"`
	LastUpdated  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// HasLatest reports whether a stored latest close is available.
func (s Stock) HasLatest() bool {
	return s.LastUpdated != nil && s.LatestPrice > 0
}
