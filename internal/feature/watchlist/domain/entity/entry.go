// Package entity defines the domain models for the watchlist feature.
package entity

import "time"

// Entry is one watched symbol. A user can watch a symbol at most once.
type Entry struct {
	ID      uint      `gorm:"primaryKey"`
	UserID  uint      `gorm:"not null;uniqueIndex:idx_watchlist_user_symbol,priority:1"`
	Symbol  string    `gorm:"size:32;not null;uniqueIndex:idx_watchlist_user_symbol,priority:2"`
	AddedAt time.Time `gorm:"not null"`
}

func (Entry) TableName() string {
	return "watchlist_entries"
}
