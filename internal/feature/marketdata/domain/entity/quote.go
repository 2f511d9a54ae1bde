// Package entity defines the normalised market data records shared by every provider.
package entity

import "time"

// Quote is the canonical latest-price record for a symbol, whatever provider produced it.
type Quote struct {
	Symbol        string
	Name          string
	Exchange      string
	Currency      string
	Price         float64
	Open          float64
	High          float64
	Low           float64
	PreviousClose float64
	Change        float64
	ChangePercent float64
	Volume        int64
	UpdatedAt     time.Time
	// Placeholder marks a zero-valued quote substituted after a failed fetch.
	Placeholder bool
	Source      string
}

// Placeholder returns the stand-in quote used when a symbol could not be fetched.
func Placeholder(symbol string, at time.Time) Quote {
	return Quote{Symbol: symbol, Name: symbol, UpdatedAt: at, Placeholder: true}
}

// Normalise fills Change and ChangePercent from Price and PreviousClose when the provider left them out.
func (q *Quote) Normalise() {
	if q.Change == 0 && q.PreviousClose > 0 && q.Price > 0 {
		q.Change = q.Price - q.PreviousClose
	}
	if q.ChangePercent == 0 && q.PreviousClose > 0 {
		q.ChangePercent = q.Change / q.PreviousClose * 100
	}
	if q.Name == "" {
		q.Name = q.Symbol
	}
}

// SearchResult is one symbol lookup hit.
type SearchResult struct {
	Symbol   string
	Name     string
	Exchange string
	Type     string
	Source   string
}

// NewsItem is one headline about a symbol.
type NewsItem struct {
	Title       string
	Publisher   string
	Link        string
	PublishedAt time.Time
}
