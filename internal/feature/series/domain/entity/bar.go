// Package entity defines the domain entities for the series feature.
package entity

import (
	"sort"
	"time"
)

// Bar is one trading day's OHLCV record for a symbol. Date is unique per symbol.
// The optional exchange columns (PrevClose .. Series) are zero when the source omits them.
type Bar struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`

	PrevClose          float64 `json:"prev_close,omitempty"`
	Last               float64 `json:"last,omitempty"`
	VWAP               float64 `json:"vwap,omitempty"`
	Turnover           float64 `json:"turnover,omitempty"`
	Trades             int64   `json:"trades,omitempty"`
	DeliverableVolume  int64   `json:"deliverable_volume,omitempty"`
	DeliverablePercent float64 `json:"deliverable_percent,omitempty"`
	Series             string  `json:"series,omitempty"`
}

// SortOldestFirst returns a copy of bars ordered by Date ascending.
// Store reads are newest first; analytics need most-recent-last.
func SortOldestFirst(bars []Bar) []Bar {
	out := make([]Bar, len(bars))
	copy(out, bars)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// SortNewestFirst returns a copy of bars ordered by Date descending, the store's read order.
func SortNewestFirst(bars []Bar) []Bar {
	out := make([]Bar, len(bars))
	copy(out, bars)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// Closes extracts close prices in slice order.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Truncate normalises t to a calendar day in UTC.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
