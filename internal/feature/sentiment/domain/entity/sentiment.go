// Package entity defines the sentiment reading returned for a symbol.
package entity

import "time"

const (
	// SourceFallback marks the neutral reading served when no provider answered.
	SourceFallback = "fallback"

	NeutralScore = 50
	MinScore     = 1
	MaxScore     = 100
)

// Sentiment is a 1-100 market mood score for a symbol, optionally in the context of a portfolio.
type Sentiment struct {
	Symbol     string
	Score      int
	Label      string
	Summary    string
	Portfolio  []string
	Source     string
	AnalyzedAt time.Time
}

// Label maps a score to its trading label.
func Label(score int) string {
	switch {
	case score <= 40:
		return "Strong Sell"
	case score <= 44:
		return "Sell"
	case score <= 47:
		return "Weak Sell"
	case score <= 51:
		return "Neutral"
	case score <= 54:
		return "Weak Buy"
	case score <= 59:
		return "Buy"
	default:
		return "Strong Buy"
	}
}

// Clamp keeps a provider score inside MinScore..MaxScore.
func Clamp(score int) int {
	return min(max(score, MinScore), MaxScore)
}
