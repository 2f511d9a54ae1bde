// Package insight reduces a daily bar series to short-horizon statistics and a Buy/Hold hint.
package insight

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"stock_watchlist/internal/feature/analytics/domain/indicator"
	"stock_watchlist/internal/feature/series/domain/entity"
)

const (
	windowSize      = 30
	shortWindow     = 7
	lookback        = 10
	gainHoldAbove   = 5.0
	lossBuyAbove    = 8.0
	TypeAvg7        = "7-day average"
	TypeAvg30       = "30-day average"
	TypeAvgVolume7  = "Average 7-day volume"
	ActionBuy       = "Buy"
	ActionHold      = "Hold"
	reasonGainedFmt = "Stock has gained %s%% in the last 10 trading days."
	reasonLostFmt   = "Stock has lost %s%% in the last 10 trading days."
)

// Trend is one displayed statistic.
type Trend struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Recommendation is the Buy/Hold hint derived from the 10-bar change.
type Recommendation struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
	// ChangePercent is the signed 10-bar change, rounded to 2 decimals.
	ChangePercent float64 `json:"-"`
}

// Summary is the insight result for one symbol. It is never persisted.
type Summary struct {
	Symbol         string          `json:"symbol"`
	Trends         []Trend         `json:"trends"`
	Recommendation *Recommendation `json:"recommendation,omitempty"`
}

// fixed2 renders v with exactly two decimals.
func fixed2(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Compute builds the insight summary. bars may be in any order; they are sorted oldest first
// and only the trailing 30 are considered. An empty series gives an empty summary.
func Compute(symbol string, bars []entity.Bar) Summary {
	s := Summary{Symbol: symbol, Trends: []Trend{}}
	if len(bars) == 0 {
		return s
	}

	window := entity.SortOldestFirst(bars)
	if len(window) > windowSize {
		window = window[len(window)-windowSize:]
	}
	closes := entity.Closes(window)
	n := len(window)

	if n >= shortWindow {
		s.Trends = append(s.Trends, Trend{Type: TypeAvg7, Value: fixed2(indicator.SMA(closes, shortWindow))})
	}
	if n >= windowSize {
		s.Trends = append(s.Trends, Trend{Type: TypeAvg30, Value: fixed2(indicator.Mean(closes))})
	}
	if n >= shortWindow {
		var sum int64
		for _, b := range window[n-shortWindow:] {
			sum += b.Volume
		}
		avg := int64(math.Round(float64(sum) / shortWindow))
		s.Trends = append(s.Trends, Trend{Type: TypeAvgVolume7, Value: humanize.Comma(avg)})
	}

	if n >= lookback {
		s.Recommendation = recommend(window[n-lookback].Close, window[n-1].Close)
	}
	return s
}

func recommend(prior, latest float64) *Recommendation {
	if prior <= 0 {
		return nil
	}
	if latest > prior {
		gain := (latest - prior) / prior * 100
		action := ActionBuy
		if gain > gainHoldAbove {
			action = ActionHold
		}
		return &Recommendation{
			Action:        action,
			Reason:        fmt.Sprintf(reasonGainedFmt, fixed2(gain)),
			ChangePercent: round2(gain),
		}
	}

	loss := (prior - latest) / prior * 100
	action := ActionHold
	if loss > lossBuyAbove {
		action = ActionBuy
	}
	return &Recommendation{
		Action:        action,
		Reason:        fmt.Sprintf(reasonLostFmt, fixed2(loss)),
		ChangePercent: -round2(loss),
	}
}
