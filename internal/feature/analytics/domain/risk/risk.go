// Package risk scores a daily bar series: volatility bucket, trend, RSI, MACD,
// range position and plain-language recommendations.
package risk

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"stock_watchlist/internal/feature/analytics/domain/indicator"
	"stock_watchlist/internal/feature/series/domain/entity"
)

// ErrInsufficientData is returned for series with fewer than two bars.
var ErrInsufficientData = errors.New("insufficient data for risk analysis: at least 2 daily bars are required")

const (
	WindowSize = 252 // about one trading year

	// Volatility buckets, in percent of daily return standard deviation.
	LowVolatilityBelow  = 2.0
	HighVolatilityAbove = 5.0

	// Period change beyond +/- this percentage sets the trend label.
	TrendThreshold = 2.0

	RSIPeriod     = 14
	RSIOverbought = 70.0
	RSIOversold   = 30.0

	MACDFast   = 12
	MACDSlow   = 26
	MACDSignal = 9

	macdTolerance = 1e-9

	NearHighFrom = 66.67
	NearLowUpTo  = 33.33

	fullCoverageReturns = 250
	maxRecommendations  = 4
)

// Labels.
const (
	LevelLow    = "Low"
	LevelMedium = "Medium"
	LevelHigh   = "High"

	Bullish = "Bullish"
	Bearish = "Bearish"
	Neutral = "Neutral"

	Overbought = "Overbought"
	Oversold   = "Oversold"

	NearHigh = "Near High"
	NearLow  = "Near Low"
	MidRange = "Mid Range"
)

// Recommendation phrases.
const (
	RecHighVolatility = "High volatility detected. Consider reducing position size."
	RecLowVolatility  = "Low volatility may indicate consolidation. Watch for breakouts."
	RecHighOverbought = "High volatility combined with overbought RSI. Exercise caution before adding to the position."
	RecOverbought     = "RSI indicates overbought conditions. Consider taking profits."
	RecOversold       = "RSI indicates oversold conditions. Potential buying opportunity."
	RecMACDBullish    = "MACD signals bullish momentum. Potential upside ahead."
	RecMACDBearish    = "MACD signals bearish momentum. Caution advised."
	RecNearHigh       = "Price is trading near its period high. Upside may be limited."
	RecNearLow        = "Price is trading near its period low. Watch for support."
	RecNoSignal       = "No strong signal detected. Hold and keep monitoring."
)

type RSI struct {
	Value  float64 `json:"value"`
	Status string  `json:"status"`
}

type PricePosition struct {
	Label      string  `json:"label"`
	Percentile float64 `json:"percentile"`
}

// Summary is the risk result for one symbol. It is never persisted.
type Summary struct {
	Symbol            string        `json:"symbol"`
	RiskLevel         string        `json:"risk_level"`
	Volatility        float64       `json:"volatility"`
	ConfidenceScore   float64       `json:"confidence_score"`
	Trend             string        `json:"trend"`
	RSI               RSI           `json:"rsi"`
	MACDSignal        string        `json:"macd_signal"`
	MACDCrossover     bool          `json:"macd_crossover"`
	PricePosition     PricePosition `json:"price_position"`
	SMA20             float64       `json:"sma20"`
	SMA50             float64       `json:"sma50"`
	PeriodChange      float64       `json:"period_change"`
	LatestClose       float64       `json:"latest_close"`
	DataPoints        int           `json:"data_points"`
	Recommendations   []string      `json:"recommendations"`
	AnalysisTimestamp time.Time     `json:"analysis_timestamp"`
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Level buckets a volatility percentage: < 2 Low, 2..5 inclusive Medium, > 5 High.
func Level(volatility float64) string {
	switch {
	case volatility < LowVolatilityBelow:
		return LevelLow
	case volatility > HighVolatilityAbove:
		return LevelHigh
	default:
		return LevelMedium
	}
}

// TrendLabel maps the period change percentage to Bullish, Bearish or Neutral.
func TrendLabel(periodChange float64) string {
	switch {
	case periodChange > TrendThreshold:
		return Bullish
	case periodChange < -TrendThreshold:
		return Bearish
	default:
		return Neutral
	}
}

// RSIStatus labels an RSI value.
func RSIStatus(v float64) string {
	switch {
	case v > RSIOverbought:
		return Overbought
	case v < RSIOversold:
		return Oversold
	default:
		return Neutral
	}
}

// PositionLabel labels a range percentile.
func PositionLabel(p float64) string {
	switch {
	case p >= NearHighFrom:
		return NearHigh
	case p <= NearLowUpTo:
		return NearLow
	default:
		return MidRange
	}
}

func macdLabel(closes []float64) (label string, crossover bool) {
	res, ok := indicator.MACD(closes, MACDFast, MACDSlow, MACDSignal)
	if !ok {
		return Neutral, false
	}
	// Histograms within eps of zero are rounding noise from equal MACD and signal lines.
	eps := macdTolerance * math.Max(1, math.Abs(closes[len(closes)-1]))
	cur := histSign(res.Histogram, eps)
	switch cur {
	case 1:
		label = Bullish
	case -1:
		label = Bearish
	default:
		label = Neutral
	}
	if res.HasPrev && cur != 0 {
		prev := histSign(res.PrevMACD-res.PrevSignal, eps)
		crossover = prev != cur
	}
	return label, crossover
}

func histSign(h, eps float64) int {
	switch {
	case h > eps:
		return 1
	case h < -eps:
		return -1
	default:
		return 0
	}
}

// confidence is coverage * (0.6 + 0.4 * margin). coverage grows with the number of returns up to
// a full year; margin is how far (in percentage points, capped at 1) volatility sits from the
// nearest bucket boundary.
func confidence(returns int, volatility float64) float64 {
	coverage := math.Min(1, float64(returns)/fullCoverageReturns)
	distance := math.Min(math.Abs(volatility-LowVolatilityBelow), math.Abs(volatility-HighVolatilityAbove))
	margin := math.Min(1, distance)
	return coverage * (0.6 + 0.4*margin)
}

func recommendations(level, rsiStatus, macd, position string) []string {
	var out []string
	if level == LevelHigh && rsiStatus == Overbought {
		out = append(out, RecHighOverbought)
	}
	switch level {
	case LevelHigh:
		out = append(out, RecHighVolatility)
	case LevelLow:
		out = append(out, RecLowVolatility)
	}
	switch rsiStatus {
	case Overbought:
		out = append(out, RecOverbought)
	case Oversold:
		out = append(out, RecOversold)
	}
	switch macd {
	case Bullish:
		out = append(out, RecMACDBullish)
	case Bearish:
		out = append(out, RecMACDBearish)
	}
	switch position {
	case NearHigh:
		out = append(out, RecNearHigh)
	case NearLow:
		out = append(out, RecNearLow)
	}

	if len(out) == 0 {
		return []string{RecNoSignal}
	}
	if len(out) > maxRecommendations {
		out = out[:maxRecommendations]
	}
	return out
}

// Score computes the risk summary over the trailing WindowSize bars. bars may be in any order.
// Fewer than two bars yields ErrInsufficientData.
func Score(symbol string, bars []entity.Bar, now time.Time) (Summary, error) {
	if len(bars) < 2 {
		return Summary{}, ErrInsufficientData
	}

	window := entity.SortOldestFirst(bars)
	if len(window) > WindowSize {
		window = window[len(window)-WindowSize:]
	}
	closes := entity.Closes(window)
	latest := closes[len(closes)-1]

	low, high := math.Inf(1), math.Inf(-1)
	for _, b := range window {
		lo, hi := b.Low, b.High
		// Bars without intraday range (e.g. close-only imports) fall back to the close.
		if lo <= 0 {
			lo = b.Close
		}
		if hi <= 0 {
			hi = b.Close
		}
		low = math.Min(low, lo)
		high = math.Max(high, hi)
	}

	returns := indicator.DailyReturns(closes)
	volatility := indicator.PopulationStdDev(returns) * 100
	periodChange := indicator.PercentChange(closes[0], latest)
	rsiValue := indicator.RSI(closes, RSIPeriod)
	rsiStatus := RSIStatus(rsiValue)
	macd, crossover := macdLabel(closes)
	percentile := indicator.RangePosition(latest, low, high)
	position := PositionLabel(percentile)
	level := Level(volatility)

	return Summary{
		Symbol:            symbol,
		RiskLevel:         level,
		Volatility:        round2(volatility),
		ConfidenceScore:   round2(confidence(len(returns), volatility)),
		Trend:             TrendLabel(periodChange),
		RSI:               RSI{Value: round2(rsiValue), Status: rsiStatus},
		MACDSignal:        macd,
		MACDCrossover:     crossover,
		PricePosition:     PricePosition{Label: position, Percentile: round2(percentile)},
		SMA20:             round2(indicator.SMA(closes, 20)),
		SMA50:             round2(indicator.SMA(closes, 50)),
		PeriodChange:      round2(periodChange),
		LatestClose:       latest,
		DataPoints:        len(window),
		Recommendations:   recommendations(level, rsiStatus, macd, position),
		AnalysisTimestamp: now.UTC(),
	}, nil
}
