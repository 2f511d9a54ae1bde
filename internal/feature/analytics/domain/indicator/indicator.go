// Package indicator implements the technical indicators used by the insight and risk computations.
// All functions are pure and take closes ordered oldest first.
package indicator

import "math"

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SMA returns the simple moving average of the trailing period values.
// With fewer values than period, the average covers whatever is available.
func SMA(values []float64, period int) float64 {
	if period <= 0 || len(values) == 0 {
		return 0
	}
	if period > len(values) {
		period = len(values)
	}
	return Mean(values[len(values)-period:])
}

// PopulationStdDev returns the population standard deviation (divides by n).
func PopulationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := Mean(values)
	ss := 0.0
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}

// DailyReturns returns simple day-over-day returns (c[i]-c[i-1])/c[i-1].
// Pairs with a zero previous close are skipped.
func DailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev == 0 {
			continue
		}
		out = append(out, (closes[i]-prev)/prev)
	}
	return out
}

// PercentChange returns (to-from)/from*100, or 0 when from is zero.
func PercentChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) / from * 100
}

// RSI computes the Wilder-smoothed relative strength index.
// It needs period+1 closes; with less it returns the neutral 50.
// A window with gains and no losses is 100; a completely flat window is 50.
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return 50
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// EMA returns the exponential moving average series seeded with the SMA of the first
// period values. out[0] corresponds to values[period-1]. Nil when there is not enough data.
func EMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	k := 2.0 / float64(period+1)
	out := make([]float64, 0, len(values)-period+1)
	prev := Mean(values[:period])
	out = append(out, prev)
	for i := period; i < len(values); i++ {
		prev = values[i]*k + prev*(1-k)
		out = append(out, prev)
	}
	return out
}

// MACDResult holds the tail of a MACD computation.
type MACDResult struct {
	MACD       float64 // latest MACD line value
	Signal     float64 // latest signal line value
	Histogram  float64 // MACD - Signal
	PrevMACD   float64
	PrevSignal float64
	HasPrev    bool // false when only one signal value exists
}

// MACD computes the MACD line (fast EMA - slow EMA) and its signal EMA.
// ok is false when fewer than slow+signal-1 closes are available.
func MACD(closes []float64, fast, slow, signal int) (res MACDResult, ok bool) {
	if fast <= 0 || slow <= fast || signal <= 0 || len(closes) < slow+signal-1 {
		return MACDResult{}, false
	}
	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)

	// Align on the slow EMA: slowEMA[j] is closes[slow-1+j], fastEMA[slow-fast+j] is the same bar.
	offset := slow - fast
	line := make([]float64, len(slowEMA))
	for j := range slowEMA {
		line[j] = fastEMA[offset+j] - slowEMA[j]
	}

	sig := EMA(line, signal)
	if len(sig) == 0 {
		return MACDResult{}, false
	}

	last := len(line) - 1
	res = MACDResult{
		MACD:   line[last],
		Signal: sig[len(sig)-1],
	}
	res.Histogram = res.MACD - res.Signal
	if len(sig) >= 2 {
		res.PrevMACD = line[last-1]
		res.PrevSignal = sig[len(sig)-2]
		res.HasPrev = true
	}
	return res, true
}

// RangePosition places price within [low, high] as a percentile 0..100, clamped.
// A flat range yields 50.
func RangePosition(price, low, high float64) float64 {
	if high <= low {
		return 50
	}
	pos := (price - low) / (high - low) * 100
	return math.Max(0, math.Min(100, pos))
}
