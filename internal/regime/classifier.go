package regime

import (
	"math"

	"decision-core/internal/market"
)

// Regime is a coarse market-state label used to gate or scale strategies.
type Regime string

const (
	Ranging        Regime = "RANGING"
	Uptrend        Regime = "UPTREND"
	Downtrend      Regime = "DOWNTREND"
	HighVolatility Regime = "HIGH_VOLATILITY"
)

const (
	windowSize    = 300
	minSamples    = 60
	trendLookback = 240
	shortEMA      = 20
	longEMA       = 50

	trendThreshold = 0.015
	volRatioLimit  = 1.5
	shortVolWindow = 60
	longVolWindow  = 240
)

// Classifier keeps a rolling window of last-trade prices and derives a
// regime label from trend strength and short/long volatility.
type Classifier struct {
	prices []float64
	last   Regime
}

func NewClassifier() *Classifier {
	return &Classifier{
		prices: make([]float64, 0, windowSize),
		last:   Ranging,
	}
}

// Classify ingests the snapshot's last price and returns the regime.
// With fewer than minSamples observations it defaults to Ranging.
func (c *Classifier) Classify(snap market.Snapshot) Regime {
	c.prices = append(c.prices, snap.LastPrice)
	if len(c.prices) > windowSize {
		c.prices = c.prices[len(c.prices)-windowSize:]
	}

	if len(c.prices) < minSamples {
		c.last = Ranging
		return c.last
	}

	current := c.prices[len(c.prices)-1]
	ema20 := ema(c.prices, shortEMA)
	ema50 := ema(c.prices, longEMA)

	lookback := trendLookback
	if lookback > len(c.prices)-1 {
		lookback = len(c.prices) - 1
	}
	ref := c.prices[len(c.prices)-1-lookback]
	trendStrength := 0.0
	if ref > 0 {
		trendStrength = math.Abs(current-ref) / ref
	}

	// Volatility expansion dominates trend: a fast market gets the
	// HighVolatility label even when trending.
	shortVol := c.volatility(shortVolWindow)
	longVol := c.volatility(longVolWindow)
	switch {
	case shortVol > volRatioLimit*longVol:
		c.last = HighVolatility
	case trendStrength > trendThreshold && current > ema20 && ema20 > ema50:
		c.last = Uptrend
	case trendStrength > trendThreshold && current < ema20 && ema20 < ema50:
		c.last = Downtrend
	default:
		c.last = Ranging
	}
	return c.last
}

// Current re-returns the most recent classification without mutating
// the window.
func (c *Classifier) Current() Regime {
	return c.last
}

// Samples reports how many prices the window currently holds.
func (c *Classifier) Samples() int {
	return len(c.prices)
}

// ema computes an exponential moving average over the whole window:
// the seed is the arithmetic mean of the first period samples, then
// each later sample is smoothed with multiplier 2/(period+1).
func ema(prices []float64, period int) float64 {
	if len(prices) < period {
		period = len(prices)
	}
	if period == 0 {
		return 0
	}

	seed := 0.0
	for _, p := range prices[:period] {
		seed += p
	}
	seed /= float64(period)

	mult := 2.0 / float64(period+1)
	val := seed
	for _, p := range prices[period:] {
		val = (p-val)*mult + val
	}
	return val
}

// volatility returns the coefficient of variation (population stddev /
// mean) over the last w prices.
func (c *Classifier) volatility(w int) float64 {
	if w > len(c.prices) {
		w = len(c.prices)
	}
	if w == 0 {
		return 0
	}
	tail := c.prices[len(c.prices)-w:]

	mean := 0.0
	for _, p := range tail {
		mean += p
	}
	mean /= float64(len(tail))
	if mean == 0 {
		return 0
	}

	variance := 0.0
	for _, p := range tail {
		diff := p - mean
		variance += diff * diff
	}
	stddev := math.Sqrt(variance / float64(len(tail)))
	return stddev / mean
}
