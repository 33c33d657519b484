package regime

import (
	"testing"

	"decision-core/internal/market"
)

func feed(c *Classifier, prices []float64) Regime {
	var r Regime
	for _, p := range prices {
		r = c.Classify(market.Snapshot{LastPrice: p})
	}
	return r
}

func TestClassifyNeedsMinimumSamples(t *testing.T) {
	c := NewClassifier()
	prices := make([]float64, minSamples-1)
	for i := range prices {
		// A violent ramp that would classify as a trend with enough data.
		prices[i] = 100 + float64(i)*5
	}
	if got := feed(c, prices); got != Ranging {
		t.Fatalf("regime with %d samples = %s, expected %s", len(prices), got, Ranging)
	}
	if c.Samples() != minSamples-1 {
		t.Fatalf("Samples() = %d, expected %d", c.Samples(), minSamples-1)
	}
}

func TestClassifyTrends(t *testing.T) {
	tests := []struct {
		name string
		step float64
		want Regime
	}{
		{name: "steady rise", step: 0.01, want: Uptrend},
		{name: "steady fall", step: -0.01, want: Downtrend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier()
			prices := make([]float64, windowSize)
			for i := range prices {
				prices[i] = 100 + float64(i)*tt.step
			}
			if got := feed(c, prices); got != tt.want {
				t.Fatalf("regime = %s, expected %s", got, tt.want)
			}
			if c.Current() != tt.want {
				t.Fatalf("Current() = %s, expected %s", c.Current(), tt.want)
			}
		})
	}
}

func TestClassifyVolatilityExpansionWins(t *testing.T) {
	c := NewClassifier()

	// A long quiet stretch followed by a violently oscillating tail:
	// the short window's dispersion dwarfs the long window's.
	var prices []float64
	for i := 0; i < 240; i++ {
		prices = append(prices, 100)
	}
	for i := 0; i < 60; i++ {
		if i%2 == 0 {
			prices = append(prices, 90)
		} else {
			prices = append(prices, 110)
		}
	}

	if got := feed(c, prices); got != HighVolatility {
		t.Fatalf("regime = %s, expected %s", got, HighVolatility)
	}
}

func TestClassifyFlatMarketIsRanging(t *testing.T) {
	c := NewClassifier()
	prices := make([]float64, windowSize)
	for i := range prices {
		prices[i] = 100
	}
	if got := feed(c, prices); got != Ranging {
		t.Fatalf("regime = %s, expected %s", got, Ranging)
	}
}
