package strategy

import (
	"math"
	"testing"

	"decision-core/internal/market"
	"decision-core/internal/params"
	"decision-core/internal/regime"
)

func wickParams() params.WickCapture {
	return params.WickCapture{
		Window:            30,
		MinWickRatio:      0.6,
		MinVolumeSpike:    1.5,
		WickSizeThreshold: 0.002,
		RequireOBIConfirm: true,
		OBIConfirm:        0.2,
		StopPaddingBps:    10,
		OrderNotional:     300,
	}
}

// wickWindow loads nine quiet prints and one excursion to spike.
func wickWindow(t *testing.T, p params.WickCapture, spike float64) *WickCaptureAnalyzer {
	t.Helper()
	a := NewWickCaptureAnalyzer(p)
	for i := 0; i < wickSpan-1; i++ {
		a.Observe(100, 1)
	}
	a.Observe(spike, 1)
	return a
}

// wickSnapshot leans the book toward bids (positive skew) or asks.
func wickSnapshot(volume, bidSize, askSize float64) market.Snapshot {
	return market.Snapshot{
		Symbol:    "BTCUSDT",
		BidPrice:  99.99,
		AskPrice:  100.01,
		LastPrice: 100,
		Volume:    volume,
		Bids:      []market.Level{{Price: 99.99, Size: bidSize}},
		Asks:      []market.Level{{Price: 100.01, Size: askSize}},
	}
}

func TestWickCaptureBuysTheDip(t *testing.T) {
	a := wickWindow(t, wickParams(), 97)
	sig := a.Analyze(wickSnapshot(2, 8, 2), regime.Ranging)
	if sig == nil {
		t.Fatal("expected a signal, got nil")
	}
	if sig.Side != market.SideBuy {
		t.Fatalf("side = %s, expected %s", sig.Side, market.SideBuy)
	}

	// high 100, low 97, avg 99.7: the down wick dominates the range.
	wantRatio := ((99.7 - 97) / 99.7) / ((100 - 97.0) / 99.7)
	if math.Abs(sig.Confidence-math.Min(wantRatio, 1)) > 1e-9 {
		t.Fatalf("confidence = %v, expected %v", sig.Confidence, wantRatio)
	}
	wantStop := 97 / (1 + 10.0/10000)
	if math.Abs(sig.Stop-wantStop) > 1e-9 {
		t.Fatalf("stop = %v, expected %v", sig.Stop, wantStop)
	}
	if math.Abs(sig.Target-99.7) > 1e-9 {
		t.Fatalf("target = %v, expected window average 99.7", sig.Target)
	}
}

func TestWickCaptureSellsTheSpike(t *testing.T) {
	a := wickWindow(t, wickParams(), 103)
	sig := a.Analyze(wickSnapshot(2, 2, 8), regime.Ranging)
	if sig == nil {
		t.Fatal("expected a signal, got nil")
	}
	if sig.Side != market.SideSell {
		t.Fatalf("side = %s, expected %s", sig.Side, market.SideSell)
	}
	// high 103, avg 100.3, padded above the extreme.
	wantStop := 103 * (1 + 10.0/10000)
	if math.Abs(sig.Stop-wantStop) > 1e-9 {
		t.Fatalf("stop = %v, expected %v", sig.Stop, wantStop)
	}
}

func TestWickCaptureGates(t *testing.T) {
	t.Run("too few observations", func(t *testing.T) {
		a := NewWickCaptureAnalyzer(wickParams())
		for i := 0; i < wickSpan-1; i++ {
			a.Observe(100, 1)
		}
		if sig := a.Analyze(wickSnapshot(2, 8, 2), regime.Ranging); sig != nil {
			t.Fatalf("expected no signal, got %+v", sig)
		}
	})

	t.Run("zero range window", func(t *testing.T) {
		a := NewWickCaptureAnalyzer(wickParams())
		for i := 0; i < wickSpan; i++ {
			a.Observe(100, 1)
		}
		if sig := a.Analyze(wickSnapshot(2, 8, 2), regime.Ranging); sig != nil {
			t.Fatalf("expected no signal on a flat window, got %+v", sig)
		}
	})

	t.Run("no volume spike", func(t *testing.T) {
		a := wickWindow(t, wickParams(), 97)
		if sig := a.Analyze(wickSnapshot(1, 8, 2), regime.Ranging); sig != nil {
			t.Fatalf("expected no signal without a volume spike, got %+v", sig)
		}
	})

	t.Run("book leans the wrong way", func(t *testing.T) {
		a := wickWindow(t, wickParams(), 97)
		// A dip buy wants bids stacked; an ask-heavy book vetoes it.
		if sig := a.Analyze(wickSnapshot(2, 2, 8), regime.Ranging); sig != nil {
			t.Fatalf("expected confirmation veto, got %+v", sig)
		}
	})

	t.Run("confirmation disabled", func(t *testing.T) {
		p := wickParams()
		p.RequireOBIConfirm = false
		a := wickWindow(t, p, 97)
		if sig := a.Analyze(wickSnapshot(2, 2, 8), regime.Ranging); sig == nil {
			t.Fatal("expected a signal with confirmation off, got nil")
		}
	})
}

func TestWickCaptureLeansIntoHighVolatility(t *testing.T) {
	normal := wickWindow(t, wickParams(), 97).Analyze(wickSnapshot(2, 8, 2), regime.Ranging)
	boosted := wickWindow(t, wickParams(), 97).Analyze(wickSnapshot(2, 8, 2), regime.HighVolatility)
	if normal == nil || boosted == nil {
		t.Fatal("expected signals in both regimes")
	}
	if math.Abs(boosted.Qty-normal.Qty*1.5) > 1e-9 {
		t.Fatalf("high-volatility qty = %v, expected 1.5x %v", boosted.Qty, normal.Qty)
	}
	wantConf := math.Min(normal.Confidence*1.5, 1.0)
	if math.Abs(boosted.Confidence-wantConf) > 1e-9 {
		t.Fatalf("high-volatility confidence = %v, expected %v", boosted.Confidence, wantConf)
	}
}
