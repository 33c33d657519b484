package engine

import (
	"math"
	"testing"
	"time"

	"decision-core/internal/market"
	"decision-core/internal/regime"
	"decision-core/internal/risk"
	"decision-core/internal/strategy"
)

// stubAnalyzer emits a fixed signal template on every Analyze call.
type stubAnalyzer struct {
	name string
	sig  *strategy.Signal
}

func (s *stubAnalyzer) Name() string { return s.name }

func (s *stubAnalyzer) Analyze(snap market.Snapshot, r regime.Regime) *strategy.Signal {
	if s.sig == nil {
		return nil
	}
	copied := *s.sig
	return &copied
}

func stubSignal(name string, confidence, qty float64) *strategy.Signal {
	return &strategy.Signal{
		Symbol:     "BTCUSDT",
		Strategy:   name,
		Side:       market.SideBuy,
		Price:      100,
		Qty:        qty,
		Confidence: confidence,
		Generated:  time.Now(),
	}
}

func openLedger() *risk.Ledger {
	return risk.NewLedger(risk.Config{
		MaxDailyLoss:         1e9,
		TrailingStopFraction: 1,
		MaxOrderNotional:     1e9,
	})
}

func snapshot() market.Snapshot {
	return market.Snapshot{Symbol: "BTCUSDT", BidPrice: 99.99, AskPrice: 100.01, LastPrice: 100, Volume: 10}
}

func TestProcessKeepsPriorityOrder(t *testing.T) {
	analyzers := []strategy.Analyzer{
		&stubAnalyzer{name: "imbalance", sig: stubSignal("imbalance", 0.9, 1)},
		&stubAnalyzer{name: "mean_reversion", sig: stubSignal("mean_reversion", 0.9, 1)},
		&stubAnalyzer{name: "wick_capture", sig: stubSignal("wick_capture", 0.9, 1)},
	}
	e := New(Config{}, analyzers, strategy.NewThrottler(time.Minute), openLedger())

	out := e.Process(snapshot(), regime.Ranging)
	if len(out) != 3 {
		t.Fatalf("admitted %d signals, expected 3", len(out))
	}
	for i, want := range []string{"imbalance", "mean_reversion", "wick_capture"} {
		if out[i].Strategy != want {
			t.Fatalf("position %d = %s, expected %s", i, out[i].Strategy, want)
		}
	}
}

func TestProcessConfidenceFloor(t *testing.T) {
	analyzers := []strategy.Analyzer{
		&stubAnalyzer{name: "imbalance", sig: stubSignal("imbalance", 0.55, 1)},
	}
	e := New(Config{}, analyzers, strategy.NewThrottler(time.Minute), openLedger())

	if out := e.Process(snapshot(), regime.Ranging); len(out) != 0 {
		t.Fatalf("admitted %d signals, expected 0 below the floor", len(out))
	}
	stats := e.Stats()
	if stats.Filtered != 1 {
		t.Fatalf("filtered = %d, expected 1", stats.Filtered)
	}
}

func TestProcessOffHoursBoost(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		conf     float64
		offHours bool
		want     int
	}{
		// 0.55 x 1.2 = 0.66 clears the floor during off hours.
		{name: "imbalance boosted over floor", strategy: "imbalance", conf: 0.55, offHours: true, want: 1},
		{name: "imbalance filtered in hours", strategy: "imbalance", conf: 0.55, offHours: false, want: 0},
		// 0.5 x 1.3 = 0.65 for mean reversion.
		{name: "mean reversion boosted", strategy: "mean_reversion", conf: 0.5, offHours: true, want: 1},
		// Wick capture gets no boost.
		{name: "wick capture not boosted", strategy: "wick_capture", conf: 0.55, offHours: true, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzers := []strategy.Analyzer{
				&stubAnalyzer{name: tt.strategy, sig: stubSignal(tt.strategy, tt.conf, 1)},
			}
			off := tt.offHours
			e := New(Config{
				OffHours: func(time.Time) bool { return off },
			}, analyzers, strategy.NewThrottler(time.Minute), openLedger())

			if out := e.Process(snapshot(), regime.Ranging); len(out) != tt.want {
				t.Fatalf("admitted %d signals, expected %d", len(out), tt.want)
			}
		})
	}
}

func TestProcessBoostClampsToOne(t *testing.T) {
	analyzers := []strategy.Analyzer{
		&stubAnalyzer{name: "mean_reversion", sig: stubSignal("mean_reversion", 0.95, 1)},
	}
	e := New(Config{
		OffHours: func(time.Time) bool { return true },
	}, analyzers, strategy.NewThrottler(time.Minute), openLedger())

	out := e.Process(snapshot(), regime.Ranging)
	if len(out) != 1 {
		t.Fatalf("admitted %d signals, expected 1", len(out))
	}
	if out[0].Confidence != 1.0 {
		t.Fatalf("confidence = %v, expected clamp to 1.0", out[0].Confidence)
	}
}

func TestProcessThrottling(t *testing.T) {
	analyzers := []strategy.Analyzer{
		&stubAnalyzer{name: "imbalance", sig: stubSignal("imbalance", 0.9, 1)},
		&stubAnalyzer{name: "wick_capture", sig: stubSignal("wick_capture", 0.9, 1)},
	}
	e := New(Config{}, analyzers, strategy.NewThrottler(time.Minute), openLedger())

	first := e.Process(snapshot(), regime.Ranging)
	if len(first) != 2 {
		t.Fatalf("first cycle admitted %d, expected 2", len(first))
	}

	// Immediately again: imbalance is throttled, wick capture is exempt.
	second := e.Process(snapshot(), regime.Ranging)
	if len(second) != 1 || second[0].Strategy != "wick_capture" {
		t.Fatalf("second cycle = %+v, expected only wick_capture", second)
	}
	if got := e.Stats().Throttled; got != 1 {
		t.Fatalf("throttled = %d, expected 1", got)
	}
}

func TestProcessRiskRejection(t *testing.T) {
	analyzers := []strategy.Analyzer{
		&stubAnalyzer{name: "imbalance", sig: stubSignal("imbalance", 0.9, 1000)},
	}
	ledger := risk.NewLedger(risk.Config{
		MaxDailyLoss:         1e9,
		TrailingStopFraction: 1,
		MaxOrderNotional:     50, // 1000 x 100 is far over
	})
	e := New(Config{}, analyzers, strategy.NewThrottler(time.Minute), ledger)

	if out := e.Process(snapshot(), regime.Ranging); len(out) != 0 {
		t.Fatalf("admitted %d signals, expected 0", len(out))
	}
	if got := e.Stats().RiskRejected; got != 1 {
		t.Fatalf("risk rejected = %d, expected 1", got)
	}
}

func TestProcessQuantizesToLotStep(t *testing.T) {
	tests := []struct {
		name    string
		qty     float64
		lotStep float64
		want    float64
		dropped bool
	}{
		{name: "floors to step", qty: 0.0015, lotStep: 0.001, want: 0.001},
		{name: "below one step drops", qty: 0.0005, lotStep: 0.001, dropped: true},
		{name: "zero step passes through", qty: 0.0015, lotStep: 0, want: 0.0015},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzers := []strategy.Analyzer{
				&stubAnalyzer{name: "imbalance", sig: stubSignal("imbalance", 0.9, tt.qty)},
			}
			e := New(Config{LotStep: tt.lotStep}, analyzers, strategy.NewThrottler(time.Minute), openLedger())

			out := e.Process(snapshot(), regime.Ranging)
			if tt.dropped {
				if len(out) != 0 {
					t.Fatalf("admitted %d signals, expected drop", len(out))
				}
				return
			}
			if len(out) != 1 {
				t.Fatalf("admitted %d signals, expected 1", len(out))
			}
			if math.Abs(out[0].Qty-tt.want) > 1e-12 {
				t.Fatalf("qty = %v, expected %v", out[0].Qty, tt.want)
			}
		})
	}
}

func TestStatsWinRateIsTradeWeighted(t *testing.T) {
	e := New(Config{}, nil, strategy.NewThrottler(time.Minute), openLedger())

	// Strategy A: 1 win of 1 trade. Strategy B: 1 win of 9 trades.
	e.RecordTradeResult("a", 5)
	e.RecordTradeResult("b", 3)
	for i := 0; i < 8; i++ {
		e.RecordTradeResult("b", -1)
	}

	stats := e.Stats()
	// 2 wins over 10 trades, not the 0.5555 average of per-strategy rates.
	if math.Abs(stats.WinRate-0.2) > 1e-9 {
		t.Fatalf("win rate = %v, expected 0.2", stats.WinRate)
	}
	if stats.Trades["b"] != 9 || stats.Wins["b"] != 1 {
		t.Fatalf("strategy b counters = %d/%d, expected 9 trades 1 win", stats.Trades["b"], stats.Wins["b"])
	}
}

func TestStatsTotalSignalsArithmetic(t *testing.T) {
	analyzers := []strategy.Analyzer{
		&stubAnalyzer{name: "imbalance", sig: stubSignal("imbalance", 0.55, 1)},
		&stubAnalyzer{name: "wick_capture", sig: stubSignal("wick_capture", 0.9, 1)},
	}
	e := New(Config{}, analyzers, strategy.NewThrottler(time.Minute), openLedger())
	e.Process(snapshot(), regime.Ranging)

	stats := e.Stats()
	var emitted int64
	for _, n := range stats.Emitted {
		emitted += n
	}
	want := emitted - stats.Throttled - stats.Filtered - stats.RiskRejected
	if stats.TotalSignals != want {
		t.Fatalf("total = %d, expected %d", stats.TotalSignals, want)
	}
}
