package engine

import (
	"log"
	"math"
	"time"

	"decision-core/internal/market"
	"decision-core/internal/params"
	"decision-core/internal/regime"
	"decision-core/internal/risk"
	"decision-core/internal/strategy"
)

// confidenceFloor is the minimum confidence a candidate needs after
// regime and off-hours adjustment.
const confidenceFloor = 0.6

// offHoursBoost scales confidence during configured low-liquidity
// windows. Wick capture gets no boost: liquidation wicks are not a
// liquidity phenomenon.
var offHoursBoost = map[string]float64{
	string(params.StrategyImbalance):     1.2,
	string(params.StrategyMeanReversion): 1.3,
}

// throttleExempt lists strategies whose signals bypass the throttler.
// Wick events are rare and time-sensitive; spacing them out would
// discard exactly the signals worth acting on.
var throttleExempt = map[string]bool{
	string(params.StrategyWickCapture): true,
}

// Config tunes the coordinator.
type Config struct {
	// LotStep quantizes admitted quantities. Zero disables quantization.
	LotStep float64
	// OffHours reports whether t falls in a configured low-liquidity
	// window. Nil means never.
	OffHours func(t time.Time) bool
}

// Engine drives the per-snapshot decision cycle: observe, analyze,
// adjust, throttle, risk-admit, quantize. It is not internally
// synchronized — exactly one goroutine may call Process. Stats counters
// have their own lock because fills and API reads arrive concurrently.
type Engine struct {
	cfg       Config
	analyzers []strategy.Analyzer // fixed priority order
	observers []strategy.Observer
	throttler *strategy.Throttler
	ledger    *risk.Ledger
	now       func() time.Time

	stats statsCounters
}

// New builds an engine. The analyzer slice order is the emission
// priority order.
func New(cfg Config, analyzers []strategy.Analyzer, throttler *strategy.Throttler, ledger *risk.Ledger) *Engine {
	e := &Engine{
		cfg:       cfg,
		analyzers: analyzers,
		throttler: throttler,
		ledger:    ledger,
		now:       time.Now,
	}
	for _, a := range analyzers {
		if ob, ok := a.(strategy.Observer); ok {
			e.observers = append(e.observers, ob)
		}
	}
	e.stats.init()
	return e
}

// Process runs one decision cycle and returns the admitted signals in
// strategy priority order.
func (e *Engine) Process(snap market.Snapshot, r regime.Regime) []strategy.Signal {
	for _, ob := range e.observers {
		ob.Observe(snap.LastPrice, snap.Volume)
	}

	offHours := e.cfg.OffHours != nil && e.cfg.OffHours(e.now())

	var candidates []strategy.Signal
	for _, a := range e.analyzers {
		sig := a.Analyze(snap, r)
		if !sig.Valid() {
			continue
		}
		e.stats.recordEmitted(a.Name())

		if offHours {
			if boost, ok := offHoursBoost[a.Name()]; ok {
				sig.Confidence = math.Min(sig.Confidence*boost, 1.0)
			}
		}
		if sig.Confidence < confidenceFloor {
			e.stats.recordFiltered()
			continue
		}
		if !throttleExempt[a.Name()] && !e.throttler.Allow(a.Name()) {
			e.stats.recordThrottled()
			continue
		}
		candidates = append(candidates, *sig)
	}

	admitted := candidates[:0]
	for _, sig := range candidates {
		decision := e.ledger.Admit(risk.SignalInput{
			Symbol: sig.Symbol,
			Side:   string(sig.Side),
			Qty:    sig.Qty,
			Price:  sig.Price,
		})
		if !decision.Allowed {
			e.stats.recordRiskRejected()
			log.Printf("engine: %s signal rejected: %s", sig.Strategy, decision.Reason)
			continue
		}

		// Floor to the lot step. Rounding up could exceed the
		// risk-admitted quantity.
		sig.Qty = quantize(sig.Qty, e.cfg.LotStep)
		if sig.Qty <= 0 {
			e.stats.recordFiltered()
			continue
		}
		admitted = append(admitted, sig)
	}
	return admitted
}

// RecordTradeResult attributes one realized round-trip to a strategy.
// Called from the fill ingestion path.
func (e *Engine) RecordTradeResult(strategyName string, pnl float64) {
	e.stats.recordTrade(strategyName, pnl)
}

// ThrottleRemaining reports how long a strategy must still wait before
// the throttler admits it again.
func (e *Engine) ThrottleRemaining(strategyName string) time.Duration {
	return e.throttler.Remaining(strategyName)
}

// Stats returns the coordinator's emission and performance counters.
func (e *Engine) Stats() Stats {
	return e.stats.snapshot()
}

func quantize(qty, lotStep float64) float64 {
	if lotStep <= 0 {
		return qty
	}
	return math.Floor(qty/lotStep) * lotStep
}
