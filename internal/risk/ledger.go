package risk

import (
	"fmt"
	"math"
	"sync"

	"decision-core/internal/market"
)

// Ledger tracks positions, realized and unrealized PnL, and admits or
// rejects candidate signals against daily-loss, trailing-drawdown, and
// notional limits.
//
// A single mutex guards all state. Fills arrive on the ingestion path
// while Admit runs on the decision path, so both must be safe against
// each other. No I/O happens under the lock.
type Ledger struct {
	mu sync.Mutex

	cfg           Config
	positions     map[string]*Position
	dailyRealized float64
	peakPnL       float64
}

func NewLedger(cfg Config) *Ledger {
	return &Ledger{
		cfg:       cfg,
		positions: make(map[string]*Position),
	}
}

// Admit decides whether a candidate signal may proceed to placement.
func (l *Ledger) Admit(in SignalInput) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := l.totalPnLLocked()

	if total < -l.cfg.MaxDailyLoss {
		return Decision{Reason: fmt.Sprintf("daily loss limit breached: %.2f < -%.2f", total, l.cfg.MaxDailyLoss)}
	}

	if drawdown := l.peakPnL - total; drawdown > l.cfg.MaxDailyLoss*l.cfg.TrailingStopFraction {
		return Decision{Reason: fmt.Sprintf("trailing drawdown stop: %.2f off peak %.2f", drawdown, l.peakPnL)}
	}

	if notional := in.Qty * in.Price; notional > l.cfg.MaxOrderNotional {
		return Decision{Reason: fmt.Sprintf("order notional %.2f exceeds limit %.2f", notional, l.cfg.MaxOrderNotional)}
	}

	return Decision{Allowed: true}
}

// ApplyFill books one executed trade into the symbol's position.
// Fills must arrive in per-symbol chronological order; the ledger does
// not reorder.
func (l *Ledger) ApplyFill(f market.Fill) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.positions[f.Symbol]
	if !ok {
		p = &Position{Symbol: f.Symbol}
		l.positions[f.Symbol] = p
	}

	signed := f.Qty
	if f.Side == market.SideSell {
		signed = -f.Qty
	}

	switch {
	case p.IsFlat():
		p.Qty = signed
		p.AvgPrice = f.Price
		p.OpenedAt = f.Timestamp

	case sameSign(p.Qty, signed):
		// Extending: weighted-average entry.
		p.AvgPrice = (p.Qty*p.AvgPrice + signed*f.Price) / (p.Qty + signed)
		p.Qty += signed

	default:
		// Opposing: realize PnL on the closed quantity. The fill may
		// overshoot and flip the position; the remainder opens at the
		// fill price. That is a legitimate reversal, not an error.
		closed := math.Min(math.Abs(signed), math.Abs(p.Qty))
		direction := 1.0
		if p.Qty < 0 {
			direction = -1.0
		}
		pnl := closed*(f.Price-p.AvgPrice)*direction - f.Fee
		p.RealizedPnL += pnl
		l.dailyRealized += pnl

		newQty := p.Qty + signed
		if math.Abs(newQty) <= flatEpsilon {
			newQty = 0
		} else if !sameSign(p.Qty, newQty) {
			p.AvgPrice = f.Price
			p.OpenedAt = f.Timestamp
		}
		p.Qty = newQty

		l.updatePeakLocked()
	}
}

// MarkToMarket refreshes unrealized PnL for every position that has a
// price in the map.
func (l *Ledger) MarkToMarket(priceBySymbol map[string]float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for sym, p := range l.positions {
		price, ok := priceBySymbol[sym]
		if !ok {
			continue
		}
		p.UnrealizedPnL = p.Qty * (price - p.AvgPrice)
	}
	l.updatePeakLocked()
}

// Position returns a copy of the position for symbol.
func (l *Ledger) Position(symbol string) (Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// Positions returns copies of all known positions.
func (l *Ledger) Positions() []Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Position, 0, len(l.positions))
	for _, p := range l.positions {
		out = append(out, *p)
	}
	return out
}

// Stats summarizes the ledger. Two consecutive calls with no fills in
// between return identical values.
func (l *Ledger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Stats{
		DailyRealizedPnL: l.dailyRealized,
		PeakPnL:          l.peakPnL,
	}
	for _, p := range l.positions {
		s.UnrealizedPnL += p.UnrealizedPnL
		s.GrossExposure += math.Abs(p.Qty * p.AvgPrice)
		s.NetExposure += p.Qty * p.AvgPrice
		if !p.IsFlat() {
			s.OpenPositions++
		}
	}
	s.TotalPnL = s.DailyRealizedPnL + s.UnrealizedPnL
	s.Drawdown = s.PeakPnL - s.TotalPnL
	return s
}

// ResetDaily zeroes the daily counters and per-position PnL. Callers
// decide when a trading day ends; the ledger never self-schedules.
func (l *Ledger) ResetDaily() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.dailyRealized = 0
	l.peakPnL = 0
	for _, p := range l.positions {
		p.RealizedPnL = 0
		p.UnrealizedPnL = 0
	}
}

func (l *Ledger) totalPnLLocked() float64 {
	total := l.dailyRealized
	for _, p := range l.positions {
		total += p.UnrealizedPnL
	}
	return total
}

func (l *Ledger) updatePeakLocked() {
	if total := l.totalPnLLocked(); total > l.peakPnL {
		l.peakPnL = total
	}
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}
