package order

import (
	"context"
	"math/rand"
	"time"

	"decision-core/internal/events"
	"decision-core/internal/market"
)

// PaperExecutor simulates the venue for dry runs: every order is
// acknowledged, filled at its price plus random slippage, and the
// resulting fill and status updates are published on the bus exactly
// like a real venue stream would deliver them.
type PaperExecutor struct {
	Bus     *events.Bus
	Tracker *Tracker

	FeeRate     float64 // decimal, e.g. 0.0004 = 4 bps
	SlippageBps float64
	rng         *rand.Rand
}

func NewPaperExecutor(bus *events.Bus, tracker *Tracker, feeRate, slippageBps float64) *PaperExecutor {
	return &PaperExecutor{
		Bus:         bus,
		Tracker:     tracker,
		FeeRate:     feeRate,
		SlippageBps: slippageBps,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Execute acknowledges and immediately fills the order.
func (p *PaperExecutor) Execute(ctx context.Context, o Order) {
	if ctx.Err() != nil {
		return
	}

	o.Status = StatusNew
	p.Tracker.Track(o)
	p.publishUpdate(o.ClientID, StatusNew)

	price := o.Price
	if slip := p.SlippageBps / 10000; slip > 0 {
		noise := p.rng.Float64() * slip
		if o.Side == market.SideBuy {
			price *= 1 + noise
		} else {
			price *= 1 - noise
		}
	}

	fill := market.Fill{
		OrderID:   o.ClientID,
		Symbol:    o.Symbol,
		Side:      o.Side,
		Price:     price,
		Qty:       o.Qty,
		Fee:       price * o.Qty * p.FeeRate,
		Timestamp: time.Now(),
	}

	if p.Bus != nil {
		p.Bus.Publish(events.EventFill, fill)
	}
	p.publishUpdate(o.ClientID, StatusFilled)
}

// StatusUpdate is the payload published on order lifecycle changes.
type StatusUpdate struct {
	ClientID string
	Status   Status
}

func (p *PaperExecutor) publishUpdate(clientID string, status Status) {
	if p.Bus == nil {
		return
	}
	p.Bus.Publish(events.EventOrderUpdate, StatusUpdate{ClientID: clientID, Status: status})
}
