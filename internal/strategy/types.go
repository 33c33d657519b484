package strategy

import (
	"time"

	"decision-core/internal/market"
	"decision-core/internal/regime"
)

// Signal is a candidate trade emitted by an analyzer. It is advisory
// until it clears throttling and risk admission.
type Signal struct {
	Symbol     string             `json:"symbol"`
	Strategy   string             `json:"strategy"`
	Side       market.Side        `json:"side"`
	Price      float64            `json:"price"`
	Qty        float64            `json:"qty"`
	Confidence float64            `json:"confidence"` // in [0,1]
	Target     float64            `json:"target,omitempty"`
	Stop       float64            `json:"stop,omitempty"`
	Generated  time.Time          `json:"generated"`
	Metadata   map[string]float64 `json:"metadata,omitempty"`
}

// Valid reports whether the signal carries a tradable quantity and price.
func (s *Signal) Valid() bool {
	return s != nil && s.Qty > 0 && s.Price > 0
}

// Analyzer turns a snapshot plus regime label into an optional signal.
// Analyzers are not synchronized: exactly one decision goroutine may
// call them, once per snapshot.
type Analyzer interface {
	Name() string
	Analyze(snap market.Snapshot, r regime.Regime) *Signal
}

// Observer is implemented by stateful analyzers that must see every
// snapshot's (price, volume) before Analyze is called.
type Observer interface {
	Observe(price, volume float64)
}
