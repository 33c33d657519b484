package order

import (
	"time"

	"decision-core/internal/market"
)

// Status tracks the order lifecycle:
// PENDING -> NEW -> PARTIALLY_FILLED -> {FILLED, CANCELED, REJECTED}.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusNew      Status = "NEW"
	StatusPartial  Status = "PARTIALLY_FILLED"
	StatusFilled   Status = "FILLED"
	StatusCanceled Status = "CANCELED"
	StatusRejected Status = "REJECTED"
)

// IsActive reports whether the order is working at the venue.
func (s Status) IsActive() bool {
	return s == StatusNew || s == StatusPartial
}

// IsTerminal reports whether the order can never change again.
func (s Status) IsTerminal() bool {
	return s == StatusFilled || s == StatusCanceled || s == StatusRejected
}

// Type denotes the order type sent to the venue.
type Type string

const (
	TypeMarket Type = "MARKET"
	TypeLimit  Type = "LIMIT"
)

// Order is one tracked order. ClientID is the primary key; ExchangeID
// is a secondary key assigned by the venue, possibly later or never.
type Order struct {
	ClientID    string      `json:"client_id"`
	ExchangeID  string      `json:"exchange_id,omitempty"`
	Symbol      string      `json:"symbol"`
	Side        market.Side `json:"side"`
	Type        Type        `json:"type"`
	Price       float64     `json:"price"`
	Qty         float64     `json:"qty"`
	FilledQty   float64     `json:"filled_qty"`
	Status      Status      `json:"status"`
	Strategy    string      `json:"strategy"`
	CreatedAt   time.Time   `json:"created_at"`
	CompletedAt time.Time   `json:"completed_at,omitempty"` // zero until the order reaches a terminal status
}

// IsFullyFilled checks if order is completely executed.
func (o *Order) IsFullyFilled() bool {
	return o.FilledQty >= o.Qty
}

// RemainingQty returns unfilled quantity.
func (o *Order) RemainingQty() float64 {
	return o.Qty - o.FilledQty
}
