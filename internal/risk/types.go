package risk

import (
	"fmt"
	"math"
	"time"
)

// flatEpsilon bounds the quantity below which a position counts as flat.
const flatEpsilon = 1e-9

// Config defines the ledger's admission limits.
type Config struct {
	MaxDailyLoss         float64 `yaml:"max_daily_loss"`
	TrailingStopFraction float64 `yaml:"trailing_stop_fraction"`
	MaxOrderNotional     float64 `yaml:"max_order_notional"`
}

// DefaultConfig returns conservative paper-trading limits.
func DefaultConfig() Config {
	return Config{
		MaxDailyLoss:         2000.0,
		TrailingStopFraction: 0.5,
		MaxOrderNotional:     10000.0,
	}
}

func (c Config) Validate() error {
	if c.MaxDailyLoss <= 0 {
		return fmt.Errorf("risk: max_daily_loss must be positive, got %v", c.MaxDailyLoss)
	}
	if c.TrailingStopFraction <= 0 || c.TrailingStopFraction > 1 {
		return fmt.Errorf("risk: trailing_stop_fraction must be in (0,1], got %v", c.TrailingStopFraction)
	}
	if c.MaxOrderNotional <= 0 {
		return fmt.Errorf("risk: max_order_notional must be positive, got %v", c.MaxOrderNotional)
	}
	return nil
}

// SignalInput is the slice of a candidate signal the ledger needs for
// an admission decision.
type SignalInput struct {
	Symbol string
	Side   string
	Qty    float64
	Price  float64
}

// Decision is the result of an admission check. Rejections carry a
// reason and are reported, never raised.
type Decision struct {
	Allowed bool
	Reason  string
}

// Position tracks the net holding for one symbol. Positions are
// created lazily on the first fill and never destroyed, only driven
// back to flat.
type Position struct {
	Symbol        string    `json:"symbol"`
	Qty           float64   `json:"qty"` // signed; positive = long
	AvgPrice      float64   `json:"avg_price"`
	RealizedPnL   float64   `json:"realized_pnl"`
	UnrealizedPnL float64   `json:"unrealized_pnl"`
	OpenedAt      time.Time `json:"opened_at"`
}

func (p Position) IsFlat() bool  { return math.Abs(p.Qty) <= flatEpsilon }
func (p Position) IsLong() bool  { return p.Qty > flatEpsilon }
func (p Position) IsShort() bool { return p.Qty < -flatEpsilon }

// Stats is a point-in-time summary of the ledger. Repeated calls with
// no intervening fills return identical values.
type Stats struct {
	DailyRealizedPnL float64 `json:"daily_realized_pnl"`
	UnrealizedPnL    float64 `json:"unrealized_pnl"`
	TotalPnL         float64 `json:"total_pnl"`
	PeakPnL          float64 `json:"peak_pnl"`
	Drawdown         float64 `json:"drawdown"`
	GrossExposure    float64 `json:"gross_exposure"`
	NetExposure      float64 `json:"net_exposure"`
	OpenPositions    int     `json:"open_positions"`
}
