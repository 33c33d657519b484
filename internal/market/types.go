package market

import "time"

// Side denotes trade direction.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Opposite returns SELL for BUY and BUY for SELL.
func (s Side) Opposite() Side {
	switch s {
	case SideBuy:
		return SideSell
	case SideSell:
		return SideBuy
	default:
		return s
	}
}

// Level is a single order book price level.
type Level struct {
	Price float64
	Size  float64
}

// Snapshot is one normalized view of the book and tape for a symbol.
// Snapshots are produced by the feed layer, already validated, and
// consumed exactly once by the decision path.
type Snapshot struct {
	Symbol    string
	Timestamp time.Time

	BidPrice float64
	BidSize  float64
	AskPrice float64
	AskSize  float64

	LastPrice float64
	Volume    float64 // rolling traded volume

	// Top-of-book depth, best first.
	Bids []Level
	Asks []Level
}

// Mid returns the midpoint of the best bid/ask, falling back to the
// last trade when one side is missing.
func (s Snapshot) Mid() float64 {
	if s.BidPrice > 0 && s.AskPrice > 0 {
		return (s.BidPrice + s.AskPrice) / 2
	}
	return s.LastPrice
}

// SpreadBps returns the bid/ask spread in basis points of the mid.
func (s Snapshot) SpreadBps() float64 {
	mid := s.Mid()
	if mid <= 0 || s.AskPrice <= 0 || s.BidPrice <= 0 {
		return 0
	}
	return (s.AskPrice - s.BidPrice) / mid * 10000
}

// Fill is an executed trade reported by the venue. Fills are immutable
// and must be applied in per-symbol chronological order.
type Fill struct {
	OrderID   string
	Symbol    string
	Side      Side
	Price     float64
	Qty       float64
	Fee       float64
	Maker     bool
	Timestamp time.Time
}

// DepthImbalance returns the normalized bid/ask size skew over the top
// n levels of the snapshot, in [-1, 1]. Returns 0 when the book is empty.
func DepthImbalance(s Snapshot, n int) float64 {
	bid := sumLevels(s.Bids, n)
	ask := sumLevels(s.Asks, n)
	total := bid + ask
	if total <= 0 {
		return 0
	}
	return (bid - ask) / total
}

func sumLevels(levels []Level, n int) float64 {
	total := 0.0
	for i, l := range levels {
		if i >= n {
			break
		}
		total += l.Size
	}
	return total
}
