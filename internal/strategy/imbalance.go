package strategy

import (
	"math"
	"time"

	"decision-core/internal/market"
	"decision-core/internal/params"
	"decision-core/internal/regime"
)

// confidenceScale normalizes |imbalance| into a confidence: a skew of
// 0.7 or stronger is treated as full conviction.
const confidenceScale = 0.7

// ImbalanceAnalyzer trades order-book depth skew. When resting bid size
// over the top levels significantly exceeds ask size the book leans
// toward buyers, and vice versa. It is stateless between snapshots.
type ImbalanceAnalyzer struct {
	p params.Imbalance
}

func NewImbalanceAnalyzer(p params.Imbalance) *ImbalanceAnalyzer {
	return &ImbalanceAnalyzer{p: p}
}

func (a *ImbalanceAnalyzer) Name() string {
	return string(params.StrategyImbalance)
}

func (a *ImbalanceAnalyzer) Analyze(snap market.Snapshot, r regime.Regime) *Signal {
	bidSize := sumDepth(snap.Bids, a.p.DepthLevels)
	askSize := sumDepth(snap.Asks, a.p.DepthLevels)
	total := bidSize + askSize
	if total < a.p.MinTotalVolume || total <= 0 {
		return nil
	}

	imbalance := (bidSize - askSize) / total

	if snap.SpreadBps() > a.p.MaxSpreadBps {
		return nil
	}
	if math.Abs(imbalance) < a.p.MinImbalance {
		return nil
	}

	var side market.Side
	switch {
	case imbalance > a.p.TriggerImbalance:
		side = market.SideBuy
	case imbalance < -a.p.TriggerImbalance:
		side = market.SideSell
	default:
		return nil
	}

	price := snap.Mid()
	if price <= 0 {
		return nil
	}

	confidence := math.Min(math.Abs(imbalance)/confidenceScale, 1.0)
	qty := a.p.OrderNotional / price
	if r == regime.HighVolatility {
		confidence *= 0.5
		qty *= 0.5
	}

	return &Signal{
		Symbol:     snap.Symbol,
		Strategy:   a.Name(),
		Side:       side,
		Price:      price,
		Qty:        qty,
		Confidence: confidence,
		Generated:  time.Now(),
		Metadata: map[string]float64{
			"imbalance": imbalance,
			"bid_size":  bidSize,
			"ask_size":  askSize,
		},
	}
}

func sumDepth(levels []market.Level, n int) float64 {
	total := 0.0
	for i, l := range levels {
		if i >= n {
			break
		}
		total += l.Size
	}
	return total
}
