package strategy

import (
	"math"
	"time"

	"decision-core/internal/market"
	"decision-core/internal/params"
	"decision-core/internal/regime"
)

const (
	wickMaxWindow = 50
	wickSpan      = 10 // samples used for high/low/avg and the volume MA
	wickOBILevels = 5
)

// WickCaptureAnalyzer fades short-lived price excursions (liquidation
// wicks): a sharp dip below the short-term average that snaps back is
// bought, a spike above it is sold. Unlike the other analyzers it
// leans INTO high volatility, where wicks are more frequent and more
// tradable, and scales its sizing up rather than down.
type WickCaptureAnalyzer struct {
	p      params.WickCapture
	window []observation
}

func NewWickCaptureAnalyzer(p params.WickCapture) *WickCaptureAnalyzer {
	w := p.Window
	if w <= 0 || w > wickMaxWindow {
		w = wickMaxWindow
	}
	return &WickCaptureAnalyzer{
		p:      p,
		window: make([]observation, 0, w),
	}
}

func (a *WickCaptureAnalyzer) Name() string {
	return string(params.StrategyWickCapture)
}

// Observe records one (price, volume) pair. Must be called once per
// snapshot before Analyze.
func (a *WickCaptureAnalyzer) Observe(price, volume float64) {
	a.window = append(a.window, observation{price: price, volume: volume})
	limit := a.p.Window
	if limit <= 0 || limit > wickMaxWindow {
		limit = wickMaxWindow
	}
	if len(a.window) > limit {
		a.window = a.window[len(a.window)-limit:]
	}
}

func (a *WickCaptureAnalyzer) Analyze(snap market.Snapshot, r regime.Regime) *Signal {
	if len(a.window) < wickSpan {
		return nil
	}
	recent := a.window[len(a.window)-wickSpan:]

	high, low, avg, volumeMA := summarize(recent)
	if avg <= 0 || volumeMA <= 0 {
		return nil
	}
	if high == low {
		// Zero-range window: there is no wick, and the ratio below
		// would divide by zero.
		return nil
	}

	wickUp := (high - avg) / avg
	wickDown := (avg - low) / avg
	rangeFrac := (high - low) / avg
	wickRatio := math.Max(wickUp, wickDown) / rangeFrac

	if wickRatio < a.p.MinWickRatio {
		return nil
	}
	if snap.Volume/volumeMA < a.p.MinVolumeSpike {
		return nil
	}

	price := snap.Mid()
	if price <= 0 {
		return nil
	}
	imbalance := market.DepthImbalance(snap, wickOBILevels)
	padding := 1 + a.p.StopPaddingBps/10000

	var side market.Side
	var stop float64
	switch {
	case wickDown >= a.p.WickSizeThreshold:
		// Sold-off wick: buy the recovery back to the average, with
		// the book leaning bid if confirmation is on.
		if a.p.RequireOBIConfirm && imbalance <= a.p.OBIConfirm {
			return nil
		}
		side = market.SideBuy
		stop = low / padding
	case wickUp >= a.p.WickSizeThreshold:
		if a.p.RequireOBIConfirm && imbalance >= -a.p.OBIConfirm {
			return nil
		}
		side = market.SideSell
		stop = high * padding
	default:
		return nil
	}

	confidence := math.Min(wickRatio, 1.0)
	qty := a.p.OrderNotional / price
	if r == regime.HighVolatility {
		confidence = math.Min(confidence*1.5, 1.0)
		qty *= 1.5
	}

	return &Signal{
		Symbol:     snap.Symbol,
		Strategy:   a.Name(),
		Side:       side,
		Price:      price,
		Qty:        qty,
		Confidence: confidence,
		Target:     avg,
		Stop:       stop,
		Generated:  time.Now(),
		Metadata: map[string]float64{
			"wick_up":    wickUp,
			"wick_down":  wickDown,
			"wick_ratio": wickRatio,
			"imbalance":  imbalance,
		},
	}
}

func summarize(obs []observation) (high, low, avg, volumeMA float64) {
	high = obs[0].price
	low = obs[0].price
	priceSum := 0.0
	volumeSum := 0.0
	for _, o := range obs {
		if o.price > high {
			high = o.price
		}
		if o.price < low {
			low = o.price
		}
		priceSum += o.price
		volumeSum += o.volume
	}
	n := float64(len(obs))
	return high, low, priceSum / n, volumeSum / n
}
