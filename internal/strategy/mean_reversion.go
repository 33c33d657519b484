package strategy

import (
	"math"
	"time"

	"decision-core/internal/market"
	"decision-core/internal/params"
	"decision-core/internal/regime"
)

const (
	meanRevMaxWindow = 200
	meanRevMinObs    = 20
	stddevEpsilon    = 1e-9
	zConfidenceScale = 3.0
)

type observation struct {
	price  float64
	volume float64
}

// MeanReversionAnalyzer fades stretched prices back toward rolling
// VWAP. It only trades a ranging market: in a trend or a volatility
// expansion, "stretched" is usually just the move continuing.
type MeanReversionAnalyzer struct {
	p      params.MeanReversion
	window []observation
}

func NewMeanReversionAnalyzer(p params.MeanReversion) *MeanReversionAnalyzer {
	w := p.Window
	if w <= 0 || w > meanRevMaxWindow {
		w = meanRevMaxWindow
	}
	return &MeanReversionAnalyzer{
		p:      p,
		window: make([]observation, 0, w),
	}
}

func (a *MeanReversionAnalyzer) Name() string {
	return string(params.StrategyMeanReversion)
}

// Observe records one (price, volume) pair. Must be called once per
// snapshot before Analyze.
func (a *MeanReversionAnalyzer) Observe(price, volume float64) {
	a.window = append(a.window, observation{price: price, volume: volume})
	limit := a.p.Window
	if limit <= 0 || limit > meanRevMaxWindow {
		limit = meanRevMaxWindow
	}
	if len(a.window) > limit {
		a.window = a.window[len(a.window)-limit:]
	}
}

func (a *MeanReversionAnalyzer) Analyze(snap market.Snapshot, r regime.Regime) *Signal {
	// Hard regime gate: disabled everywhere except Ranging.
	if r != regime.Ranging {
		return nil
	}
	if len(a.window) < meanRevMinObs {
		return nil
	}

	vwap, volumeSum := a.vwap()
	if volumeSum <= 0 {
		return nil
	}

	stddev := a.stddevAbout(vwap)
	if stddev < stddevEpsilon {
		return nil
	}

	mid := snap.Mid()
	if mid <= 0 {
		return nil
	}
	zScore := (mid - vwap) / stddev

	if math.Abs(zScore) < a.p.MinZScore {
		return nil
	}
	volumeMA := volumeSum / float64(len(a.window))
	if volumeMA <= 0 || snap.Volume/volumeMA < a.p.MinVolumeRatio {
		return nil
	}

	var side market.Side
	var stop float64
	offset := mid * a.p.StopOffsetBps / 10000
	switch {
	case zScore > a.p.TriggerZScore:
		// Stretched above VWAP: expect reversion down.
		side = market.SideSell
		stop = mid + offset
	case zScore < -a.p.TriggerZScore:
		side = market.SideBuy
		stop = mid - offset
	default:
		return nil
	}

	return &Signal{
		Symbol:     snap.Symbol,
		Strategy:   a.Name(),
		Side:       side,
		Price:      mid,
		Qty:        a.p.OrderNotional / mid,
		Confidence: math.Min(math.Abs(zScore)/zConfidenceScale, 1.0),
		Target:     vwap,
		Stop:       stop,
		Generated:  time.Now(),
		Metadata: map[string]float64{
			"z_score": zScore,
			"vwap":    vwap,
			"stddev":  stddev,
		},
	}
}

func (a *MeanReversionAnalyzer) vwap() (vwap, volumeSum float64) {
	notional := 0.0
	for _, o := range a.window {
		notional += o.price * o.volume
		volumeSum += o.volume
	}
	if volumeSum <= 0 {
		return 0, 0
	}
	return notional / volumeSum, volumeSum
}

// stddevAbout is the population standard deviation of window prices
// about the given center.
func (a *MeanReversionAnalyzer) stddevAbout(center float64) float64 {
	variance := 0.0
	for _, o := range a.window {
		diff := o.price - center
		variance += diff * diff
	}
	return math.Sqrt(variance / float64(len(a.window)))
}
