package engine

import "sync"

// Stats summarizes the coordinator's activity.
type Stats struct {
	// TotalSignals is the sum of per-strategy emissions minus every
	// throttled, low-confidence, and risk-rejected candidate.
	TotalSignals int64 `json:"total_signals"`

	Emitted      map[string]int64 `json:"emitted"`
	Throttled    int64            `json:"throttled"`
	Filtered     int64            `json:"filtered"`
	RiskRejected int64            `json:"risk_rejected"`

	// Per-strategy realized PnL and round-trip counts.
	StrategyPnL map[string]float64 `json:"strategy_pnl"`
	Trades      map[string]int64   `json:"trades"`
	Wins        map[string]int64   `json:"wins"`

	// WinRate is the trade-count-weighted win rate across all
	// strategies (total wins over total trades).
	WinRate float64 `json:"win_rate"`
}

// statsCounters is the mutable backing store. It carries its own lock:
// emissions come from the decision goroutine while trade results come
// from the fill ingestion goroutine, and Stats is read from the API.
type statsCounters struct {
	mu sync.Mutex

	emitted      map[string]int64
	throttled    int64
	filtered     int64
	riskRejected int64

	pnl    map[string]float64
	trades map[string]int64
	wins   map[string]int64
}

func (s *statsCounters) init() {
	s.emitted = make(map[string]int64)
	s.pnl = make(map[string]float64)
	s.trades = make(map[string]int64)
	s.wins = make(map[string]int64)
}

func (s *statsCounters) recordEmitted(name string) {
	s.mu.Lock()
	s.emitted[name]++
	s.mu.Unlock()
}

func (s *statsCounters) recordThrottled() {
	s.mu.Lock()
	s.throttled++
	s.mu.Unlock()
}

func (s *statsCounters) recordFiltered() {
	s.mu.Lock()
	s.filtered++
	s.mu.Unlock()
}

func (s *statsCounters) recordRiskRejected() {
	s.mu.Lock()
	s.riskRejected++
	s.mu.Unlock()
}

func (s *statsCounters) recordTrade(name string, pnl float64) {
	s.mu.Lock()
	s.pnl[name] += pnl
	s.trades[name]++
	if pnl > 0 {
		s.wins[name]++
	}
	s.mu.Unlock()
}

func (s *statsCounters) snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := Stats{
		Throttled:    s.throttled,
		Filtered:     s.filtered,
		RiskRejected: s.riskRejected,
		Emitted:      make(map[string]int64, len(s.emitted)),
		StrategyPnL:  make(map[string]float64, len(s.pnl)),
		Trades:       make(map[string]int64, len(s.trades)),
		Wins:         make(map[string]int64, len(s.wins)),
	}

	var totalEmitted int64
	for name, n := range s.emitted {
		out.Emitted[name] = n
		totalEmitted += n
	}
	out.TotalSignals = totalEmitted - s.throttled - s.filtered - s.riskRejected

	var totalTrades, totalWins int64
	for name, pnl := range s.pnl {
		out.StrategyPnL[name] = pnl
	}
	for name, n := range s.trades {
		out.Trades[name] = n
		totalTrades += n
	}
	for name, n := range s.wins {
		out.Wins[name] = n
		totalWins += n
	}
	// Weighted blend across strategies, not any single strategy's rate.
	if totalTrades > 0 {
		out.WinRate = float64(totalWins) / float64(totalTrades)
	}
	return out
}
