package db

import (
	"context"
	"time"
)

// SignalRecord is one emitted signal stored for offline review.
type SignalRecord struct {
	ID         string
	Strategy   string
	Symbol     string
	Side       string
	Price      float64
	Qty        float64
	Confidence float64
	Target     float64
	Stop       float64
	Regime     string
	CreatedAt  time.Time
}

// FillRecord is one applied fill stored for offline review.
type FillRecord struct {
	OrderID  string
	Symbol   string
	Side     string
	Price    float64
	Qty      float64
	Fee      float64
	Maker    bool
	FilledAt time.Time
}

// DailyRiskRecord is the end-of-interval ledger summary for one date.
type DailyRiskRecord struct {
	Date          string
	RealizedPnL   float64
	PeakPnL       float64
	Drawdown      float64
	GrossExposure float64
	NetExposure   float64
	OpenPositions int
}

// InsertSignal journals one emitted signal.
func (d *Database) InsertSignal(ctx context.Context, s SignalRecord) error {
	_, err := d.DB.ExecContext(ctx, `
		INSERT INTO signals (id, strategy, symbol, side, price, qty, confidence, target_price, stop_price, regime)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.Strategy, s.Symbol, s.Side, s.Price, s.Qty, s.Confidence, s.Target, s.Stop, s.Regime)
	return err
}

// InsertFill journals one applied fill.
func (d *Database) InsertFill(ctx context.Context, f FillRecord) error {
	maker := 0
	if f.Maker {
		maker = 1
	}
	_, err := d.DB.ExecContext(ctx, `
		INSERT INTO fills (order_id, symbol, side, price, qty, fee, maker, filled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, f.OrderID, f.Symbol, f.Side, f.Price, f.Qty, f.Fee, maker, f.FilledAt)
	return err
}

// UpsertDailyRisk records (or refreshes) the ledger summary for a date.
func (d *Database) UpsertDailyRisk(ctx context.Context, r DailyRiskRecord) error {
	_, err := d.DB.ExecContext(ctx, `
		INSERT INTO risk_daily (date, realized_pnl, peak_pnl, drawdown, gross_exposure, net_exposure, open_positions, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(date) DO UPDATE SET
			realized_pnl = excluded.realized_pnl,
			peak_pnl = excluded.peak_pnl,
			drawdown = excluded.drawdown,
			gross_exposure = excluded.gross_exposure,
			net_exposure = excluded.net_exposure,
			open_positions = excluded.open_positions,
			updated_at = CURRENT_TIMESTAMP
	`, r.Date, r.RealizedPnL, r.PeakPnL, r.Drawdown, r.GrossExposure, r.NetExposure, r.OpenPositions)
	return err
}

// RecentSignals returns up to limit most recent journaled signals.
func (d *Database) RecentSignals(ctx context.Context, limit int) ([]SignalRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.DB.QueryContext(ctx, `
		SELECT id, strategy, symbol, side, price, qty, confidence,
		       COALESCE(target_price, 0), COALESCE(stop_price, 0), COALESCE(regime, ''), created_at
		FROM signals
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SignalRecord
	for rows.Next() {
		var s SignalRecord
		if err := rows.Scan(&s.ID, &s.Strategy, &s.Symbol, &s.Side, &s.Price, &s.Qty,
			&s.Confidence, &s.Target, &s.Stop, &s.Regime, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
