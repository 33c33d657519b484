package market

import (
	"context"
	"log"
	"math/rand"
	"time"

	"decision-core/internal/events"
)

// MockFeed generates synthetic snapshots for local development: a
// random-walk mid with five levels of synthetic depth per side.
type MockFeed struct {
	Bus        *events.Bus
	Symbol     string
	StartPrice float64
	Step       float64
	Interval   time.Duration
}

func (m *MockFeed) Start(ctx context.Context) {
	if m.Bus == nil {
		log.Println("mock feed: bus not set")
		return
	}
	if m.Symbol == "" {
		m.Symbol = "BTCUSDT"
	}
	price := m.StartPrice
	if price == 0 {
		price = 100.0
	}
	if m.Step == 0 {
		m.Step = 0.05
	}
	if m.Interval == 0 {
		m.Interval = time.Second
	}

	go func() {
		t := time.NewTicker(m.Interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				// simple random walk
				price += (rand.Float64()*2 - 1) * m.Step
				if price < m.Step*10 {
					price = m.Step * 10
				}
				m.Bus.Publish(events.EventSnapshot, m.snapshot(price))
			}
		}
	}()
}

func (m *MockFeed) snapshot(mid float64) Snapshot {
	spread := mid * 0.0002
	snap := Snapshot{
		Symbol:    m.Symbol,
		Timestamp: time.Now(),
		BidPrice:  mid - spread/2,
		AskPrice:  mid + spread/2,
		LastPrice: mid,
		Volume:    5 + rand.Float64()*20,
	}
	snap.BidSize = 1 + rand.Float64()*4
	snap.AskSize = 1 + rand.Float64()*4

	for i := 0; i < 5; i++ {
		depth := float64(i+1) * spread
		snap.Bids = append(snap.Bids, Level{
			Price: snap.BidPrice - depth,
			Size:  1 + rand.Float64()*6,
		})
		snap.Asks = append(snap.Asks, Level{
			Price: snap.AskPrice + depth,
			Size:  1 + rand.Float64()*6,
		})
	}
	return snap
}
