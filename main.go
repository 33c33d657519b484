package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"

	"decision-core/internal/api"
	"decision-core/internal/engine"
	"decision-core/internal/events"
	"decision-core/internal/market"
	"decision-core/internal/monitor"
	"decision-core/internal/order"
	"decision-core/internal/params"
	"decision-core/internal/regime"
	"decision-core/internal/risk"
	"decision-core/internal/strategy"
	"decision-core/pkg/config"
	"decision-core/pkg/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	log.Printf("decision core starting on port %s (symbol %s, env %s)", cfg.Port, cfg.Symbol, cfg.Environment)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Core services
	bus := events.NewBus()

	database, err := db.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("db init failed: %v", err)
	}
	defer database.Close()
	if err := db.ApplyMigrations(database); err != nil {
		log.Fatalf("db migrations failed: %v", err)
	}

	// Strategy parameters: refuse to start on any missing or invalid set.
	registry, err := params.Load(cfg.ParamsPath, cfg.Environment)
	if err != nil {
		log.Fatalf("params load failed: %v", err)
	}
	log.Printf("params loaded for environment %q", registry.Environment())

	riskCfg := risk.Config{
		MaxDailyLoss:         cfg.MaxDailyLoss,
		TrailingStopFraction: cfg.TrailingStopFraction,
		MaxOrderNotional:     cfg.MaxOrderNotional,
	}
	if err := riskCfg.Validate(); err != nil {
		log.Fatalf("risk config invalid: %v", err)
	}
	ledger := risk.NewLedger(riskCfg)

	tracker := order.NewTracker()
	executor := order.NewPaperExecutor(bus, tracker, cfg.PaperFeeRate, cfg.PaperSlippageBps)
	sysMetrics := monitor.NewSystemMetrics()

	// Analyzers in emission priority order.
	var analyzers []strategy.Analyzer
	if cfg.EnableImbalance {
		analyzers = append(analyzers, strategy.NewImbalanceAnalyzer(registry.Imbalance()))
	}
	if cfg.EnableMeanReversion {
		analyzers = append(analyzers, strategy.NewMeanReversionAnalyzer(registry.MeanReversion()))
	}
	if cfg.EnableWickCapture {
		analyzers = append(analyzers, strategy.NewWickCaptureAnalyzer(registry.WickCapture()))
	}
	if len(analyzers) == 0 {
		log.Fatal("no strategies enabled")
	}
	names := make([]string, 0, len(analyzers))
	for _, a := range analyzers {
		names = append(names, a.Name())
	}
	log.Printf("strategies enabled: %v", names)

	throttler := strategy.NewThrottler(cfg.ThrottleInterval)
	eng := engine.New(engine.Config{
		LotStep:  cfg.LotStep,
		OffHours: cfg.OffHours,
	}, analyzers, throttler, ledger)

	classifier := regime.NewClassifier()
	var currentRegime atomic.Value
	currentRegime.Store(string(regime.Ranging))

	// Market data (mock only for now; a venue feed plugs in here)
	if cfg.UseMockFeed {
		mock := market.MockFeed{
			Bus:        bus,
			Symbol:     cfg.Symbol,
			StartPrice: cfg.MockStartPrice,
			Interval:   cfg.MockTickInterval,
		}
		mock.Start(ctx)
		log.Println("mock feed started")
	} else {
		log.Println("no live feed configured; set USE_MOCK_FEED=true for local runs")
	}

	// Decision loop: one goroutine owns the classifier, the analyzers,
	// and Process.
	snapStream, unsubSnap := bus.Subscribe(events.EventSnapshot, 100)
	defer unsubSnap()
	go func() {
		var prevThrottled, prevRiskRejected int64
		for msg := range snapStream {
			snap, ok := msg.(market.Snapshot)
			if !ok {
				continue
			}

			start := time.Now()
			r := classifier.Classify(snap)
			currentRegime.Store(string(r))

			signals := eng.Process(snap, r)
			sysMetrics.IncrementSnapshots()
			sysMetrics.ProcessLatency.RecordDuration(time.Since(start))
			sysMetrics.AddSignals(len(signals))

			es := eng.Stats()
			sysMetrics.AddThrottleRejections(int(es.Throttled - prevThrottled))
			sysMetrics.AddRiskRejections(int(es.RiskRejected - prevRiskRejected))
			prevThrottled, prevRiskRejected = es.Throttled, es.RiskRejected

			for _, sig := range signals {
				o := order.Order{
					ClientID:  uuid.NewString(),
					Symbol:    sig.Symbol,
					Side:      sig.Side,
					Type:      order.TypeLimit,
					Price:     sig.Price,
					Qty:       sig.Qty,
					Status:    order.StatusPending,
					Strategy:  sig.Strategy,
					CreatedAt: time.Now(),
				}

				if err := database.InsertSignal(ctx, db.SignalRecord{
					ID:         o.ClientID,
					Strategy:   sig.Strategy,
					Symbol:     sig.Symbol,
					Side:       string(sig.Side),
					Price:      sig.Price,
					Qty:        sig.Qty,
					Confidence: sig.Confidence,
					Target:     sig.Target,
					Stop:       sig.Stop,
					Regime:     string(r),
				}); err != nil {
					log.Printf("journal signal failed: %v", err)
				}

				bus.Publish(events.EventSignal, sig)
				executor.Execute(ctx, o)
			}

			ledger.MarkToMarket(map[string]float64{snap.Symbol: snap.LastPrice})
		}
	}()

	// Fill ingestion: apply fills to the ledger and attribute realized
	// round-trips back to their strategies.
	fillStream, unsubFill := bus.Subscribe(events.EventFill, 100)
	defer unsubFill()
	go func() {
		for msg := range fillStream {
			f, ok := msg.(market.Fill)
			if !ok {
				continue
			}

			symbol := f.Symbol
			if symbol == "" {
				if resolved, ok := tracker.ResolveSymbol(f.OrderID); ok {
					symbol = resolved
					f.Symbol = resolved
				} else {
					log.Printf("fill for unknown order %s dropped", f.OrderID)
					continue
				}
			}

			before, _ := ledger.Position(symbol)
			ledger.ApplyFill(f)
			after, _ := ledger.Position(symbol)

			tracker.RecordFill(f.OrderID, f.Qty)
			sysMetrics.IncrementFills()

			if err := database.InsertFill(ctx, db.FillRecord{
				OrderID:  f.OrderID,
				Symbol:   f.Symbol,
				Side:     string(f.Side),
				Price:    f.Price,
				Qty:      f.Qty,
				Fee:      f.Fee,
				Maker:    f.Maker,
				FilledAt: f.Timestamp,
			}); err != nil {
				log.Printf("journal fill failed: %v", err)
			}

			// A change in realized PnL means quantity was closed; credit
			// the round-trip to the strategy that placed the order.
			if delta := after.RealizedPnL - before.RealizedPnL; delta != 0 {
				if o, ok := tracker.Get(f.OrderID); ok && o.Strategy != "" {
					eng.RecordTradeResult(o.Strategy, delta)
				}
				log.Printf("realized %.4f on %s (%s %.6f @ %.4f)", delta, symbol, f.Side, f.Qty, f.Price)
			}

			stats := ledger.Stats()
			if stats.DailyRealizedPnL < -cfg.MaxDailyLoss {
				bus.Publish(events.EventRiskAlert,
					fmt.Sprintf("daily loss limit breached: %.2f", stats.DailyRealizedPnL))
			}
		}
	}()

	// Order status stream: the tracker consumes lifecycle updates the
	// same way it would from a venue user stream.
	updateStream, unsubUpdate := bus.Subscribe(events.EventOrderUpdate, 100)
	defer unsubUpdate()
	go func() {
		for msg := range updateStream {
			u, ok := msg.(order.StatusUpdate)
			if !ok {
				continue
			}
			tracker.Update(u.ClientID, u.Status)
		}
	}()

	// Risk alerts are logged; operators watch these.
	alertStream, unsubAlert := bus.Subscribe(events.EventRiskAlert, 50)
	defer unsubAlert()
	go func() {
		for msg := range alertStream {
			log.Printf("[RISK_ALERT] %v", msg)
		}
	}()

	// Periodic end-of-interval ledger summary for offline review.
	go func() {
		t := time.NewTicker(30 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				stats := ledger.Stats()
				if err := database.UpsertDailyRisk(ctx, db.DailyRiskRecord{
					Date:          time.Now().UTC().Format("2006-01-02"),
					RealizedPnL:   stats.DailyRealizedPnL,
					PeakPnL:       stats.PeakPnL,
					Drawdown:      stats.Drawdown,
					GrossExposure: stats.GrossExposure,
					NetExposure:   stats.NetExposure,
					OpenPositions: stats.OpenPositions,
				}); err != nil {
					log.Printf("risk summary upsert failed: %v", err)
				}
			}
		}
	}()

	buildVersion := os.Getenv("APP_VERSION")
	if buildVersion == "" {
		buildVersion = "v1.0-dev"
	}

	server := api.NewServer(
		bus,
		database,
		eng,
		ledger,
		tracker,
		sysMetrics,
		func() string { return currentRegime.Load().(string) },
		api.SystemMeta{
			Symbol:      cfg.Symbol,
			Environment: cfg.Environment,
			UseMockFeed: cfg.UseMockFeed,
			Strategies:  names,
			Version:     buildVersion,
		},
		cfg.JWTSecret,
	)
	go func() {
		if err := server.Start(":" + cfg.Port); err != nil {
			log.Fatalf("api server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Println("shutting down")
}
