package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"decision-core/internal/engine"
	"decision-core/internal/events"
	"decision-core/internal/monitor"
	"decision-core/internal/order"
	"decision-core/internal/risk"
	"decision-core/pkg/db"
)

const testSecret = "test-secret"

func newTestAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := db.New(":memory:")
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := db.ApplyMigrations(database); err != nil {
		t.Fatalf("ApplyMigrations: %v", err)
	}

	ledger := risk.NewLedger(risk.DefaultConfig())
	srv := NewServer(
		events.NewBus(),
		database,
		engine.New(engine.Config{}, nil, nil, ledger),
		ledger,
		order.NewTracker(),
		monitor.NewSystemMetrics(),
		func() string { return "RANGING" },
		SystemMeta{Symbol: "BTCUSDT", Environment: "paper", UseMockFeed: true, Version: "test"},
		testSecret,
	)

	ts := httptest.NewServer(srv.Router)
	t.Cleanup(ts.Close)
	return ts
}

func TestPublicEndpoints(t *testing.T) {
	ts := newTestAPIServer(t)

	for _, path := range []string{
		"/health",
		"/api/system/status",
		"/api/metrics",
		"/api/stats",
		"/api/regime",
		"/api/positions",
		"/api/orders",
		"/api/risk",
		"/api/signals/recent",
	} {
		t.Run(path, func(t *testing.T) {
			resp, err := http.Get(ts.URL + path)
			if err != nil {
				t.Fatalf("GET %s: %v", path, err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("GET %s = %d, expected 200", path, resp.StatusCode)
			}
		})
	}
}

func TestRiskResetRequiresToken(t *testing.T) {
	ts := newTestAPIServer(t)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "malformed header", header: "Token abc", want: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-jwt", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/risk/reset", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("POST /api/risk/reset: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, expected %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestRiskResetWithValidToken(t *testing.T) {
	ts := newTestAPIServer(t)

	token, err := GenerateToken("ops", testSecret, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/risk/reset", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /api/risk/reset: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, expected 200", resp.StatusCode)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	ts := newTestAPIServer(t)

	token, err := GenerateToken("ops", testSecret, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/risk/reset", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /api/risk/reset: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, expected 401 for an expired token", resp.StatusCode)
	}
}
