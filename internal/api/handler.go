package api

import (
	"net/http"
	"time"

	"decision-core/internal/engine"
	"decision-core/internal/events"
	"decision-core/internal/monitor"
	"decision-core/internal/order"
	"decision-core/internal/risk"
	"decision-core/pkg/db"

	"github.com/gin-gonic/gin"
)

// Server wires HTTP endpoints around the decision pipeline.
type Server struct {
	Router    *gin.Engine
	Bus       *events.Bus
	DB        *db.Database
	Engine    *engine.Engine
	Ledger    *risk.Ledger
	Tracker   *order.Tracker
	Metrics   *monitor.SystemMetrics
	Regime    func() string
	JWTSecret string
	Meta      SystemMeta
}

// SystemMeta describes runtime status exposed to clients.
type SystemMeta struct {
	Symbol      string
	Environment string
	UseMockFeed bool
	Strategies  []string
	Version     string
}

func NewServer(bus *events.Bus, database *db.Database, eng *engine.Engine, ledger *risk.Ledger, tracker *order.Tracker, metrics *monitor.SystemMetrics, regimeFn func() string, meta SystemMeta, jwtSecret string) *Server {
	r := gin.New()

	// Middleware stack (order matters!)
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(RequestLogger(metrics))
	r.Use(RateLimitMiddleware())
	r.Use(TimeoutMiddleware(30 * time.Second))
	r.Use(CORSMiddleware())

	s := &Server{
		Router:    r,
		Bus:       bus,
		DB:        database,
		Engine:    eng,
		Ledger:    ledger,
		Tracker:   tracker,
		Metrics:   metrics,
		Regime:    regimeFn,
		JWTSecret: jwtSecret,
		Meta:      meta,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.GET("/health", s.health)
	s.Router.GET("/ws", s.websocket)

	api := s.Router.Group("/api")
	{
		api.GET("/system/status", s.getSystemStatus)
		api.GET("/metrics", s.getMetrics)
		api.GET("/stats", s.getStats)
		api.GET("/regime", s.getRegime)
		api.GET("/positions", s.getPositions)
		api.GET("/orders", s.getOrders)
		api.GET("/risk", s.getRiskStats)
		api.GET("/signals/recent", s.getRecentSignals)

		// Protected operator actions
		protected := api.Group("")
		protected.Use(AuthMiddleware(s.JWTSecret))
		{
			protected.POST("/risk/reset", s.resetDailyRisk)
		}
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Start(addr string) error {
	return s.Router.Run(addr)
}
