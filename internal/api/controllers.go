package api

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, gin.H{
		"code":  code,
		"error": msg,
	})
}

func (s *Server) getSystemStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"symbol":        s.Meta.Symbol,
		"environment":   s.Meta.Environment,
		"use_mock_feed": s.Meta.UseMockFeed,
		"strategies":    s.Meta.Strategies,
		"version":       s.Meta.Version,
		"regime":        s.currentRegime(),
		"bus_dropped":   s.busDropped(),
	})
}

func (s *Server) getMetrics(c *gin.Context) {
	if s.Metrics == nil {
		respondError(c, http.StatusServiceUnavailable, "METRICS_UNAVAILABLE", "metrics not initialized")
		return
	}
	c.JSON(http.StatusOK, s.Metrics.GetSnapshot())
}

func (s *Server) getStats(c *gin.Context) {
	if s.Engine == nil {
		respondError(c, http.StatusServiceUnavailable, "ENGINE_UNAVAILABLE", "engine not initialized")
		return
	}
	c.JSON(http.StatusOK, s.Engine.Stats())
}

func (s *Server) getRegime(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"regime": s.currentRegime()})
}

func (s *Server) getPositions(c *gin.Context) {
	if s.Ledger == nil {
		respondError(c, http.StatusServiceUnavailable, "LEDGER_UNAVAILABLE", "risk ledger not initialized")
		return
	}
	c.JSON(http.StatusOK, gin.H{"positions": s.Ledger.Positions()})
}

func (s *Server) getRiskStats(c *gin.Context) {
	if s.Ledger == nil {
		respondError(c, http.StatusServiceUnavailable, "LEDGER_UNAVAILABLE", "risk ledger not initialized")
		return
	}
	c.JSON(http.StatusOK, s.Ledger.Stats())
}

func (s *Server) getOrders(c *gin.Context) {
	if s.Tracker == nil {
		respondError(c, http.StatusServiceUnavailable, "TRACKER_UNAVAILABLE", "order tracker not initialized")
		return
	}
	if symbol := c.Query("symbol"); symbol != "" {
		c.JSON(http.StatusOK, gin.H{
			"orders": s.Tracker.BySymbol(symbol),
			"total":  s.Tracker.Len(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders": s.Tracker.Active(),
		"total":  s.Tracker.Len(),
	})
}

func (s *Server) getRecentSignals(c *gin.Context) {
	if s.DB == nil {
		respondError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "journal not initialized")
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(c, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
			return
		}
		if n > 500 {
			n = 500
		}
		limit = n
	}

	records, err := s.DB.RecentSignals(c.Request.Context(), limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"signals": records})
}

// resetDailyRisk zeroes the daily loss counters at the session boundary.
func (s *Server) resetDailyRisk(c *gin.Context) {
	if s.Ledger == nil {
		respondError(c, http.StatusServiceUnavailable, "LEDGER_UNAVAILABLE", "risk ledger not initialized")
		return
	}

	s.Ledger.ResetDaily()
	log.Printf("[RISK] daily counters reset by %s", CurrentSubject(c))
	c.JSON(http.StatusOK, gin.H{
		"status": "reset",
		"stats":  s.Ledger.Stats(),
	})
}

func (s *Server) currentRegime() string {
	if s.Regime == nil {
		return ""
	}
	return s.Regime()
}

func (s *Server) busDropped() uint64 {
	if s.Bus == nil {
		return 0
	}
	return s.Bus.Dropped()
}
