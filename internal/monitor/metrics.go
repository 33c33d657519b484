package monitor

import (
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// SystemMetrics tracks pipeline throughput and latency.
type SystemMetrics struct {
	// Latency of one full Process call (classify + analyze + gate).
	ProcessLatency *LatencyHistogram
	APILatency     *LatencyHistogram

	snapshotsProcessed uint64
	signalsEmitted     uint64
	fillsApplied       uint64
	riskRejections     uint64
	throttleRejections uint64
	apiRequests        uint64
	apiErrors          uint64
}

// NewSystemMetrics creates a new metrics instance.
func NewSystemMetrics() *SystemMetrics {
	return &SystemMetrics{
		ProcessLatency: NewLatencyHistogram(1000),
		APILatency:     NewLatencyHistogram(1000),
	}
}

func (m *SystemMetrics) IncrementSnapshots() {
	atomic.AddUint64(&m.snapshotsProcessed, 1)
}

func (m *SystemMetrics) AddSignals(n int) {
	atomic.AddUint64(&m.signalsEmitted, uint64(n))
}

func (m *SystemMetrics) IncrementFills() {
	atomic.AddUint64(&m.fillsApplied, 1)
}

func (m *SystemMetrics) AddRiskRejections(n int) {
	atomic.AddUint64(&m.riskRejections, uint64(n))
}

func (m *SystemMetrics) AddThrottleRejections(n int) {
	atomic.AddUint64(&m.throttleRejections, uint64(n))
}

func (m *SystemMetrics) IncrementAPI() {
	atomic.AddUint64(&m.apiRequests, 1)
}

func (m *SystemMetrics) IncrementAPIErrors() {
	atomic.AddUint64(&m.apiErrors, 1)
}

// MetricsSnapshot is a point-in-time view for the API layer.
type MetricsSnapshot struct {
	ProcessLatency     LatencyStats `json:"process_latency"`
	APILatency         LatencyStats `json:"api_latency"`
	SnapshotsProcessed uint64       `json:"snapshots_processed"`
	SignalsEmitted     uint64       `json:"signals_emitted"`
	FillsApplied       uint64       `json:"fills_applied"`
	RiskRejections     uint64       `json:"risk_rejections"`
	ThrottleRejections uint64       `json:"throttle_rejections"`
	APIRequests        uint64       `json:"api_requests"`
	APIErrors          uint64       `json:"api_errors"`
	GoroutineCount     int          `json:"goroutine_count"`
	HeapAlloc          uint64       `json:"heap_alloc_bytes"`
	Timestamp          time.Time    `json:"timestamp"`
}

// GetSnapshot returns a point-in-time metrics snapshot.
func (m *SystemMetrics) GetSnapshot() MetricsSnapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return MetricsSnapshot{
		ProcessLatency:     m.ProcessLatency.Stats(),
		APILatency:         m.APILatency.Stats(),
		SnapshotsProcessed: atomic.LoadUint64(&m.snapshotsProcessed),
		SignalsEmitted:     atomic.LoadUint64(&m.signalsEmitted),
		FillsApplied:       atomic.LoadUint64(&m.fillsApplied),
		RiskRejections:     atomic.LoadUint64(&m.riskRejections),
		ThrottleRejections: atomic.LoadUint64(&m.throttleRejections),
		APIRequests:        atomic.LoadUint64(&m.apiRequests),
		APIErrors:          atomic.LoadUint64(&m.apiErrors),
		GoroutineCount:     runtime.NumGoroutine(),
		HeapAlloc:          memStats.HeapAlloc,
		Timestamp:          time.Now(),
	}
}

// LatencyHistogram tracks latency samples with a sliding window and
// lazily recomputed percentiles.
type LatencyHistogram struct {
	mu          sync.Mutex
	samples     []float64
	maxSize     int
	dirty       bool
	cachedStats LatencyStats
}

// NewLatencyHistogram creates a sliding window histogram.
func NewLatencyHistogram(size int) *LatencyHistogram {
	if size <= 0 {
		size = 1000
	}
	return &LatencyHistogram{
		samples: make([]float64, 0, size),
		maxSize: size,
		dirty:   true,
	}
}

// Record adds a latency sample in milliseconds.
func (h *LatencyHistogram) Record(latencyMs float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.samples) >= h.maxSize {
		h.samples = h.samples[1:]
	}
	h.samples = append(h.samples, latencyMs)
	h.dirty = true
}

// RecordDuration converts duration to ms and records.
func (h *LatencyHistogram) RecordDuration(d time.Duration) {
	h.Record(float64(d.Nanoseconds()) / 1e6)
}

// LatencyStats holds computed latency statistics.
type LatencyStats struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Count int     `json:"count"`
}

// Stats returns min, max, avg, p50, p95, p99, recomputing only when
// samples changed since the last call.
func (h *LatencyHistogram) Stats() LatencyStats {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.dirty && h.cachedStats.Count > 0 {
		return h.cachedStats
	}

	n := len(h.samples)
	if n == 0 {
		return LatencyStats{}
	}

	sorted := make([]float64, n)
	copy(sorted, h.samples)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	h.cachedStats = LatencyStats{
		Min:   sorted[0],
		Max:   sorted[n-1],
		Avg:   sum / float64(n),
		P50:   sorted[n/2],
		P95:   sorted[int(float64(n)*0.95)],
		P99:   sorted[int(float64(n)*0.99)],
		Count: n,
	}
	h.dirty = false

	return h.cachedStats
}
