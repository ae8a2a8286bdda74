package observability

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics aggregates chat request counts and latencies per model.
type Metrics struct {
	mu sync.Mutex

	requestTotal  atomic.Int64
	requestFailed atomic.Int64

	models map[string]*ModelMetrics

	// Most recent request durations, oldest first.
	durations    []time.Duration
	maxDurations int
}

// ModelMetrics holds the counters of one model id.
type ModelMetrics struct {
	requestCount  atomic.Int64
	totalDuration atomic.Int64 // milliseconds
	errorCount    atomic.Int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics(maxDurations int) *Metrics {
	if maxDurations <= 0 {
		maxDurations = 1000
	}
	return &Metrics{
		models:       make(map[string]*ModelMetrics),
		durations:    make([]time.Duration, 0, maxDurations),
		maxDurations: maxDurations,
	}
}

// RecordRequest records one dispatched request and its duration.
func (m *Metrics) RecordRequest(model string, duration time.Duration, failed bool) {
	m.requestTotal.Add(1)
	mm := m.model(model)
	mm.requestCount.Add(1)
	mm.totalDuration.Add(duration.Milliseconds())
	if failed {
		m.requestFailed.Add(1)
		mm.errorCount.Add(1)
	}

	m.mu.Lock()
	if len(m.durations) >= m.maxDurations {
		m.durations = m.durations[1:]
	}
	m.durations = append(m.durations, duration)
	m.mu.Unlock()
}

func (m *Metrics) model(id string) *ModelMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	mm, ok := m.models[id]
	if !ok {
		mm = &ModelMetrics{}
		m.models[id] = mm
	}
	return mm
}

// Reset resets all metrics.
func (m *Metrics) Reset() {
	m.requestTotal.Store(0)
	m.requestFailed.Store(0)

	m.mu.Lock()
	m.models = make(map[string]*ModelMetrics)
	m.durations = make([]time.Duration, 0, m.maxDurations)
	m.mu.Unlock()
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	models := make(map[string]*ModelSnapshot, len(m.models))
	for id, mm := range m.models {
		count := mm.requestCount.Load()
		s := &ModelSnapshot{
			RequestCount: count,
			ErrorCount:   mm.errorCount.Load(),
		}
		if count > 0 {
			s.AvgLatencyMs = mm.totalDuration.Load() / count
		}
		models[id] = s
	}

	snap := &MetricsSnapshot{
		RequestTotal:  m.requestTotal.Load(),
		RequestFailed: m.requestFailed.Load(),
		Models:        models,
	}
	snap.P50LatencyMs, snap.P95LatencyMs = percentiles(m.durations)
	return snap
}

func percentiles(durations []time.Duration) (p50, p95 int64) {
	if len(durations) == 0 {
		return 0, 0
	}
	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	at := func(q float64) int64 {
		idx := int(q * float64(len(sorted)-1))
		return sorted[idx].Milliseconds()
	}
	return at(0.50), at(0.95)
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	RequestTotal  int64                     `json:"total_requests"`
	RequestFailed int64                     `json:"failed_requests"`
	P50LatencyMs  int64                     `json:"p50_latency_ms"`
	P95LatencyMs  int64                     `json:"p95_latency_ms"`
	Models        map[string]*ModelSnapshot `json:"models"`
}

// ModelSnapshot represents metrics for one model.
type ModelSnapshot struct {
	RequestCount int64 `json:"request_count"`
	ErrorCount   int64 `json:"error_count"`
	AvgLatencyMs int64 `json:"avg_latency_ms"`
}

// SuccessRate returns the success rate as a percentage (0-100).
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.RequestTotal == 0 {
		return 100.0
	}
	return float64(s.RequestTotal-s.RequestFailed) / float64(s.RequestTotal) * 100.0
}
