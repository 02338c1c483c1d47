package metrics

import (
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// AnalysisMetrics counts which analysis path produced each result and
// tracks backend call latency.
type AnalysisMetrics struct {
	mu      sync.Mutex
	paths   map[string]int64
	reasons map[string]int64
	backend *LatencyTracker
}

// NewAnalysisMetrics creates an empty collector.
func NewAnalysisMetrics() *AnalysisMetrics {
	return &AnalysisMetrics{
		paths:   make(map[string]int64),
		reasons: make(map[string]int64),
		backend: NewLatencyTracker(1000),
	}
}

// RecordOutcome counts one finished analysis.
func (m *AnalysisMetrics) RecordOutcome(path, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.paths[path]++
	if reason != "" {
		m.reasons[reason]++
	}
}

// RecordBackendLatency records the duration of one backend call.
func (m *AnalysisMetrics) RecordBackendLatency(d time.Duration) {
	m.backend.Record(d)
}

// Snapshot returns counters and latency stats for JSON output.
func (m *AnalysisMetrics) Snapshot() map[string]any {
	m.mu.Lock()
	paths := make(map[string]int64, len(m.paths))
	for k, v := range m.paths {
		paths[k] = v
	}
	reasons := make(map[string]int64, len(m.reasons))
	for k, v := range m.reasons {
		reasons[k] = v
	}
	m.mu.Unlock()

	return map[string]any{
		"paths":           paths,
		"fallback_reason": reasons,
		"backend_latency": m.backend.Stats().ToMap(),
	}
}

// RedisPoolStats converts go-redis pool statistics for JSON output.
func RedisPoolStats(client *redis.Client) map[string]any {
	if client == nil {
		return nil
	}
	s := client.PoolStats()
	return map[string]any{
		"hits":        s.Hits,
		"misses":      s.Misses,
		"timeouts":    s.Timeouts,
		"total_conns": s.TotalConns,
		"idle_conns":  s.IdleConns,
		"stale_conns": s.StaleConns,
	}
}
