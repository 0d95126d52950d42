package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const dispatchMetricsFileName = "dispatch_metrics.json"

var latencyBucketUpperBoundsMs = []int64{
	10, 25, 50, 100, 250, 500, 1000, 2000, 5000, 10000, 30000,
}

// DispatchSnapshot contains aggregated dispatch metrics for the
// governance core.
type DispatchSnapshot struct {
	UpdatedAt time.Time     `json:"updated_at"`
	Dispatch  DispatchStats `json:"dispatch"`
}

// DispatchStats tracks dispatched action outcomes.
type DispatchStats struct {
	Total             int64 `json:"total"`
	Completed         int64 `json:"completed"`
	Denied            int64 `json:"denied"`
	Unclaimed         int64 `json:"unclaimed"`
	Cancelled         int64 `json:"cancelled"`
	Failed            int64 `json:"failed"`
	Timeouts          int64 `json:"timeouts"`
	TotalLatencyMs    int64 `json:"total_latency_ms"`
	MaxLatencyMs      int64 `json:"max_latency_ms"`
	LastLatencyMs     int64 `json:"last_latency_ms"`
	P95ProxyLatencyMs int64 `json:"p95_proxy_latency_ms"`
}

// DenialRatio returns denied/total in [0,1].
func (d DispatchStats) DenialRatio() float64 {
	if d.Total <= 0 {
		return 0
	}
	return float64(d.Denied) / float64(d.Total)
}

// FailureRatio returns failed/total in [0,1].
func (d DispatchStats) FailureRatio() float64 {
	if d.Total <= 0 {
		return 0
	}
	return float64(d.Failed) / float64(d.Total)
}

// AvgLatencyMs returns average dispatch latency in milliseconds.
func (d DispatchStats) AvgLatencyMs() float64 {
	if d.Total <= 0 {
		return 0
	}
	return float64(d.TotalLatencyMs) / float64(d.Total)
}

// HasData reports whether any dispatches were recorded.
func (s DispatchSnapshot) HasData() bool {
	return s.Dispatch.Total > 0
}

// DispatchMetrics records and persists dispatch metrics.
type DispatchMetrics struct {
	path string

	mu      sync.Mutex
	snap    DispatchSnapshot
	buckets []int64
}

// NewDispatchMetrics creates a metrics recorder rooted at
// <workspace>/.warden/state/dispatch_metrics.json.
func NewDispatchMetrics(workspacePath string) *DispatchMetrics {
	return &DispatchMetrics{
		path:    dispatchMetricsPath(workspacePath),
		buckets: make([]int64, len(latencyBucketUpperBoundsMs)+1),
	}
}

// Snapshot returns the latest in-memory snapshot.
func (m *DispatchMetrics) Snapshot() DispatchSnapshot {
	if m == nil {
		return DispatchSnapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// RecordDispatch updates dispatch metrics for one terminal outcome and
// persists the snapshot. The code is the result classification the
// facade produced (ok, denied, unclaimed, cancelled, timeout, ...).
func (m *DispatchMetrics) RecordDispatch(duration time.Duration, code string) (DispatchSnapshot, error) {
	if m == nil {
		return DispatchSnapshot{}, nil
	}

	now := time.Now().UTC()
	latencyMs := duration.Milliseconds()
	if latencyMs < 0 {
		latencyMs = 0
	}

	m.mu.Lock()
	m.snap.UpdatedAt = now
	m.snap.Dispatch.Total++
	m.snap.Dispatch.TotalLatencyMs += latencyMs
	m.snap.Dispatch.LastLatencyMs = latencyMs
	if latencyMs > m.snap.Dispatch.MaxLatencyMs {
		m.snap.Dispatch.MaxLatencyMs = latencyMs
	}

	switch strings.TrimSpace(code) {
	case "ok":
		m.snap.Dispatch.Completed++
	case "denied", "not_whitelisted":
		m.snap.Dispatch.Denied++
	case "unclaimed":
		m.snap.Dispatch.Unclaimed++
	case "cancelled":
		m.snap.Dispatch.Cancelled++
	case "timeout":
		m.snap.Dispatch.Failed++
		m.snap.Dispatch.Timeouts++
	default:
		m.snap.Dispatch.Failed++
	}

	m.buckets[latencyBucketIndex(latencyMs)]++
	m.snap.Dispatch.P95ProxyLatencyMs = p95ProxyFromBuckets(m.buckets, m.snap.Dispatch.Total)

	snapshot := m.snap
	m.mu.Unlock()

	return snapshot, persistDispatchSnapshot(m.path, snapshot)
}

// ReadDispatchSnapshot reads the persisted snapshot from workspace state.
// If no file exists yet, it returns a zero-value snapshot and nil error.
func ReadDispatchSnapshot(workspacePath string) (DispatchSnapshot, error) {
	path := dispatchMetricsPath(workspacePath)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DispatchSnapshot{}, nil
		}
		return DispatchSnapshot{}, fmt.Errorf("read dispatch metrics: %w", err)
	}

	var snap DispatchSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return DispatchSnapshot{}, fmt.Errorf("decode dispatch metrics: %w", err)
	}
	return snap, nil
}

func dispatchMetricsPath(workspacePath string) string {
	return filepath.Join(workspacePath, ".warden", "state", dispatchMetricsFileName)
}

func persistDispatchSnapshot(path string, snapshot DispatchSnapshot) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dispatch metrics dir: %w", err)
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode dispatch metrics: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, payload, 0o644); err != nil {
		return fmt.Errorf("write dispatch metrics temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("rename dispatch metrics file: %w", err)
	}
	return nil
}

func latencyBucketIndex(latencyMs int64) int {
	for i, upper := range latencyBucketUpperBoundsMs {
		if latencyMs <= upper {
			return i
		}
	}
	return len(latencyBucketUpperBoundsMs)
}

func p95ProxyFromBuckets(buckets []int64, total int64) int64 {
	if total <= 0 {
		return 0
	}
	target := int64(float64(total) * 0.95)
	if target <= 0 {
		target = 1
	}

	var cumulative int64
	for i, count := range buckets {
		cumulative += count
		if cumulative < target {
			continue
		}
		if i >= len(latencyBucketUpperBoundsMs) {
			return latencyBucketUpperBoundsMs[len(latencyBucketUpperBoundsMs)-1]
		}
		return latencyBucketUpperBoundsMs[i]
	}
	return latencyBucketUpperBoundsMs[len(latencyBucketUpperBoundsMs)-1]
}
