package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDispatchMetrics_ClassifiesOutcomes(t *testing.T) {
	workspace := t.TempDir()
	recorder := NewDispatchMetrics(workspace)

	snap, err := recorder.RecordDispatch(120*time.Millisecond, "ok")
	if err != nil {
		t.Fatalf("RecordDispatch error: %v", err)
	}
	if snap.Dispatch.Total != 1 || snap.Dispatch.Completed != 1 {
		t.Fatalf("unexpected first snapshot: %+v", snap.Dispatch)
	}

	_, _ = recorder.RecordDispatch(5*time.Millisecond, "denied")
	_, _ = recorder.RecordDispatch(5*time.Millisecond, "not_whitelisted")
	_, _ = recorder.RecordDispatch(2*time.Millisecond, "unclaimed")
	_, _ = recorder.RecordDispatch(40*time.Millisecond, "cancelled")
	_, _ = recorder.RecordDispatch(2*time.Second, "timeout")
	snap, _ = recorder.RecordDispatch(300*time.Millisecond, "handler_error")

	if snap.Dispatch.Total != 7 {
		t.Fatalf("expected 7 dispatches, got %d", snap.Dispatch.Total)
	}
	if snap.Dispatch.Denied != 2 {
		t.Fatalf("expected 2 denials, got %d", snap.Dispatch.Denied)
	}
	if snap.Dispatch.Unclaimed != 1 || snap.Dispatch.Cancelled != 1 {
		t.Fatalf("unexpected unclaimed/cancelled: %+v", snap.Dispatch)
	}
	if snap.Dispatch.Failed != 2 || snap.Dispatch.Timeouts != 1 {
		t.Fatalf("expected 2 failures with 1 timeout, got failed=%d timeouts=%d",
			snap.Dispatch.Failed, snap.Dispatch.Timeouts)
	}
	if got := snap.Dispatch.DenialRatio(); got < 0.28 || got > 0.29 {
		t.Fatalf("expected denial ratio about 2/7, got %.4f", got)
	}
	if snap.Dispatch.P95ProxyLatencyMs <= 0 {
		t.Fatalf("expected p95 proxy latency > 0, got %d", snap.Dispatch.P95ProxyLatencyMs)
	}
	if snap.Dispatch.MaxLatencyMs != 2000 {
		t.Fatalf("expected max latency 2000ms, got %d", snap.Dispatch.MaxLatencyMs)
	}
}

func TestDispatchMetrics_ReadDispatchSnapshot(t *testing.T) {
	workspace := t.TempDir()
	recorder := NewDispatchMetrics(workspace)
	if _, err := recorder.RecordDispatch(99*time.Millisecond, "ok"); err != nil {
		t.Fatalf("RecordDispatch error: %v", err)
	}
	if _, err := recorder.RecordDispatch(10*time.Millisecond, "denied"); err != nil {
		t.Fatalf("RecordDispatch error: %v", err)
	}

	snap, err := ReadDispatchSnapshot(workspace)
	if err != nil {
		t.Fatalf("ReadDispatchSnapshot error: %v", err)
	}
	if snap.Dispatch.Total != 2 || snap.Dispatch.Completed != 1 || snap.Dispatch.Denied != 1 {
		t.Fatalf("unexpected loaded snapshot: %+v", snap.Dispatch)
	}
	if !snap.HasData() {
		t.Fatal("expected HasData after recording")
	}
}

func TestReadDispatchSnapshot_MissingFileIsEmpty(t *testing.T) {
	snap, err := ReadDispatchSnapshot(t.TempDir())
	if err != nil {
		t.Fatalf("ReadDispatchSnapshot error: %v", err)
	}
	if snap.HasData() {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestReadDispatchSnapshot_CorruptFileErrors(t *testing.T) {
	workspace := t.TempDir()
	path := dispatchMetricsPath(workspace)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := ReadDispatchSnapshot(workspace); err == nil {
		t.Fatal("expected decode error for corrupt metrics file")
	}
}

func TestDispatchMetrics_NilRecorderIsSafe(t *testing.T) {
	var recorder *DispatchMetrics

	snap, err := recorder.RecordDispatch(time.Second, "ok")
	if err != nil {
		t.Fatalf("RecordDispatch on nil error: %v", err)
	}
	if snap.HasData() {
		t.Fatalf("expected empty snapshot from nil recorder, got %+v", snap)
	}
	if recorder.Snapshot().HasData() {
		t.Fatal("expected empty snapshot from nil recorder")
	}
}

func TestLatencyBucketIndex_Bounds(t *testing.T) {
	if got := latencyBucketIndex(0); got != 0 {
		t.Fatalf("expected bucket 0 for 0ms, got %d", got)
	}
	if got := latencyBucketIndex(30000); got != len(latencyBucketUpperBoundsMs)-1 {
		t.Fatalf("expected last bounded bucket for 30000ms, got %d", got)
	}
	if got := latencyBucketIndex(31000); got != len(latencyBucketUpperBoundsMs) {
		t.Fatalf("expected overflow bucket for 31000ms, got %d", got)
	}
}
