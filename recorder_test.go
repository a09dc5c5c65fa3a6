package keepalive

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestEchoName(t *testing.T) {
	e := NewEcho(&bytes.Buffer{}, discardLogger())
	if e.Name() != "echo" {
		t.Errorf("Name() = %q, want %q", e.Name(), "echo")
	}
}

func TestEchoRecord(t *testing.T) {
	var buf bytes.Buffer
	e := NewEcho(&buf, discardLogger())

	if err := e.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	batch := []Outcome{
		{Timestamp: ts, Success: true, StatusCode: 200, Latency: 120 * time.Millisecond},
		{Timestamp: ts.Add(time.Minute), Success: false, StatusCode: 503, Reason: ReasonBadStatus, Latency: 80 * time.Millisecond},
	}

	if err := e.Record(context.Background(), batch); err != nil {
		t.Fatalf("Record() error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "ok status=200") {
		t.Errorf("line 1 = %q, want success marker", lines[0])
	}
	if !strings.Contains(lines[1], "fail reason=bad_status status=503") {
		t.Errorf("line 2 = %q, want failure marker", lines[1])
	}
}

func TestEchoRecordNotInitialized(t *testing.T) {
	e := &Echo{logger: discardLogger()}

	err := e.Record(context.Background(), []Outcome{{Success: true}})
	if err == nil {
		t.Error("Record() should error when writer is unset")
	}
}

func TestEchoEmptyBatch(t *testing.T) {
	var buf bytes.Buffer
	e := NewEcho(&buf, discardLogger())

	if err := e.Record(context.Background(), nil); err != nil {
		t.Errorf("Record() error for empty batch: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Empty batch should write nothing, got %q", buf.String())
	}
}

func TestEchoClose(t *testing.T) {
	e := NewEcho(&bytes.Buffer{}, discardLogger())

	if !e.Healthy() {
		t.Error("Echo should start healthy")
	}
	if err := e.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
	if e.Healthy() {
		t.Error("Echo should not be healthy after Close")
	}
}

func TestMultiRecorder(t *testing.T) {
	r1 := &mockRecorder{name: "first", healthy: true}
	r2 := &mockRecorder{name: "second", healthy: true}
	m := NewMultiRecorder(r1, r2)

	if m.Name() != "multi" {
		t.Errorf("Name() = %q, want %q", m.Name(), "multi")
	}

	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	batch := []Outcome{{Success: true, StatusCode: 200}}
	if err := m.Record(context.Background(), batch); err != nil {
		t.Fatalf("Record() error: %v", err)
	}

	if r1.recorded() != 1 || r2.recorded() != 1 {
		t.Errorf("Both recorders should receive the batch, got %d and %d",
			r1.recorded(), r2.recorded())
	}

	if !m.Healthy() {
		t.Error("Healthy() should be true when all recorders are healthy")
	}

	r2.healthy = false
	if m.Healthy() {
		t.Error("Healthy() should be false when any recorder is unhealthy")
	}

	if err := m.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

func TestMultiRecorderInitializeError(t *testing.T) {
	bad := &mockRecorder{name: "bad", initErr: context.DeadlineExceeded}
	m := NewMultiRecorder(&mockRecorder{name: "good", healthy: true}, bad)

	if err := m.Initialize(context.Background()); err == nil {
		t.Error("Initialize() should propagate recorder errors")
	}
}
