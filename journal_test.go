package keepalive

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// mockRecorder captures recorded batches for tests.
type mockRecorder struct {
	name    string
	healthy bool

	mu       sync.Mutex
	batches  [][]Outcome
	initErr  error
	recordFn func(ctx context.Context, batch []Outcome) error
}

func (r *mockRecorder) Name() string { return r.name }

func (r *mockRecorder) Initialize(ctx context.Context) error { return r.initErr }

func (r *mockRecorder) Record(ctx context.Context, batch []Outcome) error {
	if r.recordFn != nil {
		return r.recordFn(ctx, batch)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, batch)
	return nil
}

func (r *mockRecorder) Close() error { return nil }

func (r *mockRecorder) Healthy() bool { return r.healthy }

func (r *mockRecorder) recorded() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, b := range r.batches {
		total += len(b)
	}
	return total
}

func TestJournalBasic(t *testing.T) {
	rec := &mockRecorder{name: "test", healthy: true}

	j := NewJournal(JournalConfig{
		BatchSize:     100,
		FlushInterval: 1 * time.Hour,
		RetryAttempts: 1,
		RetryDelay:    1 * time.Millisecond,
	})
	j.AddRecorder(rec)

	ctx := context.Background()
	if err := j.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	if j.RecorderCount() != 1 {
		t.Errorf("RecorderCount() = %d, want 1", j.RecorderCount())
	}

	j.Push(Outcome{Timestamp: time.Now(), Success: true, StatusCode: 200})

	if j.BufferLen() != 1 {
		t.Errorf("BufferLen() = %d, want 1", j.BufferLen())
	}

	if err := j.Flush(ctx); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}

	if rec.recorded() != 1 {
		t.Errorf("recorder should have received 1 outcome, got %d", rec.recorded())
	}

	if j.BufferLen() != 0 {
		t.Errorf("BufferLen() = %d, want 0 after flush", j.BufferLen())
	}

	if err := j.Stop(ctx); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
}

func TestJournalSkipsUnhealthyRecorder(t *testing.T) {
	rec := &mockRecorder{name: "test", healthy: false}

	j := NewJournal(JournalConfig{
		BatchSize:     100,
		FlushInterval: 1 * time.Hour,
		RetryAttempts: 1,
	})
	j.AddRecorder(rec)

	ctx := context.Background()
	j.Start(ctx)

	j.Push(Outcome{Timestamp: time.Now(), Success: true})
	j.Flush(ctx)

	if rec.recorded() != 0 {
		t.Error("unhealthy recorder should be skipped")
	}

	j.Stop(ctx)
}

func TestJournalRetry(t *testing.T) {
	var mu sync.Mutex
	callCount := 0
	rec := &mockRecorder{
		name:    "test",
		healthy: true,
		recordFn: func(ctx context.Context, batch []Outcome) error {
			mu.Lock()
			defer mu.Unlock()
			callCount++
			if callCount < 3 {
				return fmt.Errorf("transient error")
			}
			return nil
		},
	}

	j := NewJournal(JournalConfig{
		BatchSize:     100,
		FlushInterval: 1 * time.Hour,
		RetryAttempts: 3,
		RetryDelay:    1 * time.Millisecond,
	})
	j.AddRecorder(rec)

	ctx := context.Background()
	j.Start(ctx)

	j.Push(Outcome{Timestamp: time.Now(), Success: true})
	if err := j.Flush(ctx); err != nil {
		t.Errorf("Flush() should succeed on third attempt, got %v", err)
	}

	mu.Lock()
	if callCount != 3 {
		t.Errorf("callCount = %d, want 3", callCount)
	}
	mu.Unlock()

	j.Stop(ctx)
}

func TestJournalInitializeError(t *testing.T) {
	rec := &mockRecorder{name: "test", initErr: fmt.Errorf("cannot connect")}

	j := NewJournal(JournalConfig{})
	j.AddRecorder(rec)

	if err := j.Start(context.Background()); err == nil {
		t.Error("Start() should fail when recorder initialization fails")
	}
}

func TestJournalFlushEmpty(t *testing.T) {
	j := NewJournal(JournalConfig{})

	if err := j.Flush(context.Background()); err != nil {
		t.Errorf("Flush() on empty buffer should not error, got %v", err)
	}
}

func TestJournalDefaults(t *testing.T) {
	j := NewJournal(JournalConfig{})

	if j.batchSize != 10 {
		t.Errorf("batchSize = %d, want 10", j.batchSize)
	}
	if j.flushInterval != 30*time.Second {
		t.Errorf("flushInterval = %v, want 30s", j.flushInterval)
	}
	if j.retryAttempts != 3 {
		t.Errorf("retryAttempts = %d, want 3", j.retryAttempts)
	}
	if j.retryDelay != 1*time.Second {
		t.Errorf("retryDelay = %v, want 1s", j.retryDelay)
	}
}
