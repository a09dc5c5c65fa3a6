package keepalive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Recorder defines the interface for ping-outcome sinks. Recorders receive
// batches of resolved outcomes from the journal; they never influence the
// scheduling loop.
type Recorder interface {
	// Name returns the recorder name for logging.
	Name() string

	// Initialize sets up the recorder connection.
	Initialize(ctx context.Context) error

	// Record persists a batch of outcomes.
	Record(ctx context.Context, outcomes []Outcome) error

	// Close cleanly shuts down the recorder.
	Close() error

	// Healthy returns true if the recorder is operational.
	Healthy() bool
}

// Echo is a debug recorder that writes outcomes to an io.Writer.
type Echo struct {
	writer io.Writer
	logger *slog.Logger

	mu      sync.RWMutex
	healthy bool
}

// NewEcho creates a new Echo recorder that writes to the given writer.
func NewEcho(w io.Writer, logger *slog.Logger) *Echo {
	if w == nil {
		w = os.Stdout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Echo{
		writer:  w,
		logger:  logger,
		healthy: true,
	}
}

// NewEchoStdout creates an Echo recorder that writes to stdout.
func NewEchoStdout(logger *slog.Logger) *Echo {
	return NewEcho(os.Stdout, logger)
}

func (e *Echo) Name() string {
	return "echo"
}

func (e *Echo) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.healthy = true
	e.logger.Info("echo recorder initialized")
	return nil
}

func (e *Echo) Record(ctx context.Context, batch []Outcome) error {
	e.mu.RLock()
	writer := e.writer
	e.mu.RUnlock()

	if writer == nil {
		return fmt.Errorf("echo recorder not initialized")
	}

	for _, o := range batch {
		if _, err := fmt.Fprintln(writer, formatOutcomeLine(o)); err != nil {
			return fmt.Errorf("failed to write outcome: %w", err)
		}
	}

	e.logger.Debug("echoed outcomes", "count", len(batch))
	return nil
}

func (e *Echo) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.healthy = false
	e.logger.Info("echo recorder closed")
	return nil
}

func (e *Echo) Healthy() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.healthy
}

func formatOutcomeLine(o Outcome) string {
	ts := o.Timestamp.Format(time.RFC3339)
	if o.Success {
		return fmt.Sprintf("%s ok status=%d latency=%v", ts, o.StatusCode, o.Latency.Round(time.Millisecond))
	}
	return fmt.Sprintf("%s fail reason=%s status=%d latency=%v", ts, o.Reason, o.StatusCode, o.Latency.Round(time.Millisecond))
}

// MultiRecorder wraps multiple recorders and writes to all of them.
type MultiRecorder struct {
	recorders []Recorder
}

// NewMultiRecorder creates a recorder that writes to multiple destinations.
func NewMultiRecorder(recorders ...Recorder) *MultiRecorder {
	return &MultiRecorder{recorders: recorders}
}

func (m *MultiRecorder) Name() string {
	return "multi"
}

func (m *MultiRecorder) Initialize(ctx context.Context) error {
	for _, r := range m.recorders {
		if err := r.Initialize(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiRecorder) Record(ctx context.Context, batch []Outcome) error {
	var lastErr error
	for _, r := range m.recorders {
		if err := r.Record(ctx, batch); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (m *MultiRecorder) Close() error {
	var lastErr error
	for _, r := range m.recorders {
		if err := r.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (m *MultiRecorder) Healthy() bool {
	for _, r := range m.recorders {
		if !r.Healthy() {
			return false
		}
	}
	return true
}

// Compile-time check that Echo and MultiRecorder implement Recorder.
var (
	_ Recorder = (*Echo)(nil)
	_ Recorder = (*MultiRecorder)(nil)
)
