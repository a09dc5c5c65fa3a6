package keepalive

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// JournalConfig configures the outcome journal.
type JournalConfig struct {
	BatchSize     int
	FlushInterval time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	Logger        *slog.Logger
}

// Journal buffers resolved outcomes and delivers them to recorders in
// batches. Delivery failures are retried and never reach the scheduler.
type Journal struct {
	recorders     []Recorder
	batchSize     int
	flushInterval time.Duration
	retryAttempts int
	retryDelay    time.Duration

	mu     sync.Mutex
	buffer []Outcome
	done   chan struct{}
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewJournal creates a new outcome journal.
func NewJournal(cfg JournalConfig) *Journal {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 30 * time.Second
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 1 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Journal{
		recorders:     make([]Recorder, 0),
		batchSize:     cfg.BatchSize,
		flushInterval: cfg.FlushInterval,
		retryAttempts: cfg.RetryAttempts,
		retryDelay:    cfg.RetryDelay,
		buffer:        make([]Outcome, 0, cfg.BatchSize),
		done:          make(chan struct{}),
		logger:        cfg.Logger,
	}
}

// AddRecorder adds a recorder to the journal.
func (j *Journal) AddRecorder(r Recorder) {
	j.recorders = append(j.recorders, r)
}

// Start initializes the recorders and begins the background flush goroutine.
func (j *Journal) Start(ctx context.Context) error {
	for _, r := range j.recorders {
		if err := r.Initialize(ctx); err != nil {
			return err
		}
		j.logger.Info("recorder initialized", "recorder", r.Name())
	}

	j.wg.Add(1)
	go j.flushLoop(ctx)

	return nil
}

// Stop shuts down the journal, flushing remaining outcomes.
func (j *Journal) Stop(ctx context.Context) error {
	close(j.done)
	j.wg.Wait()

	if err := j.Flush(ctx); err != nil {
		j.logger.Error("final flush failed", "error", err)
	}

	var lastErr error
	for _, r := range j.recorders {
		if err := r.Close(); err != nil {
			j.logger.Error("recorder close failed", "recorder", r.Name(), "error", err)
			lastErr = err
		}
	}

	return lastErr
}

// Push adds an outcome to the journal.
func (j *Journal) Push(o Outcome) {
	j.mu.Lock()
	j.buffer = append(j.buffer, o)
	shouldFlush := len(j.buffer) >= j.batchSize
	j.mu.Unlock()

	if shouldFlush {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := j.Flush(ctx); err != nil {
				j.logger.Error("batch flush failed", "error", err)
			}
		}()
	}
}

// Flush delivers all buffered outcomes to the recorders.
func (j *Journal) Flush(ctx context.Context) error {
	j.mu.Lock()
	if len(j.buffer) == 0 {
		j.mu.Unlock()
		return nil
	}
	batch := j.buffer
	j.buffer = make([]Outcome, 0, j.batchSize)
	j.mu.Unlock()

	j.logger.Debug("flushing outcomes", "count", len(batch))

	var lastErr error
	for _, r := range j.recorders {
		if !r.Healthy() {
			j.logger.Warn("skipping unhealthy recorder", "recorder", r.Name())
			continue
		}

		if err := j.recordWithRetry(ctx, r, batch); err != nil {
			j.logger.Error("recorder write failed", "recorder", r.Name(), "error", err)
			lastErr = err
		}
	}

	return lastErr
}

func (j *Journal) recordWithRetry(ctx context.Context, r Recorder, batch []Outcome) error {
	var lastErr error
	for attempt := 1; attempt <= j.retryAttempts; attempt++ {
		err := r.Record(ctx, batch)
		if err == nil {
			return nil
		}

		lastErr = err
		if attempt < j.retryAttempts {
			j.logger.Warn("record failed, retrying",
				"recorder", r.Name(),
				"attempt", attempt,
				"error", err,
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(j.retryDelay):
			}
		}
	}
	return lastErr
}

func (j *Journal) flushLoop(ctx context.Context) {
	defer j.wg.Done()
	ticker := time.NewTicker(j.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-j.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Flush(ctx); err != nil {
				j.logger.Error("periodic flush failed", "error", err)
			}
		}
	}
}

// BufferLen returns the current buffer length.
func (j *Journal) BufferLen() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.buffer)
}

// RecorderCount returns the number of configured recorders.
func (j *Journal) RecorderCount() int {
	return len(j.recorders)
}
