package keepalive

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Scheduler drives the keep-alive loop: it pings the target on a fixed
// interval, records outcomes, and evaluates alerts. Manual wake requests
// from command handlers are serialized against the scheduled loop so that
// at most one ping is in flight at any time.
type Scheduler struct {
	cfg      *Config
	cfgPath  string
	pinger   *Pinger
	tracker  *Tracker
	alerter  *Alerter
	journal  *Journal
	notifier Notifier
	client   *http.Client
	logger   *slog.Logger
	levelVar *slog.LevelVar

	recorders []Recorder
	echoMode  bool

	reloadCh chan *Config

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	loopDone chan struct{}
	inflight *inflightCheck
}

// inflightCheck lets concurrent callers wait on a ping that is already
// running and reuse its result.
type inflightCheck struct {
	done chan struct{}
	snap Snapshot
}

// New creates a Scheduler with the given options.
func New(opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		reloadCh: make(chan *Config, 1),
	}

	for _, opt := range opts {
		opt(s)
	}

	// Load config from file if path given and no config provided directly.
	if s.cfg == nil && s.cfgPath != "" {
		cfg, err := LoadConfig(s.cfgPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		s.cfg = cfg
	}

	// Apply defaults if no config at all.
	if s.cfg == nil {
		s.cfg = DefaultConfig()
	}

	// Set up logger if not provided.
	if s.logger == nil {
		s.logger, s.levelVar = NewLogger(s.cfg.Global.LogLevel)
	}

	s.pinger = NewPinger(s.cfg.Target.URL, s.cfg.Target.RequestTimeout.Duration, s.client)
	s.tracker = NewTracker(s.cfg.Global.HistorySize)
	s.alerter = NewAlerter(s.cfg.Target.URL, s.cfg.Alert.FailureThreshold, s.notifier, s.logger)

	if s.echoMode {
		s.recorders = append(s.recorders, NewEchoStdout(s.logger))
	}
	if len(s.recorders) > 0 {
		s.journal = NewJournal(JournalConfig{
			FlushInterval: s.cfg.Target.PingInterval.Duration,
			RetryAttempts: s.cfg.Global.RetryAttempts,
			RetryDelay:    s.cfg.Global.RetryDelay.Duration,
			Logger:        s.logger,
		})
		for _, r := range s.recorders {
			s.journal.AddRecorder(r)
		}
	}

	return s, nil
}

// Start begins the interval loop. It is idempotent: calling Start on a
// running scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)

	if s.journal != nil {
		if err := s.journal.Start(runCtx); err != nil {
			cancel()
			s.mu.Unlock()
			return fmt.Errorf("failed to start journal: %w", err)
		}
	}

	s.running = true
	s.cancel = cancel
	s.loopDone = make(chan struct{})
	s.mu.Unlock()

	go s.loop(runCtx)
	return nil
}

// Stop cancels the timer wait and waits for the loop to exit. An
// in-flight ping completes rather than being aborted mid-flight.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	done := s.loopDone
	s.running = false
	s.mu.Unlock()

	cancel()
	<-done

	if s.journal != nil {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer stopCancel()
		if err := s.journal.Stop(stopCtx); err != nil {
			s.logger.Error("error stopping journal", "error", err)
		}
	}
}

// Running reports whether the interval loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Checking reports whether a ping is currently in flight.
func (s *Scheduler) Checking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight != nil
}

// Status returns the current statistics snapshot without triggering a check.
func (s *Scheduler) Status() Snapshot {
	return s.tracker.Snapshot()
}

// Tracker returns the underlying statistics tracker, for read-only
// consumers such as metric exporters.
func (s *Scheduler) Tracker() *Tracker {
	return s.tracker
}

// Target returns the URL being kept alive.
func (s *Scheduler) Target() string {
	return s.pinger.Target()
}

// Interval returns the configured ping interval.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Target.PingInterval.Duration
}

// TriggerCheck forces an out-of-band check and returns the resulting
// snapshot. If a check is already in flight the caller waits for it and
// reuses its result, so concurrent triggers collapse to a single outbound
// request. The wait is bounded by ctx; on cancellation the last known
// snapshot is returned.
func (s *Scheduler) TriggerCheck(ctx context.Context) Snapshot {
	return s.check(ctx)
}

// Reload applies a new configuration to the running loop. Only the ping
// interval and log level take effect live.
func (s *Scheduler) Reload(cfg *Config) {
	select {
	case s.reloadCh <- cfg:
	default:
	}
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.loopDone)

	s.logger.Info("scheduler started",
		"target", s.pinger.Target(),
		"interval", s.cfg.Target.PingInterval.Duration,
	)

	// Immediate first check so a sleeping deployment wakes right away.
	s.runScheduled(ctx)

	ticker := time.NewTicker(s.cfg.Target.PingInterval.Duration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return

		case cfg := <-s.reloadCh:
			s.applyReload(cfg, ticker)

		case <-ticker.C:
			s.runScheduled(ctx)
			// A tick that fired while the check was in flight is
			// coalesced, never queued.
			select {
			case <-ticker.C:
			default:
			}
		}
	}
}

func (s *Scheduler) runScheduled(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.check(ctx)
}

// check performs one health check while holding the in-flight token.
// This is the only place a ping is issued; every failure is recorded as
// data and the loop never terminates because of one.
func (s *Scheduler) check(ctx context.Context) Snapshot {
	s.mu.Lock()
	if cur := s.inflight; cur != nil {
		s.mu.Unlock()
		select {
		case <-cur.done:
			return cur.snap
		case <-ctx.Done():
			return s.tracker.Snapshot()
		}
	}
	cur := &inflightCheck{done: make(chan struct{})}
	s.inflight = cur
	s.mu.Unlock()

	// The ping itself is bounded by the request timeout, not by the
	// caller: Stop should let it complete instead of aborting it.
	out := s.pinger.Check(context.Background())
	prev, snap := s.tracker.Record(out)

	if out.Success {
		s.logger.Info("ping successful",
			"status", out.StatusCode,
			"latency", out.Latency.Round(time.Millisecond),
		)
	} else {
		s.logger.Warn("ping failed",
			"reason", out.Reason.String(),
			"error", out.Err,
			"consecutive", snap.ConsecutiveFailures,
		)
	}

	if s.journal != nil {
		s.journal.Push(out)
	}

	notifyCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	s.alerter.Evaluate(notifyCtx, prev, snap)
	cancel()

	cur.snap = snap
	s.mu.Lock()
	s.inflight = nil
	s.mu.Unlock()
	close(cur.done)

	return snap
}

func (s *Scheduler) applyReload(cfg *Config, ticker *time.Ticker) {
	s.logger.Info("reloading configuration")

	s.mu.Lock()
	old := s.cfg
	s.cfg = cfg
	s.mu.Unlock()

	if cfg.Target.PingInterval.Duration != old.Target.PingInterval.Duration {
		ticker.Reset(cfg.Target.PingInterval.Duration)
		s.logger.Info("updated ping interval", "interval", cfg.Target.PingInterval.Duration)
	}

	if s.levelVar != nil && cfg.Global.LogLevel != old.Global.LogLevel {
		s.levelVar.Set(ParseLogLevel(cfg.Global.LogLevel))
		s.logger.Info("updated log level", "level", cfg.Global.LogLevel)
	}
}
