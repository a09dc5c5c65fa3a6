package keepalive

import (
	"sync"
	"time"
)

// Snapshot is a consistent copy of the live ping counters at one instant.
type Snapshot struct {
	StartedAt           time.Time
	TotalPings          int64
	Successes           int64
	Failures            int64
	ConsecutiveFailures int
	LastSuccessAt       time.Time
	LastFailureAt       time.Time
	LastCheckedAt       time.Time
	LastLatency         time.Duration
	LastStatusCode      int
	LastReason          FailureReason
}

// SuccessRate returns the fraction of successful pings as a percentage.
func (s Snapshot) SuccessRate() float64 {
	if s.TotalPings == 0 {
		return 0
	}
	return float64(s.Successes) / float64(s.TotalPings) * 100
}

// Uptime returns how long the tracker has been running.
func (s Snapshot) Uptime(now time.Time) time.Duration {
	return now.Sub(s.StartedAt)
}

// Up reports whether the most recent check succeeded.
func (s Snapshot) Up() bool {
	return s.TotalPings > 0 && s.ConsecutiveFailures == 0
}

// Tracker provides thread-safe ping statistics tracking. It also keeps a
// bounded ring of recent outcomes for history display.
type Tracker struct {
	mu     sync.RWMutex
	snap   Snapshot
	recent []Outcome
	next   int
	filled bool
}

// NewTracker creates a Tracker keeping up to historySize recent outcomes.
func NewTracker(historySize int) *Tracker {
	if historySize <= 0 {
		historySize = 50
	}
	return &Tracker{
		snap:   Snapshot{StartedAt: time.Now()},
		recent: make([]Outcome, historySize),
	}
}

// Record updates the counters from a single outcome. It returns the
// consecutive-failure count before the update and the snapshot after it,
// so callers observe the transition atomically.
func (t *Tracker) Record(o Outcome) (prevConsecutive int, snap Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prevConsecutive = t.snap.ConsecutiveFailures

	t.snap.TotalPings++
	if o.Success {
		t.snap.Successes++
		t.snap.ConsecutiveFailures = 0
		t.snap.LastSuccessAt = o.Timestamp
	} else {
		t.snap.Failures++
		t.snap.ConsecutiveFailures++
		t.snap.LastFailureAt = o.Timestamp
	}
	t.snap.LastCheckedAt = o.Timestamp
	t.snap.LastLatency = o.Latency
	t.snap.LastStatusCode = o.StatusCode
	t.snap.LastReason = o.Reason

	t.recent[t.next] = o
	t.next++
	if t.next == len(t.recent) {
		t.next = 0
		t.filled = true
	}

	return prevConsecutive, t.snap
}

// Snapshot returns a consistent copy of the current counters.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap
}

// Recent returns up to n recorded outcomes, oldest first.
func (t *Tracker) Recent(n int) []Outcome {
	t.mu.RLock()
	defer t.mu.RUnlock()

	size := t.next
	if t.filled {
		size = len(t.recent)
	}
	if n > size {
		n = size
	}
	if n <= 0 {
		return nil
	}

	out := make([]Outcome, 0, n)
	start := t.next - n
	if start < 0 {
		start += len(t.recent)
	}
	for i := 0; i < n; i++ {
		out = append(out, t.recent[(start+i)%len(t.recent)])
	}
	return out
}
