package keepalive

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Notifier delivers a single text message to the configured owner.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Alerter decides from stat transitions whether to notify the owner.
// Alerts are edge-triggered: a "down" message fires at most once per
// failure streak, and the state disarms on the next success.
type Alerter struct {
	target    string
	threshold int
	notifier  Notifier
	logger    *slog.Logger

	mu    sync.Mutex
	armed bool
}

// NewAlerter creates an Alerter. A nil notifier turns dispatch into a
// log-only no-op, used when no owner identity is configured.
func NewAlerter(target string, threshold int, n Notifier, logger *slog.Logger) *Alerter {
	if threshold <= 0 {
		threshold = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Alerter{
		target:    target,
		threshold: threshold,
		notifier:  n,
		logger:    logger,
	}
}

// Evaluate inspects the transition produced by one recorded outcome and
// sends at most one notification. Delivery errors are logged and
// swallowed; Evaluate never fails.
func (a *Alerter) Evaluate(ctx context.Context, prevConsecutive int, snap Snapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if snap.ConsecutiveFailures == 0 {
		if a.armed {
			a.armed = false
			a.notify(ctx, fmt.Sprintf(
				"Site recovered: %s is back online (HTTP %d) at %s",
				a.target, snap.LastStatusCode, snap.LastCheckedAt.Format(time.RFC3339),
			))
		}
		return
	}

	if !a.armed && prevConsecutive < a.threshold && snap.ConsecutiveFailures >= a.threshold {
		a.armed = true
		a.notify(ctx, fmt.Sprintf(
			"Site appears down: %s failed %d checks in a row (last: %s). Check the deployment dashboard.",
			a.target, snap.ConsecutiveFailures, snap.LastReason,
		))
	}
}

// Armed reports whether a down alert has been sent for the current streak.
func (a *Alerter) Armed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.armed
}

func (a *Alerter) notify(ctx context.Context, text string) {
	if a.notifier == nil {
		a.logger.Info("alert suppressed, no owner configured", "text", text)
		return
	}
	if err := a.notifier.Send(ctx, text); err != nil {
		a.logger.Error("failed to send alert", "error", err)
	}
}
