package keepalive

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"
)

// Pinger issues single health-check requests against a target URL.
// It performs no retries; retry cadence belongs to the Scheduler.
type Pinger struct {
	target  string
	timeout time.Duration
	client  *http.Client
}

// NewPinger creates a Pinger for the given target URL and request timeout.
// If client is nil, a default http.Client is used.
func NewPinger(target string, timeout time.Duration, client *http.Client) *Pinger {
	if client == nil {
		client = &http.Client{}
	}
	return &Pinger{
		target:  target,
		timeout: timeout,
		client:  client,
	}
}

// Target returns the URL being checked.
func (p *Pinger) Target() string {
	return p.target
}

// Check performs one GET request and classifies the result. Every failure
// path resolves to a classified Outcome; Check never returns an error.
func (p *Pinger) Check(ctx context.Context) Outcome {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out := Outcome{Timestamp: time.Now()}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.target, nil)
	if err != nil {
		out.Reason = ReasonUnknown
		out.Err = err.Error()
		return out
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	out.Latency = time.Since(start)

	if err != nil {
		out.Reason = classifyError(err)
		out.Err = err.Error()
		return out
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	io.Copy(io.Discard, resp.Body)

	out.StatusCode = resp.StatusCode
	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		out.Success = true
		out.Reason = ReasonNone
	} else {
		out.Reason = ReasonBadStatus
	}
	return out
}

func classifyError(err error) FailureReason {
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ReasonConnection
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ReasonConnection
	}

	return ReasonUnknown
}
