package keepalive

import (
	"fmt"
	"time"
)

// FailureReason classifies why a ping failed.
type FailureReason int

const (
	// ReasonNone means the ping succeeded.
	ReasonNone FailureReason = iota

	// ReasonTimeout means no response arrived within the request timeout.
	ReasonTimeout

	// ReasonConnection means the request failed at the network level
	// before any response was received.
	ReasonConnection

	// ReasonBadStatus means a response arrived with a status code outside
	// the success range.
	ReasonBadStatus

	// ReasonUnknown covers every other failure.
	ReasonUnknown
)

// String returns the reason as a short lowercase label.
func (r FailureReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonTimeout:
		return "timeout"
	case ReasonConnection:
		return "connection_error"
	case ReasonBadStatus:
		return "bad_status"
	case ReasonUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Outcome is the immutable result of a single health check.
type Outcome struct {
	Timestamp  time.Time
	Success    bool
	Latency    time.Duration
	StatusCode int
	Reason     FailureReason
	Err        string
}

// Message returns a one-line human-readable summary of the outcome.
func (o Outcome) Message() string {
	if o.Success {
		return fmt.Sprintf("site is online (HTTP %d, %v)", o.StatusCode, o.Latency.Round(time.Millisecond))
	}

	switch o.Reason {
	case ReasonTimeout:
		return "request timed out"
	case ReasonConnection:
		if o.Err != "" {
			return fmt.Sprintf("connection error: %s", o.Err)
		}
		return "connection error"
	case ReasonBadStatus:
		return fmt.Sprintf("unexpected status: HTTP %d", o.StatusCode)
	default:
		if o.Err != "" {
			return fmt.Sprintf("unexpected error: %s", o.Err)
		}
		return "unexpected error"
	}
}
