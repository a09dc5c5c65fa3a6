package keepalive

import (
	"strings"
	"testing"
	"time"
)

func TestFailureReasonString(t *testing.T) {
	tests := []struct {
		reason FailureReason
		want   string
	}{
		{ReasonNone, "none"},
		{ReasonTimeout, "timeout"},
		{ReasonConnection, "connection_error"},
		{ReasonBadStatus, "bad_status"},
		{ReasonUnknown, "unknown"},
		{FailureReason(99), "reason(99)"},
	}

	for _, tt := range tests {
		if got := tt.reason.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestOutcomeMessageSuccess(t *testing.T) {
	o := Outcome{Success: true, StatusCode: 200, Latency: 137 * time.Millisecond}

	msg := o.Message()
	if !strings.Contains(msg, "online") {
		t.Errorf("Message() = %q, want online marker", msg)
	}
	if !strings.Contains(msg, "200") {
		t.Errorf("Message() = %q, want status code", msg)
	}
}

func TestOutcomeMessageFailures(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		want    string
	}{
		{"timeout", Outcome{Reason: ReasonTimeout}, "timed out"},
		{"connection", Outcome{Reason: ReasonConnection, Err: "connection refused"}, "connection refused"},
		{"connection no detail", Outcome{Reason: ReasonConnection}, "connection error"},
		{"bad status", Outcome{Reason: ReasonBadStatus, StatusCode: 503}, "HTTP 503"},
		{"unknown", Outcome{Reason: ReasonUnknown, Err: "boom"}, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.outcome.Message()
			if !strings.Contains(msg, tt.want) {
				t.Errorf("Message() = %q, want substring %q", msg, tt.want)
			}
		})
	}
}
