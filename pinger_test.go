package keepalive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPingerSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Method = %q, want GET", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p := NewPinger(server.URL, 5*time.Second, nil)
	out := p.Check(context.Background())

	if !out.Success {
		t.Fatalf("Check() failed: %+v", out)
	}
	if out.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", out.StatusCode)
	}
	if out.Reason != ReasonNone {
		t.Errorf("Reason = %v, want none", out.Reason)
	}
	if out.Latency <= 0 {
		t.Errorf("Latency = %v, should be positive", out.Latency)
	}
	if out.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestPingerRedirectCountsAsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusFound)
	}))
	defer server.Close()

	// Do not follow redirects so the 302 itself is classified.
	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	p := NewPinger(server.URL, 5*time.Second, client)
	out := p.Check(context.Background())

	if !out.Success {
		t.Errorf("302 should count as success, got %+v", out)
	}
}

func TestPingerBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p := NewPinger(server.URL, 5*time.Second, nil)
	out := p.Check(context.Background())

	if out.Success {
		t.Fatal("Check() should fail on 503")
	}
	if out.Reason != ReasonBadStatus {
		t.Errorf("Reason = %v, want bad_status", out.Reason)
	}
	if out.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", out.StatusCode)
	}
}

func TestPingerTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	p := NewPinger(server.URL, 50*time.Millisecond, nil)
	out := p.Check(context.Background())

	if out.Success {
		t.Fatal("Check() should fail on timeout")
	}
	if out.Reason != ReasonTimeout {
		t.Errorf("Reason = %v, want timeout (err: %s)", out.Reason, out.Err)
	}
}

func TestPingerConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	p := NewPinger(url, 1*time.Second, nil)
	out := p.Check(context.Background())

	if out.Success {
		t.Fatal("Check() should fail against closed server")
	}
	if out.Reason != ReasonConnection {
		t.Errorf("Reason = %v, want connection_error (err: %s)", out.Reason, out.Err)
	}
	if out.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0", out.StatusCode)
	}
}

func TestPingerInvalidURL(t *testing.T) {
	p := NewPinger("http://\x00invalid", 1*time.Second, nil)
	out := p.Check(context.Background())

	if out.Success {
		t.Fatal("Check() should fail on invalid URL")
	}
	if out.Reason != ReasonUnknown {
		t.Errorf("Reason = %v, want unknown", out.Reason)
	}
}
