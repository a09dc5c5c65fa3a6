package keepalive

import (
	"context"
	"syscall"
	"testing"
	"time"
)

func TestSignalHandlerParentCancel(t *testing.T) {
	h := NewSignalHandler(discardLogger())

	parent, cancel := context.WithCancel(context.Background())
	ctx := h.Start(parent)

	select {
	case <-ctx.Done():
		t.Fatal("Context should not be done before cancel")
	default:
	}

	cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("Context should be done after parent cancel")
	}
}

func TestSignalHandlerReload(t *testing.T) {
	h := NewSignalHandler(discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.Start(ctx)

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGHUP); err != nil {
		t.Fatalf("Kill(SIGHUP) error: %v", err)
	}

	select {
	case <-h.Reload():
	case <-time.After(time.Second):
		t.Fatal("Reload channel should receive on SIGHUP")
	}
}
