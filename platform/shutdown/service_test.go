package shutdown

import (
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

func TestHooksRunOnSignal(t *testing.T) {
	var ran atomic.Bool
	RegisterHook(func(grace time.Duration) error {
		if grace <= 0 {
			t.Error("grace period should be positive")
		}
		ran.Store(true)
		return nil
	})

	done := make(chan struct{})
	InitShutdownService(done)

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("shutdown did not complete in time")
	}

	if !ran.Load() {
		t.Error("registered hook did not run")
	}
	if !CheckShutdown() {
		t.Error("shutdown flag should be set after the signal")
	}
}
