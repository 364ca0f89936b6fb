package daemon_test

import (
	"context"
	"os"
	"testing"
	"time"

	"refile/internal/config"
	"refile/internal/daemon"
	"refile/internal/logging"
	"refile/internal/testsupport"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return testsupport.NewConfig(t)
}

func TestRunServesUntilCancelled(t *testing.T) {
	cfg := testConfig(t)
	d, err := daemon.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	waitFor(t, d.Running)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run after cancel: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("daemon did not stop")
	}
	if d.Running() {
		t.Fatal("daemon should report stopped")
	}
}

func TestSecondInstanceIsRejected(t *testing.T) {
	cfg := testConfig(t)
	first, err := daemon.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- first.Run(ctx) }()
	waitFor(t, first.Running)

	second, err := daemon.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("New (second): %v", err)
	}
	if err := second.Run(context.Background()); err == nil {
		t.Fatal("second instance should fail to acquire the lock")
	}

	cancel()
	<-done

	if _, err := os.Stat(first.LockPath()); err != nil {
		t.Fatalf("lock file should still exist on disk: %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}
