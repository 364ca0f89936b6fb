package janitor_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"refile/internal/config"
	"refile/internal/janitor"
	"refile/internal/logging"
	"refile/internal/pending"
)

func TestSweepRemovesOnlyStaleStagingDirs(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = base
	cfg.Janitor.StagingMaxAgeMinutes = 60

	stale := filepath.Join(base, "run-stale")
	fresh := filepath.Join(base, "run-fresh")
	unrelated := filepath.Join(base, "keep")
	for _, dir := range []string{stale, fresh, unrelated} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	guard := pending.NewGuard(10 * time.Millisecond)
	guard.Begin("expired-entry")
	time.Sleep(30 * time.Millisecond)

	j := janitor.New(&cfg, guard, logging.NewNop())
	j.Sweep()

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatal("stale staging dir should be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatal("fresh staging dir should survive")
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Fatal("non-staging dir should survive")
	}
	if guard.Len() != 0 {
		t.Fatalf("guard entries after sweep = %d, want 0", guard.Len())
	}
}

func TestStartRejectsNonPositiveInterval(t *testing.T) {
	cfg := config.Default()
	j := janitor.New(&cfg, pending.NewGuard(time.Second), logging.NewNop())
	if err := j.Start(0); err == nil {
		t.Fatal("Start(0) should fail")
	}
}
