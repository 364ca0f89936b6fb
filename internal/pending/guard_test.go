package pending_test

import (
	"testing"
	"time"

	"refile/internal/pending"
)

func TestBeginBlocksDuplicateInsideWindow(t *testing.T) {
	guard := pending.NewGuard(time.Minute)
	if !guard.Begin("file-1") {
		t.Fatal("first Begin should admit")
	}
	if guard.Begin("file-1") {
		t.Fatal("second Begin inside window should block")
	}
	if !guard.Begin("file-2") {
		t.Fatal("distinct identity should admit")
	}
}

func TestBeginAdmitsAfterWindowElapsed(t *testing.T) {
	guard := pending.NewGuard(20 * time.Millisecond)
	if !guard.Begin("file-1") {
		t.Fatal("first Begin should admit")
	}
	time.Sleep(40 * time.Millisecond)
	if !guard.Begin("file-1") {
		t.Fatal("Begin after window should admit")
	}
}

func TestReleaseAllowsResubmitInsideWindow(t *testing.T) {
	guard := pending.NewGuard(time.Minute)
	if !guard.Begin("file-1") {
		t.Fatal("first Begin should admit")
	}
	guard.Release("file-1")
	if !guard.Begin("file-1") {
		t.Fatal("Begin after Release should admit even inside window")
	}
}

func TestSweepDropsExpiredEntries(t *testing.T) {
	guard := pending.NewGuard(10 * time.Millisecond)
	guard.Begin("file-1")
	guard.Begin("file-2")
	time.Sleep(30 * time.Millisecond)
	guard.Sweep()
	if n := guard.Len(); n != 0 {
		t.Fatalf("Len after sweep = %d, want 0", n)
	}
}
