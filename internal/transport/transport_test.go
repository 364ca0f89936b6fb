package transport_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"refile/internal/transport"
)

func TestRetryAfterDurationUnwraps(t *testing.T) {
	base := &transport.RateLimitError{RetryAfter: 3 * time.Second}
	wrapped := fmt.Errorf("download: %w", base)

	wait, ok := transport.RetryAfterDuration(wrapped)
	if !ok {
		t.Fatal("wrapped rate-limit error should be recognized")
	}
	if wait != 3*time.Second {
		t.Fatalf("wait = %s, want 3s", wait)
	}

	if _, ok := transport.RetryAfterDuration(errors.New("boom")); ok {
		t.Fatal("plain error should not be recognized")
	}
}
