package worker_test

import (
	"testing"
	"time"

	"github.com/inkwell/bloghub/internal/queue/worker"
)

func TestExponentialBackoffGrowsAndCaps(t *testing.T) {
	prev := time.Duration(0)

	for attempt := 0; attempt < 6; attempt++ {
		d := worker.ExponentialBackoff(attempt)

		if d < prev {
			t.Fatalf("attempt %d: backoff shrank (%v < %v)", attempt, d, prev)
		}

		prev = d
	}

	// far past the cap: stays within cap plus jitter
	if d := worker.ExponentialBackoff(30); d > 5*time.Minute+time.Second {
		t.Fatalf("backoff exceeded cap: %v", d)
	}
}
