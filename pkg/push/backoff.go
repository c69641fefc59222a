package push

import (
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy computes the delay before a retry. Implementations must
// be safe for concurrent use; the dispatcher runs many retry loops at once.
type BackoffStrategy interface {
	// NextInterval returns the delay preceding the given retry.
	// Attempt starts at 1 for the first retry.
	NextInterval(attempt int) time.Duration
}

// ExponentialBackoff doubles the delay per retry, with optional jitter to
// spread retries from concurrent delivery tasks.
type ExponentialBackoff struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	JitterFactor    float64
}

// NextInterval returns min(InitialInterval * 2^(attempt-1), MaxInterval),
// scaled by a random factor in (1±JitterFactor) when jitter is set.
func (e ExponentialBackoff) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	initial := e.InitialInterval
	if initial == 0 {
		initial = time.Second
	}
	max := e.MaxInterval
	if max == 0 {
		max = 30 * time.Second
	}

	interval := float64(initial) * math.Pow(2, float64(attempt-1))
	if e.JitterFactor > 0 {
		interval *= 1 + (rand.Float64()*2-1)*e.JitterFactor
	}
	if interval > float64(max) {
		interval = float64(max)
	}

	return time.Duration(interval)
}

// FixedBackoff waits the same interval before every retry. Mostly useful
// in tests that need deterministic timing.
type FixedBackoff struct {
	Interval time.Duration
}

func (f FixedBackoff) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return f.Interval
}

// DefaultBackoffStrategy keeps the total retry window short. Push delivery
// is best effort; a task that cannot get through within a few seconds
// should release the dispatcher rather than hold it open.
func DefaultBackoffStrategy() BackoffStrategy {
	return ExponentialBackoff{
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		JitterFactor:    0.1,
	}
}
