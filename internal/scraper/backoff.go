package scraper

import (
	"math/rand"
	"time"
)

// jitterFraction is the maximum proportional jitter added to a backoff delay.
const jitterFraction = 0.2

// BackoffDelay computes the exponential backoff delay before retry attempt
// n (0-based): base × 2^attempt, capped, plus up to jitterFraction jitter.
// The pre-jitter delay is non-decreasing in attempt and never exceeds
// cap × (1 + jitterFraction).
func BackoffDelay(base, cap time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = DefaultBackoffBase
	}
	if cap <= 0 {
		cap = DefaultBackoffCap
	}

	delay := base
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= cap {
			delay = cap
			break
		}
	}
	if delay > cap {
		delay = cap
	}

	jitter := time.Duration(rand.Int63n(int64(float64(delay)*jitterFraction) + 1))
	return delay + jitter
}
