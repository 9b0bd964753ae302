package providers

import (
	"math"
	"math/rand/v2"
	"time"
)

// Retry policy defaults.
const (
	DefaultMaxRetries     = 3
	DefaultBaseDelay      = 1000 * time.Millisecond
	DefaultMaxDelay       = 10000 * time.Millisecond
	DefaultJitter         = 1000 * time.Millisecond
	DefaultAttemptTimeout = 30 * time.Second
	DefaultMaxElapsed     = 15 * time.Minute
)

// RetryPolicy controls how Client retries a completion.
// It is read-only once handed to a Client.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt
	MaxRetries int

	// BaseDelay is the wait before the first retry, doubled per attempt
	BaseDelay time.Duration

	// MaxDelay caps every computed wait, jitter included
	MaxDelay time.Duration

	// Jitter is the exclusive upper bound of the random term added to each wait
	Jitter time.Duration

	// AttemptTimeout bounds a single upstream attempt; zero disables it
	AttemptTimeout time.Duration

	// MaxElapsed stops retrying once the next wait would end past this much
	// time since the first attempt; zero disables it
	MaxElapsed time.Duration
}

// DefaultRetryPolicy returns 3 retries, 1s base, 10s cap, 1s jitter, a 30s
// per-attempt timeout and a 15m overall budget.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:     DefaultMaxRetries,
		BaseDelay:      DefaultBaseDelay,
		MaxDelay:       DefaultMaxDelay,
		Jitter:         DefaultJitter,
		AttemptTimeout: DefaultAttemptTimeout,
		MaxElapsed:     DefaultMaxElapsed,
	}
}

// MaxAttempts returns MaxRetries+1, never less than one.
func (p RetryPolicy) MaxAttempts() int {
	if p.MaxRetries < 0 {
		return 1
	}
	return p.MaxRetries + 1
}

// Delay returns the wait after the zero-based attempt that just failed:
// min(BaseDelay*2^attempt + jitter, MaxDelay) with jitter in [0, Jitter).
// Without a MaxDelay the wait saturates at the largest Duration.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	wait := scaleDelay(p.BaseDelay, attempt)
	if p.Jitter > 0 && wait < math.MaxInt64-p.Jitter {
		wait += rand.N(p.Jitter)
	}
	if p.MaxDelay > 0 && wait > p.MaxDelay {
		wait = p.MaxDelay
	}
	return wait
}

// scaleDelay returns base*2^attempt, saturating instead of overflowing.
func scaleDelay(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt >= 63 || base > time.Duration(math.MaxInt64>>uint(attempt)) {
		return math.MaxInt64
	}
	return base << uint(attempt)
}

// policyBackOff adapts RetryPolicy to backoff.BackOff. The attempt index is
// owned by the Complete call that created it, so each invocation keeps its
// own count and Reset (which backoff calls after a Retry-After override)
// does not rewind the exponent.
type policyBackOff struct {
	policy  RetryPolicy
	attempt *int
}

// NextBackOff implements backoff.BackOff.
func (b policyBackOff) NextBackOff() time.Duration {
	return b.policy.Delay(*b.attempt - 1)
}

// Reset implements backoff.BackOff.
func (b policyBackOff) Reset() {}
