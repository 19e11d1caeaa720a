package resilience

import (
	"context"
	"time"
)

// RetryPolicy defines retry behavior for transient failures.
// MaxAttempts counts the first call; Delay is fixed between attempts.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Retryable   func(error) bool
}

func NewRetryPolicy(maxAttempts int, delay time.Duration, retryable func(error) bool) RetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if delay < 0 {
		delay = 0
	}
	return RetryPolicy{MaxAttempts: maxAttempts, Delay: delay, Retryable: retryable}
}

// Do calls fn until it succeeds, returns a non-retryable error, or the
// attempt budget runs out. It reports the number of attempts made.
func (r RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	attempts := r.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for i := 1; i <= attempts; i++ {
		err = fn(ctx)
		if err == nil {
			return i, nil
		}
		if r.Retryable != nil && !r.Retryable(err) {
			return i, err
		}
		if i == attempts {
			return i, err
		}
		if r.Delay > 0 {
			timer := time.NewTimer(r.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return i, ctx.Err()
			case <-timer.C:
			}
		}
	}
	return attempts, err
}
