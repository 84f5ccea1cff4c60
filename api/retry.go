package api

import (
	"context"
	"time"
)

// RetryPolicy decides how often and how long to wait when an operation fails.
// The dispatcher uses it for transport failures and Me uses it for server errors.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first one
	MaxAttempts int
	// Retryable reports whether a failure may be retried. Nil means never.
	Retryable func(error) bool
	// Backoff returns the wait before the k-th retry (k starts at 1)
	Backoff func(retry int) time.Duration
}

// LinearBackoff waits step × k before the k-th retry
func LinearBackoff(step time.Duration) func(int) time.Duration {
	return func(retry int) time.Duration {
		return step * time.Duration(retry)
	}
}

func (p RetryPolicy) attempts() int {
	return max(p.MaxAttempts, 1)
}

func (p RetryPolicy) delay(retry int) time.Duration {
	if p.Backoff == nil {
		return 0
	}
	return p.Backoff(retry)
}

// sleepFunc waits for d or until ctx is done
type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryNotify is called before each wait with the retry number, the error that caused it and the wait
type retryNotify func(retry int, err error, wait time.Duration)

// runWithRetry calls fn until it succeeds, the policy refuses another attempt,
// or the wait between attempts is interrupted. The last failure is returned.
func runWithRetry[T any](ctx context.Context, p RetryPolicy, sleep sleepFunc, notify retryNotify, fn func(attempt int) (T, error)) (T, error) {
	var zero T
	attempts := p.attempts()

	for attempt := 1; ; attempt++ {
		v, err := fn(attempt)
		if err == nil {
			return v, nil
		}
		if attempt >= attempts || p.Retryable == nil || !p.Retryable(err) {
			return zero, err
		}

		wait := p.delay(attempt)
		if notify != nil {
			notify(attempt, err, wait)
		}
		if serr := sleep(ctx, wait); serr != nil {
			return zero, serr
		}
	}
}
