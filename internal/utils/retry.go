package utils

import (
	"context"
	"time"
)

// RetryPolicy describes a bounded retry loop.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// Backoff returns the wait before the given attempt (1-based). A nil
	// Backoff never waits.
	Backoff func(attempt int) time.Duration
	// Retryable decides whether err is worth another attempt. Nil retries
	// every error.
	Retryable func(err error) bool
	// OnRetry is called after a failed attempt that will be retried.
	OnRetry func(attempt int, err error)
	// Sleep defaults to utils.Sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// ConstantBackoff waits d before every attempt.
func ConstantBackoff(d time.Duration) func(int) time.Duration {
	return func(int) time.Duration { return d }
}

// Do runs fn until it succeeds, the attempts are exhausted, the error is not
// retryable, or ctx is done. It returns the last error.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if p.Backoff != nil {
			if wait := p.Backoff(attempt); wait > 0 {
				if serr := sleep(ctx, wait); serr != nil {
					if err != nil {
						return err
					}
					return serr
				}
			}
		}

		err = fn(ctx, attempt)
		if err == nil {
			return nil
		}
		if attempt == attempts || (p.Retryable != nil && !p.Retryable(err)) {
			return err
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}
	}
	return err
}
