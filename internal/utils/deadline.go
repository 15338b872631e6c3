package utils

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is returned by WithDeadline when the task does not finish in time.
var ErrTimeout = errors.New("operation timed out")

// WithDeadline runs task and returns whichever comes first: its result or the
// deadline. The task context is cancelled when WithDeadline returns, so a
// losing task is told to stop; its eventual result is discarded.
func WithDeadline[T any](ctx context.Context, d time.Duration, task func(ctx context.Context) (T, error)) (T, error) {
	type result struct {
		val T
		err error
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		val, err := task(taskCtx)
		done <- result{val: val, err: err}
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	var zero T
	select {
	case r := <-done:
		return r.val, r.err
	case <-timer.C:
		return zero, fmt.Errorf("%w after %s", ErrTimeout, d)
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
