package providers

import (
	"context"
	"errors"
	"time"
)

const (
	initialBackoff = 1 * time.Second
	maxBackoff     = 30 * time.Second
)

// backoff returns the wait before retry attempt n (0-based), doubling from
// initialBackoff up to maxBackoff.
func backoff(n int) time.Duration {
	d := initialBackoff << n
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}

// withRetry calls fn up to retries+1 times. Context errors end the loop.
func withRetry[T any](ctx context.Context, retries int, wait func(int) time.Duration, fn func() (T, error)) (T, error) {
	var (
		result T
		err    error
	)

	for attempt := 0; attempt <= retries; attempt++ {
		result, err = fn()
		if err == nil {
			return result, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrMissingImage) {
			return result, err
		}
		if attempt == retries {
			break
		}

		timer := time.NewTimer(wait(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return result, ctx.Err()
		case <-timer.C:
		}
	}

	return result, err
}
