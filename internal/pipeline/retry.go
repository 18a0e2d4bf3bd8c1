package pipeline

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/markweave/internal/content"
)

// IsRetryable reports whether a repository error may clear up on its own.
// Missing documents, invalid ids and cancellation are final.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, content.ErrNotFound) &&
		!errors.Is(err, content.ErrInvalidID) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * baseDelay
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base)/2 + 1))
	return base + jitter
}

const MaxRetries = 3

// baseDelay is the first backoff step. Tests shorten it.
var baseDelay = time.Second

// withRetry calls fn until it succeeds, fails permanently, or runs out of
// attempts.
func withRetry[T any](ctx context.Context, onRetry func(attempt int, err error), fn func() (T, error)) (T, error) {
	var (
		v   T
		err error
	)
	for attempt := range MaxRetries {
		v, err = fn()
		if err == nil || !IsRetryable(err) {
			return v, err
		}
		if attempt == MaxRetries-1 {
			break
		}
		if onRetry != nil {
			onRetry(attempt, err)
		}
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return v, ctx.Err()
		}
	}
	return v, err
}
