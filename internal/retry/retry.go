// Package retry wraps fallible operations with a bounded exponential
// backoff. Each call site carries its own strategy because the retry classes
// differ: network errors, provider rate limits and malformed responses all
// get different budgets.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Strategy bounds the retries of a single operation.
type Strategy struct {
	// MaxAttempts counts the first call, so MaxAttempts=3 allows 2 retries.
	MaxAttempts uint64
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Retryable decides whether an error is worth another attempt. A nil
	// predicate retries everything.
	Retryable func(error) bool
}

// Do runs op under the strategy. It returns nil on the first success, or the
// last error once attempts are exhausted, the context is cancelled, or the
// predicate marks an error permanent. Backoff sleeps suspend only the calling
// goroutine.
func (s Strategy) Do(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.BaseDelay
	bo.MaxInterval = s.MaxDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0

	attempts := s.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}

	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if s.Retryable != nil && !s.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.Retry(wrapped, backoff.WithContext(backoff.WithMaxRetries(bo, attempts-1), ctx))
}
