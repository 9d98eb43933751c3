package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func fastStrategy(attempts uint64, retryable func(error) bool) Strategy {
	return Strategy{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Retryable:   retryable,
	}
}

func TestDoSucceedsWithinBudget(t *testing.T) {
	t.Parallel()

	calls := 0
	err := fastStrategy(4, nil).Do(context.Background(), func() error {
		calls++
		if calls < 4 {
			return errTransient
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 4, calls)
}

func TestDoExhaustsBudget(t *testing.T) {
	t.Parallel()

	calls := 0
	err := fastStrategy(3, nil).Do(context.Background(), func() error {
		calls++
		return errTransient
	})
	require.ErrorIs(t, err, errTransient)
	require.Equal(t, 3, calls)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	t.Parallel()

	permanent := errors.New("client error")
	calls := 0
	err := fastStrategy(5, func(err error) bool {
		return !errors.Is(err, permanent)
	}).Do(context.Background(), func() error {
		calls++
		return permanent
	})
	require.ErrorIs(t, err, permanent)
	require.Equal(t, 1, calls)
}

func TestDoRespectsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Strategy{MaxAttempts: 10, BaseDelay: 50 * time.Millisecond, MaxDelay: time.Second}.
		Do(ctx, func() error {
			calls++
			cancel()
			return errTransient
		})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}
