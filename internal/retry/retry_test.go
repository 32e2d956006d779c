package retry

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func alwaysRetry(error) bool { return true }
func neverRetry(error) bool  { return false }

func isTransient(err error) bool {
	return errors.Is(err, errTransient)
}

func TestWithBackoffSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), Config{MaxRetries: 2, BaseDelay: time.Millisecond}, func(ctx context.Context) error {
		calls++
		return nil
	}, alwaysRetry)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithBackoffRetriesTransient(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), Config{MaxRetries: 2, BaseDelay: time.Millisecond}, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	}, isTransient)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithBackoffStopsOnNonRetryable(t *testing.T) {
	calls := 0
	permanent := errors.New("permanent")
	err := WithBackoff(context.Background(), Config{MaxRetries: 3, BaseDelay: time.Millisecond}, func(ctx context.Context) error {
		calls++
		return permanent
	}, neverRetry)
	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestWithBackoffExhaustsBudget(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), Config{MaxRetries: 1, BaseDelay: time.Millisecond}, func(ctx context.Context) error {
		calls++
		return errTransient
	}, isTransient)
	require.Error(t, err)
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 2, calls)
}

func TestWithBackoffHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := WithBackoff(ctx, Config{MaxRetries: 5, BaseDelay: time.Second}, func(ctx context.Context) error {
		calls++
		return errTransient
	}, isTransient)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestHTTPStatusRetryable(t *testing.T) {
	assert.True(t, HTTPStatusRetryable(http.StatusInternalServerError))
	assert.True(t, HTTPStatusRetryable(http.StatusServiceUnavailable))
	assert.True(t, HTTPStatusRetryable(http.StatusTooManyRequests))
	assert.False(t, HTTPStatusRetryable(http.StatusBadRequest))
	assert.False(t, HTTPStatusRetryable(http.StatusUnauthorized))
	assert.False(t, HTTPStatusRetryable(http.StatusOK))
}
