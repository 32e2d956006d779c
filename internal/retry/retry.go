package retry

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"
)

// Config holds retry configuration.
type Config struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultConfig returns a default retry configuration.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 1,
		BaseDelay:  500 * time.Millisecond,
	}
}

// WithBackoff executes operation with exponential backoff, retrying only
// while retryable reports the error as transient. The context is consulted
// between attempts so caller cancellation aborts the wait.
func WithBackoff(ctx context.Context, config Config, operation func(context.Context) error, retryable func(error) bool) error {
	var err error
	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		err = operation(ctx)
		if err == nil {
			return nil
		}

		if !retryable(err) {
			return err
		}

		if attempt == config.MaxRetries {
			return fmt.Errorf("operation failed after %d attempts: %w", config.MaxRetries+1, err)
		}

		// Exponential backoff with jitter.
		delay := config.BaseDelay * time.Duration(1<<attempt)
		delay += time.Duration(rand.Int63n(int64(config.BaseDelay)))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}

// HTTPStatusRetryable reports whether an HTTP status is worth retrying:
// server errors and rate limiting only.
func HTTPStatusRetryable(statusCode int) bool {
	return statusCode >= 500 || statusCode == http.StatusTooManyRequests
}
