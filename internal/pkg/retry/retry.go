// Package retry runs an operation again with exponential backoff while it
// fails with a retryable error.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

const (
	defaultMaxAttempts  = 5
	defaultBaseDelay    = 5 * time.Millisecond
	defaultJitterFactor = 0.3
)

var (
	ErrInvalidMaxAttempts  = errors.New("max attempts must be positive")
	ErrNegativeBaseDelay   = errors.New("base delay must not be negative")
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
)

type config struct {
	maxAttempts  int
	baseDelay    time.Duration
	jitterFactor float64
}

// Option configures Do.
type Option func(*config) error

// Do calls fn until it succeeds, fails with an error for which retryable
// returns false, or maxAttempts is reached. The last error is returned.
// Delays: 0, base, base*2, base*4, ... plus jitter.
func Do(ctx context.Context, fn func(ctx context.Context) error, retryable func(error) bool, opts ...Option) error {
	cfg := &config{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return err
		}
	}

	var lastErr error
	for attempt := 0; attempt < cfg.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := cfg.baseDelay * time.Duration(1<<(attempt-1))
			delay += time.Duration(rand.Float64() * float64(delay) * cfg.jitterFactor) //nolint:gosec

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
	}

	return lastErr
}

// WithMaxAttempts sets the total number of calls, including the first.
func WithMaxAttempts(attempts int) Option {
	return func(c *config) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		c.maxAttempts = attempts
		return nil
	}
}

func WithBaseDelay(delay time.Duration) Option {
	return func(c *config) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}
		c.baseDelay = delay
		return nil
	}
}

func WithJitterFactor(factor float64) Option {
	return func(c *config) error {
		if factor < 0 || factor > 1 {
			return ErrInvalidJitterFactor
		}
		c.jitterFactor = factor
		return nil
	}
}
