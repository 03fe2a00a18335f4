package gotdoc

import (
	"context"
	"errors"
	"time"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxRetries int           // Maximum number of retry attempts after the first call
	BaseDelay  time.Duration // Delay before the first retry
	MaxDelay   time.Duration // Upper bound for any single delay
	Backoff    bool          // Double the delay after every attempt; fixed delay when false

	// OnRetry, if set, is called before sleeping ahead of a retry.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultRetryConfig returns five attempts in total with exponential backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 4,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		Backoff:    true,
	}
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// WithRetry executes fn until it succeeds, returns a non-retryable error, or
// MaxRetries retries have been spent. The last error is returned on exhaustion.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	var lastErr error
	var zero T

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !IsRetryable(err) {
			return zero, err
		}

		// Don't sleep after the last attempt
		if attempt < cfg.MaxRetries {
			delay := cfg.delay(attempt)
			if cfg.OnRetry != nil {
				cfg.OnRetry(attempt+1, delay, err)
			}

			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return zero, lastErr
}

func (cfg RetryConfig) delay(attempt int) time.Duration {
	delay := cfg.BaseDelay
	if cfg.Backoff {
		delay = cfg.BaseDelay * time.Duration(1<<attempt)
	}
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return delay
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Providers decide for their own errors, including per-request timeouts.
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}

	// Context errors are not retryable
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	return errors.Is(err, ErrEmptyResponse)
}
