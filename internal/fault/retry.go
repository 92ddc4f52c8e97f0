package fault

import (
	"context"
	"math/rand"
	"time"
)

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts after the first try.
	// Default: 3
	MaxRetries int

	// InitialBackoff is the backoff before the first retry.
	// Default: 500ms
	InitialBackoff time.Duration

	// MaxBackoff caps the backoff between attempts.
	// Default: 30 seconds
	MaxBackoff time.Duration

	// Multiplier grows the backoff after each attempt.
	// Default: 2
	Multiplier float64

	// Jitter adds up to this fraction of the backoff as random delay,
	// spreading out retries from concurrent callers. Default: 0.2
	Jitter float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
		Jitter:         0.2,
	}
}

// ApplyDefaults fills unset fields with defaults.
func (c *RetryConfig) ApplyDefaults() {
	d := DefaultRetryConfig()
	if c.MaxRetries == 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.InitialBackoff == 0 {
		c.InitialBackoff = d.InitialBackoff
	}
	if c.MaxBackoff == 0 {
		c.MaxBackoff = d.MaxBackoff
	}
	if c.Multiplier == 0 {
		c.Multiplier = d.Multiplier
	}
	if c.Jitter == 0 {
		c.Jitter = d.Jitter
	}
}

// Retry runs op, retrying with exponential backoff and jitter while the
// returned error is retryable (see Category.Retryable). It stops on success,
// on a non-retryable error, when attempts are exhausted, or when ctx is
// canceled; the last error is returned.
func Retry(ctx context.Context, cfg RetryConfig, op func() error) error {
	cfg.ApplyDefaults()

	backoff := cfg.InitialBackoff
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoff
			if cfg.Jitter > 0 {
				delay += time.Duration(rand.Float64() * cfg.Jitter * float64(backoff))
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			backoff = time.Duration(float64(backoff) * cfg.Multiplier)
			if backoff > cfg.MaxBackoff {
				backoff = cfg.MaxBackoff
			}
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !Retryable(lastErr) {
			return lastErr
		}
	}

	return lastErr
}

// WithFallback runs op and returns its result, or fallback when op fails.
// The error is still returned so callers can log it.
func WithFallback[T any](fallback T, op func() (T, error)) (T, error) {
	v, err := op()
	if err != nil {
		return fallback, err
	}
	return v, nil
}
