package syncer

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/abhisek/mlmathr/internal/progress"
	"github.com/abhisek/mlmathr/internal/remote"
)

// RetryConfig controls retries of transient remote errors.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig returns the retry settings used when none are given.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 250 * time.Millisecond,
		MaxWait:     5 * time.Second,
		Multiplier:  2.0,
	}
}

// withRetry calls fn until it succeeds, returns a permanent error, or the
// attempts run out. Waits use exponential backoff with jitter.
func withRetry[T any](ctx context.Context, cfg RetryConfig, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	attempts := max(cfg.MaxAttempts, 1)

	for attempt := range attempts {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !shouldRetry(err) {
			return zero, err
		}

		// Last attempt, return the error without sleeping.
		if attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(cfg.backoff(attempt)):
		}
	}

	return zero, lastErr
}

// shouldRetry determines if an error is transient.
func shouldRetry(err error) bool {
	// Context errors are never retried.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Contract answers are definitive.
	if errors.Is(err, remote.ErrNotFound) || errors.Is(err, remote.ErrAlreadyExists) {
		return false
	}
	if errors.Is(err, progress.ErrCorruptData) {
		return false
	}

	// Other errors (network, etc.) are treated as transient.
	return true
}

// backoff computes the wait duration for the given attempt.
func (c RetryConfig) backoff(attempt int) time.Duration {
	mult := c.Multiplier
	if mult < 1 {
		mult = 1
	}
	wait := float64(c.InitialWait) * math.Pow(mult, float64(attempt))
	if c.MaxWait > 0 && wait > float64(c.MaxWait) {
		wait = float64(c.MaxWait)
	}

	// Add ±20% jitter.
	jitter := wait * 0.2 * (2*rand.Float64() - 1)
	wait += jitter

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
