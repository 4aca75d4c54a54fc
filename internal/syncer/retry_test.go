package syncer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/abhisek/mlmathr/internal/progress"
	"github.com/abhisek/mlmathr/internal/remote"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

// scripted returns the errors in order, then succeeds.
func scripted(errs ...error) (fn func(context.Context) (int, error), calls *int) {
	n := 0
	return func(context.Context) (int, error) {
		n++
		if n <= len(errs) {
			return 0, errs[n-1]
		}
		return 42, nil
	}, &n
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	fn, calls := scripted()

	v, err := withRetry(context.Background(), retryConfig(), fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 42 {
		t.Fatalf("unexpected value: %d", v)
	}
	if *calls != 1 {
		t.Fatalf("expected 1 call, got %d", *calls)
	}
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	fn, calls := scripted(errors.New("connection reset"))

	v, err := withRetry(context.Background(), retryConfig(), fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 42 {
		t.Fatalf("unexpected value: %d", v)
	}
	if *calls != 2 {
		t.Fatalf("expected 2 calls, got %d", *calls)
	}
}

func TestRetry_AllAttemptsFail(t *testing.T) {
	down := errors.New("down")
	fn, calls := scripted(down, down, down, down)

	_, err := withRetry(context.Background(), retryConfig(), fn)
	if !errors.Is(err, down) {
		t.Fatalf("expected last error, got %v", err)
	}
	if *calls != 3 {
		t.Fatalf("expected 3 calls, got %d", *calls)
	}
}

func TestRetry_DefinitiveErrorsNotRetried(t *testing.T) {
	tests := []error{
		remote.ErrNotFound,
		remote.ErrAlreadyExists,
		fmt.Errorf("decode: %w", progress.ErrCorruptData),
		context.Canceled,
	}
	for _, want := range tests {
		t.Run(want.Error(), func(t *testing.T) {
			fn, calls := scripted(want)
			_, err := withRetry(context.Background(), retryConfig(), fn)
			if !errors.Is(err, want) {
				t.Fatalf("expected %v, got %v", want, err)
			}
			if *calls != 1 {
				t.Fatalf("expected 1 call, got %d", *calls)
			}
		})
	}
}

func TestRetry_ContextCancelledDuringWait(t *testing.T) {
	cfg := retryConfig()
	cfg.InitialWait = time.Hour
	cfg.MaxWait = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	fn := func(context.Context) (int, error) {
		cancel()
		return 0, errors.New("down")
	}

	_, err := withRetry(ctx, cfg, fn)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBackoff_CappedAtMaxWait(t *testing.T) {
	cfg := RetryConfig{InitialWait: time.Second, MaxWait: 2 * time.Second, Multiplier: 10}
	for attempt := range 5 {
		got := cfg.backoff(attempt)
		// MaxWait plus 20% jitter.
		if got > 2400*time.Millisecond {
			t.Fatalf("attempt %d: backoff %v exceeds cap", attempt, got)
		}
	}
}
