package engine

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"time"
)

// RetryConfig controls retry behavior.
type RetryConfig struct {
	MaxRetries  int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64

	// Retryable decides whether err is worth another attempt. nil = IsRateLimited.
	Retryable func(error) bool
	// Sleep waits d or until ctx is done. nil = timer-based wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

// RateLimitRetryConfig retries rate-limited LLM calls: 3 attempts total,
// waiting 2^attempt seconds (1s, 2s) between them.
var RateLimitRetryConfig = RetryConfig{
	MaxRetries:  2,
	InitialWait: time.Second,
	MaxWait:     time.Minute,
	Multiplier:  2.0,
}

// RetryDo retries fn up to MaxRetries times with exponential backoff.
// Retries only on retryable errors; returns immediately on non-retryable or context cancellation.
func RetryDo[T any](ctx context.Context, rc RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	retryable := rc.Retryable
	if retryable == nil {
		retryable = IsRateLimited
	}
	sleep := rc.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	for attempt := 0; attempt <= rc.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !retryable(err) {
			return zero, err
		}

		if attempt < rc.MaxRetries {
			wait := BackoffWait(rc, attempt)
			slog.Debug("retrying", slog.Int("attempt", attempt+1), slog.Duration("wait", wait), slog.Any("error", err))
			if err := sleep(ctx, wait); err != nil {
				return zero, err
			}
		}
	}
	return zero, lastErr
}

// BackoffWait returns the wait before retry number attempt+1.
func BackoffWait(rc RetryConfig, attempt int) time.Duration {
	wait := time.Duration(float64(rc.InitialWait) * math.Pow(rc.Multiplier, float64(attempt)))
	if rc.MaxWait > 0 && wait > rc.MaxWait {
		wait = rc.MaxWait
	}
	return wait
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRateLimited reports whether err carries ErrRateLimited.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsTransientStatus reports server-side statuses the transport retries (502/503/504).
func IsTransientStatus(code int) bool {
	switch code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
