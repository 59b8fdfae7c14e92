// Package retry provides exponential backoff with jitter for transient
// failures, honoring the retryability hints carried by AgentError.
package retry

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/deskpilot-ai/deskpilot/internal/types"
)

// Config controls the retry loop.
type Config struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// BaseDelay is the delay before the second attempt.
	BaseDelay time.Duration

	// MaxDelay caps the computed backoff.
	MaxDelay time.Duration

	// Factor is the exponential growth base.
	Factor float64

	// Jitter randomizes each delay to between 50% and 100% of its value.
	Jitter bool

	// OnRetry, when set, is called before each sleep with the failed
	// attempt number and its error.
	OnRetry func(attempt int, err error)

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// DefaultConfig mirrors the historical defaults: 3 attempts, 1s base, 60s
// cap, doubling with jitter.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    60 * time.Second,
		Factor:      2.0,
		Jitter:      true,
	}
}

// Backoff computes the delay after the given attempt (1-based).
func Backoff(attempt int, base, max time.Duration, factor float64, jitter bool) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := float64(base) * math.Pow(factor, float64(attempt-1))
	if delay > float64(max) {
		delay = float64(max)
	}

	if jitter {
		delay *= 0.5 + rand.Float64()*0.5
	}

	return time.Duration(delay)
}

// Do runs fn until it succeeds, a non-retryable error occurs, the attempt
// budget is exhausted, or the context is cancelled. The last error is
// returned; context cancellation during a sleep returns the context error.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if !types.IsRetryable(lastErr) {
			logger.DebugContext(ctx, "error is not retryable",
				"attempt", attempt,
				"error", lastErr,
			)
			return lastErr
		}

		if attempt == cfg.MaxAttempts {
			logger.ErrorContext(ctx, "all retry attempts failed",
				"attempts", cfg.MaxAttempts,
				"error", lastErr,
			)
			return lastErr
		}

		delay := Backoff(attempt, cfg.BaseDelay, cfg.MaxDelay, cfg.Factor, cfg.Jitter)
		logger.WarnContext(ctx, "attempt failed, retrying",
			"attempt", attempt,
			"max_attempts", cfg.MaxAttempts,
			"delay", delay,
			"error", lastErr,
		)

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, lastErr)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}
