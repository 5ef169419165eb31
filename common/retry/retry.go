// Package retry runs short-lived network calls again after transient
// failures, doubling the wait between attempts.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Config controls how Do behaves.
type Config struct {
	// MaxAttempts is the total number of calls, the first included.
	// Values below 1 mean a single call.
	MaxAttempts int
	// InitialDelay is the wait before the second attempt; each further
	// wait doubles, capped at MaxDelay.
	InitialDelay time.Duration
	MaxDelay     time.Duration
	// ShouldRetry classifies errors. Nil retries every non-nil error.
	ShouldRetry func(err error) bool
}

func (c Config) normalized() Config {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = 500 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 5 * time.Second
	}
	if c.ShouldRetry == nil {
		c.ShouldRetry = func(error) bool { return true }
	}
	return c
}

// Do calls fn until it succeeds, the error is classified non-retryable, the
// attempt budget runs out, or ctx ends. The last attempt's error is returned;
// context cancellation is joined onto it.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	cfg = cfg.normalized()

	var lastErr error
	delay := cfg.InitialDelay
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return errors.Join(lastErr, err)
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !cfg.ShouldRetry(lastErr) || attempt == cfg.MaxAttempts {
			return lastErr
		}

		slog.Debug("retrying after failure",
			"attempt", attempt, "max", cfg.MaxAttempts, "delay", delay, "err", lastErr)
		select {
		case <-ctx.Done():
			return errors.Join(lastErr, ctx.Err())
		case <-time.After(delay):
		}
		if delay *= 2; delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
}
