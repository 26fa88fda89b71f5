package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryConfig configures Retry.
type RetryConfig struct {
	// MaxAttempts counts the first call.
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// Factor multiplies the wait after every failed attempt.
	Factor float64
	// Jitter spreads each wait by up to this fraction in either direction.
	Jitter float64
	// RetryIf reports whether err is worth another attempt.
	RetryIf func(err error) bool
	// OnRetry runs before each wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// DefaultRetryConfig returns three attempts with exponential backoff from
// 100ms.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		Factor:         2,
		Jitter:         0.1,
		RetryIf:        RetryUnlessCanceled,
	}
}

// RetryUnlessCanceled retries everything except context errors.
func RetryUnlessCanceled(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (c *RetryConfig) applyDefaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 100 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 10 * time.Second
	}
	if c.Factor < 1 {
		c.Factor = 2
	}
	if c.RetryIf == nil {
		c.RetryIf = RetryUnlessCanceled
	}
}

// Retry calls fn until it succeeds, returns an error RetryIf rejects, or
// MaxAttempts is reached. It returns fn's last error, or ctx's error when
// ctx is done first.
func Retry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	cfg.applyDefaults()

	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err = fn(ctx); err == nil {
			return nil
		}
		if !cfg.RetryIf(err) || attempt == cfg.MaxAttempts {
			return err
		}

		wait := cfg.Backoff(attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, wait)
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

// Backoff is the wait after the given failed attempt (1-based).
func (c RetryConfig) Backoff(attempt int) time.Duration {
	c.applyDefaults()
	d := float64(c.InitialBackoff) * math.Pow(c.Factor, float64(attempt-1))
	if c.Jitter > 0 {
		d += d * c.Jitter * (rand.Float64()*2 - 1)
	}
	d = math.Min(d, float64(c.MaxBackoff))
	if d <= 0 {
		return c.InitialBackoff
	}
	return time.Duration(d)
}
