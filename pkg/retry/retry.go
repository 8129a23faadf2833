// Package retry implements the retry/backoff facade: a default exponential
// backoff engine (ported from the teacher's internal/retry package) and an
// alternative plain max-attempts policy engine, selected through one
// Do(ctx, Options, fn) call grounded on the original siumai crate's
// RetryBackend selector.
package retry

import (
	"context"
	"math/rand"
	"time"

	providererrors "github.com/corvidai/gollm/pkg/provider/errors"
	"golang.org/x/time/rate"
)

// Backend selects which retry engine Do uses.
type Backend int

const (
	// BackendBackoff is the default: exponential backoff with jitter.
	BackendBackoff Backend = iota
	// BackendPolicy is a simple fixed-delay, max-attempts engine.
	BackendPolicy
)

// Options configures a single Do call.
type Options struct {
	Backend Backend

	MaxRetries int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool

	// MaxElapsedTime bounds the total wall-clock time Do spends retrying,
	// measured from the first attempt. Zero means no bound. Checked before
	// each retry sleep, so an attempt already in flight always completes.
	MaxElapsedTime time.Duration

	// ShouldRetry overrides the default IsRetryable classification.
	ShouldRetry func(error) bool

	// Retry401 is not consulted by Do, and pkg/httpexec does not read it
	// either: its one-shot 401 rebuild-and-retry runs whenever the Executor
	// has a RebuildAuth func, whatever this field holds.
	Retry401 bool

	// Limiter, when set, is consulted before every attempt (including the
	// first), blocking until a token is available or ctx is done.
	Limiter *rate.Limiter
}

// DefaultOptions mirrors spec.md's retry facade defaults: 3 retries, 1s
// initial delay, 60s cap, 1.5x multiplier, jitter on, 300s max elapsed time.
func DefaultOptions() Options {
	return Options{
		Backend:        BackendBackoff,
		MaxRetries:     3,
		InitialDelay:   time.Second,
		MaxDelay:       60 * time.Second,
		Multiplier:     1.5,
		Jitter:         true,
		Retry401:       true,
		MaxElapsedTime: 300 * time.Second,
	}
}

// PolicyOptions selects the simple fixed max-attempts backend.
func PolicyOptions(maxAttempts int) Options {
	o := DefaultOptions()
	o.Backend = BackendPolicy
	o.MaxRetries = maxAttempts
	return o
}

// Func is the operation Do retries on failure.
type Func func(ctx context.Context) error

// Do executes fn, retrying according to opts until it succeeds, opts is
// exhausted, or ctx is canceled.
func Do(ctx context.Context, opts Options, fn Func) error {
	shouldRetry := opts.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = providererrors.IsRetryable
	}

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if opts.Limiter != nil {
			if err := opts.Limiter.Wait(ctx); err != nil {
				return err
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !shouldRetry(lastErr) {
			return lastErr
		}
		if attempt == opts.MaxRetries {
			break
		}

		delay := computeDelay(opts, attempt)
		if opts.MaxElapsedTime > 0 && time.Since(start)+delay > opts.MaxElapsedTime {
			break
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

func computeDelay(opts Options, attempt int) time.Duration {
	switch opts.Backend {
	case BackendPolicy:
		return opts.InitialDelay
	default:
		return calculateBackoffDelay(opts, attempt)
	}
}

// calculateBackoffDelay computes an exponential delay with 0-25% jitter,
// ported from the teacher's internal/retry.calculateDelay.
func calculateBackoffDelay(opts Options, attempt int) time.Duration {
	delay := float64(opts.InitialDelay)
	for i := 0; i < attempt; i++ {
		delay *= opts.Multiplier
	}
	if max := float64(opts.MaxDelay); delay > max {
		delay = max
	}
	if opts.Jitter {
		delay += delay * 0.25 * rand.Float64()
	}
	return time.Duration(delay)
}
