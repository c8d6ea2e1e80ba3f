package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider is a decorator that retries transient errors with
// exponential backoff and jitter.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Name() string { return r.inner.Name() }

func (r *RetryProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	var lastErr error
	malformedRetried := false

	for attempt := range r.config.MaxAttempts {
		reply, err := r.inner.Chat(ctx, messages)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		if !r.shouldRetry(err, &malformedRetried) {
			return "", err
		}

		// No sleep after the last attempt.
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		wait := r.backoff(attempt, err)
		select {
		case <-ctx.Done():
			// A deadline expiring between attempts is still an upstream
			// timeout; cancellation passes through untouched.
			return "", mapTransportError(ctx.Err())
		case <-time.After(wait):
		}
	}

	return "", lastErr
}

// shouldRetry determines if an error is retryable.
func (r *RetryProvider) shouldRetry(err error, malformedRetried *bool) bool {
	// Context errors are never retried.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var ue *UpstreamError
	if errors.As(err, &ue) {
		switch ue.Kind {
		// A bad credential won't heal on retry.
		case KindAuth:
			return false
		// A malformed response gets one retry.
		case KindMalformed:
			if *malformedRetried {
				return false
			}
			*malformedRetried = true
			return true
		}
	}

	// Rate limits, unavailable endpoints and unknown network errors are
	// treated as transient.
	return true
}

// backoff computes the wait duration for the given attempt.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	// Respect RetryAfter for rate limits.
	var ue *UpstreamError
	if errors.As(err, &ue) && ue.Kind == KindRateLimit && ue.RetryAfter > 0 {
		return ue.RetryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// Add ±20% jitter.
	jitter := wait * 0.2 * (2*rand.Float64() - 1)
	wait += jitter

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
