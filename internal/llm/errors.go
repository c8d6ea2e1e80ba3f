package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// UpstreamKind classifies completion-endpoint failures.
type UpstreamKind string

const (
	KindTimeout     UpstreamKind = "timeout"
	KindRateLimit   UpstreamKind = "rate_limit"
	KindAuth        UpstreamKind = "auth"
	KindUnavailable UpstreamKind = "unavailable"
	KindMalformed   UpstreamKind = "malformed"
)

// UpstreamError wraps any failure talking to a completion endpoint.
// The current turn fails; the transcript is left intact and the user
// may retry by resending.
type UpstreamError struct {
	Kind       UpstreamKind
	RetryAfter time.Duration // set for rate limits when the endpoint said so
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("completion endpoint %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("completion endpoint %s", e.Kind)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Retryable reports whether resending could plausibly succeed.
func (e *UpstreamError) Retryable() bool { return e.Kind != KindAuth }

// mapTransportError classifies a raw transport failure. Context
// cancellation passes through untouched so callers can tell a shutdown
// from an endpoint fault.
func mapTransportError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &UpstreamError{Kind: KindTimeout, Err: err}
	case errors.Is(err, context.Canceled):
		return err
	}
	return &UpstreamError{Kind: KindUnavailable, Err: err}
}

// mapStatusError classifies an HTTP status from a completion endpoint.
func mapStatusError(status int, err error) *UpstreamError {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &UpstreamError{Kind: KindAuth, Err: err}
	case status == http.StatusTooManyRequests:
		return &UpstreamError{Kind: KindRateLimit, Err: err}
	default:
		return &UpstreamError{Kind: KindUnavailable, Err: err}
	}
}
