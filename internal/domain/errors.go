package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrPayloadTooLarge  = errors.New("payload too large")
	ErrForbidden        = errors.New("forbidden")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrRateLimited      = errors.New("rate limited")
	ErrUpstream         = errors.New("upstream failure")
	ErrInternal         = errors.New("internal error")
)

// UpstreamError carries the diagnostic of a failed completion call.
// Body is for server-side logs only and must never reach the caller.
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode > 0:
		return fmt.Sprintf("upstream status %d: %v", e.StatusCode, e.Err)
	case e.Err != nil:
		return "upstream: " + e.Err.Error()
	default:
		return fmt.Sprintf("upstream status %d", e.StatusCode)
	}
}

// Unwrap lets errors.Is match both ErrUpstream and the underlying cause.
func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstream}
	}
	return []error{ErrUpstream, e.Err}
}

// Kind classifies a pipeline error for the transport boundary.
type Kind string

const (
	KindClient   Kind = "client"
	KindThrottle Kind = "throttle"
	KindUpstream Kind = "upstream"
	KindInternal Kind = "internal"
)

// KindOf maps any error onto the taxonomy. Unknown errors are internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrPayloadTooLarge),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrMethodNotAllowed):
		return KindClient
	case errors.Is(err, ErrRateLimited):
		return KindThrottle
	case errors.Is(err, ErrUpstream):
		return KindUpstream
	default:
		return KindInternal
	}
}
