package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRateLimited is reported when the remote service asks the client to slow down.
	ErrRateLimited = errors.New("rate limited")

	// ErrTransport wraps connection errors and timeouts.
	ErrTransport = errors.New("transport error")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.Code, http.StatusText(e.Code))
}

// Is reports 403 and 429 responses as ErrRateLimited.
func (e *StatusError) Is(target error) bool {
	return target == ErrRateLimited && (e.Code == http.StatusForbidden || e.Code == http.StatusTooManyRequests)
}

// Retryable reports whether the status may succeed on a later attempt.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusForbidden ||
		e.Code == http.StatusTooManyRequests ||
		e.Code >= http.StatusInternalServerError
}

// retryable classifies an attempt error.
func retryable(err error) bool {
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTransport) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	return false
}
