package feed

import "fmt"

// UpstreamError is a non-2xx response from the feed generation service.
// Client errors (4xx) are the caller's fault and are never retried; anything
// else is treated as a transient upstream failure.
type UpstreamError struct {
	StatusCode int
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	if e.Retryable() {
		return fmt.Sprintf("unexpected response from feed service: %d", e.StatusCode)
	}
	return fmt.Sprintf("feed service request is invalid: %d", e.StatusCode)
}

// Retryable reports whether retrying the request can help.
func (e *UpstreamError) Retryable() bool {
	return e.StatusCode >= 500
}
