package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for catalog operations.
var (
	// ErrServerOffline indicates the catalog API is unreachable.
	ErrServerOffline = errors.New("catalog server is unreachable")

	// ErrAuthFailed indicates the API key was rejected.
	ErrAuthFailed = errors.New("API key is invalid")

	// ErrNotFound indicates the requested listing does not exist.
	ErrNotFound = errors.New("listing not found")

	// ErrRateLimited indicates the catalog asked us to slow down.
	ErrRateLimited = errors.New("catalog rate limit exceeded")
)

// StatusError is a non-2xx catalog response that has no dedicated sentinel.
type StatusError struct {
	StatusCode int
	Message    string // status_message from the error body, if any
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("unexpected status code %d", e.StatusCode)
}
