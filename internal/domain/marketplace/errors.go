package marketplace

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthFailed indicates the token exchange failed. This is fatal for
	// the whole sync pass of a store.
	ErrAuthFailed = errors.New("marketplace: authentication failed")
	// ErrFetchFailed indicates a single channel fetch failed. Callers skip
	// the channel and continue with the remaining ones.
	ErrFetchFailed = errors.New("marketplace: order fetch failed")
	// ErrNotConfigured indicates the client has no usable configuration
	ErrNotConfigured = errors.New("marketplace: client not configured")
	// ErrInvalidResponse indicates the marketplace returned an unparsable body
	ErrInvalidResponse = errors.New("marketplace: invalid response")
)

// FetchError carries the HTTP status and response body of a failed
// channel fetch. It matches ErrFetchFailed in errors.Is checks.
type FetchError struct {
	Status int
	Body   string
}

// Error implements the error interface
func (e *FetchError) Error() string {
	return fmt.Sprintf("marketplace: order fetch failed with status %d: %s", e.Status, e.Body)
}

// Unwrap allows errors.Is(err, ErrFetchFailed)
func (e *FetchError) Unwrap() error {
	return ErrFetchFailed
}
