package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingBaseURL indicates the client was built without a base URL.
	ErrMissingBaseURL = errors.New("missing API base URL")

	// ErrInvalidBaseURL indicates the base URL could not be parsed.
	ErrInvalidBaseURL = errors.New("invalid API base URL")

	// ErrMissingRefreshToken is returned when a refresh is attempted while
	// no refresh token is stored. It tears down the session like any other
	// refresh failure.
	ErrMissingRefreshToken = errors.New("no refresh token stored")

	// ErrRefreshRejected is returned when the token-exchange endpoint
	// rejects the refresh token. The session has already been cleared.
	ErrRefreshRejected = errors.New("refresh token exchange rejected")

	// ErrNetworkFailure wraps transport-level failures that never produced
	// an HTTP response.
	ErrNetworkFailure = errors.New("network failure")
)

// Error represents a non-2xx API response surfaced to the caller.
// Message carries the service's "detail" field when present.
type Error struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
}

// IsUnauthorized reports whether err is an API error with status 401.
// After the pipeline's single retry this means the session could not be
// recovered.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}
