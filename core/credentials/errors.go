package credentials

import "errors"

var (
	// ErrInvalidSession is returned when a session violates the presence
	// invariants (token/role pairing, missing user id).
	ErrInvalidSession = errors.New("invalid session state")

	// ErrNotAuthenticated is returned when a token rotation is attempted
	// on an anonymous store.
	ErrNotAuthenticated = errors.New("no authenticated session")

	// ErrMissingTokenPair is returned when Rotate is called without both
	// a new access token and a new refresh token.
	ErrMissingTokenPair = errors.New("access and refresh tokens are required")
)
