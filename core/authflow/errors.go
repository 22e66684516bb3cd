package authflow

import "errors"

var (
	// ErrMissingCredentials is returned when sign-in is attempted without
	// an email or password.
	ErrMissingCredentials = errors.New("email and password are required")

	// ErrAuthRejected is returned when the service rejects the sign-in
	// credentials. The stored session, if any, is left untouched; the user
	// retries manually.
	ErrAuthRejected = errors.New("sign-in rejected")

	// ErrMalformedEmail is returned when the sign-up code request fails
	// email validation (HTTP 422).
	ErrMalformedEmail = errors.New("malformed email address")

	// ErrCodeRequestFailed is returned when the verification-code dispatch
	// fails for any other reason. The request may simply be repeated.
	ErrCodeRequestFailed = errors.New("verification code request failed")

	// ErrVerificationFailed is returned when the submitted sign-up code is
	// rejected. Terminal for that attempt; the user may restart the flow.
	ErrVerificationFailed = errors.New("verification code rejected")

	// ErrNetworkFailure wraps transport-level failures during auth flows.
	ErrNetworkFailure = errors.New("network failure")

	// ErrMalformedResponse is returned when a successful sign-in response
	// is missing required session fields.
	ErrMalformedResponse = errors.New("malformed sign-in response")
)
