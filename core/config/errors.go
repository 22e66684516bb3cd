package config

import "errors"

var (
	// ErrNilConfig is returned when Load receives a nil configuration pointer.
	ErrNilConfig = errors.New("config: nil configuration pointer")

	// ErrParsingFailed is returned when environment variables cannot be parsed
	// into the configuration struct.
	ErrParsingFailed = errors.New("config: failed to parse environment variables")
)
