package apiclient

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds API client configuration, loadable through core/config.
type Config struct {
	// BaseURL is the root of the diary service API, e.g. "http://localhost:8000".
	BaseURL string `env:"HARUNOTE_API_BASE_URL,required"`

	// Timeout bounds every outbound call, including the refresh exchange.
	// A call that never resolves must not block its caller indefinitely.
	Timeout time.Duration `env:"HARUNOTE_API_TIMEOUT" envDefault:"30s"`

	// RefreshPath is the token-exchange endpoint, relative to BaseURL.
	RefreshPath string `env:"HARUNOTE_API_REFRESH_PATH" envDefault:"/refresh-token"`

	// RefreshLeeway triggers proactive rotation when the access token
	// expires within this window. Zero disables the proactive path;
	// opaque (non-JWT) tokens always fall back to the reactive 401 path.
	RefreshLeeway time.Duration `env:"HARUNOTE_API_REFRESH_LEEWAY" envDefault:"30s"`
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidBaseURL, c.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("%w: %s", ErrInvalidBaseURL, c.BaseURL)
	}
	return nil
}
