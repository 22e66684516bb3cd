package harunote

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/harunote/harunote-go/core/apiclient"
	"github.com/harunote/harunote-go/core/authflow"
	"github.com/harunote/harunote-go/core/config"
	"github.com/harunote/harunote-go/core/credentials"
	"github.com/harunote/harunote-go/core/gate"
)

// Client wires the session core together: one credential store shared by the
// authenticated request pipeline, the auth flows, and the navigation gate.
// UI layers hold a single Client and consume its subsystems.
type Client struct {
	store *credentials.Store
	api   *apiclient.Client
	auth  *authflow.Service
	gate  *gate.Gate
}

// Option configures a Client.
type Option func(*deps)

type deps struct {
	store      *credentials.Store
	httpClient *http.Client
	logger     *slog.Logger
}

// WithCredentialStore supplies an externally created store, e.g. one whose
// events are already subscribed by a router.
func WithCredentialStore(store *credentials.Store) Option {
	return func(d *deps) {
		if store != nil {
			d.store = store
		}
	}
}

// WithHTTPClient sets the base HTTP client shared by all subsystems.
func WithHTTPClient(client *http.Client) Option {
	return func(d *deps) {
		if client != nil {
			d.httpClient = client
		}
	}
}

// WithLogger configures structured logging across all subsystems.
func WithLogger(log *slog.Logger) Option {
	return func(d *deps) {
		if log != nil {
			d.logger = log
		}
	}
}

// New builds a fully wired client for the given API configuration.
func New(cfg apiclient.Config, opts ...Option) (*Client, error) {
	d := &deps{
		store:  credentials.NewStore(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}

	apiOpts := []apiclient.Option{apiclient.WithLogger(d.logger)}
	authOpts := []authflow.Option{authflow.WithLogger(d.logger)}
	if d.httpClient != nil {
		apiOpts = append(apiOpts, apiclient.WithHTTPClient(d.httpClient))
		authOpts = append(authOpts, authflow.WithHTTPClient(d.httpClient))
	}

	api, err := apiclient.New(cfg, d.store, apiOpts...)
	if err != nil {
		return nil, err
	}

	return &Client{
		store: d.store,
		api:   api,
		auth:  authflow.New(cfg.BaseURL, d.store, authOpts...),
		gate:  gate.New(d.store),
	}, nil
}

// NewFromEnv builds a client from HARUNOTE_* environment variables,
// loading a .env file when one is present.
func NewFromEnv(opts ...Option) (*Client, error) {
	var cfg apiclient.Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

// Credentials returns the shared credential store.
func (c *Client) Credentials() *credentials.Store {
	return c.store
}

// API returns the authenticated API client.
func (c *Client) API() *apiclient.Client {
	return c.api
}

// Auth returns the sign-in/sign-up flow service.
func (c *Client) Auth() *authflow.Service {
	return c.auth
}

// Gate returns the navigation gate.
func (c *Client) Gate() *gate.Gate {
	return c.gate
}

// SignIn authenticates and reports where navigation should land, so a UI can
// route in one step: admins to the roster, users to the calendar.
func (c *Client) SignIn(ctx context.Context, email, password string) (gate.Route, error) {
	if _, err := c.auth.SignIn(ctx, email, password); err != nil {
		return c.gate.LandingRoute(), err
	}
	return c.gate.LandingRoute(), nil
}

// Logout tears down the session and reports the sign-in route to navigate to.
func (c *Client) Logout() gate.Route {
	c.auth.Logout()
	return gate.RouteSignIn
}
