package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/harunote/harunote-go/core/credentials"
	"github.com/harunote/harunote-go/pkg/logger"
)

// Client is a JSON-over-HTTP API client routed through the authenticated
// pipeline. The diary CRUD layer talks to the service exclusively through it;
// token attachment, rotation, and the single 401 retry are invisible here.
type Client struct {
	httpClient *http.Client
	baseURL    string
	refresher  *Refresher
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*clientDeps)

type clientDeps struct {
	base      *http.Client
	logger    *slog.Logger
	transport []TransportOption
}

// WithHTTPClient sets the base HTTP client whose transport the pipeline
// wraps. The same client (unwrapped) performs refresh exchanges.
func WithHTTPClient(client *http.Client) Option {
	return func(d *clientDeps) {
		if client != nil {
			d.base = client
		}
	}
}

// WithLogger configures structured logging for the client, its transport,
// and its refresher.
func WithLogger(log *slog.Logger) Option {
	return func(d *clientDeps) {
		if log != nil {
			d.logger = log
		}
	}
}

// WithTransportOptions forwards extra options to the underlying Transport.
func WithTransportOptions(opts ...TransportOption) Option {
	return func(d *clientDeps) {
		d.transport = append(d.transport, opts...)
	}
}

// New creates an API client for the given configuration and credential store.
func New(cfg Config, store *credentials.Store, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	deps := &clientDeps{
		base:   &http.Client{Timeout: cfg.Timeout},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(deps)
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	refresher := NewRefresher(store, baseURL+cfg.RefreshPath,
		WithRefresherHTTPClient(deps.base),
		WithRefresherLeeway(cfg.RefreshLeeway),
		WithRefresherLogger(deps.logger),
	)

	transportOpts := append([]TransportOption{
		WithBaseTransport(deps.base.Transport),
		WithTransportLogger(deps.logger),
	}, deps.transport...)

	return &Client{
		httpClient: &http.Client{
			Transport: NewTransport(store, refresher, transportOpts...),
			Timeout:   cfg.Timeout,
		},
		baseURL:   baseURL,
		refresher: refresher,
		logger:    deps.logger,
	}, nil
}

// HTTPClient exposes the pipeline-wired *http.Client for callers that need
// raw request control (file uploads, streaming). Every request through it
// still gets token attachment and the single 401 retry.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Refresher exposes the token refresher, mainly so the UI layer can rotate
// proactively on app resume.
func (c *Client) Refresher() *Refresher {
	return c.refresher
}

// Get performs a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST request with a JSON body and decodes the response.
// Either in or out may be nil.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, in, out)
}

// Put performs a PUT request with a JSON body and decodes the response.
func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPut, path, in, out)
}

// Delete performs a DELETE request, ignoring any response body.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	// Rotate before a guaranteed 401 when the token's expiry is known.
	// Failure here already tore down the session; the request proceeds
	// anonymously and surfaces the service's verdict.
	if c.refresher.NeedsRefresh() {
		if _, err := c.refresher.Refresh(ctx); err != nil {
			c.logger.Debug("proactive refresh failed",
				logger.Component("apiclient"),
				logger.Error(err))
		}
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Join(ErrNetworkFailure, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// decodeError builds an *Error from a non-2xx response, picking up the
// service's "detail" message when the body carries one.
func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&payload); err == nil {
		apiErr.Message = payload.Detail
	}
	return apiErr
}
