package apiclient

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/harunote/harunote-go/core/credentials"
	"github.com/harunote/harunote-go/pkg/logger"
)

// requestIDHeader tags every outbound request for tracing.
const requestIDHeader = "X-Request-ID"

// retriedContextKey marks a request that has already been resubmitted after a
// refresh. Carrying the flag on the request context keeps the retry state
// per-request instead of mutating shared objects.
type retriedContextKey struct{}

func markRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedContextKey{}, true)
}

func isRetried(ctx context.Context) bool {
	retried, ok := ctx.Value(retriedContextKey{}).(bool)
	return ok && retried
}

// Transport is the authenticated request pipeline, implemented as an
// http.RoundTripper so any *http.Client can be wired through it.
//
// Outbound, it attaches the stored access token as a bearer credential and a
// request ID for tracing; anonymous requests pass through unmodified.
// Inbound, a 401 triggers one refresh exchange followed by exactly one
// resubmission of the original request. A 401 on the resubmission, or any
// non-401 outcome, propagates to the caller unchanged.
type Transport struct {
	base      http.RoundTripper
	store     *credentials.Store
	refresher *Refresher
	requestID func() string
	logger    *slog.Logger
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithBaseTransport sets the underlying RoundTripper.
// Default is http.DefaultTransport.
func WithBaseTransport(rt http.RoundTripper) TransportOption {
	return func(t *Transport) {
		if rt != nil {
			t.base = rt
		}
	}
}

// WithRequestIDGenerator overrides the request ID generator (default: UUID v4).
func WithRequestIDGenerator(gen func() string) TransportOption {
	return func(t *Transport) {
		if gen != nil {
			t.requestID = gen
		}
	}
}

// WithTransportLogger configures structured logging for the pipeline.
func WithTransportLogger(log *slog.Logger) TransportOption {
	return func(t *Transport) {
		if log != nil {
			t.logger = log
		}
	}
}

// NewTransport creates the authenticated request pipeline.
func NewTransport(store *credentials.Store, refresher *Refresher, opts ...TransportOption) *Transport {
	t := &Transport{
		base:      http.DefaultTransport,
		store:     store,
		refresher: refresher,
		requestID: func() string { return uuid.New().String() },
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	if snap := t.store.Read(); snap.AccessToken != "" {
		out.Header.Set("Authorization", "Bearer "+snap.AccessToken)
	}
	if out.Header.Get(requestIDHeader) == "" {
		out.Header.Set(requestIDHeader, t.requestID())
	}
	reqID := out.Header.Get(requestIDHeader)

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || isRetried(req.Context()) {
		return resp, nil
	}

	// A body that cannot be replayed cannot be retried.
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	if _, err := t.refresher.Refresh(req.Context()); err != nil {
		// The refresher has already torn down the session; the original
		// 401 propagates to the caller unchanged.
		t.logger.Debug("refresh failed, propagating 401",
			logger.Component("apiclient"),
			logger.Method(req.Method),
			logger.Path(req.URL.Path),
			logger.RequestID(reqID),
			logger.Error(err))
		return resp, nil
	}

	retry := req.Clone(markRetried(req.Context()))
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return resp, nil
		}
		retry.Body = body
	}

	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	resp.Body.Close()              //nolint:errcheck

	t.logger.Debug("resubmitting request with rotated token",
		logger.Component("apiclient"),
		logger.Method(req.Method),
		logger.Path(req.URL.Path),
		logger.RequestID(reqID),
		logger.RetryCount(1))
	return t.RoundTrip(retry)
}
