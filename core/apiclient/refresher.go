package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/harunote/harunote-go/core/credentials"
	"github.com/harunote/harunote-go/pkg/logger"
)

// Refresher exchanges the stored refresh token for a new access/refresh pair.
// Refresh tokens are rotated server-side on first use, so concurrent
// exchanges would invalidate each other; a singleflight group collapses them
// into one in-flight exchange whose result all callers share.
//
// Any refresh failure tears down the session: the store is cleared and the
// caller re-authenticates. Stale credentials are never left behind.
type Refresher struct {
	store    *credentials.Store
	client   *http.Client
	endpoint string
	leeway   time.Duration
	group    singleflight.Group
	logger   *slog.Logger
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

// WithRefresherHTTPClient sets the HTTP client used for the token exchange.
// It must not route through the authenticated pipeline: the exchange
// authenticates with the refresh token alone, and a 401 on the exchange
// itself must never recurse into another refresh.
func WithRefresherHTTPClient(client *http.Client) RefresherOption {
	return func(r *Refresher) {
		if client != nil {
			r.client = client
		}
	}
}

// WithRefresherLeeway sets the proactive-rotation window used by NeedsRefresh.
func WithRefresherLeeway(leeway time.Duration) RefresherOption {
	return func(r *Refresher) {
		if leeway >= 0 {
			r.leeway = leeway
		}
	}
}

// WithRefresherLogger configures structured logging for the refresher.
func WithRefresherLogger(log *slog.Logger) RefresherOption {
	return func(r *Refresher) {
		if log != nil {
			r.logger = log
		}
	}
}

// NewRefresher creates a refresher posting to the given token-exchange URL.
func NewRefresher(store *credentials.Store, endpoint string, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		store:    store,
		client:   &http.Client{Timeout: 30 * time.Second},
		endpoint: endpoint,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Refresh performs a single-flight token exchange. Concurrent callers await
// the in-flight exchange instead of issuing duplicates. On success the store
// holds the rotated pair and the post-rotation snapshot is returned. On any
// failure the store has been cleared before the error is returned.
func (r *Refresher) Refresh(ctx context.Context) (credentials.Session, error) {
	v, err, shared := r.group.Do("refresh", func() (any, error) {
		return r.exchange(ctx)
	})
	if err != nil {
		return credentials.Session{}, err
	}
	if shared {
		r.logger.Debug("refresh result shared with concurrent caller",
			logger.Component("apiclient"))
	}
	return v.(credentials.Session), nil
}

// NeedsRefresh reports whether the stored access token expires within the
// configured leeway. Opaque tokens and anonymous sessions report false;
// they rely on the reactive 401 path.
func (r *Refresher) NeedsRefresh() bool {
	if r.leeway <= 0 {
		return false
	}
	snap := r.store.Read()
	if !snap.IsAuthenticated() {
		return false
	}
	exp, ok := TokenExpiry(snap.AccessToken)
	if !ok {
		return false
	}
	return time.Until(exp) <= r.leeway
}

func (r *Refresher) exchange(ctx context.Context) (credentials.Session, error) {
	start := time.Now()

	snap := r.store.Read()
	if snap.RefreshToken == "" {
		r.store.Clear()
		return credentials.Session{}, ErrMissingRefreshToken
	}

	body, err := json.Marshal(refreshRequest{RefreshToken: snap.RefreshToken})
	if err != nil {
		r.store.Clear()
		return credentials.Session{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		r.store.Clear()
		return credentials.Session{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.store.Clear()
		r.logger.Warn("refresh exchange failed, session cleared",
			logger.Component("apiclient"),
			logger.Error(err))
		return credentials.Session{}, errors.Join(ErrNetworkFailure, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		r.store.Clear()
		r.logger.Warn("refresh token rejected, session cleared",
			logger.Component("apiclient"),
			logger.StatusCode(resp.StatusCode))
		return credentials.Session{}, fmt.Errorf("%w: status %d", ErrRefreshRejected, resp.StatusCode)
	}

	var pair tokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		r.store.Clear()
		return credentials.Session{}, errors.Join(ErrRefreshRejected, err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		r.store.Clear()
		return credentials.Session{}, ErrRefreshRejected
	}

	if err := r.store.Rotate(pair.AccessToken, pair.RefreshToken); err != nil {
		// The session was logged out while the exchange was in flight;
		// the completed logout wins.
		r.store.Clear()
		return credentials.Session{}, err
	}

	r.logger.Debug("token pair rotated",
		logger.Component("apiclient"),
		logger.Elapsed(start))
	return r.store.Read(), nil
}
