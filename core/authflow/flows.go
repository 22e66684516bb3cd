package authflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/harunote/harunote-go/core/credentials"
	"github.com/harunote/harunote-go/pkg/logger"
)

const (
	signInPath      = "/signin"
	requestCodePath = "/signup/request-code"
	verifyCodePath  = "/signup/verify-code"
)

// Service implements the sign-in, sign-up, and logout flows.
//
// It deliberately talks to the service over a plain HTTP client, not the
// authenticated pipeline: a 401 from bad sign-in credentials must surface as
// a rejection, never trigger a token refresh against whatever session might
// already be stored.
type Service struct {
	store   *credentials.Store
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithHTTPClient sets the HTTP client used for auth calls.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		if client != nil {
			s.client = client
		}
	}
}

// WithLogger configures structured logging for the flows.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New creates the auth flow service for the given API base URL.
func New(baseURL string, store *credentials.Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	UserID       int64     `json:"user_id"`
	IsAdmin      adminFlag `json:"is_admin"`
	Email        string    `json:"email"`
}

// adminFlag absorbs the service's loose is_admin encoding (bool or string).
// The flag is interpreted exactly once, here; everywhere else the client
// branches on the closed credentials.Role enumeration.
type adminFlag bool

func (f *adminFlag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = adminFlag(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("is_admin: %q is not a boolean", s)
		}
		*f = adminFlag(parsed)
		return nil
	}
	return fmt.Errorf("is_admin: unsupported encoding %s", data)
}

// SignIn performs the password grant. On success the full session is
// installed atomically and returned; on any failure the store is exactly as
// it was before the call.
func (s *Service) SignIn(ctx context.Context, email, password string) (credentials.Session, error) {
	if email == "" || password == "" {
		return credentials.Session{}, ErrMissingCredentials
	}

	resp, err := s.postJSON(ctx, signInPath, signInRequest{Email: email, Password: password})
	if err != nil {
		return credentials.Session{}, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		s.logger.Info("sign-in rejected",
			logger.Component("authflow"),
			logger.StatusCode(resp.StatusCode))
		return credentials.Session{}, rejectionError(ErrAuthRejected, resp)
	}

	var payload signInResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return credentials.Session{}, errors.Join(ErrMalformedResponse, err)
	}
	if payload.AccessToken == "" || payload.RefreshToken == "" || payload.UserID == 0 {
		return credentials.Session{}, ErrMalformedResponse
	}

	sess := credentials.Session{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		UserID:       payload.UserID,
		Role:         credentials.RoleFromAdminFlag(bool(payload.IsAdmin)),
		Email:        payload.Email,
	}
	if err := s.store.Set(sess); err != nil {
		return credentials.Session{}, err
	}

	s.logger.Info("signed in",
		logger.Component("authflow"),
		logger.UserID(sess.UserID))
	return sess, nil
}

type signUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RequestSignUpCode asks the service to dispatch a verification code to the
// given email. It may be repeated freely until verification succeeds; the
// resend is idempotent and never touches the credential store.
func (s *Service) RequestSignUpCode(ctx context.Context, username, email, password string) error {
	resp, err := s.postJSON(ctx, requestCodePath, signUpRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		return nil
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return rejectionError(ErrMalformedEmail, resp)
	default:
		return rejectionError(ErrCodeRequestFailed, resp)
	}
}

// VerifySignUpCode finalizes account creation with the out-of-band code.
// Success (HTTP 201) does not establish a session; the caller proceeds to a
// fresh sign-in.
func (s *Service) VerifySignUpCode(ctx context.Context, code string) error {
	if code == "" {
		return fmt.Errorf("%w: empty code", ErrVerificationFailed)
	}

	endpoint := s.baseURL + verifyCodePath + "?code=" + url.QueryEscape(code)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Join(ErrNetworkFailure, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusCreated {
		return rejectionError(ErrVerificationFailed, resp)
	}
	return nil
}

// Logout clears the credential store. It is purely client-side: no server
// round-trip, cannot fail, and the store's cleared event doubles as the
// navigate-to-sign-in signal.
func (s *Service) Logout() {
	s.store.Clear()
	s.logger.Info("signed out", logger.Component("authflow"))
}

func (s *Service) postJSON(ctx context.Context, path string, in any) (*http.Response, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Join(ErrNetworkFailure, err)
	}
	return resp, nil
}

// rejectionError wraps a sentinel with the service's detail message when the
// response body carries one.
func rejectionError(sentinel error, resp *http.Response) error {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&payload); err == nil && payload.Detail != "" {
		return fmt.Errorf("%w: %s", sentinel, payload.Detail)
	}
	return fmt.Errorf("%w: status %d", sentinel, resp.StatusCode)
}
