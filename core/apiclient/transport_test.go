package apiclient_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harunote/harunote-go/core/apiclient"
	"github.com/harunote/harunote-go/core/credentials"
)

func newStore(t *testing.T, accessToken, refreshToken string) *credentials.Store {
	t.Helper()
	store := credentials.NewStore()
	require.NoError(t, store.Set(credentials.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       7,
		Role:         credentials.RoleUser,
		Email:        "a@b.com",
	}))
	return store
}

// refreshHandler serves the token-exchange endpoint, counting calls and
// handing out incrementing token pairs.
type refreshHandler struct {
	calls   atomic.Int64
	delay   time.Duration
	fail    bool
	counter atomic.Int64
}

func (h *refreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.calls.Add(1)
	if h.delay > 0 {
		time.Sleep(h.delay)
	}
	if h.fail {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	n := h.counter.Add(1)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"access_token":  fmt.Sprintf("T%d", n+1),
		"refresh_token": fmt.Sprintf("R%d", n+1),
	})
}

func newPipelineClient(t *testing.T, baseURL string, store *credentials.Store) *http.Client {
	t.Helper()
	refresher := apiclient.NewRefresher(store, baseURL+"/refresh-token")
	return &http.Client{Transport: apiclient.NewTransport(store, refresher)}
}

func TestTransport_BearerAttachment(t *testing.T) {
	t.Parallel()

	t.Run("attaches stored token and request id", func(t *testing.T) {
		t.Parallel()

		var gotAuth, gotRequestID string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotRequestID = r.Header.Get("X-Request-ID")
		}))
		defer srv.Close()

		store := newStore(t, "T1", "R1")
		client := newPipelineClient(t, srv.URL, store)

		resp, err := client.Get(srv.URL + "/me")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, "Bearer T1", gotAuth)
		assert.NotEmpty(t, gotRequestID)
	})

	t.Run("anonymous requests pass through without credentials", func(t *testing.T) {
		t.Parallel()

		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
		}))
		defer srv.Close()

		store := credentials.NewStore()
		client := newPipelineClient(t, srv.URL, store)

		resp, err := client.Get(srv.URL + "/blog")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Empty(t, gotAuth)
	})

	t.Run("does not mutate the caller's request", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer srv.Close()

		store := newStore(t, "T1", "R1")
		client := newPipelineClient(t, srv.URL, store)

		req, err := http.NewRequest(http.MethodGet, srv.URL+"/me", nil)
		require.NoError(t, err)

		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Empty(t, req.Header.Get("Authorization"))
	})
}

func TestTransport_RetryOn401(t *testing.T) {
	t.Parallel()

	t.Run("refreshes and resubmits exactly once", func(t *testing.T) {
		t.Parallel()

		refresh := &refreshHandler{}
		var attempts atomic.Int64

		mux := http.NewServeMux()
		mux.Handle("/refresh-token", refresh)
		mux.HandleFunc("/diary", func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			if r.Header.Get("Authorization") != "Bearer T2" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		store := newStore(t, "T1", "R1")
		client := newPipelineClient(t, srv.URL, store)

		resp, err := client.Get(srv.URL + "/diary")
		require.NoError(t, err)
		defer resp.Body.Close()

		// The caller sees a clean 200; the expired token was invisible.
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"ok":true}`, string(body))

		assert.Equal(t, int64(1), refresh.calls.Load())
		assert.Equal(t, int64(2), attempts.Load())

		snap := store.Read()
		assert.Equal(t, "T2", snap.AccessToken)
		assert.Equal(t, "R2", snap.RefreshToken)
	})

	t.Run("second 401 propagates without further retries", func(t *testing.T) {
		t.Parallel()

		refresh := &refreshHandler{}
		var attempts atomic.Int64

		mux := http.NewServeMux()
		mux.Handle("/refresh-token", refresh)
		mux.HandleFunc("/diary", func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		store := newStore(t, "T1", "R1")
		client := newPipelineClient(t, srv.URL, store)

		resp, err := client.Get(srv.URL + "/diary")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, int64(1), refresh.calls.Load())
		assert.Equal(t, int64(2), attempts.Load())
	})

	t.Run("refresh failure propagates original 401 and clears session", func(t *testing.T) {
		t.Parallel()

		refresh := &refreshHandler{fail: true}
		var attempts atomic.Int64

		mux := http.NewServeMux()
		mux.Handle("/refresh-token", refresh)
		mux.HandleFunc("/diary", func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		store := newStore(t, "T1", "R1")
		events := store.Subscribe()
		client := newPipelineClient(t, srv.URL, store)

		resp, err := client.Get(srv.URL + "/diary")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, int64(1), attempts.Load())
		assert.Equal(t, credentials.Session{}, store.Read())

		e := <-events
		assert.Equal(t, credentials.EventCleared, e.Kind)
	})

	t.Run("non-401 failures are never retried", func(t *testing.T) {
		t.Parallel()

		refresh := &refreshHandler{}
		var attempts atomic.Int64

		mux := http.NewServeMux()
		mux.Handle("/refresh-token", refresh)
		mux.HandleFunc("/diary", func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		store := newStore(t, "T1", "R1")
		client := newPipelineClient(t, srv.URL, store)

		resp, err := client.Get(srv.URL + "/diary")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, int64(0), refresh.calls.Load())
		assert.Equal(t, int64(1), attempts.Load())
		assert.Equal(t, "T1", store.Read().AccessToken)
	})

	t.Run("replayable body is resent intact", func(t *testing.T) {
		t.Parallel()

		refresh := &refreshHandler{}
		var bodies []string
		var mu sync.Mutex

		mux := http.NewServeMux()
		mux.Handle("/refresh-token", refresh)
		mux.HandleFunc("/diary", func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			mu.Lock()
			bodies = append(bodies, string(b))
			mu.Unlock()
			if r.Header.Get("Authorization") != "Bearer T2" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.WriteHeader(http.StatusCreated)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		store := newStore(t, "T1", "R1")
		client := newPipelineClient(t, srv.URL, store)

		resp, err := client.Post(srv.URL+"/diary", "application/json", strings.NewReader(`{"title":"x"}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		require.Len(t, bodies, 2)
		assert.Equal(t, bodies[0], bodies[1])
	})

	t.Run("non-replayable body is not retried", func(t *testing.T) {
		t.Parallel()

		refresh := &refreshHandler{}
		var attempts atomic.Int64

		mux := http.NewServeMux()
		mux.Handle("/refresh-token", refresh)
		mux.HandleFunc("/diary", func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		store := newStore(t, "T1", "R1")
		client := newPipelineClient(t, srv.URL, store)

		req, err := http.NewRequest(http.MethodPost, srv.URL+"/diary", nil)
		require.NoError(t, err)
		req.Body = io.NopCloser(strings.NewReader(`{"title":"x"}`))
		req.ContentLength = -1 // stream without GetBody: cannot be replayed

		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, int64(1), attempts.Load())
		assert.Equal(t, int64(0), refresh.calls.Load())
	})
}

func TestTransport_SingleFlightRefresh(t *testing.T) {
	t.Parallel()

	const concurrent = 10

	var refreshCalls, firstAttempts atomic.Int64

	mux := http.NewServeMux()
	// The exchange holds its response until every request has failed its
	// first attempt, so all concurrent 401 handlers are forced onto the
	// same in-flight refresh.
	mux.HandleFunc("/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		deadline := time.Now().Add(5 * time.Second)
		for firstAttempts.Load() < concurrent && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		time.Sleep(50 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "T2",
			"refresh_token": "R2",
		})
	})
	mux.HandleFunc("/diary", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer T1" {
			firstAttempts.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := newStore(t, "T1", "R1")
	client := newPipelineClient(t, srv.URL, store)

	var wg sync.WaitGroup
	wg.Add(concurrent)
	statuses := make([]int, concurrent)

	for i := 0; i < concurrent; i++ {
		go func(i int) {
			defer wg.Done()
			resp, err := client.Get(srv.URL + "/diary")
			if err != nil {
				return
			}
			defer resp.Body.Close()
			statuses[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	// One rotation serves all ten 401s.
	assert.Equal(t, int64(1), refreshCalls.Load())
	for i, status := range statuses {
		assert.Equal(t, http.StatusOK, status, "request %d", i)
	}
	assert.Equal(t, "T2", store.Read().AccessToken)
	assert.Equal(t, "R2", store.Read().RefreshToken)
}
