package credentials

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/harunote/harunote-go/pkg/logger"
)

const (
	// DefaultEventBufferSize is the default buffer size for subscriber channels.
	DefaultEventBufferSize = 16
)

// Store is the process-wide holder of the current session.
// All writes go through Set, Rotate, or Clear and are serialized on a single
// mutex, so the visible state is always the most recently completed write and
// no observer can see a partially updated session.
type Store struct {
	mu      sync.RWMutex
	current Session

	subMu   sync.RWMutex
	subs    []chan Event
	bufSize int

	logger *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithEventBufferSize sets the buffer size for subscriber channels.
// Default is 16. Events to a full subscriber channel are dropped rather than
// blocking the writer.
func WithEventBufferSize(size int) StoreOption {
	return func(s *Store) {
		if size > 0 {
			s.bufSize = size
		}
	}
}

// WithLogger configures structured logging for the store.
// Use slog.New(slog.NewTextHandler(io.Discard, nil)) to disable logging.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates an empty anonymous store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		bufSize: DefaultEventBufferSize,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set atomically replaces all session fields. It is the sign-in write point
// and requires a fully populated authenticated session.
func (s *Store) Set(sess Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	if !sess.IsAuthenticated() {
		return fmt.Errorf("%w: Set requires an authenticated session", ErrInvalidSession)
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	s.logger.Debug("session installed",
		logger.Component("credentials"),
		logger.UserID(sess.UserID),
		slog.String("role", string(sess.Role)))
	s.publish(Event{Kind: EventSignedIn, Session: sess})
	return nil
}

// Rotate rewrites only the token pair, leaving user id, role, and email
// untouched. It is the refresh-success write point and fails on an anonymous
// store: the client never holds a refresh token without an access-token
// lineage.
func (s *Store) Rotate(accessToken, refreshToken string) error {
	if accessToken == "" || refreshToken == "" {
		return ErrMissingTokenPair
	}

	s.mu.Lock()
	if !s.current.IsAuthenticated() {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	s.current.AccessToken = accessToken
	s.current.RefreshToken = refreshToken
	snapshot := s.current
	s.mu.Unlock()

	s.logger.Debug("token pair rotated", logger.Component("credentials"))
	s.publish(Event{Kind: EventRotated, Session: snapshot})
	return nil
}

// Read returns an immutable snapshot of the current session.
func (s *Store) Read() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Clear atomically removes all session fields. It is the logout and
// refresh-failure write point. Clearing an already-empty store is a no-op
// and emits no event.
func (s *Store) Clear() {
	s.mu.Lock()
	wasAnonymous := s.current.IsAnonymous()
	s.current = Session{}
	s.mu.Unlock()

	if wasAnonymous {
		return
	}

	s.logger.Debug("session cleared", logger.Component("credentials"))
	s.publish(Event{Kind: EventCleared, Session: Session{}})
}

// Subscribe returns a channel that receives an Event for every completed
// store transition. The channel is buffered; if a subscriber falls behind,
// events are dropped rather than blocking writers.
func (s *Store) Subscribe() <-chan Event {
	ch := make(chan Event, s.bufSize)
	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()
	return ch
}

func (s *Store) publish(e Event) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- e:
		default:
			s.logger.Debug("event dropped, subscriber buffer full",
				logger.Component("credentials"),
				logger.Event(string(e.Kind)))
		}
	}
}
