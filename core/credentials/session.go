package credentials

import "fmt"

// Role is the access tier derived once at sign-in.
// It is never re-derived from server payloads after session creation.
type Role string

const (
	// RoleAnonymous is the zero state before sign-in and after teardown.
	RoleAnonymous Role = "anonymous"
	// RoleUser is a regular authenticated diary owner.
	RoleUser Role = "user"
	// RoleAdmin is a moderator with the restricted admin surface.
	RoleAdmin Role = "admin"
)

// RoleFromAdminFlag maps the wire-level is_admin flag to a closed Role value.
// This is the single place the flag is interpreted; the rest of the client
// branches on Role only.
func RoleFromAdminFlag(isAdmin bool) Role {
	if isAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// Session is the complete client-side credential state.
// Sessions use value semantics: every read returns a copy, so holders can
// never observe a partial write.
type Session struct {
	// AccessToken is the bearer credential attached to API calls.
	// Empty means anonymous.
	AccessToken string

	// RefreshToken is consumed only by the token-exchange protocol.
	// It is rotated (invalidated server-side) on each use.
	RefreshToken string

	// UserID is the owner key for diary-entry scoping.
	UserID int64

	// Role is the access tier, fixed for the session's lifetime.
	Role Role

	// Email is kept for display purposes only.
	Email string
}

// IsAnonymous reports whether no credentials are held.
func (s Session) IsAnonymous() bool {
	return s.AccessToken == ""
}

// IsAuthenticated reports whether the session holds usable credentials.
func (s Session) IsAuthenticated() bool {
	return s.AccessToken != "" && s.Role != RoleAnonymous && s.Role != ""
}

// IsAdmin reports whether the session carries the admin tier.
func (s Session) IsAdmin() bool {
	return s.IsAuthenticated() && s.Role == RoleAdmin
}

// Validate checks the session presence invariants:
// an access token is held if and only if the role is not anonymous,
// a refresh token is never held without an access token, and
// authenticated sessions carry a user identifier.
func (s Session) Validate() error {
	if s.AccessToken == "" {
		if s.Role != RoleAnonymous && s.Role != "" {
			return fmt.Errorf("%w: role %q without access token", ErrInvalidSession, s.Role)
		}
		if s.RefreshToken != "" {
			return fmt.Errorf("%w: refresh token without access token", ErrInvalidSession)
		}
		return nil
	}

	switch s.Role {
	case RoleUser, RoleAdmin:
	default:
		return fmt.Errorf("%w: access token with role %q", ErrInvalidSession, s.Role)
	}
	if s.UserID == 0 {
		return fmt.Errorf("%w: authenticated session without user id", ErrInvalidSession)
	}
	return nil
}
