package gate

import (
	"slices"

	"github.com/harunote/harunote-go/core/credentials"
)

// State is everything a navigation decision needs, computed from one
// credential snapshot. It is a plain value: recompute it on navigation,
// never cache it across store transitions.
type State struct {
	Role   credentials.Role
	Shell  Shell
	Routes []Route
	UserID int64
}

// Allowed reports whether the route is in this state's route table.
func (s State) Allowed(route Route) bool {
	return slices.Contains(s.Routes, route)
}

// CanEditEntry reports whether the diary editor is writable for an entry
// owned by ownerID. A zero ownerID means a new entry being created. Admins
// moderate through the viewer and never edit; they delete instead.
func (s State) CanEditEntry(ownerID int64) bool {
	if s.Role != credentials.RoleUser {
		return false
	}
	return ownerID == 0 || ownerID == s.UserID
}

// CanDeleteEntry reports whether an entry owned by ownerID may be deleted.
// Admins may delete any entry; users only their own.
func (s State) CanDeleteEntry(ownerID int64) bool {
	switch s.Role {
	case credentials.RoleAdmin:
		return true
	case credentials.RoleUser:
		return ownerID != 0 && ownerID == s.UserID
	default:
		return false
	}
}

// Gate derives navigation state from the credential store. It holds no state
// of its own: every call reads the latest snapshot, so transitions become
// visible on the next navigation without polling.
type Gate struct {
	store *credentials.Store
}

// New creates a session gate over the given store.
func New(store *credentials.Store) *Gate {
	return &Gate{store: store}
}

// State computes the navigation state from the current snapshot.
func (g *Gate) State() State {
	snap := g.store.Read()
	role := snap.Role
	if !snap.IsAuthenticated() {
		role = credentials.RoleAnonymous
	}
	return State{
		Role:   role,
		Shell:  ShellFor(role),
		Routes: RoutesFor(role),
		UserID: snap.UserID,
	}
}

// LandingRoute returns where a fresh navigation should land for the current
// session.
func (g *Gate) LandingRoute() Route {
	return LandingFor(g.State().Role)
}
