// Package credentials holds the client's session state: the access and
// refresh tokens, the owning user id, the access role, and the display email.
//
// # Core Components
//
// The package provides three main types:
//
//   - Session: immutable value describing the complete credential state
//   - Role: closed enumeration {anonymous, user, admin} derived once at sign-in
//   - Store: process-wide atomic holder with change notification
//
// # Write Discipline
//
// No component writes individual session fields. The store exposes exactly
// three write operations matching the legal lifecycle transitions:
//
//   - Set: full atomic replace on successful sign-in
//   - Rotate: token-pair rewrite on successful refresh (identity untouched)
//   - Clear: full atomic wipe on logout or terminal refresh failure
//
// All writes serialize on the store mutex, so the visible state after any
// refresh or logout is the result of the most recently completed write.
//
// # Basic Usage
//
//	store := credentials.NewStore()
//
//	err := store.Set(credentials.Session{
//		AccessToken:  "T1",
//		RefreshToken: "R1",
//		UserID:       7,
//		Role:         credentials.RoleUser,
//		Email:        "a@b.com",
//	})
//
//	snap := store.Read()
//	if snap.IsAuthenticated() {
//		// attach snap.AccessToken as a bearer credential
//	}
//
// # Change Notification
//
// UI layers subscribe to store transitions instead of polling. The Cleared
// event doubles as the navigate-to-sign-in signal emitted on logout and on
// terminal refresh failure:
//
//	events := store.Subscribe()
//	go func() {
//		for e := range events {
//			if e.Kind == credentials.EventCleared {
//				router.Navigate("/signin")
//			}
//		}
//	}()
package credentials
