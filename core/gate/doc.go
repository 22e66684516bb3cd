// Package gate selects route tables and navigation shells from the current
// session role.
//
// The gate is a pure function of the latest credential snapshot: it holds no
// state, performs no polling, and becomes consistent on the next navigation
// after any store transition. Roles map to three surfaces:
//
//   - anonymous: sign-in and sign-up only
//   - user: calendar, diary editor, and blog feed behind the standard shell
//   - admin: account roster and entry moderation behind the admin shell
//
// Entry-level permissions live on the computed State so a screen resolves
// them against one coherent snapshot:
//
//	state := gate.New(store).State()
//	if state.Allowed(gate.RouteDiary) {
//		editable := state.CanEditEntry(entry.OwnerID)
//		// render editor or read-only view
//	}
package gate
