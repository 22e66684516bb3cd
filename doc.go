// Package harunote is the client-side session core for the HaruNote diary
// service. It keeps one authoritative copy of the signed-in user's
// credentials and builds everything that depends on them around that single
// source of truth: an HTTP client that attaches and refreshes tokens, the
// sign-in and sign-up flows that establish a session, and a gate that tells
// the UI which routes the current role may visit.
//
// The root package offers a Client facade that wires the subsystems together:
//
//	client, err := harunote.New(cfg)
//	if err != nil {
//	    return err
//	}
//	landing, err := client.SignIn(ctx, email, password)
//
// Each subsystem also stands alone under core/ for callers that want finer
// control:
//
//   - core/credentials: the in-memory session store, its role model, and the
//     change events a router can subscribe to.
//   - core/apiclient: the authenticated request pipeline with transparent
//     refresh-and-resubmit on expired access tokens.
//   - core/authflow: sign-in, email verification sign-up, and logout.
//   - core/gate: role-to-route mapping and per-entry edit/delete permissions.
//   - core/config: cached environment-backed configuration loading.
//
// All subsystems are safe for concurrent use and log through slog; without an
// explicit logger they stay silent.
package harunote
