// Package authflow implements the sign-in, two-step sign-up, and logout
// flows for the HaruNote diary service.
//
// # Flows
//
//   - SignIn exchanges (email, password) for a complete session: access
//     token, refresh token, user id, role, and email, installed atomically
//     in the credential store. On rejection the store is untouched and the
//     failure surfaces as user-visible feedback; the core never retries
//     sign-in.
//
//   - Sign-up is two steps. RequestSignUpCode submits (username, email,
//     password) and the service dispatches a verification code out-of-band;
//     the request may be repeated until verification succeeds.
//     VerifySignUpCode finalizes account creation. Neither step touches the
//     credential store; a fresh sign-in establishes the session afterwards.
//
//   - Logout clears the credential store with no server round-trip. It
//     always succeeds, and the store's cleared event signals the UI to
//     navigate to the sign-in entry point.
//
// The flows use a plain HTTP client rather than the authenticated pipeline
// so a 401 from bad credentials can never trigger a token refresh.
//
// # Usage
//
//	store := credentials.NewStore()
//	auth := authflow.New("http://localhost:8000", store)
//
//	sess, err := auth.SignIn(ctx, "a@b.com", "password")
//	if errors.Is(err, authflow.ErrAuthRejected) {
//		// show feedback, let the user retry
//	}
package authflow
