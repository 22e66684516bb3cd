// Package apiclient implements the authenticated request pipeline and the
// refresh-token rotation protocol for the HaruNote diary service.
//
// # Pipeline
//
// Every outbound API call flows through a Transport (an http.RoundTripper):
//
//   - Outbound: if the credential store holds an access token, it is attached
//     as a bearer Authorization header; anonymous requests pass unmodified.
//     Each request also carries an X-Request-ID for tracing.
//   - Inbound: a 401 response triggers the refresh protocol, then exactly one
//     resubmission of the original request with the rotated token. A second
//     401, or any non-401 failure, propagates to the caller unchanged.
//
// The retry flag travels on the request context, so retry state is
// per-request and never shared.
//
// # Refresh Protocol
//
// The Refresher exchanges the stored refresh token for a new access/refresh
// pair. Refresh tokens are rotated on use, so concurrent exchanges would
// invalidate one another; a singleflight group guarantees at most one
// in-flight exchange, with concurrent 401 handlers awaiting its result.
//
// The protocol fails closed: any failure (missing token, rejected exchange,
// network error) clears the credential store, which in turn signals the UI
// to navigate back to sign-in. Stale credentials never survive a failed
// refresh.
//
// # Usage
//
//	store := credentials.NewStore()
//
//	var cfg apiclient.Config
//	config.MustLoad(&cfg)
//
//	api, err := apiclient.New(cfg, store)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	var entries []DiaryEntry
//	err = api.Get(ctx, "/diaries/2026-08", &entries)
//
// When the service issues JWT access tokens, the client reads the exp claim
// (without verifying; that is the server's job) and rotates proactively
// within the configured leeway instead of waiting for a 401.
package apiclient
