package credentials

// EventKind identifies which of the legal store transitions occurred.
type EventKind string

const (
	// EventSignedIn is emitted when a full session is installed via Set.
	EventSignedIn EventKind = "signed_in"
	// EventRotated is emitted when the token pair is rewritten via Rotate.
	EventRotated EventKind = "rotated"
	// EventCleared is emitted when the store transitions to anonymous.
	// UI layers treat it as the signal to navigate to the sign-in entry point.
	EventCleared EventKind = "cleared"
)

// Event describes a completed store transition. Session is the snapshot
// after the write, so subscribers never need a follow-up Read.
type Event struct {
	Kind    EventKind
	Session Session
}
