// internal/domain/chat/event.go
package chat

// EventKind enumerates session lifecycle events.
type EventKind int

const (
	EventOpened EventKind = iota + 1
	EventClosed
	EventPairingChallenge
)

func (k EventKind) String() string {
	switch k {
	case EventOpened:
		return "opened"
	case EventClosed:
		return "closed"
	case EventPairingChallenge:
		return "pairing_challenge"
	default:
		return "unknown"
	}
}

// Event is a lifecycle notification from a Connector.
type Event struct {
	Kind EventKind
	// ExplicitLogout is set on EventClosed when the account was logged out
	// and the session must not be re-established.
	ExplicitLogout bool
	// Code carries the pairing payload of EventPairingChallenge.
	Code string
	// Err optionally explains an EventClosed.
	Err error
	// Source is the session that produced the event. Connectors set it so
	// that events of a replaced session can be told apart.
	Source Session
}

// From returns a copy of e attributed to s.
func (e Event) From(s Session) Event {
	e.Source = s
	return e
}

func Opened() Event {
	return Event{Kind: EventOpened}
}

func Closed(explicitLogout bool, err error) Event {
	return Event{Kind: EventClosed, ExplicitLogout: explicitLogout, Err: err}
}

func PairingChallenge(code string) Event {
	return Event{Kind: EventPairingChallenge, Code: code}
}
