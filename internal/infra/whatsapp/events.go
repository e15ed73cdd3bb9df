// internal/infra/whatsapp/events.go
package whatsapp

import (
	"errors"
	"fmt"

	"go.mau.fi/whatsmeow/types/events"

	"github.com/0922chunshan-ctrl/c2c-whatsapp-bot/internal/domain/chat"
)

var (
	errStreamReplaced = errors.New("connection replaced by another client")
	errPairingTimeout = errors.New("pairing QR code expired")
)

// translate maps a whatsmeow event onto the session lifecycle. Events that
// do not change the lifecycle return false.
func translate(evt any) (chat.Event, bool) {
	switch e := evt.(type) {
	case *events.Connected:
		return chat.Opened(), true
	case *events.Disconnected:
		return chat.Closed(false, nil), true
	case *events.StreamReplaced:
		return chat.Closed(false, errStreamReplaced), true
	case *events.ConnectFailure:
		return chat.Closed(false, fmt.Errorf("connect failure: %v %s", e.Reason, e.Message)), true
	case *events.LoggedOut:
		return chat.Closed(true, fmt.Errorf("logged out: %v", e.Reason)), true
	default:
		return chat.Event{}, false
	}
}
