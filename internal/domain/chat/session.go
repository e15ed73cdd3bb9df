// internal/domain/chat/session.go
package chat

import (
	"context"
	"errors"
)

// ErrNoSession is returned when a send is attempted while no session is open.
var ErrNoSession = errors.New("no open chat session")

// Image is an attachment ready to be sent.
type Image struct {
	Path     string
	Data     []byte
	MimeType string
}

// Session is an authenticated connection to the chat network.
// A Session must not be reused after a Closed event; a new one is opened instead.
type Session interface {
	SendText(ctx context.Context, channelID, text string) error
	SendImage(ctx context.Context, channelID string, image Image, caption string) error
	Close() error
}

// Connector acquires sessions and reports their lifecycle.
// Events returns one stream for the lifetime of the Connector, shared by
// every session it opens.
type Connector interface {
	Events() <-chan Event
	Open(ctx context.Context) (Session, error)
}

// ErrRevoked is returned by Connector.Open when the stored credentials are
// no longer accepted and a new session cannot be opened without operator action.
var ErrRevoked = errors.New("chat credentials revoked")
