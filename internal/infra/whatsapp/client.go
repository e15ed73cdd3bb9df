// internal/infra/whatsapp/client.go
package whatsapp

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"

	"github.com/0922chunshan-ctrl/c2c-whatsapp-bot/internal/domain/chat"
)

// QR channel item kinds handled explicitly.
const (
	qrEventCode    = "code"
	qrEventSuccess = "success"
	qrEventTimeout = "timeout"
)

// Connector opens whatsmeow clients on the device stored in the credential
// database. A device without an ID is unpaired and yields pairing
// challenges until the operator scans one.
type Connector struct {
	container *sqlstore.Container
	events    chan chat.Event
	logger    *logrus.Entry
	waLogger  waLog.Logger
}

// NewConnector prepares the device store in db, creating its tables on
// first use. dialect is "sqlite3" or "postgres".
func NewConnector(ctx context.Context, db *sql.DB, dialect string, logger *logrus.Entry) (*Connector, error) {
	waLogger := NewLogger(logger)

	container := sqlstore.NewWithDB(db, dialect, waLogger.Sub("Database"))
	if err := container.Upgrade(ctx); err != nil {
		return nil, fmt.Errorf("failed to upgrade credential store: %w", err)
	}

	return &Connector{
		container: container,
		events:    make(chan chat.Event, 16),
		logger:    logger,
		waLogger:  waLogger,
	}, nil
}

func (c *Connector) Events() <-chan chat.Event {
	return c.events
}

// Open builds a fresh client and starts connecting. The result of the
// connection attempt arrives later as an event.
func (c *Connector) Open(ctx context.Context) (chat.Session, error) {
	device, err := c.container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load device: %w", err)
	}

	client := whatsmeow.NewClient(device, c.waLogger.Sub("Client"))
	// Reconnects are driven by the session manager.
	client.EnableAutoReconnect = false

	s := newSession(client, c)
	client.AddEventHandler(s.handleEvent)

	if client.Store.ID == nil {
		qrChan, err := client.GetQRChannel(s.ctx)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to request pairing codes: %w", err)
		}
		go s.forwardQR(qrChan)
	} else {
		c.logger.WithField("jid", client.Store.ID.String()).Info("Using stored WhatsApp credentials.")
	}

	if err := client.Connect(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return s, nil
}

// Session is one whatsmeow client. It reports at most one close, and none
// once Close has been called.
type Session struct {
	client    *whatsmeow.Client
	connector *Connector

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	reported  atomic.Bool // a Closed event went out
}

func newSession(client *whatsmeow.Client, connector *Connector) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{client: client, connector: connector, ctx: ctx, cancel: cancel}
}

func (s *Session) handleEvent(evt any) {
	switch e := evt.(type) {
	case *events.PairSuccess:
		s.connector.logger.WithField("jid", e.ID.String()).Info("Pairing successful.")
	case *events.KeepAliveTimeout:
		s.connector.logger.WithField("error_count", e.ErrorCount).Warn("WhatsApp keepalive timed out.")
	}

	if ev, ok := translate(evt); ok {
		s.emit(ev)
	}
}

func (s *Session) forwardQR(qrChan <-chan whatsmeow.QRChannelItem) {
	for item := range qrChan {
		switch item.Event {
		case qrEventCode:
			s.emit(chat.PairingChallenge(item.Code))
		case qrEventSuccess:
			s.connector.logger.Info("QR code scanned.")
		case qrEventTimeout:
			s.emit(chat.Closed(false, errPairingTimeout))
		default:
			s.emit(chat.Closed(false, fmt.Errorf("pairing failed: %s: %v", item.Event, item.Error)))
		}
	}
}

// emit forwards ev tagged with this session. A disconnect while pairing
// also ends the QR channel with a timeout item, so only the first close is
// forwarded.
func (s *Session) emit(ev chat.Event) {
	if ev.Kind == chat.EventClosed && !s.reported.CompareAndSwap(false, true) {
		return
	}
	if s.ctx.Err() != nil {
		return
	}
	select {
	case s.connector.events <- ev.From(s):
	case <-s.ctx.Done():
	}
}

func (s *Session) SendText(ctx context.Context, channelID, text string) error {
	to, err := types.ParseJID(channelID)
	if err != nil {
		return fmt.Errorf("invalid recipient %q: %w", channelID, err)
	}
	_, err = s.client.SendMessage(ctx, to, &waE2E.Message{
		Conversation: proto.String(text),
	})
	return err
}

func (s *Session) SendImage(ctx context.Context, channelID string, image chat.Image, caption string) error {
	to, err := types.ParseJID(channelID)
	if err != nil {
		return fmt.Errorf("invalid recipient %q: %w", channelID, err)
	}

	uploaded, err := s.client.Upload(ctx, image.Data, whatsmeow.MediaImage)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", image.Path, err)
	}

	_, err = s.client.SendMessage(ctx, to, &waE2E.Message{
		ImageMessage: &waE2E.ImageMessage{
			Caption:       proto.String(caption),
			Mimetype:      proto.String(image.MimeType),
			URL:           proto.String(uploaded.URL),
			DirectPath:    proto.String(uploaded.DirectPath),
			MediaKey:      uploaded.MediaKey,
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    proto.Uint64(uploaded.FileLength),
		},
	})
	return err
}

// Close disconnects the client and silences its events.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.client.Disconnect()
	})
	return nil
}
