package whatsapp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types/events"

	"github.com/0922chunshan-ctrl/c2c-whatsapp-bot/internal/domain/chat"
	"github.com/0922chunshan-ctrl/c2c-whatsapp-bot/internal/infra/database"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name       string
		evt        any
		wantKind   chat.EventKind
		wantLogout bool
	}{
		{"connected", &events.Connected{}, chat.EventOpened, false},
		{"disconnected", &events.Disconnected{}, chat.EventClosed, false},
		{"stream replaced", &events.StreamReplaced{}, chat.EventClosed, false},
		{"connect failure", &events.ConnectFailure{}, chat.EventClosed, false},
		{"logged out", &events.LoggedOut{}, chat.EventClosed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := translate(tt.evt)
			require.True(t, ok)
			assert.Equal(t, tt.wantKind, ev.Kind)
			assert.Equal(t, tt.wantLogout, ev.ExplicitLogout)
		})
	}

	_, ok := translate(&events.Message{})
	assert.False(t, ok)

	ev, _ := translate(&events.StreamReplaced{})
	assert.True(t, errors.Is(ev.Err, errStreamReplaced))
}

func TestLogger_SubNestsModules(t *testing.T) {
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)

	log := NewLogger(logrus.NewEntry(l)).Sub("Client").Sub("Socket")
	log.Debugf("frame %d", 3)
	log.Errorf("boom")

	require.Len(t, hook.AllEntries(), 2)
	first := hook.AllEntries()[0]
	assert.Equal(t, "frame 3", first.Message)
	assert.Equal(t, "Client/Socket", first.Data["module"])
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestQRPrinter_DrawsCode(t *testing.T) {
	var buf bytes.Buffer
	QRPrinter(&buf)("2@pairing-ref,key,identity,adv")
	assert.NotZero(t, buf.Len())
}

func TestNewConnector_PreparesSQLiteStore(t *testing.T) {
	db, err := database.Open(database.DialectSQLite, filepath.Join(t.TempDir(), "auth"))
	require.NoError(t, err)
	defer db.Close()

	l := logrus.New()
	l.SetOutput(io.Discard)
	c, err := NewConnector(context.Background(), db, database.DialectSQLite, logrus.NewEntry(l))
	require.NoError(t, err)

	device, err := c.container.GetFirstDevice(context.Background())
	require.NoError(t, err)
	assert.Nil(t, device.ID, "a fresh store holds an unpaired device")
	assert.NotNil(t, c.Events())
}

// newDetachedSession builds a Session without a client for exercising
// event forwarding.
func newDetachedSession() *Session {
	l := logrus.New()
	l.SetOutput(io.Discard)
	c := &Connector{events: make(chan chat.Event, 16), logger: logrus.NewEntry(l)}
	return newSession(nil, c)
}

func drain(c *Connector) []chat.Event {
	var out []chat.Event
	for {
		select {
		case ev := <-c.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestForwardQR(t *testing.T) {
	tests := []struct {
		name  string
		items []whatsmeow.QRChannelItem
		want  []chat.EventKind
	}{
		{
			name:  "codes become pairing challenges",
			items: []whatsmeow.QRChannelItem{{Event: "code", Code: "a"}, {Event: "code", Code: "b"}},
			want:  []chat.EventKind{chat.EventPairingChallenge, chat.EventPairingChallenge},
		},
		{
			name:  "success is only logged",
			items: []whatsmeow.QRChannelItem{{Event: "code", Code: "a"}, {Event: "success"}},
			want:  []chat.EventKind{chat.EventPairingChallenge},
		},
		{
			name:  "expiry closes the session",
			items: []whatsmeow.QRChannelItem{{Event: "code", Code: "a"}, {Event: "timeout"}},
			want:  []chat.EventKind{chat.EventPairingChallenge, chat.EventClosed},
		},
		{
			name:  "other failures close the session once",
			items: []whatsmeow.QRChannelItem{{Event: "err-unexpected-state"}, {Event: "timeout"}},
			want:  []chat.EventKind{chat.EventClosed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newDetachedSession()
			qr := make(chan whatsmeow.QRChannelItem, len(tt.items))
			for _, item := range tt.items {
				qr <- item
			}
			close(qr)

			s.forwardQR(qr)

			got := drain(s.connector)
			require.Len(t, got, len(tt.want))
			for i, ev := range got {
				assert.Equal(t, tt.want[i], ev.Kind)
				assert.Equal(t, chat.Session(s), ev.Source)
			}
		})
	}
}

func TestDisconnectWhilePairing_ClosesOnce(t *testing.T) {
	s := newDetachedSession()

	s.handleEvent(&events.Disconnected{})
	qr := make(chan whatsmeow.QRChannelItem, 1)
	qr <- whatsmeow.QRChannelItem{Event: "timeout"}
	close(qr)
	s.forwardQR(qr)

	got := drain(s.connector)
	require.Len(t, got, 1)
	assert.Equal(t, chat.EventClosed, got[0].Kind)
	assert.NoError(t, got[0].Err)
}

func TestEmit_SilentAfterClose(t *testing.T) {
	s := newDetachedSession()
	s.cancel()

	for i := 0; i < 1000; i++ {
		s.emit(chat.PairingChallenge("code"))
	}
	assert.Empty(t, drain(s.connector))
}
