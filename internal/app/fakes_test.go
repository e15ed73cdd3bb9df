package app

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/0922chunshan-ctrl/c2c-whatsapp-bot/internal/domain/chat"
	"github.com/0922chunshan-ctrl/c2c-whatsapp-bot/internal/domain/trigger"
)

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type sentMessage struct {
	channelID string
	text      string
	image     *chat.Image
}

// fakeSession records sends and can be told to fail.
type fakeSession struct {
	mu      sync.Mutex
	sent    []sentMessage
	sendErr error
	closed  int
}

func (s *fakeSession) SendText(ctx context.Context, channelID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMessage{channelID: channelID, text: text})
	return s.sendErr
}

func (s *fakeSession) SendImage(ctx context.Context, channelID string, image chat.Image, caption string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	img := image
	s.sent = append(s.sent, sentMessage{channelID: channelID, text: caption, image: &img})
	return s.sendErr
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func (s *fakeSession) messages() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.sent...)
}

func (s *fakeSession) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeRenderer struct{}

func (fakeRenderer) Reminder(info trigger.DeliveryInfo) (string, error) {
	return "open for " + info.DayName + " " + info.DateStr, nil
}

func (fakeRenderer) Urgent() (string, error) {
	return "1 hour left", nil
}

type fakeImages struct {
	img chat.Image
	err error
}

func (f fakeImages) Load(path string) (chat.Image, error) {
	if f.err != nil {
		return chat.Image{}, f.err
	}
	img := f.img
	img.Path = path
	return img, nil
}

var errImageMissing = errors.New("image missing")

// fakeConnector hands out fakeSessions and exposes the event stream to tests.
type fakeConnector struct {
	events chan chat.Event

	mu       sync.Mutex
	opens    int
	openErrs []error // consumed in order before succeeding
	sessions []*fakeSession
}

func newFakeConnector() *fakeConnector {
	return &fakeConnector{events: make(chan chat.Event, 16)}
}

func (c *fakeConnector) Events() <-chan chat.Event {
	return c.events
}

func (c *fakeConnector) Open(ctx context.Context) (chat.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opens++
	if len(c.openErrs) > 0 {
		err := c.openErrs[0]
		c.openErrs = c.openErrs[1:]
		return nil, err
	}
	s := &fakeSession{}
	c.sessions = append(c.sessions, s)
	return s, nil
}

func (c *fakeConnector) openCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opens
}

func (c *fakeConnector) session(i int) *fakeSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i >= len(c.sessions) {
		return nil
	}
	return c.sessions[i]
}

type fakeLoop struct {
	mu     sync.Mutex
	starts int
	err    error
}

func (l *fakeLoop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.starts++
	return l.err
}

func (l *fakeLoop) startCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.starts
}

type fakeBinder struct {
	mu      sync.Mutex
	current chat.Session
	binds   int
	unbinds int
}

func (b *fakeBinder) Bind(session chat.Session) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = session
	b.binds++
}

func (b *fakeBinder) Unbind() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = nil
	b.unbinds++
}

func (b *fakeBinder) bound() chat.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}
