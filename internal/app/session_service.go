// internal/app/session_service.go
package app

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/0922chunshan-ctrl/c2c-whatsapp-bot/internal/domain/chat"
)

// ErrLoggedOut is returned by SessionManager.Run when the account was
// explicitly logged out. It is the only terminal session outcome.
var ErrLoggedOut = errors.New("chat session logged out")

var errEventsClosed = errors.New("chat event stream closed")

// SessionBinder receives the session notifications are sent through.
type SessionBinder interface {
	Bind(session chat.Session)
	Unbind()
}

// Loop is the periodic notification loop.
type Loop interface {
	Start() error
}

// SessionManager owns the chat session lifecycle: it opens the session,
// starts the notification loop on the first open and re-opens after every
// close that is not a logout.
type SessionManager struct {
	connector chat.Connector
	binder    SessionBinder
	loop      Loop
	onPairing func(code string)
	limiter   *rate.Limiter
	logger    *logrus.Entry

	session     chat.Session
	loopStarted bool
}

// NewSessionManager builds a SessionManager. Open attempts are spaced at
// least reconnectInterval apart.
func NewSessionManager(
	connector chat.Connector,
	binder SessionBinder,
	loop Loop,
	onPairing func(code string),
	reconnectInterval time.Duration,
	logger *logrus.Entry,
) *SessionManager {
	if onPairing == nil {
		onPairing = func(string) {}
	}
	return &SessionManager{
		connector: connector,
		binder:    binder,
		loop:      loop,
		onPairing: onPairing,
		limiter:   rate.NewLimiter(rate.Every(reconnectInterval), 1),
		logger:    logger,
	}
}

// Run blocks until ctx is done (returning nil), the account logs out
// (ErrLoggedOut) or the loop cannot be started.
func (m *SessionManager) Run(ctx context.Context) error {
	events := m.connector.Events()

	if err := m.open(ctx); err != nil {
		return ignoreCanceled(ctx, err)
	}

	for {
		select {
		case <-ctx.Done():
			m.closeSession()
			return nil
		case ev, ok := <-events:
			if !ok {
				m.closeSession()
				return errEventsClosed
			}
			if err := m.handle(ctx, ev); err != nil {
				m.closeSession()
				return ignoreCanceled(ctx, err)
			}
		}
	}
}

func (m *SessionManager) handle(ctx context.Context, ev chat.Event) error {
	if ev.Source != nil && ev.Source != m.session {
		m.logger.WithField("event", ev.Kind).Debug("Ignoring event from a replaced chat session.")
		return nil
	}

	switch ev.Kind {
	case chat.EventOpened:
		m.logger.Info("Chat session connected.")
		m.binder.Bind(m.session)
		if !m.loopStarted {
			if err := m.loop.Start(); err != nil {
				return err
			}
			m.loopStarted = true
		}

	case chat.EventPairingChallenge:
		m.logger.Info("Pairing required, scan the QR code below with the phone that owns the account.")
		m.onPairing(ev.Code)

	case chat.EventClosed:
		m.binder.Unbind()
		entry := m.logger.WithField("logout", ev.ExplicitLogout)
		if ev.Err != nil {
			entry = entry.WithError(ev.Err)
		}
		if ev.ExplicitLogout {
			entry.Error("Chat session logged out, not reconnecting.")
			return ErrLoggedOut
		}
		entry.Warn("Chat session disconnected, reconnecting.")
		m.closeSession()
		return m.open(ctx)

	default:
		m.logger.Warnf("Ignoring unknown chat event kind %d", ev.Kind)
	}
	return nil
}

// open retries until a session is acquired, the credentials are revoked
// or ctx is done.
func (m *SessionManager) open(ctx context.Context) error {
	for {
		if err := m.limiter.Wait(ctx); err != nil {
			return err
		}
		session, err := m.connector.Open(ctx)
		if err == nil {
			m.session = session
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, chat.ErrRevoked) {
			m.logger.WithError(err).Error("Chat credentials revoked, not retrying.")
			return ErrLoggedOut
		}
		m.logger.WithError(err).Error("Failed to open chat session, retrying.")
	}
}

func (m *SessionManager) closeSession() {
	if m.session == nil {
		return
	}
	if err := m.session.Close(); err != nil {
		m.logger.WithError(err).Warn("Error while closing chat session.")
	}
	m.session = nil
}

// ignoreCanceled turns errors caused by shutdown into a clean return.
func ignoreCanceled(ctx context.Context, err error) error {
	if ctx.Err() != nil && !errors.Is(err, ErrLoggedOut) {
		return nil
	}
	return err
}
