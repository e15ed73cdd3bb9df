// internal/app/notification_service.go
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/0922chunshan-ctrl/c2c-whatsapp-bot/internal/domain/chat"
	"github.com/0922chunshan-ctrl/c2c-whatsapp-bot/internal/domain/trigger"
)

// Renderer produces the text of each notification.
type Renderer interface {
	Reminder(info trigger.DeliveryInfo) (string, error)
	Urgent() (string, error)
}

// ImageLoader reads the reminder attachment.
type ImageLoader interface {
	Load(path string) (chat.Image, error)
}

// NotificationConfig is the fixed delivery setup of the NotificationService.
type NotificationConfig struct {
	ChannelID string
	ImagePath string // Empty sends reminders as plain text
	Location  *time.Location
	Schedule  trigger.Schedule
}

// NotificationService decides on every tick whether the current minute
// owes the channel a notification and sends it at most once.
type NotificationService struct {
	cfg      NotificationConfig
	renderer Renderer
	images   ImageLoader
	fired    *FiredSet
	logger   *logrus.Entry
	clock    func() time.Time

	mu      sync.RWMutex
	session chat.Session
}

func NewNotificationService(
	cfg NotificationConfig,
	renderer Renderer,
	images ImageLoader,
	fired *FiredSet,
	logger *logrus.Entry,
) *NotificationService {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &NotificationService{
		cfg:      cfg,
		renderer: renderer,
		images:   images,
		fired:    fired,
		logger:   logger,
		clock:    time.Now,
	}
}

// Bind makes session the target of subsequent sends.
func (s *NotificationService) Bind(session chat.Session) {
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
}

// Unbind drops the current session; sends fail with chat.ErrNoSession until
// the next Bind.
func (s *NotificationService) Unbind() {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
}

func (s *NotificationService) currentSession() chat.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Tick handles the current minute. A returned error means the minute's
// notification was claimed but not delivered; it will not be retried.
func (s *NotificationService) Tick(ctx context.Context) error {
	now := s.clock().In(s.cfg.Location)

	kind, due := s.cfg.Schedule.Due(now)
	if !due {
		return nil
	}

	key := MinuteKey(now)
	if !s.fired.Mark(key) {
		s.logger.WithFields(logrus.Fields{"trigger": kind, "minute": key}).Debug("Trigger already handled for this minute, skipping.")
		return nil
	}

	session := s.currentSession()
	if session == nil {
		return fmt.Errorf("trigger %s at %s: %w", kind, key, chat.ErrNoSession)
	}

	var err error
	switch kind.Kind() {
	case trigger.KindReminder:
		err = s.sendReminder(ctx, session, kind, now)
	case trigger.KindUrgent:
		err = s.sendUrgent(ctx, session)
	default:
		err = fmt.Errorf("unhandled trigger kind %q", kind.Kind())
	}
	if err != nil {
		return fmt.Errorf("trigger %s at %s: %w", kind, key, err)
	}

	s.logger.WithFields(logrus.Fields{"trigger": kind, "minute": key}).Info("Notification sent.")
	return nil
}

func (s *NotificationService) sendReminder(ctx context.Context, session chat.Session, kind trigger.Type, now time.Time) error {
	day, _ := kind.DeliveryDay()
	info := trigger.DeliveryInfoFor(now, day)

	text, err := s.renderer.Reminder(info)
	if err != nil {
		return err
	}

	if s.cfg.ImagePath != "" {
		img, err := s.images.Load(s.cfg.ImagePath)
		if err == nil {
			return session.SendImage(ctx, s.cfg.ChannelID, img, text)
		}
		s.logger.WithError(err).Warn("Reminder image unavailable, sending text only.")
	}
	return session.SendText(ctx, s.cfg.ChannelID, text)
}

func (s *NotificationService) sendUrgent(ctx context.Context, session chat.Session) error {
	text, err := s.renderer.Urgent()
	if err != nil {
		return err
	}
	return session.SendText(ctx, s.cfg.ChannelID, text)
}
