// internal/infra/telegram/client.go
package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"github.com/0922chunshan-ctrl/c2c-whatsapp-bot/internal/domain/chat"
)

// Connector opens Telegram bot sessions. Telegram has no persistent socket,
// so liveness is checked with a periodic getMe probe.
type Connector struct {
	settings      telebot.Settings
	probeInterval time.Duration
	events        chan chat.Event
	logger        *logrus.Entry
}

func NewConnector(token string, probeInterval time.Duration, logger *logrus.Entry) *Connector {
	return &Connector{
		settings: telebot.Settings{
			Token:     token,
			ParseMode: telebot.ModeMarkdown,
			OnError: func(err error, c telebot.Context) { // Global error handler
				logger.WithError(err).Error("telebot error")
			},
		},
		probeInterval: probeInterval,
		events:        make(chan chat.Event, 8),
		logger:        logger,
	}
}

func (c *Connector) Events() <-chan chat.Event {
	return c.events
}

// Open authenticates the bot token. A rejected token is reported as
// chat.ErrRevoked.
func (c *Connector) Open(ctx context.Context) (chat.Session, error) {
	bot, err := telebot.NewBot(c.settings)
	if err != nil {
		if errors.Is(err, telebot.ErrUnauthorized) {
			return nil, fmt.Errorf("telegram token rejected: %w", chat.ErrRevoked)
		}
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	c.logger.WithField("bot", bot.Me.Username).Info("Telegram bot authenticated.")

	s := &Session{bot: bot, done: make(chan struct{})}
	c.emit(s, chat.Opened())
	go c.probe(s)
	return s, nil
}

func (c *Connector) probe(s *Session) {
	t := time.NewTicker(c.probeInterval)
	defer t.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-t.C:
			if _, err := s.bot.Raw("getMe", nil); err != nil {
				c.emit(s, chat.Closed(errors.Is(err, telebot.ErrUnauthorized), err))
				return
			}
		}
	}
}

// emit delivers ev tagged with s unless s has been closed.
func (c *Connector) emit(s *Session, ev chat.Event) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case c.events <- ev.From(s):
	case <-s.done:
	}
}

// Session sends through a single telebot.Bot.
type Session struct {
	bot       *telebot.Bot
	done      chan struct{}
	closeOnce sync.Once
}

// SendText sends text to the chat. telebot requests take no context, so ctx
// is only checked before the request is made.
func (s *Session) SendText(ctx context.Context, channelID, text string) error {
	to, err := recipient(channelID)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err = s.bot.Send(to, text)
	return err
}

// SendImage sends the image bytes as a photo with caption. As with SendText,
// ctx cannot interrupt a request in flight.
func (s *Session) SendImage(ctx context.Context, channelID string, image chat.Image, caption string) error {
	to, err := recipient(channelID)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	photo := &telebot.Photo{
		File:    telebot.FromReader(bytes.NewReader(image.Data)),
		Caption: caption,
	}
	_, err = s.bot.Send(to, photo)
	return err
}

// Close stops the liveness probe.
func (s *Session) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

func recipient(channelID string) (telebot.Recipient, error) {
	id, err := strconv.ParseInt(channelID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid Telegram chat id %q: %w", channelID, err)
	}
	return telebot.ChatID(id), nil
}
