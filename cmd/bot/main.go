package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/0922chunshan-ctrl/c2c-whatsapp-bot/internal/app"
	"github.com/0922chunshan-ctrl/c2c-whatsapp-bot/internal/domain/chat"
	"github.com/0922chunshan-ctrl/c2c-whatsapp-bot/internal/infra/assets"
	"github.com/0922chunshan-ctrl/c2c-whatsapp-bot/internal/infra/config"
	idb "github.com/0922chunshan-ctrl/c2c-whatsapp-bot/internal/infra/database"
	"github.com/0922chunshan-ctrl/c2c-whatsapp-bot/internal/infra/logger"
	"github.com/0922chunshan-ctrl/c2c-whatsapp-bot/internal/infra/messages"
	"github.com/0922chunshan-ctrl/c2c-whatsapp-bot/internal/infra/scheduler"
	"github.com/0922chunshan-ctrl/c2c-whatsapp-bot/internal/infra/telegram"
	"github.com/0922chunshan-ctrl/c2c-whatsapp-bot/internal/infra/whatsapp"
)

func main() {
	fmt.Println("C2C Notification Bot starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"transport": cfg.Transport,
		"channel":   cfg.ChannelID,
		"time_zone": cfg.TimeZone,
		"log_level": cfg.LogLevel,
		"env":       cfg.Environment,
	}).Info("Configuration loaded.")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		if errors.Is(err, app.ErrLoggedOut) {
			mainLogger.WithError(err).Error("Session ended by logout. Re-pair the account to continue.")
		} else {
			mainLogger.WithError(err).Error("Application stopped with an error.")
		}
		stop()
		os.Exit(1)
	}
	mainLogger.Info("Application shut down gracefully.")
}

func run(ctx context.Context, cfg *config.AppConfig) error {
	fs := afero.NewOsFs()

	renderer, err := messages.Load(fs, cfg.MessagesFile)
	if err != nil {
		return err
	}

	notificationService := app.NewNotificationService(
		app.NotificationConfig{
			ChannelID: cfg.ChannelID,
			ImagePath: cfg.ImagePath,
			Location:  cfg.Location,
			Schedule:  cfg.Schedule,
		},
		renderer,
		assets.NewLoader(fs),
		app.NewFiredSet(),
		logger.Component("notifications"),
	)

	notifScheduler := scheduler.NewNotificationScheduler(
		notificationService,
		logger.Component("scheduler"),
		cfg.Location,
		cfg.TickSpec,
	)
	defer notifScheduler.Stop()

	connector, closeStore, err := newConnector(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	sessions := app.NewSessionManager(
		connector,
		notificationService,
		notifScheduler,
		whatsapp.QRPrinter(os.Stdout),
		cfg.ReconnectInterval,
		logger.Component("session"),
	)
	return sessions.Run(ctx)
}

// newConnector builds the transport chosen in cfg. The returned func
// releases the credential store, if any.
func newConnector(ctx context.Context, cfg *config.AppConfig) (chat.Connector, func(), error) {
	switch cfg.Transport {
	case config.TransportTelegram:
		return telegram.NewConnector(cfg.TelegramToken, cfg.TelegramProbeInterval, logger.Component("telegram")), func() {}, nil

	case config.TransportWhatsApp:
		target := cfg.CredentialsDir
		if cfg.CredentialsDialect == config.DialectPostgres {
			target = cfg.DatabaseURL
		}
		db, err := idb.Open(cfg.CredentialsDialect, target)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open credential store: %w", err)
		}
		closeDB := func() { closeQuietly(db) }

		connector, err := whatsapp.NewConnector(ctx, db, cfg.CredentialsDialect, logger.Component("whatsapp"))
		if err != nil {
			closeDB()
			return nil, nil, err
		}
		return connector, closeDB, nil

	default:
		return nil, nil, fmt.Errorf("unsupported transport %q", cfg.Transport)
	}
}

func closeQuietly(db *sql.DB) {
	if err := db.Close(); err != nil {
		logger.Component("main").WithError(err).Warn("Error while closing credential store.")
	}
}
