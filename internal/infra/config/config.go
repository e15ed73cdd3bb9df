package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // Zone database for hosts without one

	"github.com/joho/godotenv"

	"github.com/0922chunshan-ctrl/c2c-whatsapp-bot/internal/domain/trigger"
)

const (
	TransportWhatsApp = "whatsapp"
	TransportTelegram = "telegram"

	DialectSQLite   = "sqlite3"
	DialectPostgres = "postgres"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	Transport string
	ChannelID string // WhatsApp JID (e.g. 1203...@g.us) or Telegram chat id
	ImagePath string // Attached to reminders; empty disables the image
	TimeZone  string
	Location  *time.Location

	TickSpec     string
	Schedule     trigger.Schedule
	MessagesFile string

	CredentialsDialect string
	CredentialsDir     string // SQLite credential store directory
	DatabaseURL        string // Postgres credential store

	TelegramToken         string
	TelegramProbeInterval time.Duration

	ReconnectInterval time.Duration

	LogLevel    string
	Environment string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.Transport = strings.ToLower(envOr("CHAT_TRANSPORT", TransportWhatsApp))
	if cfg.Transport != TransportWhatsApp && cfg.Transport != TransportTelegram {
		return nil, fmt.Errorf("invalid CHAT_TRANSPORT %q: expected %s or %s", cfg.Transport, TransportWhatsApp, TransportTelegram)
	}

	cfg.ChannelID = strings.TrimSpace(os.Getenv("CHANNEL_ID"))
	if cfg.ChannelID == "" {
		return nil, fmt.Errorf("CHANNEL_ID is not set")
	}

	// An explicitly empty IMAGE_PATH turns the attachment off.
	imagePath, ok := os.LookupEnv("IMAGE_PATH")
	if !ok {
		imagePath = "reminder.jpg"
	}
	cfg.ImagePath = strings.TrimSpace(imagePath)

	// The zone must be known before any trigger is evaluated.
	cfg.TimeZone = envOr("TIME_ZONE", "Asia/Kuala_Lumpur")
	cfg.Location, err = time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIME_ZONE: %w", err)
	}

	cfg.TickSpec = envOr("TICK_SPEC", "* * * * *") // Default: every minute

	defaults := trigger.DefaultSchedule()
	if cfg.Schedule.Reminder, err = clockOr("REMINDER_TIME", defaults.Reminder); err != nil {
		return nil, err
	}
	if cfg.Schedule.FridayNight, err = clockOr("FRIDAY_NIGHT_REMINDER_TIME", defaults.FridayNight); err != nil {
		return nil, err
	}
	if cfg.Schedule.Urgent, err = clockOr("URGENT_TIME", defaults.Urgent); err != nil {
		return nil, err
	}
	if err := cfg.Schedule.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schedule: %w", err)
	}

	cfg.MessagesFile = strings.TrimSpace(os.Getenv("MESSAGES_FILE"))

	cfg.CredentialsDialect = strings.ToLower(envOr("CREDENTIALS_DIALECT", DialectSQLite))
	cfg.CredentialsDir = envOr("CREDENTIALS_DIR", "auth")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	switch cfg.CredentialsDialect {
	case DialectSQLite:
	case DialectPostgres:
		if cfg.DatabaseURL == "" && cfg.Transport == TransportWhatsApp {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
	default:
		return nil, fmt.Errorf("invalid CREDENTIALS_DIALECT %q", cfg.CredentialsDialect)
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.Transport == TransportTelegram && cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}
	if cfg.TelegramProbeInterval, err = durationOr("TELEGRAM_PROBE_INTERVAL", time.Minute); err != nil {
		return nil, err
	}

	if cfg.ReconnectInterval, err = durationOr("RECONNECT_INTERVAL", 5*time.Second); err != nil {
		return nil, err
	}

	cfg.LogLevel = strings.ToLower(envOr("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(envOr("ENVIRONMENT", "development"))

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func clockOr(key string, fallback trigger.Clock) (trigger.Clock, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	c, err := trigger.ParseClock(v)
	if err != nil {
		return trigger.Clock{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return c, nil
}

func durationOr(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
