package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Ticker is the work done on every tick.
type Ticker interface {
	Tick(ctx context.Context) error
}

// NotificationScheduler drives a Ticker from a cron engine. The default
// spec fires on every minute boundary.
type NotificationScheduler struct {
	cronEngine *cron.Cron
	ticker     Ticker
	logger     *logrus.Entry
	tickSpec   string
	tickBudget time.Duration

	mu      sync.Mutex
	started bool
}

func NewNotificationScheduler(
	ticker Ticker,
	logger *logrus.Entry,
	location *time.Location,
	tickSpec string, // e.g., "* * * * *" (every minute)
) *NotificationScheduler {
	if location == nil {
		location = time.Local
	}
	return &NotificationScheduler{
		cronEngine: cron.New(
			cron.WithLocation(location),
			// Overlapping ticks are allowed; the FiredSet keeps them apart.
			cron.WithChain(cron.Recover(cron.PrintfLogger(logger))),
		),
		ticker:     ticker,
		logger:     logger,
		tickSpec:   tickSpec,
		tickBudget: 1 * time.Minute,
	}
}

// Start registers the tick job and starts the engine. Calling it again is a no-op.
func (s *NotificationScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	s.logger.Info("Starting notification scheduler...")
	if _, err := s.cronEngine.AddFunc(s.tickSpec, s.runTick); err != nil {
		return fmt.Errorf("could not add tick job %q: %w", s.tickSpec, err)
	}

	s.cronEngine.Start()
	s.started = true
	s.logger.WithField("spec", s.tickSpec).Info("Notification scheduler started.")
	return nil
}

func (s *NotificationScheduler) runTick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.tickBudget)
	defer cancel()

	if err := s.ticker.Tick(ctx); err != nil {
		s.logger.WithError(err).Error("Notification send failed.")
	}
}

// Stop halts the engine and waits for running ticks to finish.
func (s *NotificationScheduler) Stop() {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return
	}

	s.logger.Info("Stopping notification scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Notification scheduler gracefully stopped.")
}
