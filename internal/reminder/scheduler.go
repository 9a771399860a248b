package reminder

import (
	"context"
	"os"
	"strconv"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const defaultIntervalMinutes = 60

// ReminderScheduler drives the periodic reminder passes in the background.
type ReminderScheduler struct {
	service *ReminderService
	logger  *zap.Logger
}

func NewReminderScheduler(service *ReminderService, logger *zap.Logger) *ReminderScheduler {
	return &ReminderScheduler{service: service, logger: logger}
}

// StartScheduler registers the ticker goroutine with the fx lifecycle.
func (s *ReminderScheduler) StartScheduler(lc fx.Lifecycle) {
	interval := defaultIntervalMinutes
	if v := os.Getenv("REMINDER_INTERVAL_MINUTES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			interval = parsed
		}
	}

	ticker := time.NewTicker(time.Duration(interval) * time.Minute)
	done := make(chan bool)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.logger.Info("Starting reminder scheduler", zap.Int("intervalMinutes", interval))
			go func() {
				schedulerCtx := context.Background()
				for {
					select {
					case <-ticker.C:
						s.service.SendPendingReminders(schedulerCtx)
					case <-done:
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.logger.Info("Stopping reminder scheduler")
			ticker.Stop()
			done <- true
			return nil
		},
	})
}
