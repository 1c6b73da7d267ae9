package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Scheduler runs Task once a day at Hour:Minute local time.
type Scheduler struct {
	Hour     int
	Minute   int
	Interval time.Duration // how often the clock is checked; one minute when zero
	Task     func(ctx context.Context, now time.Time) error
	Log      *zap.Logger
}

// Start runs the scheduler in the background until ctx is cancelled. The returned
// channel is closed once it has stopped.
func (s *Scheduler) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	logger := s.Log
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := s.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		defer close(done)
		logger.Info("Scheduler started", zap.Int("hour", s.Hour), zap.Int("minute", s.Minute))
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var lastRun string
		for {
			select {
			case <-ctx.Done():
				logger.Info("Scheduler stopped")
				return
			case <-ticker.C:
			}

			now := time.Now()
			day := now.Format("2006-01-02")
			if now.Hour() != s.Hour || now.Minute() != s.Minute || day == lastRun {
				continue
			}
			lastRun = day

			logger.Info("Triggering scheduled tasks", zap.String("at", now.Format("15:04")))
			if err := s.Task(ctx, now); err != nil {
				logger.Error("Scheduled task failed", zap.Error(err))
			}
		}
	}()
	return done
}
