package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// Scheduler runs the refresh job on a fixed interval. The first sweep starts
// immediately and sweeps never overlap.
type Scheduler struct {
	scheduler *gocron.Scheduler
	job       *RefreshJob
	interval  time.Duration
	logger    zerolog.Logger
}

// NewScheduler creates a scheduler for job. A non-positive interval uses the
// default warmer interval.
func NewScheduler(job *RefreshJob, interval time.Duration, logger zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultWarmerConfig().Interval
	}

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	return &Scheduler{
		scheduler: s,
		job:       job,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the sweep and returns without waiting for it. Sweeps use
// ctx, so cancelling it aborts a sweep in progress.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.scheduler.Every(s.interval).Do(func() {
		if ctx.Err() != nil {
			return
		}
		s.job.Run(ctx)
	})
	if err != nil {
		return fmt.Errorf("scheduling cache warmer: %w", err)
	}

	s.scheduler.StartAsync()
	s.logger.Info().Dur("interval", s.interval).Msg("cache warmer scheduled")
	return nil
}

// Stop cancels future sweeps.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}
