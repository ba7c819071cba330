// Package scheduler drives the engine's refresh cadence with cron jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/betmaster/internal/engine"
)

// Scheduler manages the refresh cycle job and the daily summary job
type Scheduler struct {
	cron      *cron.Cron
	engine    *engine.Engine
	logger    *logrus.Logger
	mu        sync.RWMutex
	isRunning bool
	jobIDs    []cron.EntryID
}

// NewScheduler creates a scheduler over the decision engine
func NewScheduler(eng *engine.Engine, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		engine: eng,
		logger: logger,
		jobIDs: make([]cron.EntryID, 0),
	}
}

// ScheduleRefresh schedules the engine's refresh cycle at the given
// interval. Each run is bounded to just under the interval so cycles
// never overlap through a hung collaborator.
func (s *Scheduler) ScheduleRefresh(interval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if interval < 5*time.Second {
		interval = 5 * time.Second
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval-time.Second)
		defer cancel()

		if err := s.engine.RunCycle(ctx); err != nil {
			s.logger.WithError(err).Error("Refresh cycle failed")
		}
	}

	entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %ds", int(interval.Seconds())), jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add refresh job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("interval", interval).Info("Scheduled refresh cycle")

	return nil
}

// ScheduleDailySummary schedules a midnight UTC log line with the day's
// session statistics
func (s *Scheduler) ScheduleDailySummary() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		status := s.engine.Status()
		s.logger.WithFields(logrus.Fields{
			"daily_bets":     status.DailyBets,
			"daily_pnl":      status.DailyPnL,
			"open_positions": status.OpenPositions,
			"paused":         status.Paused,
		}).Info("Daily session summary")
	}

	entryID, err := s.cron.AddFunc("0 0 * * *", jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add summary job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.Info("Scheduled daily summary")

	return nil
}

// RatingsFlusher drops cached team ratings
type RatingsFlusher interface {
	Flush()
}

// ScheduleRatingsRefresh schedules a slow job that flushes the ratings
// cache so recalculated ratings are picked up promptly
func (s *Scheduler) ScheduleRatingsRefresh(flusher RatingsFlusher, interval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		flusher.Flush()
		s.logger.Info("Ratings cache flushed")
	}

	entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %ds", int(interval.Seconds())), jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add ratings refresh job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("interval", interval).Info("Scheduled ratings refresh")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the time of the next scheduled job run
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}

	next := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() && (next.IsZero() || entry.Next.Before(next)) {
			next = entry.Next
		}
	}
	return next
}
