package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"fieldmatch-backend/internal/jobs"
	"fieldmatch-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner. It fails
// if a configured cron expression does not parse.
func NewScheduler(jobRunner *jobs.JobRunner) (*Scheduler, error) {
	// Create cron with UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	if err := s.registerJobs(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) registerJobs() error {
	cfg := s.jobs.Config().Scheduler

	if _, err := s.cron.AddFunc(cfg.ExpireRequests, s.jobs.ExpireMatchRequests); err != nil {
		logger.Error("Failed to register ExpireMatchRequests job", "error", err)
		return fmt.Errorf("register ExpireMatchRequests: %w", err)
	}

	if _, err := s.cron.AddFunc(cfg.SyncBookings, s.jobs.SyncMatchedBookings); err != nil {
		logger.Error("Failed to register SyncMatchedBookings job", "error", err)
		return fmt.Errorf("register SyncMatchedBookings: %w", err)
	}

	logger.Info("All cron jobs registered successfully", "expireRequests", cfg.ExpireRequests, "syncBookings", cfg.SyncBookings)
	return nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop waits for running jobs and stops the scheduler
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

func (s *Scheduler) EntryCount() int {
	return len(s.cron.Entries())
}
