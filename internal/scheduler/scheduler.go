package scheduler

import (
	"fmt"
	"time"

	"carhire-backend/internal/jobs"
	"carhire-backend/internal/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler manages cron jobs for the application
type Scheduler struct {
	cron      *cron.Cron
	jobRunner *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the given job runner
func NewScheduler(jobRunner *jobs.JobRunner) *Scheduler {
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(time.UTC),
	)
	return &Scheduler{
		cron:      c,
		jobRunner: jobRunner,
	}
}

// Start registers all jobs and starts the scheduler
func (s *Scheduler) Start() error {
	cfg := s.jobRunner.Config().Scheduler

	if _, err := s.cron.AddFunc(cfg.ReapExpiredBookings, s.jobRunner.ReapExpiredBookings); err != nil {
		return fmt.Errorf("failed to schedule ReapExpiredBookings: %w", err)
	}
	logger.Info("Scheduled job", "job", "ReapExpiredBookings", "schedule", cfg.ReapExpiredBookings)

	if _, err := s.cron.AddFunc(cfg.SendApprovalReminders, s.jobRunner.SendApprovalReminders); err != nil {
		return fmt.Errorf("failed to schedule SendApprovalReminders: %w", err)
	}
	logger.Info("Scheduled job", "job", "SendApprovalReminders", "schedule", cfg.SendApprovalReminders)

	s.cron.Start()
	logger.Info("Scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Scheduler stopped")
}
