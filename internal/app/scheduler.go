/**
 * @description
 * Cron scheduler setup for the scheduled jobs.
 */
package app

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/madaldho/sub-scribe-light/internal/config"
)

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron   *cron.Cron
	jobs   *Jobs
	logger *slog.Logger
	config config.Config
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(jobs *Jobs, logger *slog.Logger, cfg config.Config) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:   c,
		jobs:   jobs,
		logger: logger,
		config: cfg,
	}
}

// Start registers the jobs and starts the cron scheduler.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.config.RenewalSweepSchedule, s.jobs.ProcessRenewalReminders); err != nil {
		s.logger.Error("failed to schedule renewal reminder sweep", "error", err)
	} else {
		s.logger.Info("scheduled renewal reminder sweep", "schedule", s.config.RenewalSweepSchedule)
	}

	if _, err := s.cron.AddFunc(s.config.RateRefreshSchedule, s.jobs.ProcessCurrencyRates); err != nil {
		s.logger.Error("failed to schedule currency rate refresh", "error", err)
	} else {
		s.logger.Info("scheduled currency rate refresh", "schedule", s.config.RateRefreshSchedule)
	}

	s.cron.Start()
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
