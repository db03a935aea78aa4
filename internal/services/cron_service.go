package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/config"
)

const (
	limiterCleanupSchedule = "0 0 * * * *"
	limiterIdleTimeout     = time.Hour
	jobTimeout             = time.Minute
)

// CronService manages scheduled background jobs
type CronService struct {
	cron        *cron.Cron
	reconciler  *ReconciliationService
	rateLimiter *RateLimitService
	cfg         config.ReconciliationConfig
	logger      *logrus.Logger
	jobs        map[string]cron.EntryID
}

// NewCronService creates a new CronService. Either job source may be nil.
func NewCronService(reconciler *ReconciliationService, rateLimiter *RateLimitService, cfg config.ReconciliationConfig, logger *logrus.Logger) *CronService {
	return &CronService{
		cron:        cron.New(cron.WithSeconds()),
		reconciler:  reconciler,
		rateLimiter: rateLimiter,
		cfg:         cfg,
		logger:      logger,
		jobs:        make(map[string]cron.EntryID),
	}
}

// Start schedules all jobs and starts the scheduler
func (s *CronService) Start() error {
	// Cron format: second minute hour day month weekday
	if s.reconciler != nil && s.cfg.Enabled {
		id, err := s.cron.AddFunc(s.cfg.Schedule, s.reconcileJob)
		if err != nil {
			return fmt.Errorf("failed to schedule reconciliation job: %w", err)
		}
		s.jobs["reconcile_availability"] = id
		s.logger.WithField("schedule", s.cfg.Schedule).Info("Scheduled availability reconciliation")
	}

	if s.rateLimiter != nil {
		id, err := s.cron.AddFunc(limiterCleanupSchedule, s.cleanupLimitersJob)
		if err != nil {
			return fmt.Errorf("failed to schedule limiter cleanup job: %w", err)
		}
		s.jobs["cleanup_rate_limiters"] = id
	}

	s.cron.Start()
	s.logger.WithField("jobs", len(s.jobs)).Info("Cron service started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Cron service stopped")
}

func (s *CronService) reconcileJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.reconciler.Run(ctx); err != nil {
		s.logger.WithError(err).Error("Availability reconciliation failed")
	}
}

func (s *CronService) cleanupLimitersJob() {
	removed := s.rateLimiter.Cleanup(limiterIdleTimeout)
	s.logger.WithFields(logrus.Fields{
		"removed": removed,
		"tracked": s.rateLimiter.Tracked(),
	}).Debug("Rate limiters cleaned up")
}

// RunReconciliationNow runs the reconciliation job immediately
func (s *CronService) RunReconciliationNow(ctx context.Context) (int, error) {
	if s.reconciler == nil {
		return 0, fmt.Errorf("reconciliation is not configured")
	}
	return s.reconciler.Run(ctx)
}

// GetJobStatus returns the status of scheduled jobs
func (s *CronService) GetJobStatus() map[string]interface{} {
	jobs := make([]map[string]interface{}, 0, len(s.jobs))
	for name, id := range s.jobs {
		entry := s.cron.Entry(id)
		jobs = append(jobs, map[string]interface{}{
			"name":     name,
			"next_run": entry.Next,
			"prev_run": entry.Prev,
		})
	}

	return map[string]interface{}{
		"running":   len(s.jobs) > 0,
		"job_count": len(s.jobs),
		"jobs":      jobs,
	}
}
