package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ExpiredCleaner removes rows past their lifetime (refresh tokens, login attempts)
type ExpiredCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// CronService manages scheduled background jobs
type CronService struct {
	cron        *cron.Cron
	drafts      *DraftPersistenceService
	cleaners    []ExpiredCleaner
	audit       *AuditService
	auditRetain time.Duration
	logger      *logrus.Logger

	mu        sync.Mutex
	lastPurge *JobRun
}

// JobRun records the outcome of one job execution
type JobRun struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Affected  int64         `json:"affected"`
	Error     string        `json:"error,omitempty"`
}

// NewCronService creates a new CronService
func NewCronService(drafts *DraftPersistenceService, audit *AuditService, logger *logrus.Logger, cleaners ...ExpiredCleaner) *CronService {
	// seconds precision: "second minute hour day month weekday"
	c := cron.New(cron.WithSeconds())

	return &CronService{
		cron:        c,
		drafts:      drafts,
		cleaners:    cleaners,
		audit:       audit,
		auditRetain: 90 * 24 * time.Hour,
		logger:      logger,
	}
}

// Start starts all cron jobs
func (s *CronService) Start() error {
	s.logger.Info("Starting cron service...")

	// "0 0 * * * *" = at minute 0 of every hour
	if _, err := s.cron.AddFunc("0 0 * * * *", s.purgeDraftsJob); err != nil {
		return fmt.Errorf("failed to schedule draft purge job: %w", err)
	}
	s.logger.Info("✓ Scheduled: Purge stale booking drafts (hourly)")

	// "0 30 3 * * *" = at 3:30 AM every day
	if _, err := s.cron.AddFunc("0 30 3 * * *", s.cleanupExpiredJob); err != nil {
		return fmt.Errorf("failed to schedule token cleanup job: %w", err)
	}
	s.logger.Info("✓ Scheduled: Cleanup expired tokens and login attempts (daily at 3:30 AM)")

	if s.audit != nil {
		// "0 0 4 * * 0" = at 4:00 AM every Sunday
		if _, err := s.cron.AddFunc("0 0 4 * * 0", s.cleanupAuditJob); err != nil {
			return fmt.Errorf("failed to schedule audit cleanup job: %w", err)
		}
		s.logger.Info("✓ Scheduled: Cleanup old audit logs (Sundays at 4:00 AM)")
	}

	s.cron.Start()
	s.logger.Info("✓ Cron service started successfully")

	return nil
}

// Stop stops all cron jobs and waits for running ones
func (s *CronService) Stop() {
	s.logger.Info("Stopping cron service...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("✓ Cron service stopped")
}

func (s *CronService) purgeDraftsJob() {
	s.logger.Info("[CRON] Starting stale draft purge job...")
	run := s.RunPurgeNow(context.Background())
	if run.Error != "" {
		s.logger.WithField("error", run.Error).Error("[CRON ERROR] Failed to purge booking drafts")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"deleted":  run.Affected,
		"duration": run.Duration,
	}).Info("[CRON] ✓ Purged stale booking drafts")
}

func (s *CronService) cleanupExpiredJob() {
	ctx := context.Background()
	var total int64
	for _, cleaner := range s.cleaners {
		n, err := cleaner.CleanupExpired(ctx)
		if err != nil {
			s.logger.WithError(err).Error("[CRON ERROR] Failed to cleanup expired rows")
			continue
		}
		total += n
	}
	s.logger.WithField("deleted", total).Info("[CRON] ✓ Cleaned up expired tokens and login attempts")
}

func (s *CronService) cleanupAuditJob() {
	n, err := s.audit.CleanupOldAuditLogs(context.Background(), s.auditRetain)
	if err != nil {
		s.logger.WithError(err).Error("[CRON ERROR] Failed to cleanup audit logs")
		return
	}
	s.logger.WithField("deleted", n).Info("[CRON] ✓ Cleaned up old audit logs")
}

// RunPurgeNow runs the draft purge immediately and records the result
func (s *CronService) RunPurgeNow(ctx context.Context) JobRun {
	run := JobRun{StartedAt: time.Now()}
	deleted, err := s.drafts.PurgeExpired(ctx)
	run.Duration = time.Since(run.StartedAt)
	run.Affected = deleted
	if err != nil {
		run.Error = err.Error()
	}

	s.mu.Lock()
	s.lastPurge = &run
	s.mu.Unlock()
	return run
}

// GetJobStatus returns the status of scheduled jobs
func (s *CronService) GetJobStatus() map[string]interface{} {
	entries := s.cron.Entries()

	jobs := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, map[string]interface{}{
			"id":       entry.ID,
			"next_run": entry.Next,
			"prev_run": entry.Prev,
		})
	}

	s.mu.Lock()
	lastPurge := s.lastPurge
	s.mu.Unlock()

	return map[string]interface{}{
		"running":    len(entries) > 0,
		"job_count":  len(entries),
		"jobs":       jobs,
		"last_purge": lastPurge,
	}
}
