package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/erp/pos-gateway/internal/domain/access"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Reconciler runs one access reconciliation pass.
type Reconciler interface {
	Reconcile(ctx context.Context) (*access.ReconciliationReport, error)
}

// ReconcileSchedulerConfig holds configuration for the scheduled
// reconciliation runs.
type ReconcileSchedulerConfig struct {
	// Enabled indicates if scheduled reconciliation is active
	Enabled bool
	// CronSchedule is a standard 5-field cron expression
	CronSchedule string
	// RunAtStartup triggers one pass immediately on Start
	RunAtStartup bool
	// JobTimeout bounds a single reconciliation pass
	JobTimeout time.Duration
}

// DefaultReconcileSchedulerConfig returns the default schedule: hourly,
// with a startup pass.
func DefaultReconcileSchedulerConfig() ReconcileSchedulerConfig {
	return ReconcileSchedulerConfig{
		Enabled:      true,
		CronSchedule: "0 * * * *",
		RunAtStartup: true,
		JobTimeout:   5 * time.Minute,
	}
}

// ReconcileScheduler runs the access reconciliation engine on a cron
// schedule. Runs never overlap: a pass still in flight causes the next
// tick to be skipped.
type ReconcileScheduler struct {
	config     ReconcileSchedulerConfig
	reconciler Reconciler
	logger     *zap.Logger

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
	inFlight  bool
	wg        sync.WaitGroup
}

// NewReconcileScheduler creates a new ReconcileScheduler
func NewReconcileScheduler(config ReconcileSchedulerConfig, reconciler Reconciler, logger *zap.Logger) *ReconcileScheduler {
	if config.CronSchedule == "" {
		config.CronSchedule = DefaultReconcileSchedulerConfig().CronSchedule
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = DefaultReconcileSchedulerConfig().JobTimeout
	}
	return &ReconcileScheduler{
		config:     config,
		reconciler: reconciler,
		logger:     logger,
	}
}

// Start registers the cron entry and optionally runs the startup pass.
func (s *ReconcileScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if !s.config.Enabled {
		s.logger.Info("reconcile scheduler disabled")
		return nil
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.config.CronSchedule, func() {
		s.runOnce(ctx)
	}); err != nil {
		return err
	}
	s.cron.Start()
	s.isRunning = true

	s.logger.Info("reconcile scheduler started",
		zap.String("schedule", s.config.CronSchedule),
		zap.Bool("run_at_startup", s.config.RunAtStartup))

	if s.config.RunAtStartup {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runOnce(ctx)
		}()
	}
	return nil
}

// Stop halts the schedule and waits for an in-flight pass to finish.
func (s *ReconcileScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cronStop := s.cron.Stop()
	s.mu.Unlock()

	<-cronStop.Done()
	s.wg.Wait()
	s.logger.Info("reconcile scheduler stopped")
}

// runOnce executes a single reconciliation pass with overlap protection.
func (s *ReconcileScheduler) runOnce(ctx context.Context) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		s.logger.Warn("reconciliation pass skipped, previous pass still running")
		return
	}
	s.inFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	runCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	started := time.Now()
	report, err := s.reconciler.Reconcile(runCtx)
	if err != nil {
		s.logger.Error("scheduled reconciliation failed",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(started)))
		return
	}

	s.logger.Info("scheduled reconciliation completed",
		zap.Int("grants_created", report.GrantsCreated),
		zap.Int("grants_updated", report.GrantsUpdated),
		zap.Int("grants_removed", report.GrantsRemoved),
		zap.Int("roles_assigned", report.RolesAssigned),
		zap.Int("errors", len(report.Errors)),
		zap.Duration("elapsed", time.Since(started)))
}
