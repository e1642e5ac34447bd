// Package scheduler runs the billing background jobs on gocron v2.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/floradex/billing/internal/application/payment/usecases"
	"github.com/floradex/billing/internal/shared/biztime"
	"github.com/floradex/billing/internal/shared/logger"
)

const (
	DefaultExpiryCron            = "0 9 * * *"
	DefaultStatusRefreshInterval = time.Hour
	expiryJobTimeout             = 30 * time.Minute
	gatewayRefreshJobTimeout     = 5 * time.Minute
)

// ExpiryJob settles subscriptions whose paid period has ended.
type ExpiryJob interface {
	Execute(ctx context.Context) (*usecases.ExpireSubscriptionsResult, error)
}

// GatewayRefreshJob re-checks the credential status of every gateway.
type GatewayRefreshJob interface {
	Execute(ctx context.Context) (*usecases.RefreshAllGatewaysResult, error)
}

// SchedulerManager owns the single gocron scheduler of the process. Cron
// expressions are evaluated in the business timezone.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// ========================================
// Subscription expiry (daily cron, start immediately)
// ========================================

// RegisterExpiryJob schedules the expiry sweep on cronExpr. The first run
// happens as soon as the scheduler starts so a restart after a missed
// window catches up.
func (m *SchedulerManager) RegisterExpiryJob(cronExpr string, job ExpiryJob) error {
	if cronExpr == "" {
		cronExpr = DefaultExpiryCron
	}

	_, err := m.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), expiryJobTimeout)
			defer cancel()
			m.runExpiry(ctx, job)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("subscription", "expiry"),
		gocron.WithName("subscription-expiry"),
	)
	if err != nil {
		return fmt.Errorf("register expiry job: %w", err)
	}

	m.logger.Infow("registered subscription expiry job", "cron", cronExpr, "timezone", biztime.Location().String())
	return nil
}

func (m *SchedulerManager) runExpiry(ctx context.Context, job ExpiryJob) {
	m.logger.Debugw("subscription expiry run started")

	startTime := biztime.NowUTC()
	result, err := job.Execute(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		m.logger.Errorw("subscription expiry run failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if result != nil && result.Checked > 0 {
		m.logger.Infow("subscription expiry run completed",
			"checked", result.Checked,
			"expired", result.Expired,
			"renewed", result.Renewed,
			"cancelled", result.Cancelled,
			"failed", result.Failed,
			"duration", time.Since(startTime),
		)
	}
}

// ========================================
// Gateway status refresh (interval, start immediately)
// ========================================

func (m *SchedulerManager) RegisterGatewayRefreshJob(interval time.Duration, job GatewayRefreshJob) error {
	if interval <= 0 {
		interval = DefaultStatusRefreshInterval
	}

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), gatewayRefreshJobTimeout)
			defer cancel()
			m.runGatewayRefresh(ctx, job)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("gateway", "status"),
		gocron.WithName("gateway-status-refresh"),
	)
	if err != nil {
		return fmt.Errorf("register gateway refresh job: %w", err)
	}

	m.logger.Infow("registered gateway status refresh job", "interval", interval.String())
	return nil
}

func (m *SchedulerManager) runGatewayRefresh(ctx context.Context, job GatewayRefreshJob) {
	startTime := biztime.NowUTC()
	result, err := job.Execute(ctx)
	if err != nil {
		m.logger.Errorw("gateway status refresh failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if result != nil {
		m.logger.Debugw("gateway status refresh completed",
			"refreshed", result.Refreshed,
			"failed", result.Failed,
			"duration", time.Since(startTime),
		)
	}
}

// ========================================
// Lifecycle
// ========================================

func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler started", "job_count", len(m.scheduler.Jobs()))
}

// Stop waits for running jobs to finish. A stopped manager cannot be
// started again.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	err := m.scheduler.Shutdown()
	m.started = false
	if err != nil {
		m.logger.Errorw("scheduler shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler stopped")
	return nil
}

func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
