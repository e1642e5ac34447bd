package http

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/floradex/billing/internal/infrastructure/auth"
	"github.com/floradex/billing/internal/infrastructure/cache"
	"github.com/floradex/billing/internal/infrastructure/config"
	infraPayment "github.com/floradex/billing/internal/infrastructure/payment"
	"github.com/floradex/billing/internal/infrastructure/pubsub"
	"github.com/floradex/billing/internal/infrastructure/scheduler"
	"github.com/floradex/billing/internal/shared/goroutine"
	"github.com/floradex/billing/internal/shared/logger"
)

// ============================================================
// Infrastructure - Redis, Repositories, Auth
// ============================================================

func (c *Container) initInfrastructure() error {
	cfg := c.cfg
	log := c.log

	if cfg.Redis.Enabled {
		client, err := initRedis(cfg, log)
		if err != nil {
			return err
		}
		c.redis = client
		c.webhookDedup = cache.NewWebhookDeduplicator(client, cfg.Payment.WebhookDedupTTL())
		c.statusCache = cache.NewSubscriptionStatusCache(client, log)
		c.statusEventBus = pubsub.NewStatusEventBus(client, log)
	} else {
		log.Infow("redis disabled, webhook dedup falls back to the transaction ledger")
	}

	c.repos = newRepositories(c.db)
	c.jwtSvc = auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.Issuer, cfg.Auth.JWT.AccessExpMinutes)
	return nil
}

// initRedis creates and tests the Redis client connection.
func initRedis(cfg *config.Config, log logger.Interface) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.GetAddr(), err)
	}
	log.Infow("redis connection established successfully", "addr", cfg.Redis.GetAddr())

	return client, nil
}

// ============================================================
// Payment gateways
// ============================================================

func (c *Container) initGateways() {
	c.credentials = infraPayment.NewEnvCredentials(c.cfg.Payment.Credentials)
	c.adapters = infraPayment.NewAdapterSet(&c.cfg.Payment, c.credentials, c.log)
}

// ============================================================
// Background jobs
// ============================================================

func (c *Container) initScheduler() error {
	cfg := c.cfg.Scheduler
	if !cfg.Enabled {
		c.log.Infow("scheduler disabled")
		return nil
	}

	mgr, err := scheduler.NewSchedulerManager(c.log)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	cronExpr := cfg.ExpiryCron
	if cronExpr == "" {
		cronExpr = scheduler.DefaultExpiryCron
	}
	if err := mgr.RegisterExpiryJob(cronExpr, c.ucs.expireSubscriptionsUC); err != nil {
		return fmt.Errorf("failed to register subscription expiry job: %w", err)
	}

	interval := scheduler.DefaultStatusRefreshInterval
	if cfg.StatusRefreshIntervalMinutes > 0 {
		interval = time.Duration(cfg.StatusRefreshIntervalMinutes) * time.Minute
	}
	if err := mgr.RegisterGatewayRefreshJob(interval, c.ucs.refreshAllUC); err != nil {
		return fmt.Errorf("failed to register gateway refresh job: %w", err)
	}

	c.schedulerManager = mgr
	return nil
}

// startStatusSubscriber listens for status changes from every instance and
// drops the matching cache entries.
func (c *Container) startStatusSubscriber() {
	if c.statusEventBus == nil || c.statusCache == nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.subscriberCancelMu.Lock()
	c.subscriberCancel = cancel
	c.subscriberCancelMu.Unlock()

	handler := pubsub.InvalidateCache(c.statusCache, c.log)
	goroutine.SafeGo(c.log, "status-event-subscriber", func() {
		err := c.statusEventBus.Subscribe(ctx, handler)
		logSubscriberExit(c.log, "status event subscriber", err)
	})
}

func (c *Container) stopStatusSubscriber() {
	c.subscriberCancelMu.Lock()
	defer c.subscriberCancelMu.Unlock()
	if c.subscriberCancel != nil {
		c.subscriberCancel()
		c.subscriberCancel = nil
	}
}

// logSubscriberExit logs a subscriber exit at the appropriate level.
// Context cancellation during shutdown is logged at INFO.
func logSubscriberExit(log logger.Interface, name string, err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		log.Infow(name+" stopped", "reason", "context canceled")
		return
	}
	log.Errorw(name+" failed", "error", err)
}
