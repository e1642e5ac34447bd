package http

import (
	"context"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/floradex/billing/internal/application/payment/paymentgateway"
	"github.com/floradex/billing/internal/infrastructure/auth"
	"github.com/floradex/billing/internal/infrastructure/cache"
	"github.com/floradex/billing/internal/infrastructure/config"
	infraPayment "github.com/floradex/billing/internal/infrastructure/payment"
	"github.com/floradex/billing/internal/infrastructure/pubsub"
	"github.com/floradex/billing/internal/infrastructure/scheduler"
	"github.com/floradex/billing/internal/interfaces/http/middleware"
	"github.com/floradex/billing/internal/shared/logger"
)

// Container holds the infrastructure components, repositories, use cases,
// handlers and background services of the billing service, and owns their
// shutdown order.
type Container struct {
	// Core infrastructure
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	repos *repositories
	ucs   *allUseCases
	hdlrs *allHandlers

	// Payment gateways
	credentials *infraPayment.EnvCredentials
	adapters    *paymentgateway.Set

	jwtSvc         *auth.JWTService
	authMiddleware *middleware.AuthMiddleware

	// Redis-backed helpers; nil when Redis is disabled
	webhookDedup   *cache.WebhookDeduplicator
	statusCache    *cache.SubscriptionStatusCache
	statusEventBus *pubsub.StatusEventBus

	schedulerManager *scheduler.SchedulerManager

	subscriberCancel   context.CancelFunc
	subscriberCancelMu sync.Mutex
}

// NewContainer wires every component from configuration. Redis is optional:
// without it webhook dedup falls back to the transaction ledger and status
// polls are not cached.
func NewContainer(db *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
	}

	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}
	c.initGateways()
	c.initUseCases()
	c.initHandlers()
	if err := c.initScheduler(); err != nil {
		return nil, err
	}

	return c, nil
}
