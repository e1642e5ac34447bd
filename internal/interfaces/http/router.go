package http

import (
	"context"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/floradex/billing/internal/infrastructure/config"
	"github.com/floradex/billing/internal/interfaces/http/middleware"
	"github.com/floradex/billing/internal/interfaces/http/routes"
	"github.com/floradex/billing/internal/shared/logger"
)

// Router represents the HTTP router configuration
type Router struct {
	*Container
}

// NewRouter creates a new HTTP router with all dependencies
func NewRouter(db *gorm.DB, cfg *config.Config, log logger.Interface) (*Router, error) {
	c, err := NewContainer(db, cfg, log)
	if err != nil {
		return nil, err
	}
	return &Router{Container: c}, nil
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Logger(r.log))
	r.engine.Use(middleware.Recovery(r.log))

	r.engine.GET("/health", r.hdlrs.healthHandler.HealthCheck)

	routes.SetupPaymentRoutes(r.engine, &routes.PaymentRouteConfig{
		PaymentHandler: r.hdlrs.paymentHandler,
		PlanHandler:    r.hdlrs.planHandler,
	})
	routes.SetupAdminRoutes(r.engine, &routes.AdminRouteConfig{
		GatewayHandler: r.hdlrs.gatewayHandler,
		PlanHandler:    r.hdlrs.planHandler,
		AuthMiddleware: r.authMiddleware,
	})
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Start seeds the gateway registry and starts background work. A failed
// seed is logged and the server still starts; the refresh job and admin
// endpoints recreate missing state.
func (r *Router) Start(ctx context.Context) {
	result, err := r.ucs.initializeGatewaysUC.Execute(ctx)
	if err != nil {
		r.log.Errorw("failed to initialize payment gateways", "error", err)
	} else {
		r.log.Infow("payment gateways initialized",
			"created", result.Created,
			"existing", result.Existing,
		)
	}

	r.startStatusSubscriber()

	if r.schedulerManager != nil {
		r.schedulerManager.Start()
	}
}

// Shutdown stops background work and closes Redis. The database is closed
// by the caller that opened it.
func (r *Router) Shutdown() {
	if r.schedulerManager != nil {
		if err := r.schedulerManager.Stop(); err != nil {
			r.log.Errorw("failed to stop scheduler", "error", err)
		}
	}

	r.stopStatusSubscriber()

	if r.redis != nil {
		if err := r.redis.Close(); err != nil {
			r.log.Errorw("failed to close redis client", "error", err)
		}
	}
}
