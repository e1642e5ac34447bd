package http

import (
	"context"

	"github.com/floradex/billing/internal/interfaces/http/handlers"
	"github.com/floradex/billing/internal/interfaces/http/middleware"
)

// allHandlers holds all HTTP handler instances.
type allHandlers struct {
	paymentHandler *handlers.PaymentHandler
	gatewayHandler *handlers.GatewayHandler
	planHandler    *handlers.PlanHandler
	healthHandler  *handlers.HealthHandler
}

func (c *Container) initHandlers() {
	log := c.log
	ucs := c.ucs

	c.authMiddleware = middleware.NewAuthMiddleware(c.jwtSvc, log)

	c.hdlrs = &allHandlers{
		paymentHandler: handlers.NewPaymentHandler(
			ucs.createCheckoutUC,
			ucs.handleWebhookUC,
			ucs.getSubscriptionStatusUC,
			ucs.verifyPaymentUC,
			log,
		),
		gatewayHandler: handlers.NewGatewayHandler(handlers.GatewayHandlerDeps{
			ListGateways:       ucs.listGatewaysUC,
			UpdateGateway:      ucs.updateGatewayUC,
			CheckConfiguration: ucs.checkConfigurationUC,
			RefreshStatus:      ucs.refreshStatusUC,
			TestConnection:     ucs.testConnectionUC,
			GetStats:           ucs.getGatewayStatsUC,
			GetTransactions:    ucs.getTransactionsUC,
		}, log),
		planHandler: handlers.NewPlanHandler(
			ucs.createPlanUC,
			ucs.updatePlanUC,
			ucs.getPlanUC,
			ucs.listPlansUC,
			ucs.deactivatePlanUC,
			log,
		),
		healthHandler: handlers.NewHealthHandler(c.healthChecks()),
	}
}

func (c *Container) healthChecks() map[string]handlers.Pinger {
	checks := map[string]handlers.Pinger{
		"database": func(ctx context.Context) error {
			sqlDB, err := c.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if c.redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return c.redis.Ping(ctx).Err()
		}
	}
	return checks
}
