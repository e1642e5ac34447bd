package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/floradex/billing/internal/interfaces/http/handlers"
	"github.com/floradex/billing/internal/interfaces/http/middleware"
)

// AdminRouteConfig holds dependencies for admin routes.
type AdminRouteConfig struct {
	GatewayHandler *handlers.GatewayHandler
	PlanHandler    *handlers.PlanHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// SetupAdminRoutes configures the gateway registry, transaction ledger and
// plan management routes. Every route requires an admin token.
func SetupAdminRoutes(engine *gin.Engine, cfg *AdminRouteConfig) {
	admin := engine.Group("/api/admin")
	admin.Use(cfg.AuthMiddleware.RequireAdmin()...)
	{
		admin.GET("/pricing", cfg.GatewayHandler.ListGateways)

		gateways := admin.Group("/pricing/gateways/:provider")
		{
			gateways.PATCH("", cfg.GatewayHandler.UpdateGateway)
			gateways.GET("/configuration", cfg.GatewayHandler.CheckConfiguration)
			gateways.POST("/refresh", cfg.GatewayHandler.RefreshStatus)
			gateways.POST("/test", cfg.GatewayHandler.TestConnection)
			gateways.GET("/stats", cfg.GatewayHandler.GetStats)
		}

		admin.GET("/transactions", cfg.GatewayHandler.GetTransactions)

		plans := admin.Group("/pricing-plans")
		{
			plans.POST("", cfg.PlanHandler.CreatePlan)
			plans.GET("", cfg.PlanHandler.ListPlans)
			plans.GET("/:id", cfg.PlanHandler.GetPlan)
			plans.PATCH("/:id", cfg.PlanHandler.UpdatePlan)
			plans.DELETE("/:id", cfg.PlanHandler.DeactivatePlan)
		}
	}
}
