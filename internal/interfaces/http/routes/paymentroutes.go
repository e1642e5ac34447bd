package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/floradex/billing/internal/interfaces/http/handlers"
)

// PaymentRouteConfig holds dependencies for the public payment routes.
type PaymentRouteConfig struct {
	PaymentHandler *handlers.PaymentHandler
	PlanHandler    *handlers.PlanHandler
}

// SetupPaymentRoutes configures checkout, webhook, status and plan catalog
// routes. None of them require a token: webhooks authenticate by vendor
// signature.
func SetupPaymentRoutes(engine *gin.Engine, cfg *PaymentRouteConfig) {
	api := engine.Group("/api")
	{
		api.POST("/checkout", cfg.PaymentHandler.CreateCheckout)
		api.POST("/webhooks/:provider", cfg.PaymentHandler.HandleWebhook)
		api.GET("/subscriptions/:provider/:id/status", cfg.PaymentHandler.GetSubscriptionStatus)
		api.POST("/payments/:provider/:id/verify", cfg.PaymentHandler.VerifyPayment)
		api.GET("/plans", cfg.PlanHandler.ListActivePlans)
	}
}
