package http

import (
	paymentUsecases "github.com/floradex/billing/internal/application/payment/usecases"
	pricingUsecases "github.com/floradex/billing/internal/application/pricing/usecases"
)

// allUseCases holds every use case the handlers and jobs run.
type allUseCases struct {
	// Checkout and webhooks
	logTransactionUC        *paymentUsecases.LogTransactionUseCase
	createCheckoutUC        *paymentUsecases.CreateCheckoutUseCase
	handleWebhookUC         *paymentUsecases.HandleWebhookUseCase
	getSubscriptionStatusUC *paymentUsecases.GetSubscriptionStatusUseCase
	verifyPaymentUC         *paymentUsecases.VerifyPaymentUseCase
	expireSubscriptionsUC   *paymentUsecases.ExpireSubscriptionsUseCase

	// Gateway registry
	initializeGatewaysUC *paymentUsecases.InitializeGatewaysUseCase
	listGatewaysUC       *paymentUsecases.ListGatewaysUseCase
	updateGatewayUC      *paymentUsecases.UpdateGatewayUseCase
	checkConfigurationUC *paymentUsecases.CheckConfigurationUseCase
	refreshStatusUC      *paymentUsecases.RefreshGatewayStatusUseCase
	refreshAllUC         *paymentUsecases.RefreshAllGatewaysUseCase
	testConnectionUC     *paymentUsecases.TestConnectionUseCase
	getGatewayStatsUC    *paymentUsecases.GetGatewayStatsUseCase
	getTransactionsUC    *paymentUsecases.GetTransactionsUseCase

	// Pricing plans
	createPlanUC     *pricingUsecases.CreatePlanUseCase
	updatePlanUC     *pricingUsecases.UpdatePlanUseCase
	getPlanUC        *pricingUsecases.GetPlanUseCase
	listPlansUC      *pricingUsecases.ListPlansUseCase
	deactivatePlanUC *pricingUsecases.DeactivatePlanUseCase
}

func (c *Container) initUseCases() {
	log := c.log
	repos := c.repos
	ucs := &allUseCases{}
	c.ucs = ucs

	ucs.logTransactionUC = paymentUsecases.NewLogTransactionUseCase(repos.transactionRepo, repos.gatewayRepo, repos.txManager, log)
	ucs.createCheckoutUC = paymentUsecases.NewCreateCheckoutUseCase(
		repos.gatewayRepo,
		repos.subscriptionRepo,
		repos.planRepo,
		c.adapters,
		ucs.logTransactionUC,
		repos.txManager,
		c.cfg.Payment.DefaultReturnURL,
		log,
	)
	ucs.handleWebhookUC = paymentUsecases.NewHandleWebhookUseCase(
		repos.gatewayRepo,
		repos.subscriptionRepo,
		c.adapters,
		ucs.logTransactionUC,
		repos.txManager,
		log,
	)
	ucs.getSubscriptionStatusUC = paymentUsecases.NewGetSubscriptionStatusUseCase(repos.gatewayRepo, repos.subscriptionRepo, c.adapters, log)
	ucs.verifyPaymentUC = paymentUsecases.NewVerifyPaymentUseCase(c.adapters, log)
	ucs.expireSubscriptionsUC = paymentUsecases.NewExpireSubscriptionsUseCase(repos.subscriptionRepo, c.adapters, log)

	// Redis-backed collaborators are only attached when Redis is enabled.
	if c.webhookDedup != nil {
		ucs.handleWebhookUC.SetDeduplicator(c.webhookDedup)
	}
	if c.statusCache != nil {
		ucs.getSubscriptionStatusUC.SetCache(c.statusCache, c.cfg.Payment.StatusCacheTTL())
	}
	if c.statusEventBus != nil {
		ucs.handleWebhookUC.SetPublisher(c.statusEventBus)
		ucs.getSubscriptionStatusUC.SetPublisher(c.statusEventBus)
		ucs.expireSubscriptionsUC.SetPublisher(c.statusEventBus)
	}

	ucs.initializeGatewaysUC = paymentUsecases.NewInitializeGatewaysUseCase(repos.gatewayRepo, c.adapters, c.credentials, log)
	ucs.listGatewaysUC = paymentUsecases.NewListGatewaysUseCase(repos.gatewayRepo, log)
	ucs.updateGatewayUC = paymentUsecases.NewUpdateGatewayUseCase(repos.gatewayRepo, c.adapters, repos.txManager, log)
	ucs.checkConfigurationUC = paymentUsecases.NewCheckConfigurationUseCase(c.adapters, c.credentials, log)
	ucs.refreshStatusUC = paymentUsecases.NewRefreshGatewayStatusUseCase(repos.gatewayRepo, c.adapters, c.credentials, log)
	ucs.refreshAllUC = paymentUsecases.NewRefreshAllGatewaysUseCase(ucs.refreshStatusUC, c.adapters, log)
	ucs.testConnectionUC = paymentUsecases.NewTestConnectionUseCase(c.adapters, c.credentials, log)
	ucs.getGatewayStatsUC = paymentUsecases.NewGetGatewayStatsUseCase(repos.gatewayRepo, c.adapters, log)
	ucs.getTransactionsUC = paymentUsecases.NewGetTransactionsUseCase(repos.transactionRepo, log)

	ucs.createPlanUC = pricingUsecases.NewCreatePlanUseCase(repos.planRepo, log)
	ucs.updatePlanUC = pricingUsecases.NewUpdatePlanUseCase(repos.planRepo, log)
	ucs.getPlanUC = pricingUsecases.NewGetPlanUseCase(repos.planRepo)
	ucs.listPlansUC = pricingUsecases.NewListPlansUseCase(repos.planRepo, log)
	ucs.deactivatePlanUC = pricingUsecases.NewDeactivatePlanUseCase(repos.planRepo, log)
}
