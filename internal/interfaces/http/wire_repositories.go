package http

import (
	"gorm.io/gorm"

	"github.com/floradex/billing/internal/domain/payment"
	"github.com/floradex/billing/internal/domain/pricing"
	"github.com/floradex/billing/internal/infrastructure/repository"
	shareddb "github.com/floradex/billing/internal/shared/db"
)

// repositories holds all repository instances used by the application.
type repositories struct {
	gatewayRepo      payment.GatewayRepository
	transactionRepo  payment.TransactionRepository
	subscriptionRepo payment.SubscriptionRepository
	planRepo         pricing.PlanRepository
	txManager        *shareddb.TransactionManager
}

func newRepositories(db *gorm.DB) *repositories {
	return &repositories{
		gatewayRepo:      repository.NewPaymentGatewayRepository(db),
		transactionRepo:  repository.NewGatewayTransactionRepository(db),
		subscriptionRepo: repository.NewSubscriptionRepository(db),
		planRepo:         repository.NewPricingPlanRepository(db),
		txManager:        shareddb.NewTransactionManager(db),
	}
}
