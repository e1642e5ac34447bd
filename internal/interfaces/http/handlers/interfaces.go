package handlers

import (
	"context"

	"github.com/floradex/billing/internal/application/payment/dto"
	"github.com/floradex/billing/internal/application/payment/usecases"
	pricingdto "github.com/floradex/billing/internal/application/pricing/dto"
	pricingusecases "github.com/floradex/billing/internal/application/pricing/usecases"
)

// Use case interfaces for PaymentHandler

type createCheckoutUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreateCheckoutCommand) (*dto.CheckoutDTO, error)
}

type handleWebhookUseCase interface {
	Execute(ctx context.Context, cmd usecases.HandleWebhookCommand) (*dto.WebhookResultDTO, error)
}

type getSubscriptionStatusUseCase interface {
	Execute(ctx context.Context, query usecases.GetSubscriptionStatusQuery) (*dto.SubscriptionStatusDTO, error)
}

type verifyPaymentUseCase interface {
	Execute(ctx context.Context, query usecases.VerifyPaymentQuery) (*dto.PaymentVerificationDTO, error)
}

// Use case interfaces for GatewayHandler

type listGatewaysUseCase interface {
	Execute(ctx context.Context) ([]*dto.GatewayDTO, error)
}

type updateGatewayUseCase interface {
	Execute(ctx context.Context, cmd usecases.UpdateGatewayCommand) (*dto.GatewayDTO, error)
}

type providerUseCase[T any] interface {
	Execute(ctx context.Context, providerKey string) (T, error)
}

type getTransactionsUseCase interface {
	Execute(ctx context.Context, query usecases.GetTransactionsQuery) ([]*dto.TransactionDTO, error)
}

// Use case interfaces for PlanHandler

type createPlanUseCase interface {
	Execute(ctx context.Context, cmd pricingusecases.CreatePlanCommand) (*pricingdto.PlanDTO, error)
}

type updatePlanUseCase interface {
	Execute(ctx context.Context, cmd pricingusecases.UpdatePlanCommand) (*pricingdto.PlanDTO, error)
}

type getPlanUseCase interface {
	Execute(ctx context.Context, id uint) (*pricingdto.PlanDTO, error)
}

type listPlansUseCase interface {
	Execute(ctx context.Context, activeOnly bool) ([]*pricingdto.PlanDTO, error)
}

type deactivatePlanUseCase interface {
	Execute(ctx context.Context, id uint) error
}
