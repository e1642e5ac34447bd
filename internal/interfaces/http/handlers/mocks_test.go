package handlers

import (
	"context"

	"github.com/floradex/billing/internal/application/payment/dto"
	"github.com/floradex/billing/internal/application/payment/usecases"
	pricingdto "github.com/floradex/billing/internal/application/pricing/dto"
	pricingusecases "github.com/floradex/billing/internal/application/pricing/usecases"
)

// =====================================================================
// Payment use cases
// =====================================================================

type mockCreateCheckoutUC struct {
	got    usecases.CreateCheckoutCommand
	result *dto.CheckoutDTO
	err    error
}

func (m *mockCreateCheckoutUC) Execute(ctx context.Context, cmd usecases.CreateCheckoutCommand) (*dto.CheckoutDTO, error) {
	m.got = cmd
	return m.result, m.err
}

type mockHandleWebhookUC struct {
	got    usecases.HandleWebhookCommand
	result *dto.WebhookResultDTO
	err    error
}

func (m *mockHandleWebhookUC) Execute(ctx context.Context, cmd usecases.HandleWebhookCommand) (*dto.WebhookResultDTO, error) {
	m.got = cmd
	return m.result, m.err
}

type mockGetSubscriptionStatusUC struct {
	got    usecases.GetSubscriptionStatusQuery
	result *dto.SubscriptionStatusDTO
	err    error
}

func (m *mockGetSubscriptionStatusUC) Execute(ctx context.Context, query usecases.GetSubscriptionStatusQuery) (*dto.SubscriptionStatusDTO, error) {
	m.got = query
	return m.result, m.err
}

type mockVerifyPaymentUC struct {
	got    usecases.VerifyPaymentQuery
	result *dto.PaymentVerificationDTO
	err    error
}

func (m *mockVerifyPaymentUC) Execute(ctx context.Context, query usecases.VerifyPaymentQuery) (*dto.PaymentVerificationDTO, error) {
	m.got = query
	return m.result, m.err
}

// =====================================================================
// Gateway use cases
// =====================================================================

type mockListGatewaysUC struct {
	result []*dto.GatewayDTO
	err    error
}

func (m *mockListGatewaysUC) Execute(ctx context.Context) ([]*dto.GatewayDTO, error) {
	return m.result, m.err
}

type mockUpdateGatewayUC struct {
	got    usecases.UpdateGatewayCommand
	result *dto.GatewayDTO
	err    error
}

func (m *mockUpdateGatewayUC) Execute(ctx context.Context, cmd usecases.UpdateGatewayCommand) (*dto.GatewayDTO, error) {
	m.got = cmd
	return m.result, m.err
}

type mockProviderUC[T any] struct {
	gotProvider string
	result      T
	err         error
}

func (m *mockProviderUC[T]) Execute(ctx context.Context, providerKey string) (T, error) {
	m.gotProvider = providerKey
	return m.result, m.err
}

type mockGetTransactionsUC struct {
	got    usecases.GetTransactionsQuery
	result []*dto.TransactionDTO
	err    error
}

func (m *mockGetTransactionsUC) Execute(ctx context.Context, query usecases.GetTransactionsQuery) ([]*dto.TransactionDTO, error) {
	m.got = query
	return m.result, m.err
}

// =====================================================================
// Plan use cases
// =====================================================================

type mockCreatePlanUC struct {
	got    pricingusecases.CreatePlanCommand
	result *pricingdto.PlanDTO
	err    error
}

func (m *mockCreatePlanUC) Execute(ctx context.Context, cmd pricingusecases.CreatePlanCommand) (*pricingdto.PlanDTO, error) {
	m.got = cmd
	return m.result, m.err
}

type mockUpdatePlanUC struct {
	got    pricingusecases.UpdatePlanCommand
	result *pricingdto.PlanDTO
	err    error
}

func (m *mockUpdatePlanUC) Execute(ctx context.Context, cmd pricingusecases.UpdatePlanCommand) (*pricingdto.PlanDTO, error) {
	m.got = cmd
	return m.result, m.err
}

type mockGetPlanUC struct {
	result *pricingdto.PlanDTO
	err    error
}

func (m *mockGetPlanUC) Execute(ctx context.Context, id uint) (*pricingdto.PlanDTO, error) {
	return m.result, m.err
}

type mockListPlansUC struct {
	gotActiveOnly bool
	result        []*pricingdto.PlanDTO
	err           error
}

func (m *mockListPlansUC) Execute(ctx context.Context, activeOnly bool) ([]*pricingdto.PlanDTO, error) {
	m.gotActiveOnly = activeOnly
	return m.result, m.err
}

type mockDeactivatePlanUC struct {
	gotID uint
	err   error
}

func (m *mockDeactivatePlanUC) Execute(ctx context.Context, id uint) error {
	m.gotID = id
	return m.err
}
