package usecases

import (
	"context"

	"github.com/floradex/billing/internal/application/payment/dto"
	"github.com/floradex/billing/internal/application/payment/paymentgateway"
	"github.com/floradex/billing/internal/domain/payment"
	"github.com/floradex/billing/internal/shared/logger"
)

// RefreshGatewayStatusUseCase re-checks credentials and disables a gateway
// whose credentials disappeared. It never enables one.
type RefreshGatewayStatusUseCase struct {
	gatewayRepo payment.GatewayRepository
	adapters    *paymentgateway.Set
	credentials paymentgateway.CredentialSource
	logger      logger.Interface
}

func NewRefreshGatewayStatusUseCase(
	gatewayRepo payment.GatewayRepository,
	adapters *paymentgateway.Set,
	credentials paymentgateway.CredentialSource,
	logger logger.Interface,
) *RefreshGatewayStatusUseCase {
	return &RefreshGatewayStatusUseCase{
		gatewayRepo: gatewayRepo,
		adapters:    adapters,
		credentials: credentials,
		logger:      logger,
	}
}

func (uc *RefreshGatewayStatusUseCase) Execute(ctx context.Context, providerKey string) (*dto.GatewayDTO, error) {
	provider, adapter, err := resolveAdapter(uc.adapters, providerKey)
	if err != nil {
		return nil, err
	}
	gw, err := loadGateway(ctx, uc.gatewayRepo, provider)
	if err != nil {
		return nil, err
	}

	configured, message, _ := configurationStatus(adapter, uc.credentials)
	gw.RecordConfigCheck(configured, message)
	if !configured && gw.IsEnabled() {
		gw.SetEnabled(false)
		uc.logger.Warnw("gateway disabled, credentials missing", "provider", provider, "message", message)
	}

	if err := uc.gatewayRepo.Update(ctx, gw); err != nil {
		uc.logger.Errorw("failed to save gateway status", "provider", provider, "error", err)
		return nil, err
	}
	return dto.ToGatewayDTO(gw), nil
}

type RefreshAllGatewaysResult struct {
	Refreshed int
	Failed    int
}

// RefreshAllGatewaysUseCase runs the refresh for every registered
// provider, continuing past individual failures.
type RefreshAllGatewaysUseCase struct {
	refresh  *RefreshGatewayStatusUseCase
	adapters *paymentgateway.Set
	logger   logger.Interface
}

func NewRefreshAllGatewaysUseCase(refresh *RefreshGatewayStatusUseCase, adapters *paymentgateway.Set, logger logger.Interface) *RefreshAllGatewaysUseCase {
	return &RefreshAllGatewaysUseCase{refresh: refresh, adapters: adapters, logger: logger}
}

func (uc *RefreshAllGatewaysUseCase) Execute(ctx context.Context) (*RefreshAllGatewaysResult, error) {
	result := &RefreshAllGatewaysResult{}
	for _, adapter := range uc.adapters.All() {
		provider := adapter.Descriptor().Provider
		if _, err := uc.refresh.Execute(ctx, provider.String()); err != nil {
			uc.logger.Warnw("gateway refresh failed", "provider", provider, "error", err)
			result.Failed++
			continue
		}
		result.Refreshed++
	}
	return result, ctx.Err()
}
