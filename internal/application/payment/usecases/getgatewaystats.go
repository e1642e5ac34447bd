package usecases

import (
	"context"

	"github.com/floradex/billing/internal/application/payment/dto"
	"github.com/floradex/billing/internal/application/payment/paymentgateway"
	"github.com/floradex/billing/internal/domain/payment"
	"github.com/floradex/billing/internal/shared/logger"
)

type GetGatewayStatsUseCase struct {
	gatewayRepo payment.GatewayRepository
	adapters    *paymentgateway.Set
	logger      logger.Interface
}

func NewGetGatewayStatsUseCase(gatewayRepo payment.GatewayRepository, adapters *paymentgateway.Set, logger logger.Interface) *GetGatewayStatsUseCase {
	return &GetGatewayStatsUseCase{gatewayRepo: gatewayRepo, adapters: adapters, logger: logger}
}

func (uc *GetGatewayStatsUseCase) Execute(ctx context.Context, providerKey string) (*dto.GatewayStatsDTO, error) {
	provider, _, err := resolveAdapter(uc.adapters, providerKey)
	if err != nil {
		return nil, err
	}
	gw, err := loadGateway(ctx, uc.gatewayRepo, provider)
	if err != nil {
		return nil, err
	}
	return dto.ToGatewayStatsDTO(gw), nil
}
