package usecases

import (
	"context"
	"fmt"

	"github.com/floradex/billing/internal/application/payment/dto"
	"github.com/floradex/billing/internal/domain/payment"
	"github.com/floradex/billing/internal/shared/logger"
)

type ListGatewaysUseCase struct {
	gatewayRepo payment.GatewayRepository
	logger      logger.Interface
}

func NewListGatewaysUseCase(gatewayRepo payment.GatewayRepository, logger logger.Interface) *ListGatewaysUseCase {
	return &ListGatewaysUseCase{gatewayRepo: gatewayRepo, logger: logger}
}

func (uc *ListGatewaysUseCase) Execute(ctx context.Context) ([]*dto.GatewayDTO, error) {
	gateways, err := uc.gatewayRepo.List(ctx)
	if err != nil {
		uc.logger.Errorw("failed to list gateways", "error", err)
		return nil, fmt.Errorf("failed to list gateways: %w", err)
	}
	return dto.ToGatewayDTOs(gateways), nil
}
