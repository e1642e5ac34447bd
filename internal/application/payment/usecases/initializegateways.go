package usecases

import (
	"context"
	"fmt"

	"github.com/floradex/billing/internal/application/payment/paymentgateway"
	"github.com/floradex/billing/internal/domain/payment"
	"github.com/floradex/billing/internal/shared/logger"
)

type InitializeGatewaysResult struct {
	Created  int
	Existing int
}

// InitializeGatewaysUseCase seeds one gateway row per registered adapter
// and syncs adapters with the persisted test-mode flag. Running it again
// creates nothing.
type InitializeGatewaysUseCase struct {
	gatewayRepo payment.GatewayRepository
	adapters    *paymentgateway.Set
	credentials paymentgateway.CredentialSource
	logger      logger.Interface
}

func NewInitializeGatewaysUseCase(
	gatewayRepo payment.GatewayRepository,
	adapters *paymentgateway.Set,
	credentials paymentgateway.CredentialSource,
	logger logger.Interface,
) *InitializeGatewaysUseCase {
	return &InitializeGatewaysUseCase{
		gatewayRepo: gatewayRepo,
		adapters:    adapters,
		credentials: credentials,
		logger:      logger,
	}
}

func (uc *InitializeGatewaysUseCase) Execute(ctx context.Context) (*InitializeGatewaysResult, error) {
	result := &InitializeGatewaysResult{}

	for _, adapter := range uc.adapters.All() {
		desc := adapter.Descriptor()

		existing, err := uc.gatewayRepo.GetByProvider(ctx, desc.Provider)
		if err != nil {
			return nil, fmt.Errorf("failed to get gateway %s: %w", desc.Provider, err)
		}
		if existing != nil {
			adapter.SetTestMode(existing.IsTestMode())
			result.Existing++
			continue
		}

		configured, message, _ := configurationStatus(adapter, uc.credentials)
		gw, err := payment.NewGateway(
			desc.Provider,
			desc.DisplayName,
			desc.Currencies,
			desc.Regions,
			configured,
			message,
			adapter.IsTestMode(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to build gateway %s: %w", desc.Provider, err)
		}
		if err := uc.gatewayRepo.Create(ctx, gw); err != nil {
			// A concurrent initializer may have won the unique index race.
			if again, getErr := uc.gatewayRepo.GetByProvider(ctx, desc.Provider); getErr == nil && again != nil {
				result.Existing++
				continue
			}
			return nil, fmt.Errorf("failed to create gateway %s: %w", desc.Provider, err)
		}

		uc.logger.Infow("payment gateway initialized",
			"provider", desc.Provider,
			"configured", configured,
			"test_mode", gw.IsTestMode(),
		)
		result.Created++
	}

	return result, nil
}
