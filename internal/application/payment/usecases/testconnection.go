package usecases

import (
	"context"

	"github.com/floradex/billing/internal/application/payment/dto"
	"github.com/floradex/billing/internal/application/payment/paymentgateway"
	"github.com/floradex/billing/internal/shared/logger"
)

// TestConnectionUseCase reports whether a gateway could be used. It is a
// configuration check; no request reaches the vendor.
type TestConnectionUseCase struct {
	adapters    *paymentgateway.Set
	credentials paymentgateway.CredentialSource
	logger      logger.Interface
}

func NewTestConnectionUseCase(adapters *paymentgateway.Set, credentials paymentgateway.CredentialSource, logger logger.Interface) *TestConnectionUseCase {
	return &TestConnectionUseCase{adapters: adapters, credentials: credentials, logger: logger}
}

func (uc *TestConnectionUseCase) Execute(ctx context.Context, providerKey string) (*dto.ConnectionTestDTO, error) {
	provider, adapter, err := resolveAdapter(uc.adapters, providerKey)
	if err != nil {
		return nil, err
	}

	configured, message, _ := configurationStatus(adapter, uc.credentials)
	if configured {
		message = adapter.Descriptor().DisplayName + " credentials are configured"
	}
	uc.logger.Infow("gateway connection test", "provider", provider, "success", configured)

	return &dto.ConnectionTestDTO{Provider: provider.String(), Success: configured, Message: message}, nil
}
