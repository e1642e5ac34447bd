package usecases

import (
	"context"

	"github.com/floradex/billing/internal/application/payment/dto"
	"github.com/floradex/billing/internal/application/payment/paymentgateway"
	"github.com/floradex/billing/internal/shared/logger"
)

type CheckConfigurationUseCase struct {
	adapters    *paymentgateway.Set
	credentials paymentgateway.CredentialSource
	logger      logger.Interface
}

func NewCheckConfigurationUseCase(adapters *paymentgateway.Set, credentials paymentgateway.CredentialSource, logger logger.Interface) *CheckConfigurationUseCase {
	return &CheckConfigurationUseCase{adapters: adapters, credentials: credentials, logger: logger}
}

func (uc *CheckConfigurationUseCase) Execute(ctx context.Context, providerKey string) (*dto.ConfigurationDTO, error) {
	provider, adapter, err := resolveAdapter(uc.adapters, providerKey)
	if err != nil {
		return nil, err
	}

	configured, message, missing := configurationStatus(adapter, uc.credentials)
	if missing == nil {
		missing = []string{}
	}
	return &dto.ConfigurationDTO{
		Provider:     provider.String(),
		IsConfigured: configured,
		Message:      message,
		Missing:      missing,
	}, nil
}
