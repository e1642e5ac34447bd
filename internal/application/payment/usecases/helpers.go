package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/floradex/billing/internal/application/payment/paymentgateway"
	"github.com/floradex/billing/internal/domain/payment"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	apperrors "github.com/floradex/billing/internal/shared/errors"
)

// resolveAdapter parses a provider key from a URL and finds its adapter.
// Unknown providers are NotFound, so a caller cannot tell a typo from a
// disabled vendor.
func resolveAdapter(adapters *paymentgateway.Set, raw string) (vo.Provider, paymentgateway.Adapter, error) {
	provider, err := vo.ParseProvider(raw)
	if err != nil {
		return "", nil, apperrors.NewNotFoundError("payment provider not found", raw)
	}
	adapter, ok := adapters.Get(provider)
	if !ok {
		return "", nil, apperrors.NewNotFoundError("payment provider not found", raw)
	}
	return provider, adapter, nil
}

func loadGateway(ctx context.Context, repo payment.GatewayRepository, provider vo.Provider) (*payment.Gateway, error) {
	gw, err := repo.GetByProvider(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to get gateway: %w", err)
	}
	if gw == nil {
		return nil, apperrors.NewNotFoundError("payment gateway not found", provider.String())
	}
	return gw, nil
}

// configurationStatus checks credential presence only; it never calls the
// vendor.
func configurationStatus(adapter paymentgateway.Adapter, creds paymentgateway.CredentialSource) (bool, string, []string) {
	missing := paymentgateway.MissingCredentials(creds, adapter.Descriptor())
	if len(missing) == 0 {
		return true, "all required credentials are present", nil
	}
	return false, "missing credentials: " + strings.Join(missing, ", "), missing
}
