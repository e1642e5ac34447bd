package usecases

import (
	"context"

	"github.com/floradex/billing/internal/application/payment/dto"
	"github.com/floradex/billing/internal/application/payment/paymentgateway"
	"github.com/floradex/billing/internal/domain/payment"
	apperrors "github.com/floradex/billing/internal/shared/errors"
	"github.com/floradex/billing/internal/shared/logger"
)

// UpdateGatewayCommand is a partial update; nil fields are left alone.
// ActorID 0 is the system and is not recorded as the configurer.
type UpdateGatewayCommand struct {
	Provider            string
	DisplayName         *string
	IsEnabled           *bool
	IsTestMode          *bool
	IsPrimary           *bool
	SupportedCurrencies []string
	SupportedCountries  []string
	ActorID             uint
}

type UpdateGatewayUseCase struct {
	gatewayRepo payment.GatewayRepository
	adapters    *paymentgateway.Set
	txManager   TransactionManager
	logger      logger.Interface
}

func NewUpdateGatewayUseCase(
	gatewayRepo payment.GatewayRepository,
	adapters *paymentgateway.Set,
	txManager TransactionManager,
	logger logger.Interface,
) *UpdateGatewayUseCase {
	return &UpdateGatewayUseCase{
		gatewayRepo: gatewayRepo,
		adapters:    adapters,
		txManager:   txManager,
		logger:      logger,
	}
}

func (uc *UpdateGatewayUseCase) Execute(ctx context.Context, cmd UpdateGatewayCommand) (*dto.GatewayDTO, error) {
	provider, adapter, err := resolveAdapter(uc.adapters, cmd.Provider)
	if err != nil {
		return nil, err
	}

	var updated *payment.Gateway
	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		gw, err := loadGateway(txCtx, uc.gatewayRepo, provider)
		if err != nil {
			return err
		}

		if cmd.DisplayName != nil {
			if err := gw.SetDisplayName(*cmd.DisplayName); err != nil {
				return apperrors.NewValidationError(err.Error())
			}
		}
		if cmd.SupportedCurrencies != nil {
			if err := gw.SetSupportedCurrencies(cmd.SupportedCurrencies, adapter.SupportsCurrency); err != nil {
				return apperrors.NewValidationError(err.Error())
			}
		}
		if cmd.SupportedCountries != nil {
			if err := gw.SetSupportedCountries(cmd.SupportedCountries, adapter.SupportsRegion); err != nil {
				return apperrors.NewValidationError(err.Error())
			}
		}
		if cmd.IsEnabled != nil {
			gw.SetEnabled(*cmd.IsEnabled)
		}
		if cmd.IsTestMode != nil {
			gw.SetTestMode(*cmd.IsTestMode)
		}
		if cmd.IsPrimary != nil {
			if *cmd.IsPrimary {
				if err := uc.gatewayRepo.ClearPrimaryExcept(txCtx, gw.ID()); err != nil {
					return err
				}
			}
			gw.SetPrimary(*cmd.IsPrimary)
		}
		gw.MarkConfiguredBy(cmd.ActorID)

		if err := uc.gatewayRepo.Update(txCtx, gw); err != nil {
			return err
		}
		updated = gw
		return nil
	})
	if err != nil {
		if !apperrors.IsAppError(err) {
			uc.logger.Errorw("failed to update gateway", "provider", provider, "error", err)
		}
		return nil, err
	}

	if cmd.IsTestMode != nil {
		adapter.SetTestMode(updated.IsTestMode())
	}

	uc.logger.Infow("payment gateway updated",
		"provider", provider,
		"actor_id", cmd.ActorID,
		"enabled", updated.IsEnabled(),
		"primary", updated.IsPrimary(),
		"test_mode", updated.IsTestMode(),
	)
	return dto.ToGatewayDTO(updated), nil
}
