package usecases

import (
	"context"

	"github.com/floradex/billing/internal/application/payment/dto"
	"github.com/floradex/billing/internal/application/payment/paymentgateway"
	apperrors "github.com/floradex/billing/internal/shared/errors"
	"github.com/floradex/billing/internal/shared/logger"
)

type VerifyPaymentQuery struct {
	Provider  string
	PaymentID string
}

// VerifyPaymentUseCase point-checks a payment with the vendor. Vendor
// failures come back as IsValid=false, never as an error.
type VerifyPaymentUseCase struct {
	adapters *paymentgateway.Set
	logger   logger.Interface
}

func NewVerifyPaymentUseCase(adapters *paymentgateway.Set, logger logger.Interface) *VerifyPaymentUseCase {
	return &VerifyPaymentUseCase{adapters: adapters, logger: logger}
}

func (uc *VerifyPaymentUseCase) Execute(ctx context.Context, query VerifyPaymentQuery) (*dto.PaymentVerificationDTO, error) {
	if query.PaymentID == "" {
		return nil, apperrors.NewValidationError("payment id is required")
	}
	provider, adapter, err := resolveAdapter(uc.adapters, query.Provider)
	if err != nil {
		return nil, err
	}

	v := adapter.VerifyPayment(ctx, query.PaymentID)
	if v == nil {
		v = &paymentgateway.PaymentVerification{PaymentID: query.PaymentID, Message: "no verification result"}
	}
	if !v.IsValid {
		uc.logger.Infow("payment not verified", "provider", provider, "payment_id", query.PaymentID, "message", v.Message)
	}

	return &dto.PaymentVerificationDTO{
		Provider:  provider.String(),
		PaymentID: query.PaymentID,
		IsValid:   v.IsValid,
		Status:    v.Status,
		Amount:    v.Amount,
		Currency:  v.Currency,
		Message:   v.Message,
	}, nil
}
