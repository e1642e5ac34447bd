package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/floradex/billing/internal/domain/payment"
	"github.com/floradex/billing/internal/shared/errors"
	"github.com/floradex/billing/internal/shared/utils"
)

// paymentAppError converts a PaymentError into the AppError carrying its
// HTTP status. Other errors are returned unchanged.
func paymentAppError(err error, message string) error {
	pe, ok := payment.AsPaymentError(err)
	if !ok {
		return err
	}

	var appErr *errors.AppError
	switch pe.Kind {
	case payment.ErrKindInvalidSignature:
		appErr = errors.NewUnauthorizedError("Invalid signature", pe.Error())
	case payment.ErrKindSubscriptionNotFound:
		appErr = errors.NewNotFoundError("Subscription not found", pe.Error())
	default:
		appErr = errors.NewBadGatewayError("Payment provider error", pe.Error())
	}
	if message != "" {
		appErr.Message = message
	}
	return appErr.WithCause(err)
}

func respondError(c *gin.Context, err error) {
	utils.ErrorResponseWithError(c, paymentAppError(err, ""))
}
