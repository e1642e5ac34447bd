package dto

import (
	"time"

	"github.com/floradex/billing/internal/domain/payment"
	"github.com/floradex/billing/internal/shared/money"
)

type TransactionDTO struct {
	ID             uint      `json:"id"`
	GatewayID      uint      `json:"gateway_id"`
	TransactionID  string    `json:"transaction_id"`
	SubscriptionID string    `json:"subscription_id,omitempty"`
	Amount         int64     `json:"amount"`
	AmountDisplay  string    `json:"amount_display,omitempty"`
	Currency       string    `json:"currency,omitempty"`
	Status         string    `json:"status"`
	PaymentMethod  string    `json:"payment_method,omitempty"`
	CustomerID     string    `json:"customer_id,omitempty"`
	CustomerEmail  string    `json:"customer_email,omitempty"`
	ErrorCode      string    `json:"error_code,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func ToTransactionDTO(t *payment.Transaction) *TransactionDTO {
	d := &TransactionDTO{
		ID:             t.ID(),
		GatewayID:      t.GatewayID(),
		TransactionID:  t.TransactionID(),
		SubscriptionID: t.SubscriptionID(),
		Amount:         t.Amount(),
		Currency:       t.Currency(),
		Status:         string(t.Status()),
		PaymentMethod:  t.PaymentMethod(),
		CustomerID:     t.CustomerID(),
		CustomerEmail:  t.CustomerEmail(),
		ErrorCode:      t.ErrorCode(),
		ErrorMessage:   t.ErrorMessage(),
		CreatedAt:      t.CreatedAt(),
	}
	if t.Currency() != "" {
		d.AmountDisplay = money.FormatMajor(t.Amount(), t.Currency())
	}
	return d
}
