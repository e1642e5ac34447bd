package mappers

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/floradex/billing/internal/domain/payment"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	"github.com/floradex/billing/internal/infrastructure/persistence/models"
)

func GatewayTransactionToModel(t *payment.Transaction) *models.GatewayTransactionModel {
	m := &models.GatewayTransactionModel{
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
		CustomerName:   t.CustomerName(),
		ErrorCode:      t.ErrorCode(),
		ErrorMessage:   t.ErrorMessage(),
		CreatedAt:      t.CreatedAt(),
	}
	// Only well-formed JSON goes into the json column.
	if raw := t.ResponseData(); len(raw) > 0 && json.Valid(raw) {
		m.ResponseData = datatypes.JSON(raw)
	}
	return m
}

func GatewayTransactionToDomain(m *models.GatewayTransactionModel) *payment.Transaction {
	return payment.ReconstructTransaction(m.ID, payment.TransactionParams{
		GatewayID:      m.GatewayID,
		TransactionID:  m.TransactionID,
		SubscriptionID: m.SubscriptionID,
		Amount:         m.Amount,
		Currency:       m.Currency,
		Status:         vo.TransactionStatus(m.Status),
		PaymentMethod:  m.PaymentMethod,
		CustomerID:     m.CustomerID,
		CustomerEmail:  m.CustomerEmail,
		CustomerName:   m.CustomerName,
		ErrorCode:      m.ErrorCode,
		ErrorMessage:   m.ErrorMessage,
		ResponseData:   []byte(m.ResponseData),
		CreatedAt:      m.CreatedAt,
	})
}
