package models

import (
	"time"

	"gorm.io/datatypes"
)

// GatewayTransactionModel is an append-only ledger row. The composite
// unique index is what makes webhook redelivery a no-op.
type GatewayTransactionModel struct {
	ID             uint   `gorm:"primaryKey"`
	GatewayID      uint   `gorm:"not null;uniqueIndex:uk_gateway_transaction,priority:1;index:idx_gateway_created,priority:1"`
	TransactionID  string `gorm:"size:191;not null;uniqueIndex:uk_gateway_transaction,priority:2"`
	SubscriptionID string `gorm:"size:191;index"`
	Amount         int64  `gorm:"not null;default:0"`
	Currency       string `gorm:"size:3"`
	Status         string `gorm:"size:20;not null"`
	PaymentMethod  string `gorm:"size:50"`
	CustomerID     string `gorm:"size:191"`
	CustomerEmail  string `gorm:"size:255"`
	CustomerName   string `gorm:"size:255"`
	ErrorCode      string `gorm:"size:100"`
	ErrorMessage   string `gorm:"type:text"`
	ResponseData   datatypes.JSON
	CreatedAt      time.Time `gorm:"index:idx_gateway_created,priority:2"`
}

func (GatewayTransactionModel) TableName() string {
	return "gateway_transactions"
}
