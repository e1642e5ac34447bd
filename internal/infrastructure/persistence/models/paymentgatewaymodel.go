package models

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentGatewayModel struct {
	ID                     uint                         `gorm:"primaryKey"`
	Provider               string                       `gorm:"size:32;not null;uniqueIndex"`
	DisplayName            string                       `gorm:"size:100;not null"`
	IsEnabled              bool                         `gorm:"not null;default:false"`
	IsTestMode             bool                         `gorm:"not null;default:true"`
	IsPrimary              bool                         `gorm:"not null;default:false;index"`
	SupportedCurrencies    datatypes.JSONType[[]string] `gorm:"type:json"`
	SupportedCountries     datatypes.JSONType[[]string] `gorm:"type:json"`
	ConfigStatus           string                       `gorm:"size:20;not null"`
	StatusMessage          string                       `gorm:"size:512"`
	LastStatusCheck        *time.Time
	TotalTransactions      int64 `gorm:"not null;default:0"`
	SuccessfulTransactions int64 `gorm:"not null;default:0"`
	FailedTransactions     int64 `gorm:"not null;default:0"`
	TotalRevenue           int64 `gorm:"not null;default:0"`
	LastConfiguredBy       *uint
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (PaymentGatewayModel) TableName() string {
	return "payment_gateways"
}
