package models

import "time"

type SubscriptionModel struct {
	ID                   uint   `gorm:"primaryKey"`
	GatewayID            uint   `gorm:"not null;uniqueIndex:uk_gateway_vendor_subscription,priority:1"`
	Provider             string `gorm:"size:32;not null"`
	VendorSubscriptionID string `gorm:"size:191;not null;uniqueIndex:uk_gateway_vendor_subscription,priority:2"`
	PlanID               *uint  `gorm:"index"`
	CustomerID           string `gorm:"size:191"`
	CustomerEmail        string `gorm:"size:255"`
	Status               string `gorm:"size:20;not null;index:idx_status_period_end,priority:1"`
	CurrentPeriodStart   *time.Time
	CurrentPeriodEnd     *time.Time `gorm:"index:idx_status_period_end,priority:2"`
	CancelAtPeriodEnd    bool       `gorm:"not null;default:false"`
	Version              int        `gorm:"not null;default:1"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (SubscriptionModel) TableName() string {
	return "subscriptions"
}
