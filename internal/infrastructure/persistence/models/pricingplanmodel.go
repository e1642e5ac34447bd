package models

import (
	"time"

	"gorm.io/datatypes"
)

type PricingPlanModel struct {
	ID          uint                                 `gorm:"primaryKey"`
	Slug        string                               `gorm:"size:100;not null;uniqueIndex"`
	Name        string                               `gorm:"size:255;not null"`
	Description string                               `gorm:"type:text"`
	Interval    string                               `gorm:"column:billing_interval;size:20;not null"`
	Prices      datatypes.JSONType[map[string]int64] `gorm:"type:json;not null"`
	IsActive    bool                                 `gorm:"not null;default:true;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (PricingPlanModel) TableName() string {
	return "pricing_plans"
}
