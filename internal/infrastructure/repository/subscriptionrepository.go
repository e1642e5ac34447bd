package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/floradex/billing/internal/domain/payment"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	"github.com/floradex/billing/internal/infrastructure/persistence/mappers"
	"github.com/floradex/billing/internal/infrastructure/persistence/models"
	"github.com/floradex/billing/internal/shared/db"
	"github.com/floradex/billing/internal/shared/mapper"
)

// ErrSubscriptionConflict is returned by Update when the row changed since
// it was loaded.
var ErrSubscriptionConflict = errors.New("subscription was modified concurrently")

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(ctx context.Context, s *payment.Subscription) error {
	model := mappers.SubscriptionToModel(s)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	s.SetID(model.ID)
	return nil
}

// Update saves s if the stored version is the one s was loaded at. The
// entity bumps its version once per applied change.
func (r *SubscriptionRepository) Update(ctx context.Context, s *payment.Subscription) error {
	model := mappers.SubscriptionToModel(s)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("id = ? AND version < ?", model.ID, model.Version).
		Updates(map[string]any{
			"status":               model.Status,
			"customer_id":          model.CustomerID,
			"current_period_start": model.CurrentPeriodStart,
			"current_period_end":   model.CurrentPeriodEnd,
			"cancel_at_period_end": model.CancelAtPeriodEnd,
			"version":              model.Version,
			"updated_at":           model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("subscription %d: %w", model.ID, ErrSubscriptionConflict)
	}
	return nil
}

func (r *SubscriptionRepository) GetByVendorID(ctx context.Context, gatewayID uint, vendorSubscriptionID string) (*payment.Subscription, error) {
	var model models.SubscriptionModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("gateway_id = ? AND vendor_subscription_id = ?", gatewayID, vendorSubscriptionID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription by vendor id: %w", err)
	}
	return mappers.SubscriptionToDomain(&model), nil
}

func (r *SubscriptionRepository) ListActiveEndedBefore(ctx context.Context, t time.Time, limit int) ([]*payment.Subscription, error) {
	var rows []models.SubscriptionModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND current_period_end IS NOT NULL AND current_period_end <= ?",
			vo.SubscriptionStatusActive.String(), t.UTC()).
		Order("current_period_end ASC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list ended subscriptions: %w", err)
	}

	return mapper.MapSliceRef(rows, mappers.SubscriptionToDomain), nil
}
