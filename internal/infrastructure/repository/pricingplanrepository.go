package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/floradex/billing/internal/domain/pricing"
	"github.com/floradex/billing/internal/infrastructure/persistence/mappers"
	"github.com/floradex/billing/internal/infrastructure/persistence/models"
	"github.com/floradex/billing/internal/shared/db"
	"github.com/floradex/billing/internal/shared/mapper"
)

type PricingPlanRepository struct {
	db *gorm.DB
}

func NewPricingPlanRepository(db *gorm.DB) *PricingPlanRepository {
	return &PricingPlanRepository{db: db}
}

func (r *PricingPlanRepository) Create(ctx context.Context, p *pricing.Plan) error {
	model := mappers.PricingPlanToModel(p)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create pricing plan: %w", err)
	}

	p.SetID(model.ID)
	return nil
}

func (r *PricingPlanRepository) Update(ctx context.Context, p *pricing.Plan) error {
	model := mappers.PricingPlanToModel(p)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PricingPlanModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"name":             model.Name,
			"description":      model.Description,
			"billing_interval": model.Interval,
			"prices":           model.Prices,
			"is_active":        model.IsActive,
			"updated_at":       model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update pricing plan: %w", result.Error)
	}
	return nil
}

func (r *PricingPlanRepository) GetByID(ctx context.Context, id uint) (*pricing.Plan, error) {
	var model models.PricingPlanModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pricing plan: %w", err)
	}
	return mappers.PricingPlanToDomain(&model), nil
}

func (r *PricingPlanRepository) GetBySlug(ctx context.Context, slug string) (*pricing.Plan, error) {
	var model models.PricingPlanModel

	if err := db.GetTxFromContext(ctx, r.db).Where("slug = ?", slug).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pricing plan by slug: %w", err)
	}
	return mappers.PricingPlanToDomain(&model), nil
}

func (r *PricingPlanRepository) List(ctx context.Context, activeOnly bool) ([]*pricing.Plan, error) {
	query := db.GetTxFromContext(ctx, r.db).Order("id ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var rows []models.PricingPlanModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list pricing plans: %w", err)
	}

	return mapper.MapSliceRef(rows, mappers.PricingPlanToDomain), nil
}
