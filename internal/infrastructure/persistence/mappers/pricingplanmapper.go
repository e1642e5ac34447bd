package mappers

import (
	"gorm.io/datatypes"

	"github.com/floradex/billing/internal/domain/pricing"
	"github.com/floradex/billing/internal/infrastructure/persistence/models"
)

func PricingPlanToModel(p *pricing.Plan) *models.PricingPlanModel {
	return &models.PricingPlanModel{
		ID:          p.ID(),
		Slug:        p.Slug(),
		Name:        p.Name(),
		Description: p.Description(),
		Interval:    string(p.Interval()),
		Prices:      datatypes.NewJSONType(p.Prices()),
		IsActive:    p.IsActive(),
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}
}

func PricingPlanToDomain(m *models.PricingPlanModel) *pricing.Plan {
	return pricing.ReconstructPlan(pricing.PlanReconstructParams{
		ID:          m.ID,
		Slug:        m.Slug,
		Name:        m.Name,
		Description: m.Description,
		Interval:    pricing.Interval(m.Interval),
		Prices:      m.Prices.Data(),
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	})
}
