package dto

import (
	"sort"
	"time"

	"github.com/floradex/billing/internal/domain/pricing"
	"github.com/floradex/billing/internal/shared/money"
)

type PriceDTO struct {
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
	Display  string `json:"display"`
}

type PlanDTO struct {
	ID          uint       `json:"id"`
	Slug        string     `json:"slug"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Interval    string     `json:"interval"`
	Prices      []PriceDTO `json:"prices"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func ToPlanDTO(p *pricing.Plan) *PlanDTO {
	prices := make([]PriceDTO, 0, len(p.Prices()))
	for code, amount := range p.Prices() {
		prices = append(prices, PriceDTO{Currency: code, Amount: amount, Display: money.FormatMajor(amount, code)})
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i].Currency < prices[j].Currency })

	return &PlanDTO{
		ID:          p.ID(),
		Slug:        p.Slug(),
		Name:        p.Name(),
		Description: p.Description(),
		Interval:    string(p.Interval()),
		Prices:      prices,
		IsActive:    p.IsActive(),
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}
}

func ToPlanDTOs(plans []*pricing.Plan) []*PlanDTO {
	out := make([]*PlanDTO, 0, len(plans))
	for _, p := range plans {
		out = append(out, ToPlanDTO(p))
	}
	return out
}
