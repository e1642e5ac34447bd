package usecases

import (
	"context"
	"sort"

	"github.com/floradex/billing/internal/domain/pricing"
)

type memPlanRepository struct {
	plans    map[uint]*pricing.Plan
	nextID   uint
	CreateFn func(ctx context.Context, p *pricing.Plan) error
}

func newMemPlanRepository() *memPlanRepository {
	return &memPlanRepository{plans: map[uint]*pricing.Plan{}, nextID: 1}
}

func (r *memPlanRepository) Create(ctx context.Context, p *pricing.Plan) error {
	if r.CreateFn != nil {
		return r.CreateFn(ctx, p)
	}
	p.SetID(r.nextID)
	r.nextID++
	r.plans[p.ID()] = p
	return nil
}

func (r *memPlanRepository) Update(ctx context.Context, p *pricing.Plan) error {
	r.plans[p.ID()] = p
	return nil
}

func (r *memPlanRepository) GetByID(ctx context.Context, id uint) (*pricing.Plan, error) {
	return r.plans[id], nil
}

func (r *memPlanRepository) GetBySlug(ctx context.Context, slug string) (*pricing.Plan, error) {
	for _, p := range r.plans {
		if p.Slug() == slug {
			return p, nil
		}
	}
	return nil, nil
}

func (r *memPlanRepository) List(ctx context.Context, activeOnly bool) ([]*pricing.Plan, error) {
	var out []*pricing.Plan
	for _, p := range r.plans {
		if activeOnly && !p.IsActive() {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}
