package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floradex/billing/internal/domain/pricing"
)

func TestPricingPlanRepository_RoundTrip(t *testing.T) {
	repo := NewPricingPlanRepository(newTestDB(t))
	ctx := context.Background()

	plan, err := pricing.NewPlan("pro-monthly", "Pro", "Everything", pricing.IntervalMonthly,
		map[string]int64{"INR": 49900, "usd": 999})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, plan))
	require.NotZero(t, plan.ID())

	got, err := repo.GetBySlug(ctx, "pro-monthly")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, pricing.IntervalMonthly, got.Interval())
	price, ok := got.PriceFor("usd")
	assert.True(t, ok)
	assert.Equal(t, int64(999), price)

	require.NoError(t, got.SetPrices(map[string]int64{"EUR": 899}))
	got.Deactivate()
	require.NoError(t, repo.Update(ctx, got))

	reloaded, err := repo.GetByID(ctx, plan.ID())
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive())
	assert.Equal(t, map[string]int64{"EUR": 899}, reloaded.Prices())
}

func TestPricingPlanRepository_List(t *testing.T) {
	repo := NewPricingPlanRepository(newTestDB(t))
	ctx := context.Background()

	for _, slug := range []string{"basic", "pro"} {
		p, err := pricing.NewPlan(slug, slug, "", pricing.IntervalYearly, map[string]int64{"USD": 100})
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, p))
	}
	pro, err := repo.GetBySlug(ctx, "pro")
	require.NoError(t, err)
	pro.Deactivate()
	require.NoError(t, repo.Update(ctx, pro))

	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "basic", active[0].Slug())

	missing, err := repo.GetBySlug(ctx, "enterprise")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
