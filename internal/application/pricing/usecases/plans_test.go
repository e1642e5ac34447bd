package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/floradex/billing/internal/shared/errors"
	"github.com/floradex/billing/internal/shared/logger"
)

func TestPlanLifecycle(t *testing.T) {
	repo := newMemPlanRepository()
	log := logger.NewNopLogger()
	ctx := context.Background()

	created, err := NewCreatePlanUseCase(repo, log).Execute(ctx, CreatePlanCommand{
		Slug:     "pro-yearly",
		Name:     "Pro yearly",
		Interval: "yearly",
		Prices:   map[string]int64{"usd": 9900, "inr": 499900},
	})
	require.NoError(t, err)
	require.Len(t, created.Prices, 2)
	assert.Equal(t, "INR", created.Prices[0].Currency)
	assert.Equal(t, "99.00", created.Prices[1].Display)

	_, err = NewCreatePlanUseCase(repo, log).Execute(ctx, CreatePlanCommand{
		Slug: "pro-yearly", Name: "Again", Interval: "yearly", Prices: map[string]int64{"USD": 1},
	})
	assert.True(t, apperrors.IsConflictError(err))

	name := "Pro annual"
	updated, err := NewUpdatePlanUseCase(repo, log).Execute(ctx, UpdatePlanCommand{ID: created.ID, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Pro annual", updated.Name)

	require.NoError(t, NewDeactivatePlanUseCase(repo, log).Execute(ctx, created.ID))

	public, err := NewListPlansUseCase(repo, log).Execute(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, public)

	all, err := NewListPlansUseCase(repo, log).Execute(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.False(t, all[0].IsActive)
}

func TestPlanUseCases_Errors(t *testing.T) {
	repo := newMemPlanRepository()
	log := logger.NewNopLogger()
	ctx := context.Background()

	_, err := NewCreatePlanUseCase(repo, log).Execute(ctx, CreatePlanCommand{Slug: "x", Name: "X", Interval: "weekly", Prices: map[string]int64{"USD": 1}})
	assert.True(t, apperrors.IsValidationError(err))

	_, err = NewGetPlanUseCase(repo).Execute(ctx, 42)
	assert.True(t, apperrors.IsNotFoundError(err))

	assert.True(t, apperrors.IsNotFoundError(NewDeactivatePlanUseCase(repo, log).Execute(ctx, 42)))
}
