package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floradex/billing/internal/domain/payment"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
)

func activeSubscription(t *testing.T, repo *SubscriptionRepository, gatewayID uint, vendorID string, end time.Time) *payment.Subscription {
	t.Helper()
	s, err := payment.NewSubscription(gatewayID, vo.ProviderStripe, vendorID, nil, "cus_1", "a@example.com")
	require.NoError(t, err)
	start := end.AddDate(0, -1, 0)
	s.Apply(payment.StatusUpdate{Status: vo.SubscriptionStatusActive, CurrentPeriodStart: &start, CurrentPeriodEnd: &end})
	require.NoError(t, repo.Create(context.Background(), s))
	return s
}

func TestSubscriptionRepository_GetByVendorID(t *testing.T) {
	conn := newTestDB(t)
	g := createGateway(t, NewPaymentGatewayRepository(conn), vo.ProviderStripe)
	repo := NewSubscriptionRepository(conn)
	ctx := context.Background()
	end := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	activeSubscription(t, repo, g.ID(), "sub_1", end)

	got, err := repo.GetByVendorID(ctx, g.ID(), "sub_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, vo.SubscriptionStatusActive, got.Status())
	assert.True(t, got.CurrentPeriodEnd().Equal(end))

	missing, err := repo.GetByVendorID(ctx, g.ID(), "sub_404")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSubscriptionRepository_UpdateDetectsStaleWrite(t *testing.T) {
	conn := newTestDB(t)
	g := createGateway(t, NewPaymentGatewayRepository(conn), vo.ProviderStripe)
	repo := NewSubscriptionRepository(conn)
	ctx := context.Background()
	activeSubscription(t, repo, g.ID(), "sub_1", time.Now().UTC().Add(time.Hour))

	a, err := repo.GetByVendorID(ctx, g.ID(), "sub_1")
	require.NoError(t, err)
	b, err := repo.GetByVendorID(ctx, g.ID(), "sub_1")
	require.NoError(t, err)

	a.Apply(payment.StatusUpdate{Status: vo.SubscriptionStatusCancelled})
	require.NoError(t, repo.Update(ctx, a))

	b.Apply(payment.StatusUpdate{Status: vo.SubscriptionStatusExpired})
	err = repo.Update(ctx, b)
	assert.ErrorIs(t, err, ErrSubscriptionConflict)

	got, err := repo.GetByVendorID(ctx, g.ID(), "sub_1")
	require.NoError(t, err)
	assert.Equal(t, vo.SubscriptionStatusCancelled, got.Status())
}

func TestSubscriptionRepository_ListActiveEndedBefore(t *testing.T) {
	conn := newTestDB(t)
	g := createGateway(t, NewPaymentGatewayRepository(conn), vo.ProviderStripe)
	repo := NewSubscriptionRepository(conn)
	ctx := context.Background()
	now := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)

	activeSubscription(t, repo, g.ID(), "late", now.Add(-time.Hour))
	activeSubscription(t, repo, g.ID(), "oldest", now.AddDate(0, 0, -3))
	activeSubscription(t, repo, g.ID(), "future", now.AddDate(0, 0, 3))

	pending, err := payment.NewSubscription(g.ID(), vo.ProviderStripe, "pending", nil, "", "")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, pending))

	got, err := repo.ListActiveEndedBefore(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "oldest", got[0].VendorSubscriptionID())
	assert.Equal(t, "late", got[1].VendorSubscriptionID())

	one, err := repo.ListActiveEndedBefore(ctx, now, 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}
