package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
)

func newPendingSubscription(t *testing.T) *Subscription {
	t.Helper()
	sub, err := NewSubscription(1, vo.ProviderRazorpay, "sub_123", nil, "cust_1", "a@example.com")
	require.NoError(t, err)
	return sub
}

func TestNewSubscription_Validation(t *testing.T) {
	_, err := NewSubscription(0, vo.ProviderRazorpay, "sub_1", nil, "", "")
	assert.Error(t, err)

	_, err = NewSubscription(1, vo.ProviderRazorpay, "", nil, "", "")
	assert.Error(t, err)

	sub := newPendingSubscription(t)
	assert.Equal(t, vo.SubscriptionStatusPending, sub.Status())
}

func TestSubscription_ApplyActivation(t *testing.T) {
	sub := newPendingSubscription(t)
	end := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	tr := sub.Apply(StatusUpdate{Status: vo.SubscriptionStatusActive, CurrentPeriodEnd: &end})

	assert.True(t, tr.StatusChanged)
	assert.True(t, tr.Modified)
	assert.Equal(t, vo.SubscriptionStatusPending, tr.From)
	assert.Equal(t, vo.SubscriptionStatusActive, sub.Status())
	assert.Equal(t, end, *sub.CurrentPeriodEnd())
}

func TestSubscription_RenewalExtendsPeriodOnly(t *testing.T) {
	sub := newPendingSubscription(t)
	first := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	sub.Apply(StatusUpdate{Status: vo.SubscriptionStatusActive, CurrentPeriodEnd: &first})

	next := first.AddDate(0, 1, 0)
	tr := sub.Apply(StatusUpdate{Status: vo.SubscriptionStatusActive, CurrentPeriodEnd: &next})

	assert.False(t, tr.StatusChanged)
	assert.True(t, tr.Modified)
	assert.Equal(t, next, *sub.CurrentPeriodEnd())
}

func TestSubscription_TerminalStatesIgnoreLateEvents(t *testing.T) {
	for _, terminal := range []vo.SubscriptionStatus{vo.SubscriptionStatusCancelled, vo.SubscriptionStatusExpired} {
		t.Run(string(terminal), func(t *testing.T) {
			sub := newPendingSubscription(t)
			sub.Apply(StatusUpdate{Status: vo.SubscriptionStatusActive})
			sub.Apply(StatusUpdate{Status: terminal})
			version := sub.Version()

			end := time.Now().Add(24 * time.Hour)
			tr := sub.Apply(StatusUpdate{Status: vo.SubscriptionStatusActive, CurrentPeriodEnd: &end})

			assert.True(t, tr.Ignored)
			assert.False(t, tr.Modified)
			assert.Equal(t, terminal, sub.Status())
			assert.Equal(t, version, sub.Version())
		})
	}
}

func TestSubscription_ActiveDoesNotRegressToPending(t *testing.T) {
	sub := newPendingSubscription(t)
	sub.Apply(StatusUpdate{Status: vo.SubscriptionStatusActive})

	tr := sub.Apply(StatusUpdate{Status: vo.SubscriptionStatusPending})

	assert.True(t, tr.Ignored)
	assert.Equal(t, vo.SubscriptionStatusActive, sub.Status())
}

func TestSubscription_IsPastPeriodEnd(t *testing.T) {
	sub := newPendingSubscription(t)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	sub.Apply(StatusUpdate{Status: vo.SubscriptionStatusActive, CurrentPeriodEnd: &end})

	assert.False(t, sub.IsPastPeriodEnd(end.Add(-time.Second)))
	assert.True(t, sub.IsPastPeriodEnd(end))
}
