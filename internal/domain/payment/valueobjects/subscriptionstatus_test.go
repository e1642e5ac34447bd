package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionStatus_Transitions(t *testing.T) {
	all := []SubscriptionStatus{
		SubscriptionStatusPending,
		SubscriptionStatusActive,
		SubscriptionStatusCancelled,
		SubscriptionStatusExpired,
	}
	allowed := map[[2]SubscriptionStatus]bool{
		{SubscriptionStatusPending, SubscriptionStatusActive}:    true,
		{SubscriptionStatusPending, SubscriptionStatusCancelled}: true,
		{SubscriptionStatusPending, SubscriptionStatusExpired}:   true,
		{SubscriptionStatusActive, SubscriptionStatusCancelled}:  true,
		{SubscriptionStatusActive, SubscriptionStatusExpired}:    true,
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]SubscriptionStatus{from, to}], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestSubscriptionStatus_Terminal(t *testing.T) {
	assert.True(t, SubscriptionStatusCancelled.IsTerminal())
	assert.True(t, SubscriptionStatusExpired.IsTerminal())
	assert.False(t, SubscriptionStatusActive.IsTerminal())
	assert.False(t, SubscriptionStatus("bogus").IsValid())
}

func TestParseProvider(t *testing.T) {
	p, err := ParseProvider(" Razorpay ")
	assert.NoError(t, err)
	assert.Equal(t, ProviderRazorpay, p)

	_, err = ParseProvider("square")
	assert.Error(t, err)
	assert.Len(t, AllProviders(), 5)
}
