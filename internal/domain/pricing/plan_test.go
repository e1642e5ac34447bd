package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
)

func TestNewPlan(t *testing.T) {
	p, err := NewPlan("pro-monthly", " Pro ", "", IntervalMonthly, map[string]int64{"inr": 49900, "usd": 999})
	require.NoError(t, err)

	assert.Equal(t, "Pro", p.Name())
	assert.True(t, p.IsActive())
	amount, ok := p.PriceFor("usd")
	assert.True(t, ok)
	assert.EqualValues(t, 999, amount)
	_, ok = p.PriceFor("EUR")
	assert.False(t, ok)
	assert.Equal(t, vo.CheckoutTypeSubscription, p.Interval().CheckoutType())
	assert.Equal(t, vo.BillingIntervalMonthly, p.Interval().BillingInterval())
}

func TestNewPlan_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		slug     string
		planName string
		interval Interval
		prices   map[string]int64
	}{
		{"bad slug", "Pro Plan", "Pro", IntervalMonthly, map[string]int64{"USD": 1}},
		{"empty name", "pro", " ", IntervalMonthly, map[string]int64{"USD": 1}},
		{"bad interval", "pro", "Pro", "weekly", map[string]int64{"USD": 1}},
		{"no prices", "pro", "Pro", IntervalMonthly, nil},
		{"zero price", "pro", "Pro", IntervalMonthly, map[string]int64{"USD": 0}},
		{"bad currency", "pro", "Pro", IntervalMonthly, map[string]int64{"DOLLAR": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlan(tt.slug, tt.planName, "", tt.interval, tt.prices)
			assert.Error(t, err)
		})
	}
}

func TestPlan_OneTimeInterval(t *testing.T) {
	p, err := NewPlan("lifetime", "Lifetime", "", IntervalOneTime, map[string]int64{"IDR": 150000})
	require.NoError(t, err)

	assert.Equal(t, vo.CheckoutTypeOneTime, p.Interval().CheckoutType())
	assert.Empty(t, p.Interval().BillingInterval())

	p.Deactivate()
	assert.False(t, p.IsActive())
}
