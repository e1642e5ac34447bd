package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floradex/billing/internal/application/payment/paymentgateway"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	"github.com/floradex/billing/internal/shared/config"
	"github.com/floradex/billing/internal/shared/logger"
)

func TestNewAdapterSet(t *testing.T) {
	cfg := &config.PaymentConfig{
		Gateways: map[string]config.GatewayConfig{
			"stripe": {Sandbox: false},
		},
	}

	set := NewAdapterSet(cfg, paymentgateway.MapCredentials{}, logger.NewNopLogger())

	all := set.All()
	require.Len(t, all, len(vo.AllProviders()))
	for i, p := range vo.AllProviders() {
		assert.Equal(t, p, all[i].Descriptor().Provider)
	}

	stripeAdapter, ok := set.Get(vo.ProviderStripe)
	require.True(t, ok)
	assert.False(t, stripeAdapter.IsTestMode())

	razorpayAdapter, ok := set.Get(vo.ProviderRazorpay)
	require.True(t, ok)
	assert.True(t, razorpayAdapter.IsTestMode(), "providers without config default to sandbox")
}
