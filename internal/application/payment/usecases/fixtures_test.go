package usecases

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/floradex/billing/internal/application/payment/paymentgateway"
	"github.com/floradex/billing/internal/domain/payment"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	"github.com/floradex/billing/internal/shared/logger"
)

type fixture struct {
	gateways      *fakeGatewayRepo
	transactions  *fakeTransactionRepo
	subscriptions *fakeSubscriptionRepo
	txManager     *mockTxManager
	logTx         *LogTransactionUseCase
	log           logger.Interface
}

func newFixture() *fixture {
	f := &fixture{
		gateways:      newFakeGatewayRepo(),
		transactions:  &fakeTransactionRepo{},
		subscriptions: newFakeSubscriptionRepo(),
		txManager:     &mockTxManager{},
		log:           logger.NewNopLogger(),
	}
	f.logTx = NewLogTransactionUseCase(f.transactions, f.gateways, f.txManager, f.log)
	return f
}

// addGateway persists an enabled, configured gateway for adapter.
func (f *fixture) addGateway(t *testing.T, adapter paymentgateway.Adapter, primary bool) *payment.Gateway {
	t.Helper()
	d := adapter.Descriptor()
	gw, err := payment.NewGateway(d.Provider, d.DisplayName, d.Currencies, d.Regions, true, "", true)
	require.NoError(t, err)
	gw.SetPrimary(primary)
	return f.gateways.seed(gw)
}

func razorpayAdapter() *mockAdapter {
	return newMockAdapter(vo.ProviderRazorpay, []string{"INR"}, []string{"IN"}, "RAZORPAY_KEY_ID", "RAZORPAY_KEY_SECRET")
}

func stripeAdapter() *mockAdapter {
	return newMockAdapter(vo.ProviderStripe, []string{"USD", "EUR", "INR"}, []string{"US", "DE", "IN"}, "STRIPE_SECRET_KEY")
}

func adapterSet(adapters ...*mockAdapter) *paymentgateway.Set {
	list := make([]paymentgateway.Adapter, 0, len(adapters))
	for _, a := range adapters {
		list = append(list, a)
	}
	return paymentgateway.NewSet(list...)
}
