package payment

import (
	"github.com/floradex/billing/internal/application/payment/paymentgateway"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	"github.com/floradex/billing/internal/infrastructure/payment/cashfree"
	"github.com/floradex/billing/internal/infrastructure/payment/midtrans"
	"github.com/floradex/billing/internal/infrastructure/payment/paypal"
	"github.com/floradex/billing/internal/infrastructure/payment/razorpay"
	"github.com/floradex/billing/internal/infrastructure/payment/stripe"
	"github.com/floradex/billing/internal/infrastructure/payment/vendorapi"
	"github.com/floradex/billing/internal/shared/config"
	"github.com/floradex/billing/internal/shared/logger"
)

type constructor func(vendorapi.Options) paymentgateway.Adapter

// constructors is the registration order; it is also the order the
// registry initialises gateways in.
var constructors = []struct {
	provider vo.Provider
	build    constructor
}{
	{vo.ProviderRazorpay, func(o vendorapi.Options) paymentgateway.Adapter { return razorpay.New(o) }},
	{vo.ProviderCashfree, func(o vendorapi.Options) paymentgateway.Adapter { return cashfree.New(o) }},
	{vo.ProviderPayPal, func(o vendorapi.Options) paymentgateway.Adapter { return paypal.New(o) }},
	{vo.ProviderStripe, func(o vendorapi.Options) paymentgateway.Adapter { return stripe.New(o) }},
	{vo.ProviderMidtrans, func(o vendorapi.Options) paymentgateway.Adapter { return midtrans.New(o) }},
}

// NewAdapterSet builds every vendor adapter from the payment config. Test
// mode starts from the config and is later synchronised with the
// persisted gateway rows by the registry.
func NewAdapterSet(cfg *config.PaymentConfig, creds paymentgateway.CredentialSource, log logger.Interface) *paymentgateway.Set {
	adapters := make([]paymentgateway.Adapter, 0, len(constructors))
	for _, c := range constructors {
		gc := cfg.Gateway(c.provider.String())
		adapters = append(adapters, c.build(vendorapi.Options{
			Credentials: creds,
			BaseURL:     gc.BaseURL,
			TestMode:    gc.Sandbox,
			Timeout:     cfg.HTTPTimeout(),
			Logger:      log,
		}))
	}
	return paymentgateway.NewSet(adapters...)
}
