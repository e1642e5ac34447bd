package paymentgateway

import (
	"testing"

	"github.com/stretchr/testify/assert"

	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
)

func TestCapabilities(t *testing.T) {
	c := Capabilities{Currencies: []string{"INR", "USD"}, Regions: []string{"IN"}}

	assert.True(t, c.SupportsCurrency("inr"))
	assert.True(t, c.SupportsCurrency(" USD "))
	assert.False(t, c.SupportsCurrency("EUR"))
	assert.True(t, c.SupportsRegion("in"))
	assert.False(t, c.SupportsRegion("US"))
}

func TestDemoCheckout(t *testing.T) {
	resp := DemoCheckout(vo.ProviderCashfree, "demo_abc")

	assert.Equal(t, "demo://checkout/cashfree/demo_abc", resp.CheckoutURL)
	assert.True(t, resp.Demo)
	assert.True(t, IsDemoURL(resp.CheckoutURL))
	assert.Empty(t, resp.SubscriptionID)
}

func TestWebhookResult_LedgerKey(t *testing.T) {
	r := &WebhookResult{EventID: "evt_1"}
	assert.Equal(t, "evt_1", r.LedgerKey())

	r.Payment = &PaymentRecord{PaymentID: "pay_1"}
	assert.Equal(t, "pay_1", r.LedgerKey())
}

func TestMissingCredentials(t *testing.T) {
	d := Descriptor{RequiredCredentials: []string{"KEY_ID", "KEY_SECRET"}}

	assert.Equal(t, []string{"KEY_SECRET"}, MissingCredentials(MapCredentials{"KEY_ID": "x", "KEY_SECRET": " "}, d))
	assert.Empty(t, MissingCredentials(MapCredentials{"KEY_ID": "x", "KEY_SECRET": "y"}, d))
}
