package paypal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floradex/billing/internal/application/payment/paymentgateway"
	"github.com/floradex/billing/internal/domain/payment"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	"github.com/floradex/billing/internal/infrastructure/payment/vendorapi"
)

var testCreds = paymentgateway.MapCredentials{
	CredClientID:     "client_1",
	CredClientSecret: "secret_1",
	CredWebhookID:    "WH-1",
}

// fakePayPal serves the OAuth endpoint and delegates the rest to api.
func fakePayPal(t *testing.T, tokenCalls *int32, api http.HandlerFunc) *Adapter {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/oauth2/token" {
			if tokenCalls != nil {
				atomic.AddInt32(tokenCalls, 1)
			}
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "client_1", user)
			assert.Equal(t, "secret_1", pass)
			_, _ = w.Write([]byte(`{"access_token":"tok_1","expires_in":3600}`))
			return
		}
		assert.Equal(t, "Bearer tok_1", r.Header.Get("Authorization"))
		api(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(vendorapi.Options{Credentials: testCreds, BaseURL: srv.URL, TestMode: true, Timeout: time.Second})
}

func webhookRequest(body string) paymentgateway.WebhookRequest {
	h := http.Header{}
	for _, name := range verifyHeaders {
		h.Set(name, "v-"+name)
	}
	return paymentgateway.WebhookRequest{Body: []byte(body), Headers: h}
}

func verifying(status string, events http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/notifications/verify-webhook-signature" {
			_, _ = w.Write([]byte(`{"verification_status":"` + status + `"}`))
			return
		}
		if events != nil {
			events(w, r)
		}
	}
}

func TestDescriptor(t *testing.T) {
	a := New(vendorapi.Options{Credentials: testCreds})

	d := a.Descriptor()
	assert.Equal(t, vo.ProviderPayPal, d.Provider)
	assert.NotContains(t, d.RequiredCredentials, CredWebhookID)
	assert.True(t, a.SupportsCurrency("usd"))
	assert.False(t, a.SupportsCurrency("INR"))
}

func TestCreateCheckout_Demo(t *testing.T) {
	a := New(vendorapi.Options{Credentials: paymentgateway.MapCredentials{}})

	resp, err := a.CreateCheckout(context.Background(), paymentgateway.CheckoutParams{Amount: 999, Currency: "USD"})
	require.NoError(t, err)
	assert.True(t, resp.Demo)
	assert.True(t, paymentgateway.IsDemoURL(resp.CheckoutURL))
}

func TestCreateCheckout_Subscription(t *testing.T) {
	var tokenCalls int32
	var requestIDs []string
	a := fakePayPal(t, &tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		requestIDs = append(requestIDs, r.Header.Get("PayPal-Request-Id"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		switch r.URL.Path {
		case "/v1/catalogs/products":
			assert.Equal(t, "Pro", body["name"])
			_, _ = w.Write([]byte(`{"id":"PROD-1"}`))
		case "/v1/billing/plans":
			assert.Equal(t, "PROD-1", body["product_id"])
			cycle := body["billing_cycles"].([]any)[0].(map[string]any)
			assert.Equal(t, "YEAR", cycle["frequency"].(map[string]any)["interval_unit"])
			price := cycle["pricing_scheme"].(map[string]any)["fixed_price"].(map[string]any)
			assert.Equal(t, "99.00", price["value"])
			assert.Equal(t, "USD", price["currency_code"])
			_, _ = w.Write([]byte(`{"id":"P-1"}`))
		case "/v1/billing/subscriptions":
			assert.Equal(t, "P-1", body["plan_id"])
			_, _ = w.Write([]byte(`{"id":"I-SUB1","status":"APPROVAL_PENDING","links":[{"rel":"approve","href":"https://paypal.test/approve/I-SUB1"}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	resp, err := a.CreateCheckout(context.Background(), paymentgateway.CheckoutParams{
		Amount:        9900,
		Currency:      "USD",
		ProductName:   "Pro",
		CustomerEmail: "a@example.com",
		Type:          vo.CheckoutTypeSubscription,
		Interval:      vo.BillingIntervalYearly,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://paypal.test/approve/I-SUB1", resp.CheckoutURL)
	assert.Equal(t, "I-SUB1", resp.SubscriptionID)
	assert.False(t, resp.Demo)

	assert.EqualValues(t, 1, atomic.LoadInt32(&tokenCalls))
	require.Len(t, requestIDs, 3)
	assert.NotEmpty(t, requestIDs[0])
	assert.NotEqual(t, requestIDs[0], requestIDs[1])
}

func TestCreateCheckout_OneTime(t *testing.T) {
	a := fakePayPal(t, nil, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/checkout/orders", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "CAPTURE", body["intent"])
		_, _ = w.Write([]byte(`{"id":"ORDER-1","status":"CREATED","links":[{"rel":"payer-action","href":"https://paypal.test/pay/ORDER-1"}]}`))
	})

	resp, err := a.CreateCheckout(context.Background(), paymentgateway.CheckoutParams{Amount: 500, Currency: "EUR", Type: vo.CheckoutTypeOneTime})
	require.NoError(t, err)
	assert.Equal(t, "ORDER-1", resp.PaymentID)
	assert.Equal(t, "https://paypal.test/pay/ORDER-1", resp.CheckoutURL)
	assert.Empty(t, resp.SubscriptionID)
}

func TestTokenCache_Reuse(t *testing.T) {
	var tokenCalls int32
	a := fakePayPal(t, &tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"ORDER-1","status":"COMPLETED","purchase_units":[{"amount":{"currency_code":"USD","value":"5.00"}}]}`))
	})

	a.VerifyPayment(context.Background(), "ORDER-1")
	a.VerifyPayment(context.Background(), "ORDER-1")
	assert.EqualValues(t, 1, atomic.LoadInt32(&tokenCalls))

	a.tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	a.VerifyPayment(context.Background(), "ORDER-1")
	assert.EqualValues(t, 2, atomic.LoadInt32(&tokenCalls))
}

func TestHandleWebhook_SubscriptionActivated(t *testing.T) {
	a := fakePayPal(t, nil, verifying("SUCCESS", nil))

	body := `{"id":"WH-EVT-1","event_type":"BILLING.SUBSCRIPTION.ACTIVATED","resource":{
		"id":"I-SUB1","status":"ACTIVE","custom_id":"7","start_time":"2026-10-01T00:00:00Z",
		"subscriber":{"email_address":"a@example.com","payer_id":"PAYER1"},
		"billing_info":{"next_billing_time":"2026-11-01T00:00:00Z"}}}`

	res, err := a.HandleWebhook(context.Background(), webhookRequest(body))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, vo.SubscriptionStatusActive, res.Status)
	assert.Equal(t, "I-SUB1", res.SubscriptionID)
	assert.Equal(t, "PAYER1", res.CustomerID)
	assert.Equal(t, "WH-EVT-1", res.LedgerKey())
	require.NotNil(t, res.CurrentPeriodEnd)
	assert.Equal(t, time.Month(11), res.CurrentPeriodEnd.Month())
	assert.Equal(t, "7", res.Metadata["plan_id"])
}

func TestHandleWebhook_SaleCompleted(t *testing.T) {
	a := fakePayPal(t, nil, verifying("SUCCESS", nil))

	body := `{"id":"WH-EVT-2","event_type":"PAYMENT.SALE.COMPLETED","resource":{
		"id":"SALE-1","billing_agreement_id":"I-SUB1","amount":{"total":"99.00","currency":"USD"}}}`

	res, err := a.HandleWebhook(context.Background(), webhookRequest(body))
	require.NoError(t, err)
	assert.Equal(t, vo.SubscriptionStatusActive, res.Status)
	assert.Equal(t, "I-SUB1", res.SubscriptionID)
	require.NotNil(t, res.Payment)
	assert.Equal(t, "SALE-1", res.LedgerKey())
	assert.EqualValues(t, 9900, res.Payment.Amount)
	assert.Equal(t, "USD", res.Payment.Currency)
	assert.Equal(t, vo.TransactionStatusSuccess, res.Payment.Status)
}

func TestHandleWebhook_CaptureDenied(t *testing.T) {
	a := fakePayPal(t, nil, verifying("SUCCESS", nil))

	body := `{"id":"WH-EVT-3","event_type":"PAYMENT.CAPTURE.DENIED","resource":{
		"id":"CAP-1","amount":{"value":"5.00","currency_code":"EUR"},"status_details":{"reason":"RISK"},
		"supplementary_data":{"related_ids":{"order_id":"ORDER-1"}}}}`

	res, err := a.HandleWebhook(context.Background(), webhookRequest(body))
	require.NoError(t, err)
	assert.Empty(t, res.Status)
	assert.Empty(t, res.SubscriptionID)
	assert.Equal(t, vo.TransactionStatusFailed, res.Payment.Status)
	assert.Equal(t, "RISK", res.Payment.ErrorMessage)
	assert.Equal(t, "ORDER-1", res.Metadata["order_id"])
}

func TestHandleWebhook_VerificationFailure(t *testing.T) {
	a := fakePayPal(t, nil, verifying("FAILURE", nil))

	_, err := a.HandleWebhook(context.Background(), webhookRequest(`{"id":"x","event_type":"PAYMENT.SALE.COMPLETED"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, payment.ErrInvalidSignature))
}

func TestHandleWebhook_FailsClosed(t *testing.T) {
	a := fakePayPal(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := a.HandleWebhook(context.Background(), webhookRequest(`{"id":"x","event_type":"PAYMENT.SALE.COMPLETED"}`))
	assert.True(t, errors.Is(err, payment.ErrInvalidSignature))

	req := webhookRequest(`{"id":"x"}`)
	req.Headers.Del("PAYPAL-TRANSMISSION-SIG")
	_, err = a.HandleWebhook(context.Background(), req)
	assert.True(t, errors.Is(err, payment.ErrInvalidSignature))
}

func TestHandleWebhook_NoWebhookID(t *testing.T) {
	a := New(vendorapi.Options{Credentials: paymentgateway.MapCredentials{CredClientID: "c", CredClientSecret: "s"}})

	_, err := a.HandleWebhook(context.Background(), webhookRequest(`{}`))
	assert.True(t, errors.Is(err, payment.ErrInvalidSignature))
}

func TestHandleWebhook_UnknownEvent(t *testing.T) {
	a := fakePayPal(t, nil, verifying("SUCCESS", nil))

	res, err := a.HandleWebhook(context.Background(), webhookRequest(`{"id":"x","event_type":"CUSTOMER.DISPUTE.CREATED","resource":{}}`))
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestGetSubscriptionStatus(t *testing.T) {
	a := fakePayPal(t, nil, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/billing/subscriptions/I-SUB1":
			_, _ = w.Write([]byte(`{"id":"I-SUB1","status":"SUSPENDED","billing_info":{"next_billing_time":"2026-11-01T00:00:00Z"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"name":"RESOURCE_NOT_FOUND"}`))
		}
	})

	st, err := a.GetSubscriptionStatus(context.Background(), "I-SUB1")
	require.NoError(t, err)
	assert.Equal(t, vo.SubscriptionStatusPending, st.Status)
	assert.Equal(t, "SUSPENDED", st.VendorStatus)

	_, err = a.GetSubscriptionStatus(context.Background(), "I-MISSING")
	assert.True(t, errors.Is(err, payment.ErrSubscriptionNotFound))
}

func TestVerifyPayment(t *testing.T) {
	a := fakePayPal(t, nil, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/checkout/orders/ORDER-1":
			_, _ = w.Write([]byte(`{"id":"ORDER-1","status":"COMPLETED","purchase_units":[{"amount":{"currency_code":"USD","value":"5.00"}}]}`))
		case "/v2/checkout/orders/ORDER-2":
			_, _ = w.Write([]byte(`{"id":"ORDER-2","status":"APPROVED"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	v := a.VerifyPayment(context.Background(), "ORDER-1")
	assert.True(t, v.IsValid)
	assert.EqualValues(t, 500, v.Amount)

	v = a.VerifyPayment(context.Background(), "ORDER-2")
	assert.False(t, v.IsValid)
	assert.Equal(t, "APPROVED", v.Status)

	v = a.VerifyPayment(context.Background(), "ORDER-3")
	assert.False(t, v.IsValid)
	assert.NotEmpty(t, v.Message)
}
