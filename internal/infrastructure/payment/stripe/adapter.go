// Package stripe integrates Stripe Checkout through stripe-go.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	stripego "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/floradex/billing/internal/application/payment/paymentgateway"
	"github.com/floradex/billing/internal/domain/payment"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	"github.com/floradex/billing/internal/infrastructure/payment/vendorapi"
	"github.com/floradex/billing/internal/shared/logger"
)

const (
	CredSecretKey     = "STRIPE_SECRET_KEY"
	CredWebhookSecret = "STRIPE_WEBHOOK_SECRET"

	headerSignature = "Stripe-Signature"
)

var capabilities = paymentgateway.Capabilities{
	Currencies: []string{"USD", "EUR", "GBP", "CAD", "AUD", "JPY", "SGD", "INR"},
	Regions:    []string{"US", "GB", "CA", "AU", "DE", "FR", "ES", "IT", "NL", "IE", "SG", "JP"},
}

// Stripe has one endpoint; the key decides between test and live data.
// The mode flag is kept for the registry and the admin view.
type Adapter struct {
	paymentgateway.Capabilities
	vendorapi.Mode

	creds    paymentgateway.CredentialSource
	backends *stripego.Backends
	logger   logger.Interface
}

func New(opts vendorapi.Options) *Adapter {
	log := opts.Log().Named("stripe")
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = vendorapi.DefaultTimeout
	}

	httpClient := &http.Client{Timeout: timeout}
	backend := func(kind stripego.SupportedBackend, url string) stripego.Backend {
		return stripego.GetBackendWithConfig(kind, &stripego.BackendConfig{
			HTTPClient:        httpClient,
			LeveledLogger:     leveledLogger{log: log},
			MaxNetworkRetries: stripego.Int64(0),
			URL:               stripego.String(url),
			EnableTelemetry:   stripego.Bool(false),
		})
	}
	apiURL := stripego.APIURL
	if opts.BaseURL != "" {
		apiURL = opts.BaseURL
	}

	a := &Adapter{
		Capabilities: capabilities,
		creds:        opts.Credentials,
		backends: &stripego.Backends{
			API:     backend(stripego.APIBackend, apiURL),
			Connect: backend(stripego.ConnectBackend, stripego.ConnectURL),
			Uploads: backend(stripego.UploadsBackend, stripego.UploadsURL),
		},
		logger: log,
	}
	a.SetTestMode(opts.TestMode)
	return a
}

var _ paymentgateway.Adapter = (*Adapter)(nil)

func (a *Adapter) Descriptor() paymentgateway.Descriptor {
	return paymentgateway.Descriptor{
		Provider:            vo.ProviderStripe,
		DisplayName:         "Stripe",
		RequiredCredentials: []string{CredSecretKey},
		Currencies:          a.Currencies,
		Regions:             a.Regions,
	}
}

// api builds a client with the current key so a rotated secret applies
// to the next call.
func (a *Adapter) api() (*client.API, bool) {
	key := strings.TrimSpace(a.creds.Get(CredSecretKey))
	if key == "" {
		return nil, false
	}
	return client.New(key, a.backends), true
}

func (a *Adapter) CreateCheckout(ctx context.Context, params paymentgateway.CheckoutParams) (*paymentgateway.CheckoutResponse, error) {
	sc, ok := a.api()
	if !ok {
		a.logger.Warnw("stripe secret key missing, returning demo checkout")
		return paymentgateway.DemoCheckout(vo.ProviderStripe, vendorapi.SessionID("cs_demo_")), nil
	}

	priceData := &stripego.CheckoutSessionLineItemPriceDataParams{
		Currency:   stripego.String(strings.ToLower(params.Currency)),
		UnitAmount: stripego.Int64(params.Amount),
		ProductData: &stripego.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripego.String(productName(params.ProductName)),
		},
	}

	sp := &stripego.CheckoutSessionParams{
		LineItems: []*stripego.CheckoutSessionLineItemParams{{
			PriceData: priceData,
			Quantity:  stripego.Int64(1),
		}},
	}
	sp.Context = ctx
	if params.ReturnURL != "" {
		sp.SuccessURL = stripego.String(params.ReturnURL)
		sp.CancelURL = stripego.String(params.ReturnURL)
	}
	if params.CustomerEmail != "" {
		sp.CustomerEmail = stripego.String(params.CustomerEmail)
	}
	if params.CustomerID != "" {
		sp.ClientReferenceID = stripego.String(params.CustomerID)
	}
	for k, v := range params.Metadata {
		sp.AddMetadata(k, v)
	}

	if params.Type == vo.CheckoutTypeSubscription {
		interval := string(stripego.PriceRecurringIntervalMonth)
		if params.Interval == vo.BillingIntervalYearly {
			interval = string(stripego.PriceRecurringIntervalYear)
		}
		priceData.Recurring = &stripego.CheckoutSessionLineItemPriceDataRecurringParams{
			Interval: stripego.String(interval),
		}
		sp.Mode = stripego.String(string(stripego.CheckoutSessionModeSubscription))
		sp.SubscriptionData = &stripego.CheckoutSessionSubscriptionDataParams{Metadata: params.Metadata}
	} else {
		sp.Mode = stripego.String(string(stripego.CheckoutSessionModePayment))
		sp.PaymentIntentData = &stripego.CheckoutSessionPaymentIntentDataParams{Metadata: params.Metadata}
	}

	sess, err := sc.CheckoutSessions.New(sp)
	if err != nil {
		return nil, providerError("failed to create checkout session", err)
	}

	a.logger.Infow("stripe checkout session created", "session_id", sess.ID, "mode", sess.Mode)
	resp := &paymentgateway.CheckoutResponse{
		CheckoutURL: sess.URL,
		SessionID:   sess.ID,
		ExpiresAt:   vendorapi.UnixTime(sess.ExpiresAt),
	}
	if sess.PaymentIntent != nil {
		resp.PaymentID = sess.PaymentIntent.ID
	}
	if sess.Subscription != nil {
		resp.SubscriptionID = sess.Subscription.ID
	}
	return resp, nil
}

func (a *Adapter) HandleWebhook(ctx context.Context, req paymentgateway.WebhookRequest) (*paymentgateway.WebhookResult, error) {
	secret := strings.TrimSpace(a.creds.Get(CredWebhookSecret))
	if secret == "" {
		return nil, payment.NewInvalidSignatureError(vo.ProviderStripe, "webhook secret is not configured")
	}

	evt, err := webhook.ConstructEventWithOptions(req.Body, req.Headers.Get(headerSignature), secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, payment.NewInvalidSignatureError(vo.ProviderStripe, err.Error())
	}

	result := &paymentgateway.WebhookResult{
		Success:   true,
		EventType: string(evt.Type),
		EventID:   evt.ID,
		Raw:       req.Body,
	}

	switch evt.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded", "checkout.session.async_payment_failed":
		var sess stripego.CheckoutSession
		if err := decode(evt, &sess); err != nil {
			return nil, err
		}
		fromCheckoutSession(result, string(evt.Type), &sess)

	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripego.Subscription
		if err := decode(evt, &sub); err != nil {
			return nil, err
		}
		result.SubscriptionID = sub.ID
		result.Status = subscriptionStatus(sub.Status)
		if evt.Type == "customer.subscription.deleted" {
			result.Status = vo.SubscriptionStatusCancelled
		}
		if sub.Customer != nil {
			result.CustomerID = sub.Customer.ID
		}
		result.CurrentPeriodStart = vendorapi.UnixTime(sub.CurrentPeriodStart)
		result.CurrentPeriodEnd = vendorapi.UnixTime(sub.CurrentPeriodEnd)
		result.Metadata = vendorapi.Metadata(sub.Metadata)

	case "invoice.paid", "invoice.payment_failed":
		var inv stripego.Invoice
		if err := decode(evt, &inv); err != nil {
			return nil, err
		}
		fromInvoice(result, &inv, evt.Type == "invoice.paid")

	default:
		return paymentgateway.Ignored(string(evt.Type)), nil
	}
	return result, nil
}

// fromCheckoutSession records one-time payments. A subscription-mode
// session only activates the subscription; its charge arrives as
// invoice.paid.
//
// A completed session with payment_status=unpaid belongs to an async
// method (bank debit, voucher) that is still clearing. It carries no
// payment record: the outcome arrives as async_payment_succeeded or
// async_payment_failed under the same PaymentIntent, and only that event
// may claim the ledger key.
func fromCheckoutSession(result *paymentgateway.WebhookResult, eventType string, sess *stripego.CheckoutSession) {
	result.Metadata = vendorapi.Metadata(sess.Metadata, "session_id", sess.ID)
	if sess.Customer != nil {
		result.CustomerID = sess.Customer.ID
	}

	failed := eventType == "checkout.session.async_payment_failed"
	paid := !failed && (sess.PaymentStatus == stripego.CheckoutSessionPaymentStatusPaid ||
		sess.PaymentStatus == stripego.CheckoutSessionPaymentStatusNoPaymentRequired)

	if sess.Mode == stripego.CheckoutSessionModeSubscription {
		if sess.Subscription != nil {
			result.SubscriptionID = sess.Subscription.ID
		}
		if paid {
			result.Status = vo.SubscriptionStatusActive
		} else {
			result.Status = vo.SubscriptionStatusPending
		}
		return
	}

	if !paid && !failed {
		return
	}

	record := &paymentgateway.PaymentRecord{
		Amount:        sess.AmountTotal,
		Currency:      strings.ToUpper(string(sess.Currency)),
		Status:        vo.TransactionStatusSuccess,
		PaymentMethod: "card",
	}
	if failed {
		record.Status = vo.TransactionStatusFailed
		record.ErrorMessage = "async payment failed"
	}
	// The bare session id is the checkout attempt's own ledger key.
	if sess.PaymentIntent != nil && sess.PaymentIntent.ID != "" {
		record.PaymentID = sess.PaymentIntent.ID
	} else {
		record.PaymentID = sess.ID + ":" + string(record.Status)
	}
	if len(sess.PaymentMethodTypes) > 0 {
		record.PaymentMethod = sess.PaymentMethodTypes[0]
	}
	if d := sess.CustomerDetails; d != nil {
		record.CustomerEmail = d.Email
		record.CustomerName = d.Name
	}
	result.Payment = record
}

func fromInvoice(result *paymentgateway.WebhookResult, inv *stripego.Invoice, paid bool) {
	if inv.Subscription != nil {
		result.SubscriptionID = inv.Subscription.ID
	}
	if inv.Customer != nil {
		result.CustomerID = inv.Customer.ID
	}

	record := &paymentgateway.PaymentRecord{
		PaymentID:     inv.ID,
		Currency:      strings.ToUpper(string(inv.Currency)),
		PaymentMethod: "card",
		CustomerEmail: inv.CustomerEmail,
		CustomerName:  inv.CustomerName,
	}
	if inv.PaymentIntent != nil && inv.PaymentIntent.ID != "" {
		record.PaymentID = inv.PaymentIntent.ID
	}
	if paid {
		record.Amount = inv.AmountPaid
		record.Status = vo.TransactionStatusSuccess
		result.Status = vo.SubscriptionStatusActive
	} else {
		record.Amount = inv.AmountDue
		record.Status = vo.TransactionStatusFailed
		record.ErrorMessage = "invoice payment failed"
	}
	result.Payment = record
}

func decode(evt stripego.Event, out any) error {
	if evt.Data == nil {
		return payment.NewProviderError(vo.ProviderStripe, "event has no data", nil)
	}
	if err := json.Unmarshal(evt.Data.Raw, out); err != nil {
		return payment.NewProviderError(vo.ProviderStripe, "failed to decode "+string(evt.Type), err)
	}
	return nil
}

func (a *Adapter) GetSubscriptionStatus(ctx context.Context, subscriptionID string) (*paymentgateway.SubscriptionStatus, error) {
	sc, ok := a.api()
	if !ok {
		return nil, payment.NewSubscriptionNotFoundError(vo.ProviderStripe, subscriptionID)
	}

	params := &stripego.SubscriptionParams{}
	params.Context = ctx
	sub, err := sc.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		if isNotFound(err) {
			return nil, payment.NewSubscriptionNotFoundError(vo.ProviderStripe, subscriptionID)
		}
		return nil, providerError("failed to fetch subscription", err)
	}

	status := &paymentgateway.SubscriptionStatus{
		SubscriptionID:     sub.ID,
		Status:             subscriptionStatus(sub.Status),
		VendorStatus:       string(sub.Status),
		CurrentPeriodStart: vendorapi.UnixTime(sub.CurrentPeriodStart),
		CurrentPeriodEnd:   vendorapi.UnixTime(sub.CurrentPeriodEnd),
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
	}
	if sub.Customer != nil {
		status.CustomerID = sub.Customer.ID
	}
	return status, nil
}

// VerifyPayment accepts a checkout session id (cs_) or a payment intent
// id.
func (a *Adapter) VerifyPayment(ctx context.Context, paymentID string) *paymentgateway.PaymentVerification {
	v := &paymentgateway.PaymentVerification{PaymentID: paymentID}
	sc, ok := a.api()
	if !ok {
		v.Message = "stripe is not configured"
		return v
	}

	if strings.HasPrefix(paymentID, "cs_") {
		params := &stripego.CheckoutSessionParams{}
		params.Context = ctx
		sess, err := sc.CheckoutSessions.Get(paymentID, params)
		if err != nil {
			a.logger.Warnw("stripe session verification failed", "session_id", paymentID, "error", err)
			v.Message = err.Error()
			return v
		}
		v.Status = string(sess.PaymentStatus)
		v.Amount = sess.AmountTotal
		v.Currency = strings.ToUpper(string(sess.Currency))
		v.IsValid = sess.PaymentStatus == stripego.CheckoutSessionPaymentStatusPaid
	} else {
		params := &stripego.PaymentIntentParams{}
		params.Context = ctx
		pi, err := sc.PaymentIntents.Get(paymentID, params)
		if err != nil {
			a.logger.Warnw("stripe payment intent verification failed", "payment_intent", paymentID, "error", err)
			v.Message = err.Error()
			return v
		}
		v.Status = string(pi.Status)
		v.Amount = pi.AmountReceived
		v.Currency = strings.ToUpper(string(pi.Currency))
		v.IsValid = pi.Status == stripego.PaymentIntentStatusSucceeded
	}

	if !v.IsValid {
		v.Message = fmt.Sprintf("payment is %s", v.Status)
	}
	return v
}

func subscriptionStatus(s stripego.SubscriptionStatus) vo.SubscriptionStatus {
	switch s {
	case stripego.SubscriptionStatusActive, stripego.SubscriptionStatusTrialing:
		return vo.SubscriptionStatusActive
	case stripego.SubscriptionStatusCanceled:
		return vo.SubscriptionStatusCancelled
	case stripego.SubscriptionStatusIncompleteExpired:
		return vo.SubscriptionStatusExpired
	default:
		return vo.SubscriptionStatusPending
	}
}

func isNotFound(err error) bool {
	var se *stripego.Error
	if errors.As(err, &se) {
		return se.HTTPStatusCode == http.StatusNotFound || se.Code == stripego.ErrorCodeResourceMissing
	}
	return false
}

func providerError(msg string, err error) error {
	var se *stripego.Error
	if errors.As(err, &se) && se.Msg != "" {
		msg = msg + ": " + se.Msg
	}
	return payment.NewProviderError(vo.ProviderStripe, msg, err)
}

func productName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Subscription"
	}
	return name
}
