// Package paypal integrates PayPal billing subscriptions and orders.
package paypal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/floradex/billing/internal/application/payment/paymentgateway"
	"github.com/floradex/billing/internal/domain/payment"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	"github.com/floradex/billing/internal/infrastructure/payment/vendorapi"
	"github.com/floradex/billing/internal/shared/logger"
	"github.com/floradex/billing/internal/shared/money"
)

const (
	CredClientID     = "PAYPAL_CLIENT_ID"
	CredClientSecret = "PAYPAL_CLIENT_SECRET"
	CredWebhookID    = "PAYPAL_WEBHOOK_ID"

	sandboxURL = "https://api-m.sandbox.paypal.com"
	liveURL    = "https://api-m.paypal.com"
)

var capabilities = paymentgateway.Capabilities{
	Currencies: []string{"USD", "EUR", "GBP", "CAD", "AUD", "JPY", "SGD"},
	Regions:    []string{"US", "GB", "CA", "AU", "DE", "FR", "ES", "IT", "NL", "SG", "JP"},
}

// verifyHeaders are the transmission headers forwarded to PayPal's
// signature verification API.
var verifyHeaders = map[string]string{
	"auth_algo":         "PAYPAL-AUTH-ALGO",
	"cert_url":          "PAYPAL-CERT-URL",
	"transmission_id":   "PAYPAL-TRANSMISSION-ID",
	"transmission_sig":  "PAYPAL-TRANSMISSION-SIG",
	"transmission_time": "PAYPAL-TRANSMISSION-TIME",
}

type Adapter struct {
	paymentgateway.Capabilities
	vendorapi.Mode

	creds   paymentgateway.CredentialSource
	baseURL string
	client  *vendorapi.Client
	tokens  *tokenCache
	logger  logger.Interface
}

func New(opts vendorapi.Options) *Adapter {
	a := &Adapter{
		Capabilities: capabilities,
		creds:        opts.Credentials,
		baseURL:      opts.BaseURL,
		client:       vendorapi.NewClient(vo.ProviderPayPal, opts.Timeout),
		tokens:       &tokenCache{now: time.Now},
		logger:       opts.Log().Named("paypal"),
	}
	a.SetTestMode(opts.TestMode)
	return a
}

var _ paymentgateway.Adapter = (*Adapter)(nil)

func (a *Adapter) Descriptor() paymentgateway.Descriptor {
	return paymentgateway.Descriptor{
		Provider:            vo.ProviderPayPal,
		DisplayName:         "PayPal",
		RequiredCredentials: []string{CredClientID, CredClientSecret},
		Currencies:          a.Currencies,
		Regions:             a.Regions,
	}
}

func (a *Adapter) configured() bool {
	return len(paymentgateway.MissingCredentials(a.creds, a.Descriptor())) == 0
}

func (a *Adapter) endpoint() string {
	return a.Endpoint(a.baseURL, sandboxURL, liveURL)
}

// call sends an authenticated request. Creating calls carry a fresh
// PayPal-Request-Id so PayPal can deduplicate them.
func (a *Adapter) call(ctx context.Context, method, path string, body, out any, what string) error {
	base := a.endpoint()
	token, err := a.tokens.get(ctx, a.client, base, a.creds.Get(CredClientID), a.creds.Get(CredClientSecret))
	if err != nil {
		return err
	}

	header := http.Header{"Authorization": []string{"Bearer " + token}}
	if method == http.MethodPost {
		header.Set("PayPal-Request-Id", uuid.NewString())
	}
	return a.client.Do(ctx, base, vendorapi.Request{
		Method:  method,
		Path:    path,
		Header:  header,
		Body:    body,
		Out:     out,
		Context: what,
	})
}

func (a *Adapter) CreateCheckout(ctx context.Context, params paymentgateway.CheckoutParams) (*paymentgateway.CheckoutResponse, error) {
	if !a.configured() {
		a.logger.Warnw("paypal credentials missing, returning demo checkout")
		return paymentgateway.DemoCheckout(vo.ProviderPayPal, vendorapi.SessionID("pp_demo_")), nil
	}
	if params.Type == vo.CheckoutTypeSubscription {
		return a.createSubscription(ctx, params)
	}
	return a.createOrder(ctx, params)
}

func (a *Adapter) createSubscription(ctx context.Context, params paymentgateway.CheckoutParams) (*paymentgateway.CheckoutResponse, error) {
	var product resource
	err := a.call(ctx, http.MethodPost, "/v1/catalogs/products", map[string]any{
		"name": params.ProductName,
		"type": "SERVICE",
	}, &product, "create product")
	if err != nil {
		return nil, err
	}

	unit := "MONTH"
	if params.Interval == vo.BillingIntervalYearly {
		unit = "YEAR"
	}
	var plan resource
	err = a.call(ctx, http.MethodPost, "/v1/billing/plans", map[string]any{
		"product_id": product.ID,
		"name":       params.ProductName,
		"billing_cycles": []map[string]any{{
			"frequency":    map[string]any{"interval_unit": unit, "interval_count": 1},
			"tenure_type":  "REGULAR",
			"sequence":     1,
			"total_cycles": 0,
			"pricing_scheme": map[string]any{
				"fixed_price": amountOf(params.Amount, params.Currency),
			},
		}},
		"payment_preferences": map[string]any{
			"auto_bill_outstanding":     true,
			"payment_failure_threshold": 3,
		},
	}, &plan, "create plan")
	if err != nil {
		return nil, err
	}

	var sub resource
	err = a.call(ctx, http.MethodPost, "/v1/billing/subscriptions", map[string]any{
		"plan_id":   plan.ID,
		"custom_id": params.Metadata["plan_id"],
		"subscriber": map[string]any{
			"email_address": params.CustomerEmail,
			"name":          map[string]string{"given_name": params.CustomerName},
		},
		"application_context": appContext(params.ReturnURL, "SUBSCRIBE_NOW"),
	}, &sub, "create subscription")
	if err != nil {
		return nil, err
	}

	approve := sub.link("approve")
	if approve == "" {
		return nil, payment.NewProviderError(vo.ProviderPayPal, "subscription has no approval link", nil)
	}
	a.logger.Infow("paypal subscription checkout created", "subscription_id", sub.ID, "plan_id", plan.ID)
	return &paymentgateway.CheckoutResponse{
		CheckoutURL:    approve,
		SessionID:      sub.ID,
		SubscriptionID: sub.ID,
	}, nil
}

func (a *Adapter) createOrder(ctx context.Context, params paymentgateway.CheckoutParams) (*paymentgateway.CheckoutResponse, error) {
	amount := amountOf(params.Amount, params.Currency)
	var order resource
	err := a.call(ctx, http.MethodPost, "/v2/checkout/orders", map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"amount":      map[string]string{"currency_code": amount.CurrencyCode, "value": amount.Value},
			"description": params.ProductName,
			"custom_id":   params.Metadata["plan_id"],
		}},
		"application_context": appContext(params.ReturnURL, "PAY_NOW"),
	}, &order, "create order")
	if err != nil {
		return nil, err
	}

	approve := order.link("approve")
	if approve == "" {
		approve = order.link("payer-action")
	}
	if approve == "" {
		return nil, payment.NewProviderError(vo.ProviderPayPal, "order has no approval link", nil)
	}
	a.logger.Infow("paypal order checkout created", "order_id", order.ID)
	return &paymentgateway.CheckoutResponse{
		CheckoutURL: approve,
		SessionID:   order.ID,
		PaymentID:   order.ID,
	}, nil
}

func (a *Adapter) HandleWebhook(ctx context.Context, req paymentgateway.WebhookRequest) (*paymentgateway.WebhookResult, error) {
	webhookID := a.creds.Get(CredWebhookID)
	if webhookID == "" || !a.configured() {
		return nil, payment.NewInvalidSignatureError(vo.ProviderPayPal, "webhook verification is not configured")
	}
	if !json.Valid(req.Body) {
		return nil, payment.NewInvalidSignatureError(vo.ProviderPayPal, "unparseable payload")
	}

	verify := map[string]any{
		"webhook_id":    webhookID,
		"webhook_event": json.RawMessage(req.Body),
	}
	for field, header := range verifyHeaders {
		v := req.Headers.Get(header)
		if v == "" {
			return nil, payment.NewInvalidSignatureError(vo.ProviderPayPal, "missing "+header)
		}
		verify[field] = v
	}

	var verdict struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := a.call(ctx, http.MethodPost, "/v1/notifications/verify-webhook-signature", verify, &verdict, "verify webhook signature"); err != nil {
		a.logger.Warnw("paypal webhook verification call failed", "error", err)
		return nil, payment.NewInvalidSignatureError(vo.ProviderPayPal, "verification unavailable")
	}
	if verdict.VerificationStatus != "SUCCESS" {
		return nil, payment.NewInvalidSignatureError(vo.ProviderPayPal, "verification status "+verdict.VerificationStatus)
	}

	var evt webhookEvent
	if err := json.Unmarshal(req.Body, &evt); err != nil {
		return nil, payment.NewInvalidSignatureError(vo.ProviderPayPal, "unparseable payload")
	}
	return mapEvent(evt, req.Body)
}

func mapEvent(evt webhookEvent, raw []byte) (*paymentgateway.WebhookResult, error) {
	result := &paymentgateway.WebhookResult{
		Success:   true,
		EventType: evt.EventType,
		EventID:   evt.ID,
		Raw:       raw,
	}
	r := evt.Resource

	if status, ok := subscriptionEvents[evt.EventType]; ok {
		result.Status = status
		result.SubscriptionID = r.ID
		result.CustomerID = r.Subscriber.PayerID
		result.CurrentPeriodStart = vendorapi.ParseTime(r.StartTime)
		result.CurrentPeriodEnd = vendorapi.ParseTime(r.BillingInfo.NextBillingTime)
		result.Metadata = vendorapi.Metadata(nil, "plan_id", r.CustomID)

		if evt.EventType == "BILLING.SUBSCRIPTION.PAYMENT.FAILED" {
			record, err := paymentRecord(evt.ID, r.BillingInfo.LastFailedPayment.Amount, vo.TransactionStatusFailed)
			if err != nil {
				return nil, err
			}
			record.ErrorMessage = r.BillingInfo.LastFailedPayment.ReasonCode
			record.CustomerEmail = r.Subscriber.EmailAddress
			result.Payment = record
		}
		return result, nil
	}

	txStatus, ok := paymentEvents[evt.EventType]
	if !ok {
		return paymentgateway.Ignored(evt.EventType), nil
	}

	amount := r.Amount
	if amount.Value == "" && r.Amount.Total != "" {
		amount = paypalAmount{Value: r.Amount.Total, CurrencyCode: r.Amount.Currency}
	}
	record, err := paymentRecord(r.ID, amount, txStatus)
	if err != nil {
		return nil, err
	}
	if txStatus == vo.TransactionStatusFailed {
		record.ErrorMessage = r.StatusDetails.Reason
	}
	result.Payment = record
	result.SubscriptionID = r.BillingAgreementID
	if txStatus == vo.TransactionStatusSuccess {
		result.Status = vo.SubscriptionStatusActive
	}
	custom := r.CustomID
	if custom == "" {
		custom = r.Custom
	}
	result.Metadata = vendorapi.Metadata(nil, "plan_id", custom, "order_id", r.SupplementaryData.RelatedIDs.OrderID)
	return result, nil
}

func paymentRecord(id string, amount paypalAmount, status vo.TransactionStatus) (*paymentgateway.PaymentRecord, error) {
	record := &paymentgateway.PaymentRecord{
		PaymentID:     id,
		Currency:      strings.ToUpper(amount.CurrencyCode),
		Status:        status,
		PaymentMethod: "paypal",
	}
	if amount.Value != "" {
		minor, err := money.ParseMajor(amount.Value, record.Currency)
		if err != nil {
			return nil, payment.NewProviderError(vo.ProviderPayPal, "invalid payment amount", err)
		}
		record.Amount = minor
	}
	return record, nil
}

func (a *Adapter) GetSubscriptionStatus(ctx context.Context, subscriptionID string) (*paymentgateway.SubscriptionStatus, error) {
	if !a.configured() {
		return nil, payment.NewSubscriptionNotFoundError(vo.ProviderPayPal, subscriptionID)
	}

	var sub resource
	if err := a.call(ctx, http.MethodGet, "/v1/billing/subscriptions/"+subscriptionID, nil, &sub, "fetch subscription"); err != nil {
		if vendorapi.IsNotFound(err) {
			return nil, payment.NewSubscriptionNotFoundError(vo.ProviderPayPal, subscriptionID)
		}
		return nil, err
	}

	return &paymentgateway.SubscriptionStatus{
		SubscriptionID:     sub.ID,
		Status:             subscriptionStatus(sub.Status),
		VendorStatus:       sub.Status,
		CustomerID:         sub.Subscriber.PayerID,
		CurrentPeriodStart: vendorapi.ParseTime(sub.StartTime),
		CurrentPeriodEnd:   vendorapi.ParseTime(sub.BillingInfo.NextBillingTime),
	}, nil
}

// VerifyPayment checks a checkout order. Only a captured (COMPLETED) order
// counts as paid.
func (a *Adapter) VerifyPayment(ctx context.Context, paymentID string) *paymentgateway.PaymentVerification {
	v := &paymentgateway.PaymentVerification{PaymentID: paymentID}
	if !a.configured() {
		v.Message = "paypal is not configured"
		return v
	}

	var order resource
	if err := a.call(ctx, http.MethodGet, "/v2/checkout/orders/"+paymentID, nil, &order, "fetch order"); err != nil {
		a.logger.Warnw("paypal payment verification failed", "order_id", paymentID, "error", err)
		v.Message = err.Error()
		return v
	}

	v.Status = order.Status
	if len(order.PurchaseUnits) > 0 {
		amt := order.PurchaseUnits[0].Amount
		v.Currency = amt.CurrencyCode
		if minor, err := money.ParseMajor(amt.Value, amt.CurrencyCode); err == nil {
			v.Amount = minor
		}
	}
	v.IsValid = order.Status == "COMPLETED"
	if !v.IsValid {
		v.Message = fmt.Sprintf("order is %s", order.Status)
	}
	return v
}

var subscriptionEvents = map[string]vo.SubscriptionStatus{
	"BILLING.SUBSCRIPTION.CREATED":        vo.SubscriptionStatusPending,
	"BILLING.SUBSCRIPTION.ACTIVATED":      vo.SubscriptionStatusActive,
	"BILLING.SUBSCRIPTION.RE-ACTIVATED":   vo.SubscriptionStatusActive,
	"BILLING.SUBSCRIPTION.RENEWED":        vo.SubscriptionStatusActive,
	"BILLING.SUBSCRIPTION.CANCELLED":      vo.SubscriptionStatusCancelled,
	"BILLING.SUBSCRIPTION.EXPIRED":        vo.SubscriptionStatusExpired,
	"BILLING.SUBSCRIPTION.SUSPENDED":      "",
	"BILLING.SUBSCRIPTION.PAYMENT.FAILED": "",
}

var paymentEvents = map[string]vo.TransactionStatus{
	"PAYMENT.SALE.COMPLETED":    vo.TransactionStatusSuccess,
	"PAYMENT.SALE.DENIED":       vo.TransactionStatusFailed,
	"PAYMENT.CAPTURE.COMPLETED": vo.TransactionStatusSuccess,
	"PAYMENT.CAPTURE.DENIED":    vo.TransactionStatusFailed,
	"PAYMENT.CAPTURE.DECLINED":  vo.TransactionStatusFailed,
	"PAYMENT.CAPTURE.PENDING":   vo.TransactionStatusPending,
}

func subscriptionStatus(s string) vo.SubscriptionStatus {
	switch s {
	case "ACTIVE":
		return vo.SubscriptionStatusActive
	case "CANCELLED":
		return vo.SubscriptionStatusCancelled
	case "EXPIRED":
		return vo.SubscriptionStatusExpired
	default:
		return vo.SubscriptionStatusPending
	}
}

func amountOf(minor int64, currency string) paypalAmount {
	return paypalAmount{CurrencyCode: currency, Value: money.FormatMajor(minor, currency)}
}

func appContext(returnURL, action string) map[string]string {
	ctx := map[string]string{"user_action": action, "shipping_preference": "NO_SHIPPING"}
	if returnURL != "" {
		ctx["return_url"] = returnURL
		ctx["cancel_url"] = returnURL
	}
	return ctx
}

type paypalAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
	// Legacy sale resources use total/currency.
	Total    string `json:"total,omitempty"`
	Currency string `json:"currency,omitempty"`
}

type link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type resource struct {
	ID                 string `json:"id"`
	Status             string `json:"status"`
	CustomID           string `json:"custom_id"`
	Custom             string `json:"custom"`
	StartTime          string `json:"start_time"`
	BillingAgreementID string `json:"billing_agreement_id"`
	Links              []link `json:"links"`
	Subscriber         struct {
		EmailAddress string `json:"email_address"`
		PayerID      string `json:"payer_id"`
	} `json:"subscriber"`
	BillingInfo struct {
		NextBillingTime   string `json:"next_billing_time"`
		LastFailedPayment struct {
			Amount     paypalAmount `json:"amount"`
			ReasonCode string       `json:"reason_code"`
		} `json:"last_failed_payment"`
	} `json:"billing_info"`
	Amount        paypalAmount `json:"amount"`
	StatusDetails struct {
		Reason string `json:"reason"`
	} `json:"status_details"`
	SupplementaryData struct {
		RelatedIDs struct {
			OrderID string `json:"order_id"`
		} `json:"related_ids"`
	} `json:"supplementary_data"`
	PurchaseUnits []struct {
		Amount paypalAmount `json:"amount"`
	} `json:"purchase_units"`
}

func (r resource) link(rel string) string {
	for _, l := range r.Links {
		if l.Rel == rel {
			return l.Href
		}
	}
	return ""
}

type webhookEvent struct {
	ID        string   `json:"id"`
	EventType string   `json:"event_type"`
	Resource  resource `json:"resource"`
}
