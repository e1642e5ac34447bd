// Package razorpay integrates Razorpay subscriptions and payment links.
package razorpay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/floradex/billing/internal/application/payment/paymentgateway"
	"github.com/floradex/billing/internal/domain/payment"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	"github.com/floradex/billing/internal/infrastructure/payment/vendorapi"
	"github.com/floradex/billing/internal/shared/logger"
)

const (
	CredKeyID         = "RAZORPAY_KEY_ID"
	CredKeySecret     = "RAZORPAY_KEY_SECRET"
	CredWebhookSecret = "RAZORPAY_WEBHOOK_SECRET"

	// Razorpay selects test or live mode by key, not by host.
	apiBaseURL = "https://api.razorpay.com"

	headerSignature = "X-Razorpay-Signature"
	headerEventID   = "X-Razorpay-Event-Id"

	monthlyCycles = 120
	yearlyCycles  = 10
)

var capabilities = paymentgateway.Capabilities{
	Currencies: []string{"INR", "USD", "EUR", "GBP", "SGD", "AED"},
	Regions:    []string{"IN"},
}

type Adapter struct {
	paymentgateway.Capabilities
	vendorapi.Mode

	creds   paymentgateway.CredentialSource
	baseURL string
	client  *vendorapi.Client
	logger  logger.Interface
}

func New(opts vendorapi.Options) *Adapter {
	a := &Adapter{
		Capabilities: capabilities,
		creds:        opts.Credentials,
		baseURL:      opts.BaseURL,
		client:       vendorapi.NewClient(vo.ProviderRazorpay, opts.Timeout),
		logger:       opts.Log().Named("razorpay"),
	}
	a.SetTestMode(opts.TestMode)
	return a
}

var _ paymentgateway.Adapter = (*Adapter)(nil)

func (a *Adapter) Descriptor() paymentgateway.Descriptor {
	return paymentgateway.Descriptor{
		Provider:            vo.ProviderRazorpay,
		DisplayName:         "Razorpay",
		RequiredCredentials: []string{CredKeyID, CredKeySecret},
		Currencies:          a.Currencies,
		Regions:             a.Regions,
	}
}

func (a *Adapter) configured() bool {
	return len(paymentgateway.MissingCredentials(a.creds, a.Descriptor())) == 0
}

func (a *Adapter) call(ctx context.Context, method, path string, body, out any, what string) error {
	auth := base64.StdEncoding.EncodeToString([]byte(a.creds.Get(CredKeyID) + ":" + a.creds.Get(CredKeySecret)))
	return a.client.Do(ctx, a.Endpoint(a.baseURL, apiBaseURL, apiBaseURL), vendorapi.Request{
		Method:  method,
		Path:    path,
		Header:  http.Header{"Authorization": []string{"Basic " + auth}},
		Body:    body,
		Out:     out,
		Context: what,
	})
}

func (a *Adapter) CreateCheckout(ctx context.Context, params paymentgateway.CheckoutParams) (*paymentgateway.CheckoutResponse, error) {
	if !a.configured() {
		a.logger.Warnw("razorpay credentials missing, returning demo checkout")
		return paymentgateway.DemoCheckout(vo.ProviderRazorpay, vendorapi.SessionID("rzp_demo_")), nil
	}

	var subscriptionID string
	if params.Type == vo.CheckoutTypeSubscription {
		var err error
		subscriptionID, err = a.createSubscription(ctx, params)
		if err != nil {
			return nil, err
		}
	}

	link, err := a.createPaymentLink(ctx, params, subscriptionID)
	if err != nil {
		return nil, err
	}

	a.logger.Infow("razorpay checkout created",
		"payment_link_id", link.ID,
		"subscription_id", subscriptionID,
		"amount", params.Amount,
		"currency", params.Currency,
	)
	return &paymentgateway.CheckoutResponse{
		CheckoutURL:    link.ShortURL,
		SessionID:      link.ID,
		SubscriptionID: subscriptionID,
		ExpiresAt:      vendorapi.UnixTime(link.ExpireBy),
	}, nil
}

func (a *Adapter) createSubscription(ctx context.Context, params paymentgateway.CheckoutParams) (string, error) {
	period, cycles := "monthly", monthlyCycles
	if params.Interval == vo.BillingIntervalYearly {
		period, cycles = "yearly", yearlyCycles
	}

	var plan entity
	err := a.call(ctx, http.MethodPost, "/v1/plans", map[string]any{
		"period":   period,
		"interval": 1,
		"item": map[string]any{
			"name":     params.ProductName,
			"amount":   params.Amount,
			"currency": params.Currency,
		},
		"notes": params.Metadata,
	}, &plan, "create plan")
	if err != nil {
		return "", err
	}

	var sub entity
	err = a.call(ctx, http.MethodPost, "/v1/subscriptions", map[string]any{
		"plan_id":         plan.ID,
		"total_count":     cycles,
		"customer_notify": 1,
		"notes":           vendorapi.Metadata(params.Metadata, "customer_email", params.CustomerEmail),
	}, &sub, "create subscription")
	if err != nil {
		return "", err
	}
	return sub.ID, nil
}

func (a *Adapter) createPaymentLink(ctx context.Context, params paymentgateway.CheckoutParams, subscriptionID string) (*paymentLink, error) {
	body := map[string]any{
		"amount":      params.Amount,
		"currency":    params.Currency,
		"description": params.ProductName,
		"customer": map[string]string{
			"name":  params.CustomerName,
			"email": params.CustomerEmail,
		},
		"notify":          map[string]bool{"email": true},
		"reminder_enable": true,
		"notes":           vendorapi.Metadata(params.Metadata, "subscription_id", subscriptionID),
	}
	if params.ReturnURL != "" {
		body["callback_url"] = params.ReturnURL
		body["callback_method"] = "get"
	}

	var link paymentLink
	if err := a.call(ctx, http.MethodPost, "/v1/payment_links", body, &link, "create payment link"); err != nil {
		return nil, err
	}
	if link.ShortURL == "" {
		return nil, payment.NewProviderError(vo.ProviderRazorpay, "payment link has no URL", nil)
	}
	return &link, nil
}

func (a *Adapter) HandleWebhook(ctx context.Context, req paymentgateway.WebhookRequest) (*paymentgateway.WebhookResult, error) {
	secret := a.creds.Get(CredWebhookSecret)
	if secret == "" {
		return nil, payment.NewInvalidSignatureError(vo.ProviderRazorpay, "webhook secret is not configured")
	}
	signature := req.Headers.Get(headerSignature)
	if signature == "" {
		return nil, payment.NewInvalidSignatureError(vo.ProviderRazorpay, "missing "+headerSignature)
	}
	if !vendorapi.VerifyHex(vendorapi.HMACSHA256(secret, req.Body), signature) {
		return nil, payment.NewInvalidSignatureError(vo.ProviderRazorpay, "signature mismatch")
	}

	var evt webhookEvent
	if err := json.Unmarshal(req.Body, &evt); err != nil {
		return nil, payment.NewInvalidSignatureError(vo.ProviderRazorpay, "unparseable payload")
	}

	status, ok := eventStatus[evt.Event]
	if !ok {
		return paymentgateway.Ignored(evt.Event), nil
	}

	result := &paymentgateway.WebhookResult{
		Success:   true,
		EventType: evt.Event,
		EventID:   req.Headers.Get(headerEventID),
		Status:    status,
		Raw:       req.Body,
	}

	if sub := evt.Payload.Subscription; sub != nil {
		e := sub.Entity
		result.SubscriptionID = e.ID
		result.CustomerID = e.CustomerID
		result.CurrentPeriodStart = vendorapi.UnixTime(e.CurrentStart)
		result.CurrentPeriodEnd = vendorapi.UnixTime(e.CurrentEnd)
		result.ExpiresAt = vendorapi.UnixTime(e.EndAt)
		result.Metadata = e.Notes
	}
	if link := evt.Payload.PaymentLink; link != nil && result.SubscriptionID == "" {
		result.SubscriptionID = link.Entity.Notes["subscription_id"]
		result.Metadata = link.Entity.Notes
	}
	if pay := evt.Payload.Payment; pay != nil {
		e := pay.Entity
		if result.SubscriptionID == "" {
			result.SubscriptionID = e.Notes["subscription_id"]
		}
		if result.Metadata == nil {
			result.Metadata = e.Notes
		}
		result.Payment = &paymentgateway.PaymentRecord{
			PaymentID:     e.ID,
			Amount:        e.Amount,
			Currency:      strings.ToUpper(e.Currency),
			Status:        paymentStatus(evt.Event, e.Status),
			PaymentMethod: e.Method,
			CustomerEmail: e.Email,
			ErrorCode:     e.ErrorCode,
			ErrorMessage:  e.ErrorDescription,
		}
		if result.CustomerID == "" {
			result.CustomerID = e.CustomerID
		}
	}

	if result.EventID == "" && result.Payment == nil {
		result.EventID = fmt.Sprintf("%s:%s:%d", evt.Event, result.SubscriptionID, evt.CreatedAt)
	}
	return result, nil
}

func (a *Adapter) GetSubscriptionStatus(ctx context.Context, subscriptionID string) (*paymentgateway.SubscriptionStatus, error) {
	if !a.configured() {
		return nil, payment.NewSubscriptionNotFoundError(vo.ProviderRazorpay, subscriptionID)
	}

	var sub subscriptionEntity
	if err := a.call(ctx, http.MethodGet, "/v1/subscriptions/"+subscriptionID, nil, &sub, "fetch subscription"); err != nil {
		// Razorpay answers 400 BAD_REQUEST_ERROR for an id that does not exist.
		if code := vendorapi.StatusCode(err); code == http.StatusNotFound || code == http.StatusBadRequest {
			return nil, payment.NewSubscriptionNotFoundError(vo.ProviderRazorpay, subscriptionID)
		}
		return nil, err
	}

	return &paymentgateway.SubscriptionStatus{
		SubscriptionID:     sub.ID,
		Status:             subscriptionStatus(sub.Status),
		VendorStatus:       sub.Status,
		CustomerID:         sub.CustomerID,
		CurrentPeriodStart: vendorapi.UnixTime(sub.CurrentStart),
		CurrentPeriodEnd:   vendorapi.UnixTime(sub.CurrentEnd),
		CancelAtPeriodEnd:  sub.ChangeScheduledAt > 0 && sub.Status == "active",
	}, nil
}

func (a *Adapter) VerifyPayment(ctx context.Context, paymentID string) *paymentgateway.PaymentVerification {
	v := &paymentgateway.PaymentVerification{PaymentID: paymentID}
	if !a.configured() {
		v.Message = "razorpay is not configured"
		return v
	}

	var p paymentEntity
	if err := a.call(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil, &p, "fetch payment"); err != nil {
		a.logger.Warnw("razorpay payment verification failed", "payment_id", paymentID, "error", err)
		v.Message = err.Error()
		return v
	}

	v.Status = p.Status
	v.Amount = p.Amount
	v.Currency = strings.ToUpper(p.Currency)
	v.IsValid = p.Status == "captured"
	if !v.IsValid {
		v.Message = "payment is " + p.Status
	}
	return v
}

var eventStatus = map[string]vo.SubscriptionStatus{
	"subscription.authenticated": vo.SubscriptionStatusPending,
	"subscription.activated":     vo.SubscriptionStatusActive,
	"subscription.charged":       vo.SubscriptionStatusActive,
	"subscription.resumed":       vo.SubscriptionStatusActive,
	"subscription.cancelled":     vo.SubscriptionStatusCancelled,
	"subscription.halted":        vo.SubscriptionStatusExpired,
	"subscription.completed":     vo.SubscriptionStatusExpired,
	"payment.captured":           vo.SubscriptionStatusActive,
	"payment_link.paid":          vo.SubscriptionStatusActive,
	// A failed charge is recorded but does not move the subscription.
	"payment.failed": "",
}

func subscriptionStatus(s string) vo.SubscriptionStatus {
	switch s {
	case "active":
		return vo.SubscriptionStatusActive
	case "cancelled":
		return vo.SubscriptionStatusCancelled
	case "halted", "completed", "expired":
		return vo.SubscriptionStatusExpired
	default:
		return vo.SubscriptionStatusPending
	}
}

func paymentStatus(event, vendorStatus string) vo.TransactionStatus {
	switch {
	case event == "payment.failed" || vendorStatus == "failed":
		return vo.TransactionStatusFailed
	case vendorStatus == "captured" || event == "subscription.charged" || event == "payment_link.paid":
		return vo.TransactionStatusSuccess
	default:
		return vo.TransactionStatusPending
	}
}

// notes is Razorpay's key/value annotation. An empty set is sent as [].
type notes map[string]string

func (n *notes) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '[' {
		*n = nil
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*n = m
	return nil
}

type entity struct {
	ID string `json:"id"`
}

type paymentLink struct {
	ID       string `json:"id"`
	ShortURL string `json:"short_url"`
	ExpireBy int64  `json:"expire_by"`
}

type subscriptionEntity struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	CustomerID        string `json:"customer_id"`
	CurrentStart      int64  `json:"current_start"`
	CurrentEnd        int64  `json:"current_end"`
	EndAt             int64  `json:"end_at"`
	ChangeScheduledAt int64  `json:"change_scheduled_at"`
	Notes             notes  `json:"notes"`
}

type paymentEntity struct {
	ID               string `json:"id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	Method           string `json:"method"`
	Email            string `json:"email"`
	CustomerID       string `json:"customer_id"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
	Notes            notes  `json:"notes"`
}

type paymentLinkEntity struct {
	ID    string `json:"id"`
	Notes notes  `json:"notes"`
}

type webhookEvent struct {
	Event     string `json:"event"`
	CreatedAt int64  `json:"created_at"`
	Payload   struct {
		Subscription *struct {
			Entity subscriptionEntity `json:"entity"`
		} `json:"subscription"`
		Payment *struct {
			Entity paymentEntity `json:"entity"`
		} `json:"payment"`
		PaymentLink *struct {
			Entity paymentLinkEntity `json:"entity"`
		} `json:"payment_link"`
	} `json:"payload"`
}
