// Package cashfree integrates Cashfree PG subscriptions and payment links.
package cashfree

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/floradex/billing/internal/application/payment/paymentgateway"
	"github.com/floradex/billing/internal/domain/payment"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	"github.com/floradex/billing/internal/infrastructure/payment/vendorapi"
	"github.com/floradex/billing/internal/shared/logger"
	"github.com/floradex/billing/internal/shared/money"
)

const (
	CredAppID     = "CASHFREE_APP_ID"
	CredSecretKey = "CASHFREE_SECRET_KEY"

	sandboxURL = "https://sandbox.cashfree.com/pg"
	liveURL    = "https://api.cashfree.com/pg"
	apiVersion = "2023-08-01"

	headerSignature = "x-webhook-signature"
	headerTimestamp = "x-webhook-timestamp"
)

var capabilities = paymentgateway.Capabilities{
	Currencies: []string{"INR"},
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
		client:       vendorapi.NewClient(vo.ProviderCashfree, opts.Timeout),
		logger:       opts.Log().Named("cashfree"),
	}
	a.SetTestMode(opts.TestMode)
	return a
}

var _ paymentgateway.Adapter = (*Adapter)(nil)

func (a *Adapter) Descriptor() paymentgateway.Descriptor {
	return paymentgateway.Descriptor{
		Provider:            vo.ProviderCashfree,
		DisplayName:         "Cashfree",
		RequiredCredentials: []string{CredAppID, CredSecretKey},
		Currencies:          a.Currencies,
		Regions:             a.Regions,
	}
}

func (a *Adapter) configured() bool {
	return len(paymentgateway.MissingCredentials(a.creds, a.Descriptor())) == 0
}

func (a *Adapter) call(ctx context.Context, method, path string, body, out any, what string) error {
	return a.client.Do(ctx, a.Endpoint(a.baseURL, sandboxURL, liveURL), vendorapi.Request{
		Method: method,
		Path:   path,
		Header: http.Header{
			"x-client-id":     []string{a.creds.Get(CredAppID)},
			"x-client-secret": []string{a.creds.Get(CredSecretKey)},
			"x-api-version":   []string{apiVersion},
		},
		Body:    body,
		Out:     out,
		Context: what,
	})
}

func (a *Adapter) CreateCheckout(ctx context.Context, params paymentgateway.CheckoutParams) (*paymentgateway.CheckoutResponse, error) {
	if !a.configured() {
		a.logger.Warnw("cashfree credentials missing, returning demo checkout")
		return paymentgateway.DemoCheckout(vo.ProviderCashfree, vendorapi.SessionID("cf_demo_")), nil
	}

	// Cashfree takes major units as a JSON number.
	amount := json.Number(money.FormatMajor(params.Amount, params.Currency))
	customer := map[string]string{
		"customer_name":  params.CustomerName,
		"customer_email": params.CustomerEmail,
		// Cashfree requires a phone; checkout collects the real one.
		"customer_phone": "9999999999",
	}

	var subscriptionID string
	if params.Type == vo.CheckoutTypeSubscription {
		var err error
		subscriptionID, err = a.createSubscription(ctx, params, amount, customer)
		if err != nil {
			return nil, err
		}
	}

	linkBody := map[string]any{
		"link_id":          vendorapi.SessionID("link_"),
		"link_amount":      amount,
		"link_currency":    params.Currency,
		"link_purpose":     params.ProductName,
		"customer_details": customer,
		"link_notify":      map[string]bool{"send_email": true},
		"link_notes":       vendorapi.Metadata(params.Metadata, "subscription_id", subscriptionID),
	}
	if params.ReturnURL != "" {
		linkBody["link_meta"] = map[string]string{"return_url": params.ReturnURL}
	}

	var link linkResponse
	if err := a.call(ctx, http.MethodPost, "/links", linkBody, &link, "create payment link"); err != nil {
		return nil, err
	}
	if link.LinkURL == "" {
		return nil, payment.NewProviderError(vo.ProviderCashfree, "payment link has no URL", nil)
	}

	a.logger.Infow("cashfree checkout created",
		"link_id", link.LinkID,
		"subscription_id", subscriptionID,
		"amount", params.Amount,
	)
	return &paymentgateway.CheckoutResponse{
		CheckoutURL:    link.LinkURL,
		SessionID:      link.LinkID,
		SubscriptionID: subscriptionID,
		ExpiresAt:      vendorapi.ParseTime(link.LinkExpiryTime),
	}, nil
}

func (a *Adapter) createSubscription(ctx context.Context, params paymentgateway.CheckoutParams, amount json.Number, customer map[string]string) (string, error) {
	intervalType := "MONTH"
	if params.Interval == vo.BillingIntervalYearly {
		intervalType = "YEAR"
	}

	var plan struct {
		PlanID string `json:"plan_id"`
	}
	err := a.call(ctx, http.MethodPost, "/plans", map[string]any{
		"plan_id":               vendorapi.SessionID("plan_"),
		"plan_name":             params.ProductName,
		"plan_type":             "PERIODIC",
		"plan_currency":         params.Currency,
		"plan_recurring_amount": amount,
		"plan_max_amount":       amount,
		"plan_intervals":        1,
		"plan_interval_type":    intervalType,
	}, &plan, "create plan")
	if err != nil {
		return "", err
	}

	var sub struct {
		SubscriptionID string `json:"subscription_id"`
	}
	body := map[string]any{
		"subscription_id":   vendorapi.SessionID("sub_"),
		"customer_details":  customer,
		"plan_details":      map[string]string{"plan_id": plan.PlanID},
		"subscription_tags": params.Metadata,
	}
	if params.ReturnURL != "" {
		body["subscription_meta"] = map[string]string{"return_url": params.ReturnURL}
	}
	if err := a.call(ctx, http.MethodPost, "/subscriptions", body, &sub, "create subscription"); err != nil {
		return "", err
	}
	return sub.SubscriptionID, nil
}

func (a *Adapter) HandleWebhook(ctx context.Context, req paymentgateway.WebhookRequest) (*paymentgateway.WebhookResult, error) {
	secret := a.creds.Get(CredSecretKey)
	if secret == "" {
		return nil, payment.NewInvalidSignatureError(vo.ProviderCashfree, "secret key is not configured")
	}
	signature, timestamp := req.Headers.Get(headerSignature), req.Headers.Get(headerTimestamp)
	if signature == "" || timestamp == "" {
		return nil, payment.NewInvalidSignatureError(vo.ProviderCashfree, "missing signature headers")
	}
	if !vendorapi.VerifyBase64(vendorapi.HMACSHA256(secret, []byte(timestamp), req.Body), signature) {
		return nil, payment.NewInvalidSignatureError(vo.ProviderCashfree, "signature mismatch")
	}

	var evt webhookEvent
	if err := json.Unmarshal(req.Body, &evt); err != nil {
		return nil, payment.NewInvalidSignatureError(vo.ProviderCashfree, "unparseable payload")
	}

	result := &paymentgateway.WebhookResult{
		Success:    true,
		EventType:  evt.Type,
		CustomerID: evt.Data.Customer.CustomerID,
		Raw:        req.Body,
	}

	switch evt.Type {
	case "PAYMENT_SUCCESS_WEBHOOK", "PAYMENT_FAILED_WEBHOOK", "PAYMENT_USER_DROPPED_WEBHOOK":
		p := evt.Data.Payment
		status := txStatus(p.PaymentStatus)
		result.Metadata = evt.Data.Order.OrderTags
		result.SubscriptionID = evt.Data.Order.OrderTags["subscription_id"]
		if status == vo.TransactionStatusSuccess {
			result.Status = vo.SubscriptionStatusActive
		}
		record, err := paymentRecord(p.CfPaymentID.String(), p.PaymentAmount, p.PaymentCurrency, status, p.PaymentGroup, p.PaymentMessage)
		if err != nil {
			return nil, err
		}
		record.CustomerEmail = evt.Data.Customer.CustomerEmail
		record.CustomerName = evt.Data.Customer.CustomerName
		result.Payment = record

	case "SUBSCRIPTION_PAYMENT_SUCCESS", "SUBSCRIPTION_PAYMENT_FAILED":
		d := evt.Data
		status := vo.TransactionStatusFailed
		if evt.Type == "SUBSCRIPTION_PAYMENT_SUCCESS" {
			status = vo.TransactionStatusSuccess
			result.Status = vo.SubscriptionStatusActive
		}
		result.SubscriptionID = d.SubscriptionID
		record, err := paymentRecord(d.CfPaymentID.String(), d.PaymentAmount, d.PaymentCurrency, status, "", d.FailureDetails.FailureReason)
		if err != nil {
			return nil, err
		}
		result.Payment = record

	case "SUBSCRIPTION_STATUS_CHANGED":
		s := evt.Data.SubscriptionDetails
		status, ok := subscriptionStatus(s.SubscriptionStatus)
		if !ok {
			return paymentgateway.Ignored(evt.Type), nil
		}
		result.Status = status
		result.SubscriptionID = s.SubscriptionID
		result.CurrentPeriodEnd = vendorapi.ParseTime(s.NextScheduleDate)
		result.ExpiresAt = vendorapi.ParseTime(s.SubscriptionExpiryTime)
		result.EventID = fmt.Sprintf("%s:%s:%s:%s", evt.Type, s.SubscriptionID, s.SubscriptionStatus, evt.EventTime)

	default:
		return paymentgateway.Ignored(evt.Type), nil
	}
	return result, nil
}

func paymentRecord(id string, amount decimal.Decimal, currency string, status vo.TransactionStatus, method, message string) (*paymentgateway.PaymentRecord, error) {
	currency = strings.ToUpper(currency)
	if currency == "" {
		currency = "INR"
	}
	minor, err := money.ToMinor(amount, currency)
	if err != nil {
		return nil, payment.NewProviderError(vo.ProviderCashfree, "invalid payment amount", err)
	}
	record := &paymentgateway.PaymentRecord{
		PaymentID:     id,
		Amount:        minor,
		Currency:      currency,
		Status:        status,
		PaymentMethod: method,
	}
	if status == vo.TransactionStatusFailed {
		record.ErrorMessage = message
	}
	return record, nil
}

func (a *Adapter) GetSubscriptionStatus(ctx context.Context, subscriptionID string) (*paymentgateway.SubscriptionStatus, error) {
	if !a.configured() {
		return nil, payment.NewSubscriptionNotFoundError(vo.ProviderCashfree, subscriptionID)
	}

	var sub subscriptionDetails
	if err := a.call(ctx, http.MethodGet, "/subscriptions/"+subscriptionID, nil, &sub, "fetch subscription"); err != nil {
		if vendorapi.IsNotFound(err) {
			return nil, payment.NewSubscriptionNotFoundError(vo.ProviderCashfree, subscriptionID)
		}
		return nil, err
	}

	status, ok := subscriptionStatus(sub.SubscriptionStatus)
	if !ok {
		status = vo.SubscriptionStatusPending
	}
	return &paymentgateway.SubscriptionStatus{
		SubscriptionID:   sub.SubscriptionID,
		Status:           status,
		VendorStatus:     sub.SubscriptionStatus,
		CurrentPeriodEnd: vendorapi.ParseTime(sub.NextScheduleDate),
	}, nil
}

// VerifyPayment checks a payment link, which is what checkout hands out.
func (a *Adapter) VerifyPayment(ctx context.Context, paymentID string) *paymentgateway.PaymentVerification {
	v := &paymentgateway.PaymentVerification{PaymentID: paymentID}
	if !a.configured() {
		v.Message = "cashfree is not configured"
		return v
	}

	var link linkResponse
	if err := a.call(ctx, http.MethodGet, "/links/"+paymentID, nil, &link, "fetch payment link"); err != nil {
		a.logger.Warnw("cashfree payment verification failed", "link_id", paymentID, "error", err)
		v.Message = err.Error()
		return v
	}

	v.Status = link.LinkStatus
	v.Currency = link.LinkCurrency
	if minor, err := money.ToMinor(link.LinkAmountPaid, link.LinkCurrency); err == nil {
		v.Amount = minor
	}
	v.IsValid = link.LinkStatus == "PAID"
	if !v.IsValid {
		v.Message = "payment link is " + link.LinkStatus
	}
	return v
}

func txStatus(s string) vo.TransactionStatus {
	switch strings.ToUpper(s) {
	case "SUCCESS":
		return vo.TransactionStatusSuccess
	case "FAILED", "USER_DROPPED", "CANCELLED", "VOID":
		return vo.TransactionStatusFailed
	default:
		return vo.TransactionStatusPending
	}
}

func subscriptionStatus(s string) (vo.SubscriptionStatus, bool) {
	switch strings.ToUpper(s) {
	case "ACTIVE":
		return vo.SubscriptionStatusActive, true
	case "INITIALIZED", "BANK_APPROVAL_PENDING", "ON_HOLD", "CUSTOMER_PAUSED":
		return vo.SubscriptionStatusPending, true
	case "CANCELLED", "CUSTOMER_CANCELLED":
		return vo.SubscriptionStatusCancelled, true
	case "COMPLETED", "EXPIRED", "LINK_EXPIRED":
		return vo.SubscriptionStatusExpired, true
	default:
		return "", false
	}
}

type linkResponse struct {
	LinkID         string          `json:"link_id"`
	LinkURL        string          `json:"link_url"`
	LinkStatus     string          `json:"link_status"`
	LinkCurrency   string          `json:"link_currency"`
	LinkAmountPaid decimal.Decimal `json:"link_amount_paid"`
	LinkExpiryTime string          `json:"link_expiry_time"`
}

type subscriptionDetails struct {
	SubscriptionID         string `json:"subscription_id"`
	SubscriptionStatus     string `json:"subscription_status"`
	NextScheduleDate       string `json:"next_schedule_date"`
	SubscriptionExpiryTime string `json:"subscription_expiry_time"`
}

type webhookEvent struct {
	Type      string `json:"type"`
	EventTime string `json:"event_time"`
	Data      struct {
		Order struct {
			OrderID   string            `json:"order_id"`
			OrderTags map[string]string `json:"order_tags"`
		} `json:"order"`
		Payment struct {
			CfPaymentID     json.Number     `json:"cf_payment_id"`
			PaymentStatus   string          `json:"payment_status"`
			PaymentAmount   decimal.Decimal `json:"payment_amount"`
			PaymentCurrency string          `json:"payment_currency"`
			PaymentMessage  string          `json:"payment_message"`
			PaymentGroup    string          `json:"payment_group"`
		} `json:"payment"`
		Customer struct {
			CustomerID    string `json:"customer_id"`
			CustomerEmail string `json:"customer_email"`
			CustomerName  string `json:"customer_name"`
		} `json:"customer_details"`
		SubscriptionDetails subscriptionDetails `json:"subscription_details"`

		SubscriptionID  string          `json:"subscription_id"`
		CfPaymentID     json.Number     `json:"cf_payment_id"`
		PaymentAmount   decimal.Decimal `json:"payment_amount"`
		PaymentCurrency string          `json:"payment_currency"`
		FailureDetails  struct {
			FailureReason string `json:"failure_reason"`
		} `json:"failure_details"`
	} `json:"data"`
}
