// Package midtrans integrates Midtrans Snap for Indonesian payments.
//
// Snap only charges once. A subscription checkout is a single paid period:
// the order id doubles as the subscription id and encodes the interval,
// so webhooks and status polls can derive the period end and the expiry
// job closes the subscription when it runs out.
package midtrans

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	mt "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"

	"github.com/floradex/billing/internal/application/payment/paymentgateway"
	"github.com/floradex/billing/internal/domain/payment"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	"github.com/floradex/billing/internal/infrastructure/payment/vendorapi"
	"github.com/floradex/billing/internal/shared/logger"
	"github.com/floradex/billing/internal/shared/money"
)

const (
	CredServerKey = "MIDTRANS_SERVER_KEY"

	currencyIDR = "IDR"
	// snapExpiry is how long a Snap payment page stays open.
	snapExpiry = 24 * time.Hour
)

var capabilities = paymentgateway.Capabilities{
	Currencies: []string{currencyIDR},
	Regions:    []string{"ID"},
}

type Adapter struct {
	paymentgateway.Capabilities
	vendorapi.Mode

	creds  paymentgateway.CredentialSource
	http   *httpClient
	logger logger.Interface
	now    func() time.Time
}

func New(opts vendorapi.Options) *Adapter {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = vendorapi.DefaultTimeout
	}
	log := opts.Log().Named("midtrans")
	a := &Adapter{
		Capabilities: capabilities,
		creds:        opts.Credentials,
		http:         newHTTPClient(opts.BaseURL, timeout, log),
		logger:       log,
		now:          time.Now,
	}
	a.SetTestMode(opts.TestMode)
	return a
}

var _ paymentgateway.Adapter = (*Adapter)(nil)

func (a *Adapter) Descriptor() paymentgateway.Descriptor {
	return paymentgateway.Descriptor{
		Provider:            vo.ProviderMidtrans,
		DisplayName:         "Midtrans",
		RequiredCredentials: []string{CredServerKey},
		Currencies:          a.Currencies,
		Regions:             a.Regions,
	}
}

func (a *Adapter) serverKey() string {
	return strings.TrimSpace(a.creds.Get(CredServerKey))
}

func (a *Adapter) env() mt.EnvironmentType {
	if a.IsTestMode() {
		return mt.Sandbox
	}
	return mt.Production
}

func (a *Adapter) snapClient(ctx context.Context) snap.Client {
	return snap.Client{
		ServerKey:  a.serverKey(),
		Env:        a.env(),
		HttpClient: a.http,
		Options:    &mt.ConfigOptions{Ctx: ctx},
	}
}

func (a *Adapter) coreClient(ctx context.Context) coreapi.Client {
	return coreapi.Client{
		ServerKey:  a.serverKey(),
		Env:        a.env(),
		HttpClient: a.http,
		Options:    &mt.ConfigOptions{Ctx: ctx},
	}
}

func (a *Adapter) CreateCheckout(ctx context.Context, params paymentgateway.CheckoutParams) (*paymentgateway.CheckoutResponse, error) {
	if a.serverKey() == "" {
		a.logger.Warnw("midtrans server key missing, returning demo checkout")
		return paymentgateway.DemoCheckout(vo.ProviderMidtrans, vendorapi.SessionID("mt_demo_")), nil
	}

	// IDR has no minor digits here, so the amount is already whole rupiah.
	gross := money.ToMajor(params.Amount, currencyIDR)

	orderID := newOrderID(params.Type, params.Interval)
	req := &snap.Request{
		TransactionDetails: mt.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: gross.IntPart(),
		},
		CustomerDetail: &mt.CustomerDetails{
			FName: params.CustomerName,
			Email: params.CustomerEmail,
		},
		Items: &[]mt.ItemDetails{{
			ID:    orderID,
			Name:  truncate(params.ProductName, 50),
			Price: gross.IntPart(),
			Qty:   1,
		}},
		CustomField1: params.Metadata["plan_id"],
		Expiry: &snap.ExpiryDetails{
			Unit:     "hour",
			Duration: int64(snapExpiry / time.Hour),
		},
	}
	if params.ReturnURL != "" {
		req.Callbacks = &snap.Callbacks{Finish: params.ReturnURL}
	}

	resp, mErr := a.snapClient(ctx).CreateTransaction(req)
	if mErr != nil {
		return nil, payment.NewProviderError(vo.ProviderMidtrans, "failed to create snap transaction", mErr)
	}

	expires := a.now().Add(snapExpiry).UTC()
	out := &paymentgateway.CheckoutResponse{
		CheckoutURL: resp.RedirectURL,
		SessionID:   orderID,
		PaymentID:   orderID,
		ExpiresAt:   &expires,
	}
	if params.Type == vo.CheckoutTypeSubscription {
		out.SubscriptionID = orderID
	}
	a.logger.Infow("midtrans snap transaction created", "order_id", orderID, "type", params.Type)
	return out, nil
}

type notification struct {
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"`
	TransactionID     string `json:"transaction_id"`
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	Currency          string `json:"currency"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
	StatusMessage     string `json:"status_message"`
	CustomField1      string `json:"custom_field1"`
}

// HandleWebhook verifies signature_key, the SHA-512 of order id, status
// code, gross amount and server key.
func (a *Adapter) HandleWebhook(ctx context.Context, req paymentgateway.WebhookRequest) (*paymentgateway.WebhookResult, error) {
	key := a.serverKey()
	if key == "" {
		return nil, payment.NewInvalidSignatureError(vo.ProviderMidtrans, "server key is not configured")
	}

	var n notification
	if err := json.Unmarshal(req.Body, &n); err != nil {
		return nil, payment.NewInvalidSignatureError(vo.ProviderMidtrans, "unparseable payload")
	}
	if n.SignatureKey == "" || n.OrderID == "" {
		return nil, payment.NewInvalidSignatureError(vo.ProviderMidtrans, "missing signature")
	}
	if !validSignature(n, key) {
		return nil, payment.NewInvalidSignatureError(vo.ProviderMidtrans, "signature mismatch")
	}

	subStatus, txStatus, ok := mapStatus(n.TransactionStatus, n.FraudStatus)
	if !ok {
		return paymentgateway.Ignored(n.TransactionStatus), nil
	}

	currency := strings.ToUpper(n.Currency)
	if currency == "" {
		currency = currencyIDR
	}
	amount, err := money.ParseMajor(n.GrossAmount, currency)
	if err != nil {
		return nil, payment.NewProviderError(vo.ProviderMidtrans, "invalid gross amount", err)
	}

	// transaction_id stays the same across status updates. A card charge
	// notifies capture and later settlement; both are the same money, so
	// success is keyed on the bare id and the second one is a duplicate.
	// Pending and failed transitions keep a status suffix, as does the
	// order id fallback since the checkout row is already keyed on it.
	suffix := ":" + strings.ToLower(n.TransactionStatus)
	paymentID := n.TransactionID
	switch {
	case paymentID == "":
		paymentID = n.OrderID + suffix
	case txStatus != vo.TransactionStatusSuccess:
		paymentID += suffix
	}
	result := &paymentgateway.WebhookResult{
		Success:   true,
		EventType: n.TransactionStatus,
		EventID:   n.OrderID + ":" + n.TransactionStatus,
		Raw:       req.Body,
		Metadata:  vendorapi.Metadata(nil, "order_id", n.OrderID, "plan_id", n.CustomField1, "payment_type", n.PaymentType),
		Payment: &paymentgateway.PaymentRecord{
			PaymentID:     paymentID,
			Amount:        amount,
			Currency:      currency,
			Status:        txStatus,
			PaymentMethod: n.PaymentType,
		},
	}
	if txStatus == vo.TransactionStatusFailed {
		result.Payment.ErrorCode = n.StatusCode
		result.Payment.ErrorMessage = n.StatusMessage
	}

	if interval, ok := subscriptionInterval(n.OrderID); ok {
		result.SubscriptionID = n.OrderID
		result.Status = subStatus
		if subStatus == vo.SubscriptionStatusActive {
			result.CurrentPeriodStart, result.CurrentPeriodEnd = paidPeriod(n.TransactionTime, interval)
		}
	}
	return result, nil
}

func validSignature(n notification, serverKey string) bool {
	sum := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + serverKey))
	want := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(n.SignatureKey))) == 1
}

// mapStatus maps transaction_status (and fraud_status for card captures).
// refund events are not handled.
func mapStatus(status, fraud string) (vo.SubscriptionStatus, vo.TransactionStatus, bool) {
	switch strings.ToLower(status) {
	case "settlement":
		return vo.SubscriptionStatusActive, vo.TransactionStatusSuccess, true
	case "capture":
		switch strings.ToLower(fraud) {
		case "", "accept":
			return vo.SubscriptionStatusActive, vo.TransactionStatusSuccess, true
		case "challenge":
			return vo.SubscriptionStatusPending, vo.TransactionStatusPending, true
		default:
			return "", vo.TransactionStatusFailed, true
		}
	case "pending":
		return vo.SubscriptionStatusPending, vo.TransactionStatusPending, true
	case "cancel":
		return vo.SubscriptionStatusCancelled, vo.TransactionStatusFailed, true
	case "expire":
		return vo.SubscriptionStatusExpired, vo.TransactionStatusFailed, true
	case "deny", "failure":
		return "", vo.TransactionStatusFailed, true
	default:
		return "", "", false
	}
}

// paidPeriod starts at the transaction time (Asia/Jakarta when the vendor
// omits the zone) and runs one interval.
func paidPeriod(txTime string, interval vo.BillingInterval) (*time.Time, *time.Time) {
	start := parseJakarta(txTime)
	if start == nil {
		return nil, nil
	}
	end := start.AddDate(0, interval.Months(), 0)
	return start, &end
}

const (
	oneTimePrefix = "mt_"
	monthlyPrefix = "mtsub_m_"
	yearlyPrefix  = "mtsub_y_"
)

func newOrderID(kind vo.CheckoutType, interval vo.BillingInterval) string {
	if kind != vo.CheckoutTypeSubscription {
		return vendorapi.SessionID(oneTimePrefix)
	}
	if interval == vo.BillingIntervalYearly {
		return vendorapi.SessionID(yearlyPrefix)
	}
	return vendorapi.SessionID(monthlyPrefix)
}

// subscriptionInterval reports the interval encoded in a subscription
// order id.
func subscriptionInterval(orderID string) (vo.BillingInterval, bool) {
	switch {
	case strings.HasPrefix(orderID, monthlyPrefix):
		return vo.BillingIntervalMonthly, true
	case strings.HasPrefix(orderID, yearlyPrefix):
		return vo.BillingIntervalYearly, true
	default:
		return "", false
	}
}

var jakarta = time.FixedZone("WIB", 7*60*60)

func parseJakarta(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation(time.DateTime, s, jakarta)
	if err != nil {
		return vendorapi.ParseTime(s)
	}
	u := t.UTC()
	return &u
}

func (a *Adapter) GetSubscriptionStatus(ctx context.Context, subscriptionID string) (*paymentgateway.SubscriptionStatus, error) {
	if a.serverKey() == "" {
		return nil, payment.NewSubscriptionNotFoundError(vo.ProviderMidtrans, subscriptionID)
	}

	resp, mErr := a.coreClient(ctx).CheckTransaction(subscriptionID)
	if mErr != nil {
		if mErr.StatusCode == http.StatusNotFound {
			return nil, payment.NewSubscriptionNotFoundError(vo.ProviderMidtrans, subscriptionID)
		}
		return nil, payment.NewProviderError(vo.ProviderMidtrans, "failed to check transaction", mErr)
	}

	status, _, ok := mapStatus(resp.TransactionStatus, resp.FraudStatus)
	if !ok || status == "" {
		status = vo.SubscriptionStatusPending
	}
	out := &paymentgateway.SubscriptionStatus{
		SubscriptionID: subscriptionID,
		Status:         status,
		VendorStatus:   resp.TransactionStatus,
	}
	if interval, sub := subscriptionInterval(subscriptionID); sub && status == vo.SubscriptionStatusActive {
		out.CurrentPeriodStart, out.CurrentPeriodEnd = paidPeriod(firstNonEmpty(resp.SettlementTime, resp.TransactionTime), interval)
	}
	return out, nil
}

func (a *Adapter) VerifyPayment(ctx context.Context, paymentID string) *paymentgateway.PaymentVerification {
	v := &paymentgateway.PaymentVerification{PaymentID: paymentID}
	if a.serverKey() == "" {
		v.Message = "midtrans is not configured"
		return v
	}

	resp, mErr := a.coreClient(ctx).CheckTransaction(paymentID)
	if mErr != nil {
		a.logger.Warnw("midtrans payment verification failed", "order_id", paymentID, "error", mErr.GetMessage())
		v.Message = mErr.GetMessage()
		return v
	}

	v.Status = resp.TransactionStatus
	v.Currency = firstNonEmpty(strings.ToUpper(resp.Currency), currencyIDR)
	if amount, err := money.ParseMajor(resp.GrossAmount, v.Currency); err == nil {
		v.Amount = amount
	}
	_, txStatus, _ := mapStatus(resp.TransactionStatus, resp.FraudStatus)
	v.IsValid = txStatus == vo.TransactionStatusSuccess
	if !v.IsValid {
		v.Message = fmt.Sprintf("transaction is %s", resp.TransactionStatus)
	}
	return v
}

func truncate(s string, n int) string {
	if s == "" {
		return "Payment"
	}
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
