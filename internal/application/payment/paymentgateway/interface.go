package paymentgateway

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
)

// DemoURLPrefix marks checkout URLs produced without vendor credentials.
const DemoURLPrefix = "demo://checkout/"

// Adapter is the contract every payment vendor integration implements.
// Amounts crossing this boundary are always in the currency's minor unit.
type Adapter interface {
	Descriptor() Descriptor
	// SetTestMode switches between sandbox and live endpoints.
	SetTestMode(testMode bool)
	IsTestMode() bool

	SupportsCurrency(code string) bool
	SupportsRegion(code string) bool

	// CreateCheckout never fails for missing credentials; it returns a demo
	// response instead.
	CreateCheckout(ctx context.Context, params CheckoutParams) (*CheckoutResponse, error)
	// HandleWebhook verifies the request and maps it onto canonical
	// statuses. Verification failures are INVALID_SIGNATURE errors; events
	// the adapter does not handle come back with Success=false.
	HandleWebhook(ctx context.Context, req WebhookRequest) (*WebhookResult, error)
	GetSubscriptionStatus(ctx context.Context, subscriptionID string) (*SubscriptionStatus, error)
	// VerifyPayment reports IsValid=false on any vendor error.
	VerifyPayment(ctx context.Context, paymentID string) *PaymentVerification
}

// Descriptor is the static description of a vendor.
type Descriptor struct {
	Provider            vo.Provider
	DisplayName         string
	RequiredCredentials []string
	Currencies          []string
	Regions             []string
}

// Capabilities implements SupportsCurrency and SupportsRegion over fixed
// allow-lists. Adapters embed it.
type Capabilities struct {
	Currencies []string
	Regions    []string
}

func (c Capabilities) SupportsCurrency(code string) bool {
	return slices.Contains(c.Currencies, strings.ToUpper(strings.TrimSpace(code)))
}

func (c Capabilities) SupportsRegion(code string) bool {
	return slices.Contains(c.Regions, strings.ToUpper(strings.TrimSpace(code)))
}

type CheckoutParams struct {
	Amount        int64
	Currency      string
	CustomerEmail string
	CustomerName  string
	CustomerID    string
	ProductName   string
	Type          vo.CheckoutType
	Interval      vo.BillingInterval
	ReturnURL     string
	Metadata      map[string]string
}

type CheckoutResponse struct {
	CheckoutURL    string
	SessionID      string
	PaymentID      string
	SubscriptionID string
	ExpiresAt      *time.Time
	Demo           bool
}

type WebhookRequest struct {
	Body    []byte
	Headers http.Header
}

// PaymentRecord is the charge a webhook reported, if any.
type PaymentRecord struct {
	PaymentID     string
	Amount        int64
	Currency      string
	Status        vo.TransactionStatus
	PaymentMethod string
	CustomerEmail string
	CustomerName  string
	ErrorCode     string
	ErrorMessage  string
}

type WebhookResult struct {
	Success            bool
	EventType          string
	EventID            string
	SubscriptionID     string
	CustomerID         string
	Status             vo.SubscriptionStatus
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	ExpiresAt          *time.Time
	Payment            *PaymentRecord
	Metadata           map[string]string
	Raw                []byte
}

// Ignored builds the result for an event the adapter does not handle.
func Ignored(eventType string) *WebhookResult {
	return &WebhookResult{Success: false, EventType: eventType}
}

// LedgerKey is the vendor transaction id a webhook is recorded under:
// the payment id when there is one, else the event id.
func (r *WebhookResult) LedgerKey() string {
	if r.Payment != nil && r.Payment.PaymentID != "" {
		return r.Payment.PaymentID
	}
	return r.EventID
}

type SubscriptionStatus struct {
	SubscriptionID     string
	Status             vo.SubscriptionStatus
	VendorStatus       string
	CustomerID         string
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	CancelAtPeriodEnd  bool
}

type PaymentVerification struct {
	PaymentID string
	IsValid   bool
	Status    string
	Amount    int64
	Currency  string
	Message   string
}

// DemoCheckout builds the response returned when credentials are missing.
// It carries no subscription id, so nothing is tracked vendor-side.
func DemoCheckout(provider vo.Provider, sessionID string) *CheckoutResponse {
	return &CheckoutResponse{
		CheckoutURL: DemoURLPrefix + string(provider) + "/" + sessionID,
		SessionID:   sessionID,
		Demo:        true,
	}
}

// IsDemoURL reports whether url came from DemoCheckout.
func IsDemoURL(url string) bool {
	return strings.HasPrefix(url, DemoURLPrefix)
}
