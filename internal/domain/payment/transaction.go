package payment

import (
	"fmt"
	"strings"
	"time"

	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	"github.com/floradex/billing/internal/shared/biztime"
)

// Transaction is one immutable ledger entry. It has no setters: a
// correction is a new entry, never an edit.
type Transaction struct {
	id             uint
	gatewayID      uint
	transactionID  string
	subscriptionID string
	amount         int64
	currency       string
	status         vo.TransactionStatus
	paymentMethod  string
	customerID     string
	customerEmail  string
	customerName   string
	errorCode      string
	errorMessage   string
	responseData   []byte
	createdAt      time.Time
}

// TransactionParams describes a ledger entry to be written.
type TransactionParams struct {
	GatewayID      uint
	TransactionID  string
	SubscriptionID string
	Amount         int64
	Currency       string
	Status         vo.TransactionStatus
	PaymentMethod  string
	CustomerID     string
	CustomerEmail  string
	CustomerName   string
	ErrorCode      string
	ErrorMessage   string
	ResponseData   []byte
	CreatedAt      time.Time
}

func NewTransaction(p TransactionParams) (*Transaction, error) {
	if p.GatewayID == 0 {
		return nil, fmt.Errorf("gateway ID is required")
	}
	if strings.TrimSpace(p.TransactionID) == "" {
		return nil, fmt.Errorf("transaction ID is required")
	}
	if p.Amount < 0 {
		return nil, fmt.Errorf("amount cannot be negative")
	}
	if p.Amount > 0 && p.Currency == "" {
		return nil, fmt.Errorf("currency is required for a non-zero amount")
	}
	if !p.Status.IsValid() {
		return nil, fmt.Errorf("invalid transaction status %q", p.Status)
	}

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = biztime.NowUTC()
	}

	return &Transaction{
		gatewayID:      p.GatewayID,
		transactionID:  p.TransactionID,
		subscriptionID: p.SubscriptionID,
		amount:         p.Amount,
		currency:       strings.ToUpper(p.Currency),
		status:         p.Status,
		paymentMethod:  p.PaymentMethod,
		customerID:     p.CustomerID,
		customerEmail:  p.CustomerEmail,
		customerName:   p.CustomerName,
		errorCode:      p.ErrorCode,
		errorMessage:   p.ErrorMessage,
		responseData:   p.ResponseData,
		createdAt:      createdAt,
	}, nil
}

// ReconstructTransaction restores a persisted entry.
func ReconstructTransaction(id uint, p TransactionParams) *Transaction {
	return &Transaction{
		id:             id,
		gatewayID:      p.GatewayID,
		transactionID:  p.TransactionID,
		subscriptionID: p.SubscriptionID,
		amount:         p.Amount,
		currency:       p.Currency,
		status:         p.Status,
		paymentMethod:  p.PaymentMethod,
		customerID:     p.CustomerID,
		customerEmail:  p.CustomerEmail,
		customerName:   p.CustomerName,
		errorCode:      p.ErrorCode,
		errorMessage:   p.ErrorMessage,
		responseData:   p.ResponseData,
		createdAt:      p.CreatedAt,
	}
}

func (t *Transaction) ID() uint                     { return t.id }
func (t *Transaction) GatewayID() uint              { return t.gatewayID }
func (t *Transaction) TransactionID() string        { return t.transactionID }
func (t *Transaction) SubscriptionID() string       { return t.subscriptionID }
func (t *Transaction) Amount() int64                { return t.amount }
func (t *Transaction) Currency() string             { return t.currency }
func (t *Transaction) Status() vo.TransactionStatus { return t.status }
func (t *Transaction) PaymentMethod() string        { return t.paymentMethod }
func (t *Transaction) CustomerID() string           { return t.customerID }
func (t *Transaction) CustomerEmail() string        { return t.customerEmail }
func (t *Transaction) CustomerName() string         { return t.customerName }
func (t *Transaction) ErrorCode() string            { return t.errorCode }
func (t *Transaction) ErrorMessage() string         { return t.errorMessage }
func (t *Transaction) ResponseData() []byte         { return t.responseData }
func (t *Transaction) CreatedAt() time.Time         { return t.createdAt }

func (t *Transaction) SetID(id uint) {
	t.id = id
}

// RevenueDelta is what this entry adds to the gateway's revenue total.
func (t *Transaction) RevenueDelta() int64 {
	if t.status == vo.TransactionStatusSuccess {
		return t.amount
	}
	return 0
}
