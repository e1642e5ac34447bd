package payment

import (
	"errors"
	"fmt"

	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
)

// ErrorKind is the failure taxonomy shared by every provider adapter.
type ErrorKind string

const (
	ErrKindProvider             ErrorKind = "PROVIDER_ERROR"
	ErrKindInvalidSignature     ErrorKind = "INVALID_SIGNATURE"
	ErrKindSubscriptionNotFound ErrorKind = "SUBSCRIPTION_NOT_FOUND"
)

// PaymentError is the single structured error adapters return. It names
// the provider so the failure can bubble unchanged to the HTTP layer.
type PaymentError struct {
	Kind     ErrorKind
	Provider vo.Provider
	Message  string
	Err      error
}

// Sentinels for errors.Is; they match any provider.
var (
	ErrProvider             = &PaymentError{Kind: ErrKindProvider}
	ErrInvalidSignature     = &PaymentError{Kind: ErrKindInvalidSignature}
	ErrSubscriptionNotFound = &PaymentError{Kind: ErrKindSubscriptionNotFound}
)

func (e *PaymentError) Error() string {
	msg := string(e.Kind)
	if e.Provider != "" {
		msg = string(e.Provider) + ": " + msg
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

// Is matches another PaymentError of the same kind. A target without a
// provider matches every provider.
func (e *PaymentError) Is(target error) bool {
	t, ok := target.(*PaymentError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Provider == "" || t.Provider == e.Provider)
}

func NewProviderError(provider vo.Provider, message string, err error) *PaymentError {
	return &PaymentError{Kind: ErrKindProvider, Provider: provider, Message: message, Err: err}
}

func NewInvalidSignatureError(provider vo.Provider, message string) *PaymentError {
	return &PaymentError{Kind: ErrKindInvalidSignature, Provider: provider, Message: message}
}

func NewSubscriptionNotFoundError(provider vo.Provider, subscriptionID string) *PaymentError {
	return &PaymentError{
		Kind:     ErrKindSubscriptionNotFound,
		Provider: provider,
		Message:  fmt.Sprintf("subscription %s not found", subscriptionID),
	}
}

// AsPaymentError returns the PaymentError in err's chain, if any.
func AsPaymentError(err error) (*PaymentError, bool) {
	var pe *PaymentError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
