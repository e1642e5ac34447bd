package dto

import "time"

type CheckoutDTO struct {
	Provider       string     `json:"provider"`
	CheckoutURL    string     `json:"checkout_url"`
	SessionID      string     `json:"session_id"`
	PaymentID      string     `json:"payment_id,omitempty"`
	SubscriptionID string     `json:"subscription_id,omitempty"`
	Amount         int64      `json:"amount"`
	Currency       string     `json:"currency"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	Demo           bool       `json:"demo"`
}

type WebhookResultDTO struct {
	Processed bool   `json:"processed"`
	Duplicate bool   `json:"duplicate"`
	EventType string `json:"event_type,omitempty"`
	Status    string `json:"status,omitempty"`
}
