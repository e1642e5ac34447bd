package dto

import "time"

// SubscriptionStatusDTO is also the value stored in the status cache.
type SubscriptionStatusDTO struct {
	Provider           string     `json:"provider"`
	SubscriptionID     string     `json:"subscription_id"`
	Status             string     `json:"status"`
	VendorStatus       string     `json:"vendor_status,omitempty"`
	CustomerID         string     `json:"customer_id,omitempty"`
	CurrentPeriodStart *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd  bool       `json:"cancel_at_period_end"`
	Cached             bool       `json:"cached"`
}

type PaymentVerificationDTO struct {
	Provider  string `json:"provider"`
	PaymentID string `json:"payment_id"`
	IsValid   bool   `json:"is_valid"`
	Status    string `json:"status,omitempty"`
	Amount    int64  `json:"amount,omitempty"`
	Currency  string `json:"currency,omitempty"`
	Message   string `json:"message,omitempty"`
}

// StatusChangedEvent is published after a subscription's status moved.
type StatusChangedEvent struct {
	Provider       string    `json:"provider"`
	SubscriptionID string    `json:"subscription_id"`
	From           string    `json:"from"`
	To             string    `json:"to"`
	OccurredAt     time.Time `json:"occurred_at"`
}
