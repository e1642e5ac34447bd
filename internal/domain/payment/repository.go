package payment

import (
	"context"
	"time"

	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
)

// GatewayRepository persists gateway rows. Lookups return (nil, nil) when
// the row does not exist.
type GatewayRepository interface {
	Create(ctx context.Context, gateway *Gateway) error
	// Update writes configuration fields only; counters are owned by
	// IncrementCounters.
	Update(ctx context.Context, gateway *Gateway) error
	GetByID(ctx context.Context, id uint) (*Gateway, error)
	GetByProvider(ctx context.Context, provider vo.Provider) (*Gateway, error)
	List(ctx context.Context) ([]*Gateway, error)
	ClearPrimaryExcept(ctx context.Context, keepID uint) error
	IncrementCounters(ctx context.Context, gatewayID uint, status vo.TransactionStatus, amount int64) error
}

type TransactionFilter struct {
	GatewayID *uint
	Limit     int
}

type TransactionRepository interface {
	// CreateIfAbsent inserts the entry unless one with the same gateway and
	// vendor transaction id exists, and reports whether it inserted.
	CreateIfAbsent(ctx context.Context, tx *Transaction) (bool, error)
	List(ctx context.Context, filter TransactionFilter) ([]*Transaction, error)
}

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *Subscription) error
	Update(ctx context.Context, sub *Subscription) error
	GetByVendorID(ctx context.Context, gatewayID uint, vendorSubscriptionID string) (*Subscription, error)
	// ListActiveEndedBefore returns active subscriptions whose current
	// period ended at or before t, oldest first.
	ListActiveEndedBefore(ctx context.Context, t time.Time, limit int) ([]*Subscription, error)
}
