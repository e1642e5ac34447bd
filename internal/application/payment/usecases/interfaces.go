package usecases

import (
	"context"
	"time"

	"github.com/floradex/billing/internal/application/payment/dto"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
)

// TransactionManager runs fn in one database transaction. Nested calls
// join the outer transaction.
type TransactionManager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// WebhookDeduplicator is the Redis fast path in front of the ledger's
// unique index.
type WebhookDeduplicator interface {
	// Acquire returns false when the key was already claimed.
	Acquire(ctx context.Context, provider vo.Provider, key string) (bool, error)
	Release(ctx context.Context, provider vo.Provider, key string) error
}

// StatusEventPublisher announces committed subscription status changes.
type StatusEventPublisher interface {
	PublishStatusChanged(ctx context.Context, event dto.StatusChangedEvent) error
}

// SubscriptionStatusCache caches vendor status polls.
type SubscriptionStatusCache interface {
	Get(ctx context.Context, provider vo.Provider, subscriptionID string) (*dto.SubscriptionStatusDTO, error)
	Set(ctx context.Context, status *dto.SubscriptionStatusDTO, ttl time.Duration) error
	Invalidate(ctx context.Context, provider vo.Provider, subscriptionID string) error
}
