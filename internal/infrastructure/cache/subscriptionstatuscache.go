package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/floradex/billing/internal/application/payment/dto"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	"github.com/floradex/billing/internal/shared/logger"
)

const (
	statusKeyPrefix       = "billing:subscription:status:"
	DefaultStatusCacheTTL = 5 * time.Minute
)

// SubscriptionStatusCache stores vendor status polls as JSON strings.
type SubscriptionStatusCache struct {
	client *redis.Client
	logger logger.Interface
}

func NewSubscriptionStatusCache(client *redis.Client, logger logger.Interface) *SubscriptionStatusCache {
	return &SubscriptionStatusCache{client: client, logger: logger}
}

func (c *SubscriptionStatusCache) key(provider vo.Provider, subscriptionID string) string {
	return fmt.Sprintf("%s%s:%s", statusKeyPrefix, provider, subscriptionID)
}

// Get returns nil on a cache miss.
func (c *SubscriptionStatusCache) Get(ctx context.Context, provider vo.Provider, subscriptionID string) (*dto.SubscriptionStatusDTO, error) {
	raw, err := c.client.Get(ctx, c.key(provider, subscriptionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription status from cache: %w", err)
	}

	var status dto.SubscriptionStatusDTO
	if err := json.Unmarshal(raw, &status); err != nil {
		// A corrupt entry is dropped and treated as a miss.
		c.logger.Warnw("discarding unreadable subscription status cache entry",
			"provider", provider,
			"subscription_id", subscriptionID,
			"error", err,
		)
		_ = c.client.Del(ctx, c.key(provider, subscriptionID)).Err()
		return nil, nil
	}
	return &status, nil
}

func (c *SubscriptionStatusCache) Set(ctx context.Context, status *dto.SubscriptionStatusDTO, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultStatusCacheTTL
	}
	provider, err := vo.ParseProvider(status.Provider)
	if err != nil {
		return err
	}

	stored := *status
	stored.Cached = false
	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to encode subscription status: %w", err)
	}
	if err := c.client.Set(ctx, c.key(provider, status.SubscriptionID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache subscription status: %w", err)
	}
	return nil
}

func (c *SubscriptionStatusCache) Invalidate(ctx context.Context, provider vo.Provider, subscriptionID string) error {
	if err := c.client.Del(ctx, c.key(provider, subscriptionID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate subscription status: %w", err)
	}
	return nil
}
