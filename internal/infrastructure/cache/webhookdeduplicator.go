package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
)

const (
	webhookKeyPrefix = "billing:webhook:"
	// DefaultWebhookDedupTTL covers the longest vendor redelivery window.
	DefaultWebhookDedupTTL = 24 * time.Hour
)

// WebhookDeduplicator claims webhook keys with SetNX so concurrent
// deliveries of the same event are processed once. The ledger's unique
// index remains the durable guarantee.
type WebhookDeduplicator struct {
	client *redis.Client
	ttl    time.Duration
}

func NewWebhookDeduplicator(client *redis.Client, ttl time.Duration) *WebhookDeduplicator {
	if ttl <= 0 {
		ttl = DefaultWebhookDedupTTL
	}
	return &WebhookDeduplicator{client: client, ttl: ttl}
}

// Format: billing:webhook:{provider}:{key}
func (d *WebhookDeduplicator) buildKey(provider vo.Provider, key string) string {
	return fmt.Sprintf("%s%s:%s", webhookKeyPrefix, provider, key)
}

// Acquire returns true when this call claimed the key.
func (d *WebhookDeduplicator) Acquire(ctx context.Context, provider vo.Provider, key string) (bool, error) {
	acquired, err := d.client.SetNX(ctx, d.buildKey(provider, key), "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire webhook key: %w", err)
	}
	return acquired, nil
}

// Release frees a claimed key after a failed attempt so the vendor's
// retry is processed.
func (d *WebhookDeduplicator) Release(ctx context.Context, provider vo.Provider, key string) error {
	if err := d.client.Del(ctx, d.buildKey(provider, key)).Err(); err != nil {
		return fmt.Errorf("failed to release webhook key: %w", err)
	}
	return nil
}
