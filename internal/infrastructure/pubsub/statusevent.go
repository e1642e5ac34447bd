package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"

	"github.com/floradex/billing/internal/application/payment/dto"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	"github.com/floradex/billing/internal/shared/biztime"
	"github.com/floradex/billing/internal/shared/goroutine"
	"github.com/floradex/billing/internal/shared/logger"
)

const statusChangedChannel = "billing:subscription:status_changed"

// StatusEventHandler receives every status change published by any
// instance, this one included.
type StatusEventHandler func(ctx context.Context, event dto.StatusChangedEvent)

// StatusEventBus fans subscription status changes out over Redis Pub/Sub.
type StatusEventBus struct {
	client *redis.Client
	logger logger.Interface

	initialInterval time.Duration
	maxInterval     time.Duration
}

func NewStatusEventBus(client *redis.Client, logger logger.Interface) *StatusEventBus {
	return &StatusEventBus{
		client:          client,
		logger:          logger,
		initialInterval: time.Second,
		maxInterval:     30 * time.Second,
	}
}

func (b *StatusEventBus) PublishStatusChanged(ctx context.Context, event dto.StatusChangedEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = biztime.NowUTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal status event: %w", err)
	}

	if err := b.client.Publish(ctx, statusChangedChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish status event: %w", err)
	}

	b.logger.Debugw("subscription status change published",
		"provider", event.Provider,
		"subscription_id", event.SubscriptionID,
		"to", event.To,
	)
	return nil
}

// Subscribe blocks until ctx is done, reconnecting with exponential
// backoff whenever the subscription drops.
func (b *StatusEventBus) Subscribe(ctx context.Context, handler StatusEventHandler) error {
	for {
		ps, err := backoff.Retry(ctx, func() (*redis.PubSub, error) {
			return b.connect(ctx)
		},
			backoff.WithBackOff(b.newBackOff()),
			backoff.WithMaxElapsedTime(0),
			backoff.WithNotify(func(err error, next time.Duration) {
				b.logger.Warnw("status event subscription failed, retrying",
					"channel", statusChangedChannel,
					"error", err,
					"backoff", next,
				)
			}),
		)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		b.consume(ctx, ps, handler)
		_ = ps.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.logger.Warnw("status event subscription disconnected, reconnecting", "channel", statusChangedChannel)
	}
}

func (b *StatusEventBus) newBackOff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = b.initialInterval
	bo.MaxInterval = b.maxInterval
	return bo
}

func (b *StatusEventBus) connect(ctx context.Context) (*redis.PubSub, error) {
	ps := b.client.Subscribe(ctx, statusChangedChannel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, fmt.Errorf("failed to subscribe to channel %s: %w", statusChangedChannel, err)
	}
	b.logger.Infow("subscribed to subscription status events", "channel", statusChangedChannel)
	return ps, nil
}

func (b *StatusEventBus) consume(ctx context.Context, ps *redis.PubSub, handler StatusEventHandler) {
	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event dto.StatusChangedEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warnw("failed to unmarshal status event",
					"payload", msg.Payload,
					"error", err,
				)
				continue
			}
			goroutine.SafeGo(b.logger, "status-event-handler", func() {
				handler(context.WithoutCancel(ctx), event)
			})
		}
	}
}

// StatusInvalidator is the part of the status cache the bus needs.
type StatusInvalidator interface {
	Invalidate(ctx context.Context, provider vo.Provider, subscriptionID string) error
}

// InvalidateCache drops the cached vendor status of every subscription
// whose status changed, so polls on any instance see the new state.
func InvalidateCache(cache StatusInvalidator, log logger.Interface) StatusEventHandler {
	return func(ctx context.Context, event dto.StatusChangedEvent) {
		provider, err := vo.ParseProvider(event.Provider)
		if err != nil {
			log.Warnw("status event with unknown provider", "provider", event.Provider)
			return
		}
		if err := cache.Invalidate(ctx, provider, event.SubscriptionID); err != nil {
			log.Warnw("failed to invalidate subscription status cache",
				"provider", provider,
				"subscription_id", event.SubscriptionID,
				"error", err,
			)
		}
	}
}
