package usecases

import (
	"context"
	"time"

	"github.com/floradex/billing/internal/application/payment/dto"
	"github.com/floradex/billing/internal/application/payment/paymentgateway"
	"github.com/floradex/billing/internal/domain/payment"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	"github.com/floradex/billing/internal/shared/biztime"
	apperrors "github.com/floradex/billing/internal/shared/errors"
	"github.com/floradex/billing/internal/shared/logger"
)

type GetSubscriptionStatusQuery struct {
	Provider       string
	SubscriptionID string
	// SkipCache forces a vendor poll.
	SkipCache bool
}

// GetSubscriptionStatusUseCase polls the vendor and runs the result through
// the same state machine as webhooks.
type GetSubscriptionStatusUseCase struct {
	gatewayRepo      payment.GatewayRepository
	subscriptionRepo payment.SubscriptionRepository
	adapters         *paymentgateway.Set
	cache            SubscriptionStatusCache // Optional
	cacheTTL         time.Duration
	publisher        StatusEventPublisher // Optional
	logger           logger.Interface
}

func NewGetSubscriptionStatusUseCase(
	gatewayRepo payment.GatewayRepository,
	subscriptionRepo payment.SubscriptionRepository,
	adapters *paymentgateway.Set,
	logger logger.Interface,
) *GetSubscriptionStatusUseCase {
	return &GetSubscriptionStatusUseCase{
		gatewayRepo:      gatewayRepo,
		subscriptionRepo: subscriptionRepo,
		adapters:         adapters,
		logger:           logger,
	}
}

func (uc *GetSubscriptionStatusUseCase) SetCache(cache SubscriptionStatusCache, ttl time.Duration) {
	uc.cache = cache
	uc.cacheTTL = ttl
}

func (uc *GetSubscriptionStatusUseCase) SetPublisher(p StatusEventPublisher) {
	uc.publisher = p
}

func (uc *GetSubscriptionStatusUseCase) Execute(ctx context.Context, query GetSubscriptionStatusQuery) (*dto.SubscriptionStatusDTO, error) {
	if query.SubscriptionID == "" {
		return nil, apperrors.NewValidationError("subscription id is required")
	}
	provider, adapter, err := resolveAdapter(uc.adapters, query.Provider)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil && !query.SkipCache {
		cached, err := uc.cache.Get(ctx, provider, query.SubscriptionID)
		if err != nil {
			uc.logger.Warnw("status cache read failed", "provider", provider, "error", err)
		} else if cached != nil {
			cached.Cached = true
			return cached, nil
		}
	}

	status, err := adapter.GetSubscriptionStatus(ctx, query.SubscriptionID)
	if err != nil {
		uc.logger.Warnw("subscription status poll failed",
			"provider", provider,
			"subscription_id", query.SubscriptionID,
			"error", err,
		)
		return nil, err
	}

	uc.syncLocal(ctx, provider, status)

	result := &dto.SubscriptionStatusDTO{
		Provider:           provider.String(),
		SubscriptionID:     query.SubscriptionID,
		Status:             status.Status.String(),
		VendorStatus:       status.VendorStatus,
		CustomerID:         status.CustomerID,
		CurrentPeriodStart: status.CurrentPeriodStart,
		CurrentPeriodEnd:   status.CurrentPeriodEnd,
		CancelAtPeriodEnd:  status.CancelAtPeriodEnd,
	}
	if uc.cache != nil {
		if err := uc.cache.Set(ctx, result, uc.cacheTTL); err != nil {
			uc.logger.Warnw("status cache write failed", "provider", provider, "error", err)
		}
	}
	return result, nil
}

// syncLocal applies the polled status to the local copy, if there is one.
// Failures are logged; the caller still gets the vendor's answer.
func (uc *GetSubscriptionStatusUseCase) syncLocal(ctx context.Context, provider vo.Provider, status *paymentgateway.SubscriptionStatus) {
	gw, err := uc.gatewayRepo.GetByProvider(ctx, provider)
	if err != nil || gw == nil {
		return
	}
	sub, err := uc.subscriptionRepo.GetByVendorID(ctx, gw.ID(), status.SubscriptionID)
	if err != nil || sub == nil {
		return
	}

	cancelAtPeriodEnd := status.CancelAtPeriodEnd
	t := sub.Apply(payment.StatusUpdate{
		Status:             status.Status,
		CurrentPeriodStart: status.CurrentPeriodStart,
		CurrentPeriodEnd:   status.CurrentPeriodEnd,
		CancelAtPeriodEnd:  &cancelAtPeriodEnd,
		CustomerID:         status.CustomerID,
	})
	if !t.Modified {
		return
	}
	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		uc.logger.Errorw("failed to sync subscription from poll",
			"provider", provider,
			"subscription_id", status.SubscriptionID,
			"error", err,
		)
		return
	}
	if t.StatusChanged && uc.publisher != nil {
		event := dto.StatusChangedEvent{
			Provider:       provider.String(),
			SubscriptionID: status.SubscriptionID,
			From:           t.From.String(),
			To:             t.To.String(),
			OccurredAt:     biztime.NowUTC(),
		}
		if err := uc.publisher.PublishStatusChanged(ctx, event); err != nil {
			uc.logger.Warnw("failed to publish subscription status change", "error", err)
		}
	}
}
