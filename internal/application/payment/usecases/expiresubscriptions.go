package usecases

import (
	"context"
	"time"

	"github.com/floradex/billing/internal/application/payment/dto"
	"github.com/floradex/billing/internal/application/payment/paymentgateway"
	"github.com/floradex/billing/internal/domain/payment"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	"github.com/floradex/billing/internal/shared/biztime"
	"github.com/floradex/billing/internal/shared/logger"
)

const expiryBatchSize = 100

type ExpireSubscriptionsResult struct {
	Checked   int
	Renewed   int
	Cancelled int
	Expired   int
	Failed    int
}

// ExpireSubscriptionsUseCase settles active subscriptions whose period has
// ended by asking the vendor. A later period end renews, a vendor-side
// cancellation cancels, and anything else (including a failed poll)
// expires.
type ExpireSubscriptionsUseCase struct {
	subscriptionRepo payment.SubscriptionRepository
	adapters         *paymentgateway.Set
	publisher        StatusEventPublisher // Optional
	now              func() time.Time
	logger           logger.Interface
}

func NewExpireSubscriptionsUseCase(
	subscriptionRepo payment.SubscriptionRepository,
	adapters *paymentgateway.Set,
	logger logger.Interface,
) *ExpireSubscriptionsUseCase {
	return &ExpireSubscriptionsUseCase{
		subscriptionRepo: subscriptionRepo,
		adapters:         adapters,
		now:              biztime.NowUTC,
		logger:           logger,
	}
}

func (uc *ExpireSubscriptionsUseCase) SetPublisher(p StatusEventPublisher) {
	uc.publisher = p
}

func (uc *ExpireSubscriptionsUseCase) Execute(ctx context.Context) (*ExpireSubscriptionsResult, error) {
	now := uc.now()
	result := &ExpireSubscriptionsResult{}

	for {
		batch, err := uc.subscriptionRepo.ListActiveEndedBefore(ctx, now, expiryBatchSize)
		if err != nil {
			uc.logger.Errorw("failed to list subscriptions past period end", "error", err)
			return result, err
		}

		failedBefore := result.Failed
		for _, sub := range batch {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			uc.settle(ctx, sub, now, result)
		}

		// Rows that failed to save come back in the next query; stop
		// rather than spin on them.
		if len(batch) < expiryBatchSize || result.Failed-failedBefore == len(batch) {
			break
		}
	}

	if result.Checked > 0 {
		uc.logger.Infow("subscription expiry run finished",
			"checked", result.Checked,
			"renewed", result.Renewed,
			"cancelled", result.Cancelled,
			"expired", result.Expired,
			"failed", result.Failed,
		)
	}
	return result, nil
}

func (uc *ExpireSubscriptionsUseCase) settle(ctx context.Context, sub *payment.Subscription, now time.Time, result *ExpireSubscriptionsResult) {
	result.Checked++
	update := payment.StatusUpdate{Status: vo.SubscriptionStatusExpired}

	if adapter, ok := uc.adapters.Get(sub.Provider()); ok {
		status, err := adapter.GetSubscriptionStatus(ctx, sub.VendorSubscriptionID())
		switch {
		case err != nil:
			uc.logger.Warnw("status poll failed, expiring subscription",
				"provider", sub.Provider(),
				"subscription_id", sub.VendorSubscriptionID(),
				"error", err,
			)
		case status.Status == vo.SubscriptionStatusActive && status.CurrentPeriodEnd != nil && status.CurrentPeriodEnd.After(now):
			update = payment.StatusUpdate{
				Status:             vo.SubscriptionStatusActive,
				CurrentPeriodStart: status.CurrentPeriodStart,
				CurrentPeriodEnd:   status.CurrentPeriodEnd,
			}
		case status.Status == vo.SubscriptionStatusCancelled:
			update = payment.StatusUpdate{Status: vo.SubscriptionStatusCancelled}
		}
	}

	t := sub.Apply(update)
	if !t.Modified {
		result.Failed++
		return
	}
	if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
		uc.logger.Errorw("failed to settle subscription",
			"subscription_id", sub.VendorSubscriptionID(),
			"error", err,
		)
		result.Failed++
		return
	}

	switch sub.Status() {
	case vo.SubscriptionStatusActive:
		result.Renewed++
	case vo.SubscriptionStatusCancelled:
		result.Cancelled++
	case vo.SubscriptionStatusExpired:
		result.Expired++
	}

	if t.StatusChanged && uc.publisher != nil {
		event := dto.StatusChangedEvent{
			Provider:       sub.Provider().String(),
			SubscriptionID: sub.VendorSubscriptionID(),
			From:           t.From.String(),
			To:             t.To.String(),
			OccurredAt:     now,
		}
		if err := uc.publisher.PublishStatusChanged(ctx, event); err != nil {
			uc.logger.Warnw("failed to publish subscription status change", "error", err)
		}
	}
}
