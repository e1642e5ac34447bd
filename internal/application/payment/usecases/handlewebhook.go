package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"

	"github.com/floradex/billing/internal/application/payment/dto"
	"github.com/floradex/billing/internal/application/payment/paymentgateway"
	"github.com/floradex/billing/internal/domain/payment"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	"github.com/floradex/billing/internal/shared/biztime"
	"github.com/floradex/billing/internal/shared/logger"
)

type HandleWebhookCommand struct {
	Provider string
	Body     []byte
	Headers  http.Header
}

// HandleWebhookUseCase verifies a vendor notification, writes its ledger
// entry and moves the local subscription, all in one transaction. A
// redelivered event hits the ledger's unique key and changes nothing.
type HandleWebhookUseCase struct {
	gatewayRepo      payment.GatewayRepository
	subscriptionRepo payment.SubscriptionRepository
	adapters         *paymentgateway.Set
	logTransaction   *LogTransactionUseCase
	txManager        TransactionManager
	deduplicator     WebhookDeduplicator  // Optional
	publisher        StatusEventPublisher // Optional
	logger           logger.Interface
}

func NewHandleWebhookUseCase(
	gatewayRepo payment.GatewayRepository,
	subscriptionRepo payment.SubscriptionRepository,
	adapters *paymentgateway.Set,
	logTransaction *LogTransactionUseCase,
	txManager TransactionManager,
	logger logger.Interface,
) *HandleWebhookUseCase {
	return &HandleWebhookUseCase{
		gatewayRepo:      gatewayRepo,
		subscriptionRepo: subscriptionRepo,
		adapters:         adapters,
		logTransaction:   logTransaction,
		txManager:        txManager,
		logger:           logger,
	}
}

func (uc *HandleWebhookUseCase) SetDeduplicator(d WebhookDeduplicator) {
	uc.deduplicator = d
}

func (uc *HandleWebhookUseCase) SetPublisher(p StatusEventPublisher) {
	uc.publisher = p
}

func (uc *HandleWebhookUseCase) Execute(ctx context.Context, cmd HandleWebhookCommand) (*dto.WebhookResultDTO, error) {
	provider, adapter, err := resolveAdapter(uc.adapters, cmd.Provider)
	if err != nil {
		return nil, err
	}
	gw, err := loadGateway(ctx, uc.gatewayRepo, provider)
	if err != nil {
		return nil, err
	}

	res, err := adapter.HandleWebhook(ctx, paymentgateway.WebhookRequest{Body: cmd.Body, Headers: cmd.Headers})
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			uc.logger.Warnw("webhook rejected", "provider", provider, "error", err)
		} else {
			uc.logger.Errorw("webhook handling failed", "provider", provider, "error", err)
		}
		return nil, err
	}
	if !res.Success {
		uc.logger.Debugw("webhook event ignored", "provider", provider, "event_type", res.EventType)
		return &dto.WebhookResultDTO{Processed: false, EventType: res.EventType}, nil
	}

	key := res.LedgerKey()
	if key == "" {
		sum := sha256.Sum256(cmd.Body)
		key = "body_" + hex.EncodeToString(sum[:16])
	}

	if uc.deduplicator != nil {
		acquired, err := uc.deduplicator.Acquire(ctx, provider, key)
		switch {
		case err != nil:
			uc.logger.Warnw("webhook dedup unavailable, relying on ledger", "provider", provider, "error", err)
		case !acquired:
			uc.logger.Infow("duplicate webhook skipped", "provider", provider, "key", key)
			return &dto.WebhookResultDTO{Processed: true, Duplicate: true, EventType: res.EventType}, nil
		}
	}

	var (
		duplicate  bool
		transition payment.Transition
		subID      = res.SubscriptionID
	)
	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		logged, err := uc.logTransaction.Execute(txCtx, ledgerCommand(gw.ID(), key, res))
		if err != nil {
			return err
		}
		if !logged.Inserted {
			duplicate = true
			return nil
		}
		if subID == "" {
			return nil
		}
		transition, err = uc.applyToSubscription(txCtx, gw, res)
		return err
	})
	if err != nil {
		if uc.deduplicator != nil {
			if relErr := uc.deduplicator.Release(context.WithoutCancel(ctx), provider, key); relErr != nil {
				uc.logger.Warnw("failed to release webhook dedup key", "provider", provider, "key", key, "error", relErr)
			}
		}
		uc.logger.Errorw("failed to process webhook",
			"provider", provider,
			"event_type", res.EventType,
			"key", key,
			"error", err,
		)
		return nil, fmt.Errorf("failed to process webhook: %w", err)
	}

	if duplicate {
		uc.logger.Infow("webhook already recorded", "provider", provider, "key", key)
		return &dto.WebhookResultDTO{Processed: true, Duplicate: true, EventType: res.EventType}, nil
	}

	if transition.Ignored {
		uc.logger.Infow("subscription transition ignored",
			"provider", provider,
			"subscription_id", subID,
			"current", transition.From,
			"requested", res.Status,
		)
	}
	if transition.StatusChanged {
		uc.publish(ctx, provider, subID, transition)
	}

	uc.logger.Infow("webhook processed",
		"provider", provider,
		"event_type", res.EventType,
		"key", key,
		"subscription_id", subID,
		"status", transition.To,
	)
	return &dto.WebhookResultDTO{Processed: true, EventType: res.EventType, Status: string(res.Status)}, nil
}

func (uc *HandleWebhookUseCase) applyToSubscription(ctx context.Context, gw *payment.Gateway, res *paymentgateway.WebhookResult) (payment.Transition, error) {
	sub, err := uc.subscriptionRepo.GetByVendorID(ctx, gw.ID(), res.SubscriptionID)
	if err != nil {
		return payment.Transition{}, err
	}

	isNew := sub == nil
	if isNew {
		var email string
		if res.Payment != nil {
			email = res.Payment.CustomerEmail
		}
		sub, err = payment.NewSubscription(gw.ID(), gw.Provider(), res.SubscriptionID, nil, res.CustomerID, email)
		if err != nil {
			return payment.Transition{}, err
		}
	}

	periodEnd := res.CurrentPeriodEnd
	if periodEnd == nil {
		periodEnd = res.ExpiresAt
	}
	transition := sub.Apply(payment.StatusUpdate{
		Status:             res.Status,
		CurrentPeriodStart: res.CurrentPeriodStart,
		CurrentPeriodEnd:   periodEnd,
		CustomerID:         res.CustomerID,
	})

	if isNew {
		return transition, uc.subscriptionRepo.Create(ctx, sub)
	}
	if transition.Modified {
		return transition, uc.subscriptionRepo.Update(ctx, sub)
	}
	return transition, nil
}

func (uc *HandleWebhookUseCase) publish(ctx context.Context, provider vo.Provider, subscriptionID string, t payment.Transition) {
	if uc.publisher == nil {
		return
	}
	event := dto.StatusChangedEvent{
		Provider:       provider.String(),
		SubscriptionID: subscriptionID,
		From:           t.From.String(),
		To:             t.To.String(),
		OccurredAt:     biztime.NowUTC(),
	}
	if err := uc.publisher.PublishStatusChanged(ctx, event); err != nil {
		uc.logger.Warnw("failed to publish subscription status change",
			"provider", provider,
			"subscription_id", subscriptionID,
			"error", err,
		)
	}
}

// ledgerCommand maps a verified event onto its ledger entry. Events
// without a charge are recorded as pending with no amount.
func ledgerCommand(gatewayID uint, key string, res *paymentgateway.WebhookResult) LogTransactionCommand {
	cmd := LogTransactionCommand{
		GatewayID:      gatewayID,
		TransactionID:  key,
		SubscriptionID: res.SubscriptionID,
		Status:         vo.TransactionStatusPending,
		CustomerID:     res.CustomerID,
		ResponseData:   res.Raw,
	}
	if p := res.Payment; p != nil {
		cmd.Amount = p.Amount
		cmd.Currency = p.Currency
		cmd.Status = p.Status
		cmd.PaymentMethod = p.PaymentMethod
		cmd.CustomerEmail = p.CustomerEmail
		cmd.CustomerName = p.CustomerName
		cmd.ErrorCode = p.ErrorCode
		cmd.ErrorMessage = p.ErrorMessage
		if !cmd.Status.IsValid() {
			cmd.Status = vo.TransactionStatusPending
		}
	}
	return cmd
}
