package usecases

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/floradex/billing/internal/application/payment/dto"
	"github.com/floradex/billing/internal/application/payment/paymentgateway"
	"github.com/floradex/billing/internal/domain/payment"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	"github.com/floradex/billing/internal/domain/pricing"
	apperrors "github.com/floradex/billing/internal/shared/errors"
	"github.com/floradex/billing/internal/shared/logger"
	"github.com/floradex/billing/internal/shared/money"
)

type CreateCheckoutCommand struct {
	PlanID        uint   `validate:"required"`
	Currency      string `validate:"required,iso4217"`
	Region        string `validate:"required,iso3166_1_alpha2"`
	Provider      string
	Amount        *int64 `validate:"omitempty,gt=0"`
	CustomerEmail string `validate:"required,email"`
	CustomerName  string `validate:"max=128"`
	CustomerID    string `validate:"max=64"`
	ReturnURL     string `validate:"omitempty,url"`
	Metadata      map[string]string
}

// CreateCheckoutUseCase picks an eligible gateway for the plan's price and
// opens a vendor checkout. A vendor failure is returned as is; there is no
// fallback to another provider.
type CreateCheckoutUseCase struct {
	gatewayRepo      payment.GatewayRepository
	subscriptionRepo payment.SubscriptionRepository
	planRepo         pricing.PlanRepository
	adapters         *paymentgateway.Set
	logTransaction   *LogTransactionUseCase
	txManager        TransactionManager
	validate         *validator.Validate
	defaultReturnURL string
	logger           logger.Interface
}

func NewCreateCheckoutUseCase(
	gatewayRepo payment.GatewayRepository,
	subscriptionRepo payment.SubscriptionRepository,
	planRepo pricing.PlanRepository,
	adapters *paymentgateway.Set,
	logTransaction *LogTransactionUseCase,
	txManager TransactionManager,
	defaultReturnURL string,
	logger logger.Interface,
) *CreateCheckoutUseCase {
	return &CreateCheckoutUseCase{
		gatewayRepo:      gatewayRepo,
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		adapters:         adapters,
		logTransaction:   logTransaction,
		txManager:        txManager,
		validate:         validator.New(),
		defaultReturnURL: defaultReturnURL,
		logger:           logger,
	}
}

func (uc *CreateCheckoutUseCase) Execute(ctx context.Context, cmd CreateCheckoutCommand) (*dto.CheckoutDTO, error) {
	if err := uc.normalize(&cmd); err != nil {
		return nil, err
	}

	plan, err := uc.planRepo.GetByID(ctx, cmd.PlanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if plan == nil || !plan.IsActive() {
		return nil, apperrors.NewNotFoundError("plan not found")
	}
	amount, ok := plan.PriceFor(cmd.Currency)
	if !ok {
		return nil, apperrors.NewValidationError("plan is not sold in this currency", cmd.Currency)
	}
	if cmd.Amount != nil && *cmd.Amount != amount {
		return nil, apperrors.NewValidationError("amount does not match the plan price",
			fmt.Sprintf("expected %d, got %d", amount, *cmd.Amount))
	}

	gw, adapter, err := uc.selectGateway(ctx, cmd)
	if err != nil {
		return nil, err
	}

	params := paymentgateway.CheckoutParams{
		Amount:        amount,
		Currency:      cmd.Currency,
		CustomerEmail: cmd.CustomerEmail,
		CustomerName:  cmd.CustomerName,
		CustomerID:    cmd.CustomerID,
		ProductName:   plan.Name(),
		Type:          plan.Interval().CheckoutType(),
		Interval:      plan.Interval().BillingInterval(),
		ReturnURL:     cmd.ReturnURL,
		Metadata:      checkoutMetadata(cmd, plan),
	}

	resp, err := adapter.CreateCheckout(ctx, params)
	if err != nil {
		uc.logger.Errorw("vendor checkout failed",
			"provider", gw.Provider(),
			"plan_id", plan.ID(),
			"error", err,
		)
		return nil, err
	}

	if !resp.Demo {
		uc.recordCheckout(ctx, gw, plan, params, resp)
	}

	uc.logger.Infow("checkout created",
		"provider", gw.Provider(),
		"plan_id", plan.ID(),
		"session_id", resp.SessionID,
		"demo", resp.Demo,
	)

	return &dto.CheckoutDTO{
		Provider:       gw.Provider().String(),
		CheckoutURL:    resp.CheckoutURL,
		SessionID:      resp.SessionID,
		PaymentID:      resp.PaymentID,
		SubscriptionID: resp.SubscriptionID,
		Amount:         amount,
		Currency:       cmd.Currency,
		ExpiresAt:      resp.ExpiresAt,
		Demo:           resp.Demo,
	}, nil
}

func (uc *CreateCheckoutUseCase) normalize(cmd *CreateCheckoutCommand) error {
	cmd.Currency = strings.ToUpper(strings.TrimSpace(cmd.Currency))
	cmd.Region = strings.ToUpper(strings.TrimSpace(cmd.Region))
	cmd.CustomerEmail = strings.TrimSpace(cmd.CustomerEmail)
	if cmd.ReturnURL == "" {
		cmd.ReturnURL = uc.defaultReturnURL
	}

	if err := uc.validate.Struct(cmd); err != nil {
		return validationError(err)
	}

	currency, err := money.NormalizeCurrency(cmd.Currency)
	if err != nil {
		return apperrors.NewValidationError("invalid currency", err.Error())
	}
	region, err := money.NormalizeRegion(cmd.Region)
	if err != nil {
		return apperrors.NewValidationError("invalid region", err.Error())
	}
	cmd.Currency = currency
	cmd.Region = region
	return nil
}

// selectGateway returns the gateway to use. An explicit provider must be
// eligible itself; otherwise the primary wins, then the lowest id.
func (uc *CreateCheckoutUseCase) selectGateway(ctx context.Context, cmd CreateCheckoutCommand) (*payment.Gateway, paymentgateway.Adapter, error) {
	gateways, err := uc.gatewayRepo.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list gateways: %w", err)
	}

	if cmd.Provider != "" {
		provider, err := vo.ParseProvider(cmd.Provider)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("unknown payment provider", cmd.Provider)
		}
		for _, gw := range gateways {
			if gw.Provider() != provider {
				continue
			}
			if adapter, ok := uc.eligible(gw, cmd.Currency, cmd.Region); ok {
				return gw, adapter, nil
			}
			break
		}
		return nil, nil, apperrors.NewValidationError("payment provider is not available",
			fmt.Sprintf("%s does not accept %s in %s", provider, cmd.Currency, cmd.Region))
	}

	type candidate struct {
		gateway *payment.Gateway
		adapter paymentgateway.Adapter
	}
	var candidates []candidate
	for _, gw := range gateways {
		if adapter, ok := uc.eligible(gw, cmd.Currency, cmd.Region); ok {
			candidates = append(candidates, candidate{gw, adapter})
		}
	}
	if len(candidates) == 0 {
		return nil, nil, apperrors.NewValidationError("no payment gateway available",
			fmt.Sprintf("no enabled gateway accepts %s in %s", cmd.Currency, cmd.Region))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].gateway, candidates[j].gateway
		if a.IsPrimary() != b.IsPrimary() {
			return a.IsPrimary()
		}
		return a.ID() < b.ID()
	})
	return candidates[0].gateway, candidates[0].adapter, nil
}

func (uc *CreateCheckoutUseCase) eligible(gw *payment.Gateway, currency, region string) (paymentgateway.Adapter, bool) {
	if !gw.IsEnabled() {
		return nil, false
	}
	adapter, ok := uc.adapters.Get(gw.Provider())
	if !ok {
		return nil, false
	}
	if !adapter.SupportsCurrency(currency) || !gw.SupportsCurrency(currency) {
		return nil, false
	}
	if !adapter.SupportsRegion(region) || !gw.SupportsCountry(region) {
		return nil, false
	}
	return adapter, true
}

// recordCheckout logs the pending attempt and the pending subscription.
// The vendor-side checkout already exists, so failures here are logged and
// the checkout is still returned.
func (uc *CreateCheckoutUseCase) recordCheckout(
	ctx context.Context,
	gw *payment.Gateway,
	plan *pricing.Plan,
	params paymentgateway.CheckoutParams,
	resp *paymentgateway.CheckoutResponse,
) {
	ledgerKey := firstNonEmpty(resp.SessionID, resp.PaymentID, resp.SubscriptionID)
	if ledgerKey == "" {
		uc.logger.Warnw("checkout returned no identifier, not recorded", "provider", gw.Provider())
		return
	}

	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if _, err := uc.logTransaction.Execute(txCtx, LogTransactionCommand{
			GatewayID:      gw.ID(),
			TransactionID:  ledgerKey,
			SubscriptionID: resp.SubscriptionID,
			Amount:         params.Amount,
			Currency:       params.Currency,
			Status:         vo.TransactionStatusPending,
			CustomerID:     params.CustomerID,
			CustomerEmail:  params.CustomerEmail,
			CustomerName:   params.CustomerName,
		}); err != nil {
			return err
		}

		if resp.SubscriptionID == "" {
			return nil
		}
		existing, err := uc.subscriptionRepo.GetByVendorID(txCtx, gw.ID(), resp.SubscriptionID)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}
		planID := plan.ID()
		sub, err := payment.NewSubscription(gw.ID(), gw.Provider(), resp.SubscriptionID, &planID, params.CustomerID, params.CustomerEmail)
		if err != nil {
			return err
		}
		return uc.subscriptionRepo.Create(txCtx, sub)
	})
	if err != nil {
		uc.logger.Errorw("failed to record checkout",
			"provider", gw.Provider(),
			"session_id", resp.SessionID,
			"subscription_id", resp.SubscriptionID,
			"error", err,
		)
	}
}

func checkoutMetadata(cmd CreateCheckoutCommand, plan *pricing.Plan) map[string]string {
	md := make(map[string]string, len(cmd.Metadata)+2)
	for k, v := range cmd.Metadata {
		md[k] = v
	}
	md["plan_id"] = fmt.Sprint(plan.ID())
	md["plan_slug"] = plan.Slug()
	return md
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationError("invalid request", err.Error())
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return apperrors.NewValidationError("invalid checkout request", details...)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
