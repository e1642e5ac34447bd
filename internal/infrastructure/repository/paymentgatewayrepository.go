package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/floradex/billing/internal/domain/payment"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	"github.com/floradex/billing/internal/infrastructure/persistence/mappers"
	"github.com/floradex/billing/internal/infrastructure/persistence/models"
	"github.com/floradex/billing/internal/shared/db"
)

type PaymentGatewayRepository struct {
	db *gorm.DB
}

func NewPaymentGatewayRepository(db *gorm.DB) *PaymentGatewayRepository {
	return &PaymentGatewayRepository{db: db}
}

func (r *PaymentGatewayRepository) Create(ctx context.Context, g *payment.Gateway) error {
	model := mappers.PaymentGatewayToModel(g)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create payment gateway: %w", err)
	}

	g.SetID(model.ID)
	return nil
}

// Update writes the configuration columns. Counter columns are left alone
// so a stale entity cannot overwrite increments made by the ledger.
func (r *PaymentGatewayRepository) Update(ctx context.Context, g *payment.Gateway) error {
	model := mappers.PaymentGatewayToModel(g)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentGatewayModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"display_name":         model.DisplayName,
			"is_enabled":           model.IsEnabled,
			"is_test_mode":         model.IsTestMode,
			"is_primary":           model.IsPrimary,
			"supported_currencies": model.SupportedCurrencies,
			"supported_countries":  model.SupportedCountries,
			"config_status":        model.ConfigStatus,
			"status_message":       model.StatusMessage,
			"last_status_check":    model.LastStatusCheck,
			"last_configured_by":   model.LastConfiguredBy,
			"updated_at":           model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update payment gateway: %w", result.Error)
	}
	return nil
}

func (r *PaymentGatewayRepository) GetByID(ctx context.Context, id uint) (*payment.Gateway, error) {
	var model models.PaymentGatewayModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment gateway: %w", err)
	}
	return mappers.PaymentGatewayToDomain(&model), nil
}

func (r *PaymentGatewayRepository) GetByProvider(ctx context.Context, provider vo.Provider) (*payment.Gateway, error) {
	var model models.PaymentGatewayModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("provider = ?", provider.String()).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment gateway by provider: %w", err)
	}
	return mappers.PaymentGatewayToDomain(&model), nil
}

func (r *PaymentGatewayRepository) List(ctx context.Context) ([]*payment.Gateway, error) {
	var rows []models.PaymentGatewayModel

	if err := db.GetTxFromContext(ctx, r.db).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list payment gateways: %w", err)
	}
	return mappers.PaymentGatewaysToDomain(rows), nil
}

func (r *PaymentGatewayRepository) ClearPrimaryExcept(ctx context.Context, keepID uint) error {
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentGatewayModel{}).
		Where("id <> ? AND is_primary = ?", keepID, true).
		Update("is_primary", false).Error
	if err != nil {
		return fmt.Errorf("failed to clear primary gateway: %w", err)
	}
	return nil
}

// IncrementCounters bumps the running totals in one statement so that
// concurrent webhook deliveries never lose an increment. total_revenue is
// a plain sum of minor units whatever the row's currency.
func (r *PaymentGatewayRepository) IncrementCounters(ctx context.Context, gatewayID uint, status vo.TransactionStatus, amount int64) error {
	updates := map[string]any{
		"total_transactions": gorm.Expr("total_transactions + ?", 1),
	}
	switch status {
	case vo.TransactionStatusSuccess:
		updates["successful_transactions"] = gorm.Expr("successful_transactions + ?", 1)
		updates["total_revenue"] = gorm.Expr("total_revenue + ?", amount)
	case vo.TransactionStatusFailed:
		updates["failed_transactions"] = gorm.Expr("failed_transactions + ?", 1)
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentGatewayModel{}).
		Where("id = ?", gatewayID).
		UpdateColumns(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to increment gateway counters: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("payment gateway %d not found", gatewayID)
	}
	return nil
}
