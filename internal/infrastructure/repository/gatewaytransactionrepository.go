package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/floradex/billing/internal/domain/payment"
	"github.com/floradex/billing/internal/infrastructure/persistence/mappers"
	"github.com/floradex/billing/internal/infrastructure/persistence/models"
	"github.com/floradex/billing/internal/shared/db"
	"github.com/floradex/billing/internal/shared/mapper"
)

const (
	defaultTransactionLimit = 50
	maxTransactionLimit     = 500
)

type GatewayTransactionRepository struct {
	db *gorm.DB
}

func NewGatewayTransactionRepository(db *gorm.DB) *GatewayTransactionRepository {
	return &GatewayTransactionRepository{db: db}
}

func (r *GatewayTransactionRepository) CreateIfAbsent(ctx context.Context, t *payment.Transaction) (bool, error) {
	model := mappers.GatewayTransactionToModel(t)

	result := db.GetTxFromContext(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create gateway transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	t.SetID(model.ID)
	return true, nil
}

func (r *GatewayTransactionRepository) List(ctx context.Context, filter payment.TransactionFilter) ([]*payment.Transaction, error) {
	query := db.GetTxFromContext(ctx, r.db).
		Model(&models.GatewayTransactionModel{}).
		Scopes(db.NewestFirst(), db.Limit(filter.Limit, defaultTransactionLimit, maxTransactionLimit))
	if filter.GatewayID != nil {
		query = query.Where("gateway_id = ?", *filter.GatewayID)
	}

	var rows []*models.GatewayTransactionModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list gateway transactions: %w", err)
	}

	return mapper.MapSlice(rows, mappers.GatewayTransactionToDomain), nil
}
