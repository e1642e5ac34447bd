package usecases

import (
	"context"
	"fmt"

	"github.com/floradex/billing/internal/application/payment/dto"
	"github.com/floradex/billing/internal/domain/payment"
	"github.com/floradex/billing/internal/shared/logger"
)

const (
	defaultTransactionLimit = 50
	maxTransactionLimit     = 500
)

type GetTransactionsQuery struct {
	GatewayID *uint
	Limit     int
}

type GetTransactionsUseCase struct {
	transactionRepo payment.TransactionRepository
	logger          logger.Interface
}

func NewGetTransactionsUseCase(transactionRepo payment.TransactionRepository, logger logger.Interface) *GetTransactionsUseCase {
	return &GetTransactionsUseCase{transactionRepo: transactionRepo, logger: logger}
}

// Execute returns ledger entries newest first.
func (uc *GetTransactionsUseCase) Execute(ctx context.Context, query GetTransactionsQuery) ([]*dto.TransactionDTO, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultTransactionLimit
	}
	if limit > maxTransactionLimit {
		limit = maxTransactionLimit
	}

	txs, err := uc.transactionRepo.List(ctx, payment.TransactionFilter{GatewayID: query.GatewayID, Limit: limit})
	if err != nil {
		uc.logger.Errorw("failed to list transactions", "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	out := make([]*dto.TransactionDTO, 0, len(txs))
	for _, t := range txs {
		out = append(out, dto.ToTransactionDTO(t))
	}
	return out, nil
}
