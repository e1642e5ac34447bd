package usecases

import (
	"context"
	"fmt"

	"github.com/floradex/billing/internal/domain/payment"
	vo "github.com/floradex/billing/internal/domain/payment/valueobjects"
	apperrors "github.com/floradex/billing/internal/shared/errors"
	"github.com/floradex/billing/internal/shared/logger"
)

type LogTransactionCommand struct {
	GatewayID      uint
	TransactionID  string
	SubscriptionID string
	Amount         int64
	Currency       string
	Status         vo.TransactionStatus
	PaymentMethod  string
	CustomerID     string
	CustomerEmail  string
	CustomerName   string
	ErrorCode      string
	ErrorMessage   string
	ResponseData   []byte
}

type LogTransactionResult struct {
	Inserted bool
	ID       uint
}

// LogTransactionUseCase is the ledger's only writer. An entry is inserted
// at most once per (gateway, vendor transaction id) and the gateway
// counters move in the same transaction as the insert.
type LogTransactionUseCase struct {
	transactionRepo payment.TransactionRepository
	gatewayRepo     payment.GatewayRepository
	txManager       TransactionManager
	logger          logger.Interface
}

func NewLogTransactionUseCase(
	transactionRepo payment.TransactionRepository,
	gatewayRepo payment.GatewayRepository,
	txManager TransactionManager,
	logger logger.Interface,
) *LogTransactionUseCase {
	return &LogTransactionUseCase{
		transactionRepo: transactionRepo,
		gatewayRepo:     gatewayRepo,
		txManager:       txManager,
		logger:          logger,
	}
}

func (uc *LogTransactionUseCase) Execute(ctx context.Context, cmd LogTransactionCommand) (*LogTransactionResult, error) {
	tx, err := payment.NewTransaction(payment.TransactionParams{
		GatewayID:      cmd.GatewayID,
		TransactionID:  cmd.TransactionID,
		SubscriptionID: cmd.SubscriptionID,
		Amount:         cmd.Amount,
		Currency:       cmd.Currency,
		Status:         cmd.Status,
		PaymentMethod:  cmd.PaymentMethod,
		CustomerID:     cmd.CustomerID,
		CustomerEmail:  cmd.CustomerEmail,
		CustomerName:   cmd.CustomerName,
		ErrorCode:      cmd.ErrorCode,
		ErrorMessage:   cmd.ErrorMessage,
		ResponseData:   cmd.ResponseData,
	})
	if err != nil {
		return nil, apperrors.NewValidationError("invalid transaction", err.Error())
	}

	result := &LogTransactionResult{}
	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		inserted, err := uc.transactionRepo.CreateIfAbsent(txCtx, tx)
		if err != nil {
			return err
		}
		if !inserted {
			return nil
		}
		if err := uc.gatewayRepo.IncrementCounters(txCtx, tx.GatewayID(), tx.Status(), tx.Amount()); err != nil {
			return err
		}
		result.Inserted = true
		result.ID = tx.ID()
		return nil
	})
	if err != nil {
		uc.logger.Errorw("failed to log transaction",
			"gateway_id", cmd.GatewayID,
			"transaction_id", cmd.TransactionID,
			"error", err,
		)
		return nil, fmt.Errorf("failed to log transaction: %w", err)
	}

	if result.Inserted {
		uc.logger.Debugw("transaction logged",
			"gateway_id", cmd.GatewayID,
			"transaction_id", cmd.TransactionID,
			"status", cmd.Status,
		)
	} else {
		uc.logger.Infow("duplicate transaction skipped",
			"gateway_id", cmd.GatewayID,
			"transaction_id", cmd.TransactionID,
		)
	}
	return result, nil
}
