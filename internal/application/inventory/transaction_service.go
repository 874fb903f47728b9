package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/AkramSamirElhayani/IMS/internal/domain/inventory"
	"github.com/AkramSamirElhayani/IMS/internal/domain/shared"
	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/logger"
	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultLocation is used when an inbound destination or outbound source is omitted
const DefaultLocation = "Warehouse"

// TransactionServiceConfig holds the ledger command switches
type TransactionServiceConfig struct {
	DefaultLocation string
	// RequireWithdrawable rejects outbound transactions the item cannot cover
	RequireWithdrawable bool
}

// DefaultTransactionServiceConfig returns the default configuration
func DefaultTransactionServiceConfig() TransactionServiceConfig {
	return TransactionServiceConfig{
		DefaultLocation:     DefaultLocation,
		RequireWithdrawable: true,
	}
}

// TransactionService records and completes stock movements.
// Completing a transaction publishes TransactionCompleted after the commit,
// which drives the stock recompute of the item.
type TransactionService struct {
	uowFactory inventory.UnitOfWorkFactory
	config     TransactionServiceConfig
	logger     *zap.Logger
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(uowFactory inventory.UnitOfWorkFactory, config TransactionServiceConfig, logger *zap.Logger) *TransactionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.DefaultLocation == "" {
		config.DefaultLocation = DefaultLocation
	}
	return &TransactionService{
		uowFactory: uowFactory,
		config:     config,
		logger:     logger,
	}
}

// CreateTransaction records a pending transaction against an existing item
func (s *TransactionService) CreateTransaction(ctx context.Context, req CreateTransactionRequest) Result[TransactionResponse] {
	ctx, span := telemetry.StartServiceSpan(ctx, "transaction", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrItemID, req.ItemID.String(),
		telemetry.SpanAttrTransactionType, req.Type,
		telemetry.SpanAttrQuantity, req.Quantity,
	)

	uow := s.uowFactory.New()
	tx, err := s.prepare(ctx, uow, req)
	if err != nil {
		return failure[TransactionResponse](span, err)
	}
	if err := uow.Transactions().Add(ctx, tx); err != nil {
		return failure[TransactionResponse](span, err)
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return s.unexpected(ctx, span, "save transaction", err)
	}

	logger.Enrich(ctx, s.logger).Info("Transaction recorded",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("item_id", tx.ItemID().String()),
		zap.String("type", tx.Type().String()),
		zap.Int("quantity", tx.Quantity()),
	)
	telemetry.SetOK(span)
	return Success(ToTransactionResponse(tx))
}

// CompleteTransaction marks a pending transaction completed inside an explicit transaction.
// Completing twice raises TransactionCompleted twice; the recompute makes that harmless.
func (s *TransactionService) CompleteTransaction(ctx context.Context, transactionID uuid.UUID) Result[TransactionResponse] {
	ctx, span := telemetry.StartServiceSpan(ctx, "transaction", "complete")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrTransactionID, transactionID.String())

	uow := s.uowFactory.New()
	var completed *inventory.Transaction
	err := withTransaction(ctx, uow, func() error {
		tx, err := uow.Transactions().GetByID(ctx, transactionID)
		if err != nil {
			return err
		}
		if tx == nil {
			return NewNotFoundError(fmt.Sprintf("Transaction with ID %s not found", transactionID))
		}
		tx.Complete()
		if err := uow.Transactions().Update(ctx, tx); err != nil {
			return err
		}
		if err := uow.SaveChanges(ctx); err != nil {
			return err
		}
		completed = tx
		return nil
	})
	if err != nil {
		return s.unexpected(ctx, span, "complete transaction", err)
	}

	logger.Enrich(ctx, s.logger).Info("Transaction completed",
		zap.String("transaction_id", completed.ID.String()),
		zap.String("item_id", completed.ItemID().String()),
	)
	telemetry.SetOK(span)
	return Success(ToTransactionResponse(completed))
}

// RecordAndComplete creates and completes a transaction in one explicit transaction
func (s *TransactionService) RecordAndComplete(ctx context.Context, req CreateTransactionRequest) Result[TransactionResponse] {
	ctx, span := telemetry.StartServiceSpan(ctx, "transaction", "record_and_complete")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrItemID, req.ItemID.String(),
		telemetry.SpanAttrTransactionType, req.Type,
		telemetry.SpanAttrQuantity, req.Quantity,
	)

	uow := s.uowFactory.New()
	var recorded *inventory.Transaction
	err := withTransaction(ctx, uow, func() error {
		tx, err := s.prepare(ctx, uow, req)
		if err != nil {
			return err
		}
		tx.Complete()
		if err := uow.Transactions().Add(ctx, tx); err != nil {
			return err
		}
		if err := uow.SaveChanges(ctx); err != nil {
			return err
		}
		recorded = tx
		return nil
	})
	if err != nil {
		return s.unexpected(ctx, span, "record and complete", err)
	}

	telemetry.SetOK(span)
	return Success(ToTransactionResponse(recorded))
}

// GetTransactionByID returns a transaction or NotFound
func (s *TransactionService) GetTransactionByID(ctx context.Context, transactionID uuid.UUID) Result[TransactionResponse] {
	tx, err := s.uowFactory.New().Transactions().GetByID(ctx, transactionID)
	if err != nil {
		return Failure[TransactionResponse](err)
	}
	if tx == nil {
		return Failure[TransactionResponse](NewNotFoundError(fmt.Sprintf("Transaction with ID %s not found", transactionID)))
	}
	return Success(ToTransactionResponse(tx))
}

// GetItemTransactions returns the transactions of an item, newest first
func (s *TransactionService) GetItemTransactions(ctx context.Context, itemID uuid.UUID) Result[[]TransactionResponse] {
	txs, err := s.uowFactory.New().Transactions().GetByItemID(ctx, itemID)
	if err != nil {
		return Failure[[]TransactionResponse](err)
	}
	return Success(ToTransactionResponses(txs))
}

// GetPendingTransactions returns transactions not yet completed, oldest first
func (s *TransactionService) GetPendingTransactions(ctx context.Context) Result[[]TransactionResponse] {
	txs, err := s.uowFactory.New().Transactions().GetPending(ctx)
	if err != nil {
		return Failure[[]TransactionResponse](err)
	}
	return Success(ToTransactionResponses(txs))
}

// GetTransactionsByDateRange returns transactions dated within [start, end], oldest first
func (s *TransactionService) GetTransactionsByDateRange(ctx context.Context, start, end time.Time) Result[[]TransactionResponse] {
	txs, err := s.uowFactory.New().Transactions().GetByDateRange(ctx, start, end)
	if err != nil {
		return Failure[[]TransactionResponse](err)
	}
	return Success(ToTransactionResponses(txs))
}

// GetLedgerBalance recomputes the balance of an item from its ledger without changing the item
func (s *TransactionService) GetLedgerBalance(ctx context.Context, itemID uuid.UUID) Result[LedgerBalanceResponse] {
	ctx, span := telemetry.StartServiceSpan(ctx, "transaction", "ledger_balance")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrItemID, itemID.String())

	uow := s.uowFactory.New()
	item, err := uow.Items().GetByID(ctx, itemID)
	if err != nil {
		return failure[LedgerBalanceResponse](span, err)
	}
	if item == nil {
		return failure[LedgerBalanceResponse](span, NewNotFoundError(fmt.Sprintf("Item with ID %s not found", itemID)))
	}

	total, err := uow.Transactions().CalculateTotalStockForItem(ctx, itemID)
	if err != nil {
		return failure[LedgerBalanceResponse](span, err)
	}
	history, err := uow.Transactions().GetByItemID(ctx, itemID)
	if err != nil {
		return failure[LedgerBalanceResponse](span, err)
	}

	// GetByItemID is newest first; the running balance needs oldest first
	oldestFirst := make([]*inventory.Transaction, len(history))
	for i, tx := range history {
		oldestFirst[len(history)-1-i] = tx
	}

	cached := item.StockLevel().Current()
	telemetry.SetOK(span)
	return Success(LedgerBalanceResponse{
		ItemID:         itemID,
		CachedQuantity: cached,
		LedgerQuantity: total,
		InSync:         cached == total,
		Entries:        toLedgerEntries(inventory.RunningBalance(itemID, oldestFirst)),
	})
}

// prepare validates req against the item and builds the domain transaction
func (s *TransactionService) prepare(ctx context.Context, uow inventory.UnitOfWork, req CreateTransactionRequest) (*inventory.Transaction, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	txType, err := inventory.ParseTransactionType(req.Type)
	if err != nil {
		return nil, err
	}

	item, err := uow.Items().GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, NewNotFoundError(fmt.Sprintf("Item with ID %s not found", req.ItemID))
	}

	if txType.IsOutbound() && s.config.RequireWithdrawable && !item.CanWithdraw(req.Quantity) {
		return nil, shared.NewDomainError(shared.ErrInsufficientStock.Code, fmt.Sprintf(
			"Item %s cannot supply %d units: active=%t, quality=%s, on hand=%d",
			item.SKU().Value(), req.Quantity, item.IsActive(), item.QualityStatus(), item.StockLevel().Current()))
	}

	var opts []inventory.TransactionOption
	if req.Batch != nil {
		batch, err := req.Batch.toDomain()
		if err != nil {
			return nil, err
		}
		opts = append(opts, inventory.WithBatch(batch))
	}
	if req.TransactionDate != nil {
		opts = append(opts, inventory.WithTransactionDate(*req.TransactionDate))
	}

	switch {
	case txType.IsInbound():
		return inventory.NewInboundTransaction(req.ItemID, req.Quantity, s.orDefault(req.DestinationLocation), txType, opts...)
	case txType.IsOutbound():
		return inventory.NewOutboundTransaction(req.ItemID, req.Quantity, s.orDefault(req.SourceLocation), txType, opts...)
	default:
		return inventory.NewInternalTransaction(req.ItemID, req.Quantity, req.SourceLocation, req.DestinationLocation, txType, opts...)
	}
}

func (s *TransactionService) orDefault(location string) string {
	if location == "" {
		return s.config.DefaultLocation
	}
	return location
}

func (s *TransactionService) unexpected(ctx context.Context, span trace.Span, step string, err error) Result[TransactionResponse] {
	if appErr := FromError(err); appErr.Type == ErrorTypeUnexpected {
		logger.Enrich(ctx, s.logger).Error("transaction operation failed", zap.String("step", step), zap.Error(err))
	}
	return failure[TransactionResponse](span, err)
}
