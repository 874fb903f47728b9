package inventory

import (
	"context"
	"errors"

	"github.com/AkramSamirElhayani/IMS/internal/domain/inventory"
	"github.com/AkramSamirElhayani/IMS/internal/domain/shared"
	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/logger"
	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LedgerRecomputeHandler replaces an item's cached quantity with its ledger total
// whenever a transaction completes.
//
// The stock level is replaced, never adjusted by a delta, so redelivered or missed
// events converge on the same value. Handle never returns an error: the event is
// published after the transaction committed and must not fail its producer.
type LedgerRecomputeHandler struct {
	uowFactory inventory.UnitOfWorkFactory
	logger     *zap.Logger
	metrics    *telemetry.LedgerMetrics
}

// NewLedgerRecomputeHandler creates a new LedgerRecomputeHandler
func NewLedgerRecomputeHandler(uowFactory inventory.UnitOfWorkFactory, logger *zap.Logger) *LedgerRecomputeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerRecomputeHandler{
		uowFactory: uowFactory,
		logger:     logger,
	}
}

// SetMetrics sets the ledger metrics recorder
func (h *LedgerRecomputeHandler) SetMetrics(metrics *telemetry.LedgerMetrics) {
	h.metrics = metrics
}

// EventTypes returns the event types this handler is interested in
func (h *LedgerRecomputeHandler) EventTypes() []string {
	return []string{inventory.EventTypeTransactionCompleted}
}

// Handle recomputes the stock of the item referenced by a TransactionCompleted event
func (h *LedgerRecomputeHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	completed, ok := event.(*inventory.TransactionCompletedEvent)
	if !ok {
		h.logger.Warn("Unexpected event type for ledger recompute",
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "recompute")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrItemID, completed.ItemID.String(),
		telemetry.SpanAttrTransactionID, completed.TransactionID.String(),
	)

	// Statements of the recompute are correlated by the triggering event
	ctx, log := logger.WithOperation(ctx, h.logger, "ledger.recompute")
	ctx, log = logger.WithCorrelationID(ctx, log, completed.EventID().String())
	log = logger.Enrich(ctx, log).With(
		zap.String("item_id", completed.ItemID.String()),
		zap.String("transaction_id", completed.TransactionID.String()),
	)

	transactionID := completed.TransactionID
	oldQty, newQty, err := recomputeItemStock(ctx, h.uowFactory, completed.ItemID, &transactionID)
	if err != nil {
		log.Error("Ledger recompute abandoned", zap.Error(err))
		telemetry.RecordError(span, err)
		h.metrics.RecordRecomputeFailure(ctx)
		return nil
	}

	log.Info("Stock recomputed from ledger",
		zap.Int("old_quantity", oldQty),
		zap.Int("quantity", newQty),
	)
	h.metrics.RecordRecompute(ctx, oldQty, newQty)
	telemetry.SetOK(span)
	return nil
}

// recomputeItemStock loads the item in a fresh unit of work, replaces its current quantity with
// the ledger total and saves it. The save publishes StockLevelChanged, and CriticalStockLevelReached
// when the total is at or below the critical level. A missing item is reported as NOT_FOUND.
// A concurrent recompute of the same item is resolved by retrying once on a fresh unit of work.
func recomputeItemStock(ctx context.Context, uowFactory inventory.UnitOfWorkFactory, itemID uuid.UUID, transactionID *uuid.UUID) (oldQty, newQty int, err error) {
	oldQty, newQty, err = recomputeOnce(ctx, uowFactory, itemID, transactionID)
	if errors.Is(err, shared.ErrConcurrencyConflict) {
		return recomputeOnce(ctx, uowFactory, itemID, transactionID)
	}
	return oldQty, newQty, err
}

func recomputeOnce(ctx context.Context, uowFactory inventory.UnitOfWorkFactory, itemID uuid.UUID, transactionID *uuid.UUID) (oldQty, newQty int, err error) {
	uow := uowFactory.New()

	item, err := uow.Items().GetByID(ctx, itemID)
	if err != nil {
		return 0, 0, err
	}
	if item == nil {
		return 0, 0, shared.NewDomainError(shared.ErrNotFound.Code, "Item "+itemID.String()+" not found for ledger recompute")
	}

	total, err := uow.Transactions().CalculateTotalStockForItem(ctx, itemID)
	if err != nil {
		return 0, 0, err
	}

	oldQty = item.StockLevel().Current()
	if err := item.UpdateStockLevel(total, transactionID); err != nil {
		return oldQty, total, err
	}
	if err := uow.Items().Update(ctx, item); err != nil {
		return oldQty, total, err
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return oldQty, total, err
	}
	return oldQty, total, nil
}

// Ensure LedgerRecomputeHandler implements shared.EventHandler
var _ shared.EventHandler = (*LedgerRecomputeHandler)(nil)
