package inventory

import (
	"context"
	"fmt"

	"github.com/AkramSamirElhayani/IMS/internal/domain/inventory"
	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/logger"
	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReconciliationReport summarises a reconciliation sweep
type ReconciliationReport struct {
	Checked   int         `json:"checked"`
	Corrected int         `json:"corrected"`
	Failed    int         `json:"failed"`
	Drifted   []uuid.UUID `json:"drifted,omitempty"`
}

// ReconcileOutcome is the result of reconciling one item
type ReconcileOutcome struct {
	ItemID         uuid.UUID `json:"item_id"`
	CachedQuantity int       `json:"cached_quantity"`
	LedgerQuantity int       `json:"ledger_quantity"`
	Corrected      bool      `json:"corrected"`
}

// ReconciliationService repairs cached quantities that drifted from the ledger,
// e.g. after a recompute was lost between commit and publish.
type ReconciliationService struct {
	uowFactory inventory.UnitOfWorkFactory
	logger     *zap.Logger
	metrics    *telemetry.LedgerMetrics
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(uowFactory inventory.UnitOfWorkFactory, logger *zap.Logger) *ReconciliationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconciliationService{
		uowFactory: uowFactory,
		logger:     logger,
	}
}

// SetMetrics sets the ledger metrics recorder
func (s *ReconciliationService) SetMetrics(metrics *telemetry.LedgerMetrics) {
	s.metrics = metrics
}

// ReconcileAll checks every active item and recomputes those whose cached quantity
// differs from the ledger total. One failing item does not stop the sweep.
func (s *ReconciliationService) ReconcileAll(ctx context.Context) Result[ReconciliationReport] {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "reconcile_all")
	defer span.End()

	items, err := s.uowFactory.New().Items().GetActive(ctx)
	if err != nil {
		return failure[ReconciliationReport](span, fmt.Errorf("failed to list active items: %w", err))
	}

	log := logger.Enrich(ctx, s.logger)
	var report ReconciliationReport
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return failure[ReconciliationReport](span, err)
		}
		report.Checked++

		outcome, err := s.reconcile(ctx, item.ID, item.StockLevel().Current())
		if err != nil {
			report.Failed++
			log.Error("Reconciliation failed for item",
				zap.String("item_id", item.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if outcome.Corrected {
			report.Corrected++
			report.Drifted = append(report.Drifted, item.ID)
		}
	}

	log.Info("Ledger reconciliation finished",
		zap.Int("checked", report.Checked),
		zap.Int("corrected", report.Corrected),
		zap.Int("failed", report.Failed),
	)
	telemetry.SetAttributes(span, "checked", report.Checked, "corrected", report.Corrected, "failed", report.Failed)
	telemetry.SetOK(span)
	return Success(report)
}

// ReconcileItem recomputes one item when its cached quantity differs from the ledger
func (s *ReconciliationService) ReconcileItem(ctx context.Context, itemID uuid.UUID) Result[ReconcileOutcome] {
	item, err := s.uowFactory.New().Items().GetByID(ctx, itemID)
	if err != nil {
		return Failure[ReconcileOutcome](err)
	}
	if item == nil {
		return Failure[ReconcileOutcome](NewNotFoundError(fmt.Sprintf("Item with ID %s not found", itemID)))
	}
	outcome, err := s.reconcile(ctx, itemID, item.StockLevel().Current())
	if err != nil {
		return Failure[ReconcileOutcome](err)
	}
	return Success(outcome)
}

func (s *ReconciliationService) reconcile(ctx context.Context, itemID uuid.UUID, cached int) (ReconcileOutcome, error) {
	total, err := s.uowFactory.New().Transactions().CalculateTotalStockForItem(ctx, itemID)
	if err != nil {
		return ReconcileOutcome{}, err
	}
	outcome := ReconcileOutcome{ItemID: itemID, CachedQuantity: cached, LedgerQuantity: total}
	if total == cached {
		return outcome, nil
	}

	oldQty, newQty, err := recomputeItemStock(ctx, s.uowFactory, itemID, nil)
	if err != nil {
		s.metrics.RecordRecomputeFailure(ctx)
		return outcome, err
	}
	s.metrics.RecordRecompute(ctx, oldQty, newQty)

	logger.Enrich(ctx, s.logger).Warn("Corrected stock drift",
		zap.String("item_id", itemID.String()),
		zap.Int("old_quantity", oldQty),
		zap.Int("quantity", newQty),
	)
	outcome.CachedQuantity = oldQty
	outcome.LedgerQuantity = newQty
	outcome.Corrected = true
	return outcome, nil
}
