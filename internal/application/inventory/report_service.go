package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/AkramSamirElhayani/IMS/internal/domain/inventory"
	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/logger"
	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DailyReport summarises the warehouse state at a point in time
type DailyReport struct {
	GeneratedAt         time.Time      `json:"generated_at"`
	PendingTransactions int            `json:"pending_transactions"`
	OldestPendingDate   *time.Time     `json:"oldest_pending_date,omitempty"`
	BelowReorderPoint   []ItemResponse `json:"below_reorder_point"`
	ExpiredPerishables  []ItemResponse `json:"expired_perishables"`
}

// InventoryReportService builds periodic warehouse reports
type InventoryReportService struct {
	uowFactory inventory.UnitOfWorkFactory
	logger     *zap.Logger
	metrics    *telemetry.LedgerMetrics
}

// NewInventoryReportService creates a new InventoryReportService
func NewInventoryReportService(uowFactory inventory.UnitOfWorkFactory, logger *zap.Logger) *InventoryReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryReportService{
		uowFactory: uowFactory,
		logger:     logger,
	}
}

// SetMetrics sets the ledger metrics recorder
func (s *InventoryReportService) SetMetrics(metrics *telemetry.LedgerMetrics) {
	s.metrics = metrics
}

// BuildDailyReport counts pending transactions and lists items at or below their
// minimum quantity and perishable items whose batch expired before now.
func (s *InventoryReportService) BuildDailyReport(ctx context.Context, now time.Time) Result[DailyReport] {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "daily")
	defer span.End()

	uow := s.uowFactory.New()

	pending, err := uow.Transactions().GetPending(ctx)
	if err != nil {
		return failure[DailyReport](span, fmt.Errorf("failed to load pending transactions: %w", err))
	}
	low, err := uow.Items().GetBelowReorderPoint(ctx)
	if err != nil {
		return failure[DailyReport](span, fmt.Errorf("failed to load items below reorder point: %w", err))
	}
	perishable, err := uow.Items().GetPerishable(ctx)
	if err != nil {
		return failure[DailyReport](span, fmt.Errorf("failed to load perishable items: %w", err))
	}

	report := DailyReport{
		GeneratedAt:         now.UTC(),
		PendingTransactions: len(pending),
		BelowReorderPoint:   ToItemResponses(low),
		ExpiredPerishables:  make([]ItemResponse, 0),
	}
	if len(pending) > 0 {
		oldest := pending[0].TransactionDate()
		report.OldestPendingDate = &oldest
	}
	for _, item := range perishable {
		if item.HasExpiredBatch(now) {
			report.ExpiredPerishables = append(report.ExpiredPerishables, ToItemResponse(item))
		}
	}

	s.metrics.RecordBelowReorder(ctx, len(low))
	logger.Enrich(ctx, s.logger).Info("Daily inventory report",
		zap.Int("pending_transactions", report.PendingTransactions),
		zap.Int("below_reorder_point", len(report.BelowReorderPoint)),
		zap.Int("expired_perishables", len(report.ExpiredPerishables)),
	)
	telemetry.SetOK(span)
	return Success(report)
}
