package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/AkramSamirElhayani/IMS/internal/domain/inventory"
	"github.com/AkramSamirElhayani/IMS/internal/domain/shared"
	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Alert types
const (
	AlertTypeCriticalStock = "critical_stock"
	AlertTypeOutOfStock    = "out_of_stock"
)

// StockAlertNotifier sends stock alerts to an outside channel
type StockAlertNotifier interface {
	// SendAlert sends a stock alert notification
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockAlert represents a critical stock alert
type StockAlert struct {
	EventID         string    `json:"event_id"`
	ItemID          string    `json:"item_id"`
	CurrentQuantity int       `json:"current_quantity"`
	CriticalLevel   int       `json:"critical_level"`
	AlertType       string    `json:"alert_type"` // "critical_stock", "out_of_stock"
	RaisedAt        time.Time `json:"raised_at"`
}

// CriticalStockAlertHandler handles CriticalStockLevelReached events.
// It is meant to be wrapped in an IdempotentHandler so redelivered alerts are dropped.
type CriticalStockAlertHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
	metrics  *telemetry.LedgerMetrics
}

// NewCriticalStockAlertHandler creates a new CriticalStockAlertHandler
func NewCriticalStockAlertHandler(logger *zap.Logger) *CriticalStockAlertHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CriticalStockAlertHandler{
		logger: logger,
	}
}

// WithNotifier sets the notifier for sending alerts
func (h *CriticalStockAlertHandler) WithNotifier(notifier StockAlertNotifier) *CriticalStockAlertHandler {
	h.notifier = notifier
	return h
}

// WithMetrics sets the ledger metrics recorder
func (h *CriticalStockAlertHandler) WithMetrics(metrics *telemetry.LedgerMetrics) *CriticalStockAlertHandler {
	h.metrics = metrics
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *CriticalStockAlertHandler) EventTypes() []string {
	return []string{inventory.EventTypeCriticalStockLevelReached}
}

// Handle processes a CriticalStockLevelReachedEvent
func (h *CriticalStockAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	critical, ok := event.(*inventory.CriticalStockLevelReachedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", inventory.EventTypeCriticalStockLevelReached),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeCriticalStockLevelReached, event.EventType())
	}

	h.logger.Warn("critical stock level reached",
		zap.String("item_id", critical.ItemID.String()),
		zap.Int("quantity", critical.CurrentQuantity),
		zap.Int("critical_level", critical.CriticalLevel),
	)
	h.metrics.RecordCriticalAlert(ctx)

	alertType := AlertTypeCriticalStock
	if critical.CurrentQuantity == 0 {
		alertType = AlertTypeOutOfStock
	}

	alert := StockAlert{
		EventID:         critical.EventID().String(),
		ItemID:          critical.ItemID.String(),
		CurrentQuantity: critical.CurrentQuantity,
		CriticalLevel:   critical.CriticalLevel,
		AlertType:       alertType,
		RaisedAt:        critical.OccurredAt(),
	}

	if h.notifier != nil {
		if err := h.notifier.SendAlert(ctx, alert); err != nil {
			// notification failure does not fail event handling
			h.logger.Error("failed to send stock alert notification",
				zap.String("item_id", alert.ItemID),
				zap.Error(err),
			)
		} else {
			h.logger.Info("stock alert notification sent",
				zap.String("item_id", alert.ItemID),
				zap.String("alert_type", alertType),
			)
		}
	}

	return nil
}

// Ensure CriticalStockAlertHandler implements shared.EventHandler
var _ shared.EventHandler = (*CriticalStockAlertHandler)(nil)

// LoggingStockAlertNotifier is a notifier that only logs alerts
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{
		logger: logger,
	}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(ctx context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("item_id", alert.ItemID),
		zap.Int("current_qty", alert.CurrentQuantity),
		zap.Int("critical_level", alert.CriticalLevel),
	)
	return nil
}
