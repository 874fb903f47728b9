package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AkramSamirElhayani/IMS/internal/domain/inventory"
	"github.com/AkramSamirElhayani/IMS/internal/domain/shared"
	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ledgerTotalExpr folds completed rows into a signed balance. It must agree with inventory.LedgerTotal.
const ledgerTotalExpr = "COALESCE(SUM(CASE WHEN transaction_type IN ? THEN quantity WHEN transaction_type IN ? THEN -quantity ELSE 0 END), 0)"

// GormTransactionRepository implements inventory.TransactionRepository using GORM.
// It is bound to a GormUnitOfWork; writes are staged until SaveChanges.
type GormTransactionRepository struct {
	uow *GormUnitOfWork
}

// GetByID finds a transaction by its ID
func (r *GormTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*inventory.Transaction, error) {
	var model models.TransactionModel
	if err := r.query(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load transaction %s: %w", id, err)
	}
	tx, err := model.ToDomain()
	if err != nil {
		return nil, err
	}
	r.uow.loaded(tx.ID, tx.Version)
	return tx, nil
}

// GetByItemID returns an item's transactions, newest first
func (r *GormTransactionRepository) GetByItemID(ctx context.Context, itemID uuid.UUID) ([]*inventory.Transaction, error) {
	return r.find(r.query(ctx).
		Where("item_id = ?", itemID).
		Order("transaction_date DESC, created_at DESC"))
}

// GetByDateRange returns transactions dated within [start, end], oldest first
func (r *GormTransactionRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*inventory.Transaction, error) {
	if end.Before(start) {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "End date must not be before start date")
	}
	return r.find(r.query(ctx).
		Where("transaction_date >= ? AND transaction_date <= ?", start.UTC(), end.UTC()).
		Order("transaction_date ASC, created_at ASC"))
}

// GetPending returns transactions not yet completed, oldest first
func (r *GormTransactionRepository) GetPending(ctx context.Context) ([]*inventory.Transaction, error) {
	return r.find(r.query(ctx).
		Where("is_completed = ?", false).
		Order("transaction_date ASC, created_at ASC"))
}

// Add stages a new transaction
func (r *GormTransactionRepository) Add(_ context.Context, tx *inventory.Transaction) error {
	if tx == nil {
		return shared.ErrInvalidInput
	}
	r.uow.stage(tx, func(db *gorm.DB) error {
		if err := db.Create(models.TransactionModelFromDomain(tx)).Error; err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", tx.ID, err)
		}
		return nil
	})
	return nil
}

// Update stages the completion of a transaction
func (r *GormTransactionRepository) Update(_ context.Context, tx *inventory.Transaction) error {
	if tx == nil {
		return shared.ErrInvalidInput
	}
	r.uow.stage(tx, func(db *gorm.DB) error {
		model := models.TransactionModelFromDomain(tx)
		query := db.Model(&models.TransactionModel{}).Where("id = ?", model.ID)
		if v, ok := r.uow.expectedVersion(model.ID); ok {
			query = query.Where("version = ?", v)
		}
		result := query.Select("*").Omit("id", "created_at").Updates(model)
		if result.Error != nil {
			return fmt.Errorf("failed to update transaction %s: %w", tx.ID, result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return nil
	})
	return nil
}

// CalculateTotalStockForItem returns the signed sum of completed transactions for the item
func (r *GormTransactionRepository) CalculateTotalStockForItem(ctx context.Context, itemID uuid.UUID) (int, error) {
	var total int64
	err := r.query(ctx).
		Select(ledgerTotalExpr, typeNames(inventory.InboundTransactionTypes()), typeNames(inventory.OutboundTransactionTypes())).
		Where("item_id = ? AND is_completed = ?", itemID, true).
		Row().
		Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to calculate stock for item %s: %w", itemID, err)
	}
	return int(total), nil
}

func (r *GormTransactionRepository) query(ctx context.Context) *gorm.DB {
	return r.uow.conn(ctx).Model(&models.TransactionModel{})
}

func (r *GormTransactionRepository) find(query *gorm.DB) ([]*inventory.Transaction, error) {
	var rows []models.TransactionModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	out := make([]*inventory.Transaction, 0, len(rows))
	for i := range rows {
		tx, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		r.uow.loaded(tx.ID, tx.Version)
		out = append(out, tx)
	}
	return out, nil
}

func typeNames(types []inventory.TransactionType) []string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}

var _ inventory.TransactionRepository = (*GormTransactionRepository)(nil)
