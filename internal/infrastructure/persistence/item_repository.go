package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AkramSamirElhayani/IMS/internal/domain/inventory"
	"github.com/AkramSamirElhayani/IMS/internal/domain/shared"
	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormItemRepository implements inventory.ItemRepository using GORM.
// It is bound to a GormUnitOfWork; writes are staged until SaveChanges.
type GormItemRepository struct {
	uow *GormUnitOfWork
}

// GetByID finds an item by its ID
func (r *GormItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*inventory.Item, error) {
	return r.first(ctx, "id = ?", id)
}

// GetBySKU finds an item by SKU
func (r *GormItemRepository) GetBySKU(ctx context.Context, sku inventory.SKU) (*inventory.Item, error) {
	return r.first(ctx, "sku = ?", sku.Value())
}

// ExistsByID reports whether an item with the ID exists
func (r *GormItemRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, "id = ?", id)
}

// ExistsBySKU reports whether an item with the SKU exists
func (r *GormItemRepository) ExistsBySKU(ctx context.Context, sku inventory.SKU) (bool, error) {
	return r.exists(ctx, "sku = ?", sku.Value())
}

// GetByType finds items of a category
func (r *GormItemRepository) GetByType(ctx context.Context, itemType inventory.ItemType) ([]*inventory.Item, error) {
	return r.find(r.query(ctx).Where("item_type = ?", string(itemType)).Order("name ASC"))
}

// GetActive finds all active items
func (r *GormItemRepository) GetActive(ctx context.Context) ([]*inventory.Item, error) {
	return r.find(r.query(ctx).Where("is_active = ?", true).Order("name ASC"))
}

// GetByLocation finds items stored at a location
func (r *GormItemRepository) GetByLocation(ctx context.Context, location string) ([]*inventory.Item, error) {
	return r.find(r.query(ctx).
		Select("items.*").
		Joins("JOIN item_storage_locations ON item_storage_locations.item_id = items.id").
		Where("item_storage_locations.location = ?", strings.TrimSpace(location)).
		Order("items.name ASC"))
}

// GetPerishable finds perishable items
func (r *GormItemRepository) GetPerishable(ctx context.Context) ([]*inventory.Item, error) {
	return r.find(r.query(ctx).Where("is_perishable = ?", true).Order("name ASC"))
}

// GetBelowReorderPoint finds items whose current quantity is at or below minimum
func (r *GormItemRepository) GetBelowReorderPoint(ctx context.Context) ([]*inventory.Item, error) {
	return r.find(r.query(ctx).Where("current_quantity <= minimum_quantity").Order("current_quantity ASC, name ASC"))
}

// GetAll returns a page of items
func (r *GormItemRepository) GetAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*inventory.Item], error) {
	query := r.query(ctx)
	if term := strings.TrimSpace(filter.Search); term != "" {
		query = applyTermFilter(query, term)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return shared.Paginated[*inventory.Item]{}, fmt.Errorf("failed to count items: %w", err)
	}

	orderBy := ValidateSortField(filter.OrderBy, ItemSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: orderBy}, Desc: orderDir == "DESC"})
	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize).Offset(filter.Offset())
	}

	items, err := r.find(query)
	if err != nil {
		return shared.Paginated[*inventory.Item]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Search filters items by term and quantity range
func (r *GormItemRepository) Search(ctx context.Context, criteria inventory.ItemSearchCriteria) ([]*inventory.Item, error) {
	query := r.query(ctx)
	if term := strings.TrimSpace(criteria.Term); term != "" {
		query = applyTermFilter(query, term)
	}
	if criteria.MinQuantity != nil {
		query = query.Where("current_quantity >= ?", *criteria.MinQuantity)
	}
	if criteria.MaxQuantity != nil {
		query = query.Where("current_quantity <= ?", *criteria.MaxQuantity)
	}
	query = query.Order(clause.OrderByColumn{
		Column: clause.Column{Name: itemSortColumn(criteria.SortBy)},
		Desc:   !criteria.Ascending,
	})
	return r.find(query)
}

// Add stages a new item
func (r *GormItemRepository) Add(_ context.Context, item *inventory.Item) error {
	if item == nil {
		return shared.ErrInvalidInput
	}
	r.uow.stage(item, func(tx *gorm.DB) error {
		model := models.ItemModelFromDomain(item)
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.NewDomainError(shared.ErrAlreadyExists.Code, fmt.Sprintf("Item with SKU %s already exists", model.SKU))
			}
			return fmt.Errorf("failed to insert item %s: %w", item.ID, err)
		}
		return replaceLocations(tx, model)
	})
	return nil
}

// Update stages changes to an existing item
func (r *GormItemRepository) Update(_ context.Context, item *inventory.Item) error {
	if item == nil {
		return shared.ErrInvalidInput
	}
	r.uow.stage(item, func(tx *gorm.DB) error {
		model := models.ItemModelFromDomain(item)
		query := tx.Model(&models.ItemModel{}).Where("id = ?", model.ID)
		if v, ok := r.uow.expectedVersion(model.ID); ok {
			query = query.Where("version = ?", v)
		}
		result := query.Select("*").Omit("id", "created_at", clause.Associations).Updates(model)
		if result.Error != nil {
			return fmt.Errorf("failed to update item %s: %w", item.ID, result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return replaceLocations(tx, model)
	})
	return nil
}

// Delete stages removal of an item
func (r *GormItemRepository) Delete(_ context.Context, item *inventory.Item) error {
	if item == nil {
		return shared.ErrInvalidInput
	}
	r.uow.stage(item, func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", item.ID).Delete(&models.ItemStorageLocationModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete storage locations of item %s: %w", item.ID, err)
		}
		if err := tx.Delete(&models.ItemModel{}, "id = ?", item.ID).Error; err != nil {
			return fmt.Errorf("failed to delete item %s: %w", item.ID, err)
		}
		return nil
	})
	return nil
}

func (r *GormItemRepository) query(ctx context.Context) *gorm.DB {
	return r.uow.conn(ctx).Model(&models.ItemModel{})
}

func (r *GormItemRepository) first(ctx context.Context, where string, args ...any) (*inventory.Item, error) {
	var model models.ItemModel
	if err := r.query(ctx).Preload("StorageLocations").Where(where, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load item: %w", err)
	}
	item, err := model.ToDomain()
	if err != nil {
		return nil, err
	}
	r.uow.loaded(item.ID, item.Version)
	return item, nil
}

func (r *GormItemRepository) exists(ctx context.Context, where string, args ...any) (bool, error) {
	var count int64
	if err := r.uow.conn(ctx).Model(&models.ItemModel{}).Where(where, args...).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check item existence: %w", err)
	}
	return count > 0, nil
}

func (r *GormItemRepository) find(query *gorm.DB) ([]*inventory.Item, error) {
	var rows []models.ItemModel
	if err := query.Preload("StorageLocations").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	items := make([]*inventory.Item, 0, len(rows))
	for i := range rows {
		item, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		r.uow.loaded(item.ID, item.Version)
		items = append(items, item)
	}
	return items, nil
}

func applyTermFilter(query *gorm.DB, term string) *gorm.DB {
	like := "%" + strings.ToLower(term) + "%"
	return query.Where("(LOWER(items.name) LIKE ? OR LOWER(items.sku) LIKE ?)", like, like)
}

// replaceLocations rewrites the location rows of an item
func replaceLocations(tx *gorm.DB, model *models.ItemModel) error {
	if err := tx.Where("item_id = ?", model.ID).Delete(&models.ItemStorageLocationModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear storage locations of item %s: %w", model.ID, err)
	}
	if len(model.StorageLocations) == 0 {
		return nil
	}
	if err := tx.Create(&model.StorageLocations).Error; err != nil {
		return fmt.Errorf("failed to store storage locations of item %s: %w", model.ID, err)
	}
	return nil
}

var _ inventory.ItemRepository = (*GormItemRepository)(nil)
