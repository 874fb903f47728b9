package inventory

import (
	"context"
	"fmt"

	"github.com/AkramSamirElhayani/IMS/internal/domain/inventory"
	"github.com/AkramSamirElhayani/IMS/internal/domain/shared"
	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/logger"
	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ItemService handles item commands and queries.
// Every command runs in a fresh unit of work; its events are published after the save.
type ItemService struct {
	uowFactory inventory.UnitOfWorkFactory
	journal    shared.EventJournalReader
	decoder    shared.EventDecoder
	logger     *zap.Logger
}

// NewItemService creates a new ItemService
func NewItemService(uowFactory inventory.UnitOfWorkFactory, logger *zap.Logger) *ItemService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemService{
		uowFactory: uowFactory,
		logger:     logger,
	}
}

// SetEventJournal sets the journal used by GetItemHistory and the decoder
// that turns its payloads back into events
func (s *ItemService) SetEventJournal(journal shared.EventJournalReader, decoder shared.EventDecoder) {
	s.journal = journal
	s.decoder = decoder
}

// CreateItem creates an item with zero stock. A duplicate SKU is a Conflict.
func (s *ItemService) CreateItem(ctx context.Context, req CreateItemRequest) Result[ItemResponse] {
	ctx, span := telemetry.StartServiceSpan(ctx, "item", "create")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrSKU, req.SKU)

	if err := validateRequest(req); err != nil {
		return failure[ItemResponse](span, err)
	}

	sku, err := inventory.NewSKU(req.SKU)
	if err != nil {
		return failure[ItemResponse](span, err)
	}
	itemType, err := inventory.ParseItemType(req.Type)
	if err != nil {
		return failure[ItemResponse](span, err)
	}
	level, err := inventory.NewStockLevel(0, req.MinimumQuantity, req.MaximumQuantity, req.ReorderPoint)
	if err != nil {
		return failure[ItemResponse](span, err)
	}

	uow := s.uowFactory.New()
	exists, err := uow.Items().ExistsBySKU(ctx, sku)
	if err != nil {
		return s.unexpected(ctx, span, "check sku", err)
	}
	if exists {
		return failure[ItemResponse](span, NewConflictError(fmt.Sprintf("Item with SKU %s already exists", sku.Value())))
	}

	item, err := inventory.NewItem(sku, req.Name, itemType, req.IsPerishable, level)
	if err != nil {
		return failure[ItemResponse](span, err)
	}
	for _, location := range req.StorageLocations {
		if err := item.AddStorageLocation(location); err != nil {
			return failure[ItemResponse](span, err)
		}
	}

	if err := uow.Items().Add(ctx, item); err != nil {
		return failure[ItemResponse](span, err)
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return s.unexpected(ctx, span, "save item", err)
	}

	logger.Enrich(ctx, s.logger).Info("Item created",
		zap.String("item_id", item.ID.String()),
		zap.String("sku", sku.Value()),
	)
	telemetry.SetOK(span)
	return Success(ToItemResponse(item))
}

// UpdateItem replaces name, type and perishability
func (s *ItemService) UpdateItem(ctx context.Context, req UpdateItemRequest) Result[ItemResponse] {
	if err := validateRequest(req); err != nil {
		return Failure[ItemResponse](err)
	}
	itemType, err := inventory.ParseItemType(req.Type)
	if err != nil {
		return Failure[ItemResponse](err)
	}
	return s.mutate(ctx, "update", req.ItemID, func(item *inventory.Item) error {
		return item.UpdateBasicProperties(req.Name, itemType, req.IsPerishable)
	})
}

// UpdateStockLevel overrides the cached quantity without a ledger entry.
// The next recompute for the item replaces it with the ledger total again.
func (s *ItemService) UpdateStockLevel(ctx context.Context, req UpdateStockLevelRequest) Result[ItemResponse] {
	if err := validateRequest(req); err != nil {
		return Failure[ItemResponse](err)
	}
	return s.mutate(ctx, "update_stock_level", req.ItemID, func(item *inventory.Item) error {
		return item.UpdateStockLevel(req.NewQuantity, nil)
	})
}

// AddBatchInformation attaches batch data to an item
func (s *ItemService) AddBatchInformation(ctx context.Context, req AddBatchInformationRequest) Result[ItemResponse] {
	if err := validateRequest(req); err != nil {
		return Failure[ItemResponse](err)
	}
	batch, err := req.Batch.toDomain()
	if err != nil {
		return Failure[ItemResponse](err)
	}
	return s.mutate(ctx, "add_batch", req.ItemID, func(item *inventory.Item) error {
		item.AddBatchInformation(batch)
		return nil
	})
}

// ActivateItem marks an item active
func (s *ItemService) ActivateItem(ctx context.Context, itemID uuid.UUID) Result[ItemResponse] {
	return s.mutate(ctx, "activate", itemID, func(item *inventory.Item) error {
		item.Activate()
		return nil
	})
}

// DeactivateItem marks an item inactive
func (s *ItemService) DeactivateItem(ctx context.Context, itemID uuid.UUID) Result[ItemResponse] {
	return s.mutate(ctx, "deactivate", itemID, func(item *inventory.Item) error {
		item.Deactivate()
		return nil
	})
}

// AddStorageLocation adds a storage location to an item
func (s *ItemService) AddStorageLocation(ctx context.Context, req StorageLocationRequest) Result[ItemResponse] {
	if err := validateRequest(req); err != nil {
		return Failure[ItemResponse](err)
	}
	return s.mutate(ctx, "add_location", req.ItemID, func(item *inventory.Item) error {
		return item.AddStorageLocation(req.Location)
	})
}

// RemoveStorageLocation removes a storage location from an item
func (s *ItemService) RemoveStorageLocation(ctx context.Context, req StorageLocationRequest) Result[ItemResponse] {
	if err := validateRequest(req); err != nil {
		return Failure[ItemResponse](err)
	}
	return s.mutate(ctx, "remove_location", req.ItemID, func(item *inventory.Item) error {
		return item.RemoveStorageLocation(req.Location)
	})
}

// UpdateQualityStatus sets the quality status of an item
func (s *ItemService) UpdateQualityStatus(ctx context.Context, req UpdateQualityStatusRequest) Result[ItemResponse] {
	if err := validateRequest(req); err != nil {
		return Failure[ItemResponse](err)
	}
	status, err := inventory.ParseQualityStatus(req.Status)
	if err != nil {
		return Failure[ItemResponse](err)
	}
	return s.mutate(ctx, "update_quality_status", req.ItemID, func(item *inventory.Item) error {
		return item.UpdateQualityStatus(status)
	})
}

// GetItemByID returns an item or NotFound
func (s *ItemService) GetItemByID(ctx context.Context, itemID uuid.UUID) Result[ItemResponse] {
	item, err := s.uowFactory.New().Items().GetByID(ctx, itemID)
	if err != nil {
		return Failure[ItemResponse](err)
	}
	if item == nil {
		return Failure[ItemResponse](NewNotFoundError(fmt.Sprintf("Item with ID %s not found", itemID)))
	}
	return Success(ToItemResponse(item))
}

// SearchItems filters items by term and quantity range
func (s *ItemService) SearchItems(ctx context.Context, req SearchItemsRequest) Result[[]ItemResponse] {
	if err := validateRequest(req); err != nil {
		return Failure[[]ItemResponse](err)
	}
	items, err := s.uowFactory.New().Items().Search(ctx, inventory.ItemSearchCriteria{
		Term:        req.Term,
		MinQuantity: req.MinQuantity,
		MaxQuantity: req.MaxQuantity,
		SortBy:      inventory.ItemSortField(req.SortBy),
		Ascending:   req.Ascending,
	})
	if err != nil {
		return Failure[[]ItemResponse](err)
	}
	return Success(ToItemResponses(items))
}

// ListItems returns a page of items
func (s *ItemService) ListItems(ctx context.Context, filter shared.Filter) Result[shared.Paginated[ItemResponse]] {
	page, err := s.uowFactory.New().Items().GetAll(ctx, filter)
	if err != nil {
		return Failure[shared.Paginated[ItemResponse]](err)
	}
	return Success(shared.NewPaginated(ToItemResponses(page.Items), page.Total, page.Page, page.PageSize))
}

// GetItemsBelowReorderPoint returns items at or below their minimum quantity
func (s *ItemService) GetItemsBelowReorderPoint(ctx context.Context) Result[[]ItemResponse] {
	items, err := s.uowFactory.New().Items().GetBelowReorderPoint(ctx)
	if err != nil {
		return Failure[[]ItemResponse](err)
	}
	return Success(ToItemResponses(items))
}

// GetItemHistory returns the journaled events of an item, oldest first
func (s *ItemService) GetItemHistory(ctx context.Context, itemID uuid.UUID) Result[[]ItemHistoryEntry] {
	if s.journal == nil {
		return Failure[[]ItemHistoryEntry](&AppError{
			Type:    ErrorTypeUnexpected,
			Code:    "JOURNAL_DISABLED",
			Message: "Event journal is not enabled",
		})
	}
	exists, err := s.uowFactory.New().Items().ExistsByID(ctx, itemID)
	if err != nil {
		return Failure[[]ItemHistoryEntry](err)
	}
	if !exists {
		return Failure[[]ItemHistoryEntry](NewNotFoundError(fmt.Sprintf("Item with ID %s not found", itemID)))
	}
	records, err := s.journal.ListForAggregate(ctx, itemID)
	if err != nil {
		return Failure[[]ItemHistoryEntry](err)
	}
	return Success(s.historyEntries(ctx, records))
}

// mutate loads an item, applies change and saves it in one unit of work
func (s *ItemService) mutate(ctx context.Context, method string, itemID uuid.UUID, change func(item *inventory.Item) error) Result[ItemResponse] {
	ctx, span := telemetry.StartServiceSpan(ctx, "item", method)
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrItemID, itemID.String())

	uow := s.uowFactory.New()
	item, err := uow.Items().GetByID(ctx, itemID)
	if err != nil {
		return s.unexpected(ctx, span, "load item", err)
	}
	if item == nil {
		return failure[ItemResponse](span, NewNotFoundError(fmt.Sprintf("Item with ID %s not found", itemID)))
	}

	if err := change(item); err != nil {
		return failure[ItemResponse](span, err)
	}

	if err := uow.Items().Update(ctx, item); err != nil {
		return failure[ItemResponse](span, err)
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return s.unexpected(ctx, span, "save item", err)
	}

	telemetry.SetOK(span)
	return Success(ToItemResponse(item))
}

func (s *ItemService) unexpected(ctx context.Context, span trace.Span, step string, err error) Result[ItemResponse] {
	if appErr := FromError(err); appErr.Type == ErrorTypeUnexpected {
		logger.Enrich(ctx, s.logger).Error("item operation failed", zap.String("step", step), zap.Error(err))
	}
	return failure[ItemResponse](span, err)
}

func failure[T any](span trace.Span, err error) Result[T] {
	telemetry.RecordError(span, err)
	return Failure[T](err)
}

// historyEntries decodes each journal record to describe it. A record that no
// longer decodes keeps its raw payload.
func (s *ItemService) historyEntries(ctx context.Context, records []shared.JournalRecord) []ItemHistoryEntry {
	entries := make([]ItemHistoryEntry, len(records))
	for i, r := range records {
		entries[i] = toHistoryEntry(r)
		if s.decoder == nil {
			continue
		}
		event, err := s.decoder.Deserialize(r.EventType, r.Payload)
		if err != nil {
			logger.Enrich(ctx, s.logger).Warn("failed to decode journaled event",
				zap.String("event_id", r.EventID.String()),
				zap.String("event_type", r.EventType),
				zap.Error(err),
			)
			continue
		}
		entries[i].Description = describeEvent(event)
	}
	return entries
}
