package inventory

import (
	"strings"
	"time"

	"github.com/AkramSamirElhayani/IMS/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	codeInvalidQuantity        = "INVALID_QUANTITY"
	codeInvalidTransactionType = "INVALID_TRANSACTION_TYPE"
)

// Transaction is one ledger entry: a movement of stock for a single item.
// It references its item by id only. Apart from the completion flag it never changes.
type Transaction struct {
	shared.BaseAggregateRoot
	reference           TransactionReference
	transactionType     TransactionType
	itemID              uuid.UUID
	quantity            int
	sourceLocation      *string
	destinationLocation *string
	batch               *BatchInformation
	transactionDate     time.Time
	isCompleted         bool
}

// TransactionOption sets optional attributes on a new transaction
type TransactionOption func(*transactionOptions)

type transactionOptions struct {
	batch *BatchInformation
	date  *time.Time
}

// WithBatch attaches batch information
func WithBatch(batch BatchInformation) TransactionOption {
	return func(o *transactionOptions) {
		b := batch
		o.batch = &b
	}
}

// WithTransactionDate overrides the default transaction date (creation time)
func WithTransactionDate(date time.Time) TransactionOption {
	return func(o *transactionOptions) {
		d := date.UTC()
		o.date = &d
	}
}

// NewInboundTransaction records stock arriving at destinationLocation.
// The type must be Purchase, Return or TransferIn.
func NewInboundTransaction(itemID uuid.UUID, quantity int, destinationLocation string, txType TransactionType, opts ...TransactionOption) (*Transaction, error) {
	if !txType.IsInbound() {
		return nil, shared.NewDomainError(codeInvalidTransactionType, "Invalid transaction type for inbound transaction: "+txType.String())
	}
	dst, err := requireLocation(destinationLocation, "Destination location cannot be empty")
	if err != nil {
		return nil, err
	}
	return newTransaction(txType, itemID, quantity, nil, dst, opts)
}

// NewOutboundTransaction records stock leaving sourceLocation.
// The type must be Sale, Consumption or TransferOut.
func NewOutboundTransaction(itemID uuid.UUID, quantity int, sourceLocation string, txType TransactionType, opts ...TransactionOption) (*Transaction, error) {
	if !txType.IsOutbound() {
		return nil, shared.NewDomainError(codeInvalidTransactionType, "Invalid transaction type for outbound transaction: "+txType.String())
	}
	src, err := requireLocation(sourceLocation, "Source location cannot be empty")
	if err != nil {
		return nil, err
	}
	return newTransaction(txType, itemID, quantity, src, nil, opts)
}

// NewInternalTransaction records a stock-neutral movement between two locations.
// The type must be QualityStatusChange or LocationTransfer.
func NewInternalTransaction(itemID uuid.UUID, quantity int, sourceLocation, destinationLocation string, txType TransactionType, opts ...TransactionOption) (*Transaction, error) {
	if !txType.IsInternal() {
		return nil, shared.NewDomainError(codeInvalidTransactionType, "Invalid transaction type for internal transaction: "+txType.String())
	}
	src, err := requireLocation(sourceLocation, "Source location cannot be empty")
	if err != nil {
		return nil, err
	}
	dst, err := requireLocation(destinationLocation, "Destination location cannot be empty")
	if err != nil {
		return nil, err
	}
	return newTransaction(txType, itemID, quantity, src, dst, opts)
}

func newTransaction(txType TransactionType, itemID uuid.UUID, quantity int, src, dst *string, opts []TransactionOption) (*Transaction, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError(codeInvalidQuantity, "Quantity must be greater than zero")
	}
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM_ID", "Item id is required")
	}

	var o transactionOptions
	for _, opt := range opts {
		opt(&o)
	}

	root := shared.NewBaseAggregateRoot()
	date := root.CreatedAt
	if o.date != nil {
		date = *o.date
	}

	tx := &Transaction{
		BaseAggregateRoot:   root,
		reference:           NewTransactionReference(txType.ReferencePrefix(), root.CreatedAt),
		transactionType:     txType,
		itemID:              itemID,
		quantity:            quantity,
		sourceLocation:      src,
		destinationLocation: dst,
		batch:               o.batch,
		transactionDate:     date,
		isCompleted:         false,
	}

	tx.AddDomainEvent(NewTransactionCreatedEvent(tx))

	return tx, nil
}

func requireLocation(location, message string) (*string, error) {
	if strings.TrimSpace(location) == "" {
		return nil, shared.NewDomainError("INVALID_LOCATION", message)
	}
	l := location
	return &l, nil
}

// TransactionSnapshot carries persisted transaction state for Reconstitute
type TransactionSnapshot struct {
	ID                  uuid.UUID
	CreatedAt           time.Time
	UpdatedAt           time.Time
	Version             int
	Reference           string
	Type                TransactionType
	ItemID              uuid.UUID
	Quantity            int
	SourceLocation      *string
	DestinationLocation *string
	Batch               *BatchInformation
	TransactionDate     time.Time
	IsCompleted         bool
}

// ReconstituteTransaction rebuilds a transaction from storage without raising events
func ReconstituteTransaction(s TransactionSnapshot) *Transaction {
	return &Transaction{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        s.ID,
				CreatedAt: s.CreatedAt,
				UpdatedAt: s.UpdatedAt,
			},
			Version: s.Version,
		},
		reference:           TransactionReferenceFromString(s.Reference),
		transactionType:     s.Type,
		itemID:              s.ItemID,
		quantity:            s.Quantity,
		sourceLocation:      s.SourceLocation,
		destinationLocation: s.DestinationLocation,
		batch:               s.Batch,
		transactionDate:     s.TransactionDate,
		isCompleted:         s.IsCompleted,
	}
}

// Complete marks the transaction completed and raises TransactionCompleted.
// Calling it again raises the event again.
func (t *Transaction) Complete() {
	t.isCompleted = true
	t.Touch()
	t.IncrementVersion()
	t.AddDomainEvent(NewTransactionCompletedEvent(t))
}

// Reference returns the display reference
func (t *Transaction) Reference() TransactionReference { return t.reference }

// Type returns the transaction type
func (t *Transaction) Type() TransactionType { return t.transactionType }

// ItemID returns the referenced item
func (t *Transaction) ItemID() uuid.UUID { return t.itemID }

// Quantity returns the moved quantity, always positive
func (t *Transaction) Quantity() int { return t.quantity }

// SourceLocation returns the origin location, nil for inbound movements
func (t *Transaction) SourceLocation() *string { return copyString(t.sourceLocation) }

// DestinationLocation returns the target location, nil for outbound movements
func (t *Transaction) DestinationLocation() *string { return copyString(t.destinationLocation) }

// BatchInformation returns the batch, if any
func (t *Transaction) BatchInformation() *BatchInformation {
	if t.batch == nil {
		return nil
	}
	b := *t.batch
	return &b
}

// TransactionDate returns when the movement happened
func (t *Transaction) TransactionDate() time.Time { return t.transactionDate }

// IsCompleted reports whether the movement is completed
func (t *Transaction) IsCompleted() bool { return t.isCompleted }

// AffectsStock is false only for quality status changes
func (t *Transaction) AffectsStock() bool {
	return t.transactionType != TransactionTypeQualityStatusChange
}

// IsStockIncrease is true for inbound types
func (t *Transaction) IsStockIncrease() bool {
	return t.transactionType.IsInbound()
}

// SignedQuantity returns quantity multiplied by the type's stock impact
func (t *Transaction) SignedQuantity() int {
	return t.quantity * t.transactionType.StockImpact()
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
