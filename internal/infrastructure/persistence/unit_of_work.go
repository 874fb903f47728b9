package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AkramSamirElhayani/IMS/internal/domain/inventory"
	"github.com/AkramSamirElhayani/IMS/internal/domain/shared"
	"github.com/AkramSamirElhayani/IMS/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const saveChangesSavepoint = "uow_save_changes"

// stagedWrite is a pending database write recorded by a repository
type stagedWrite func(tx *gorm.DB) error

// GormUnitOfWork implements inventory.UnitOfWork on GORM.
//
// Repository writes are staged and applied by SaveChanges in one database
// transaction together with the event journal. Events are harvested only from
// aggregates with a write in that flush and are published after the state
// that produced them is durable.
// A unit of work is not safe for concurrent use; create one per operation.
type GormUnitOfWork struct {
	db        *gorm.DB
	publisher shared.EventPublisher
	journal   shared.EventJournal
	observer  UnitOfWorkObserver
	logger    *zap.Logger

	state  shared.TransactionState
	tx     *gorm.DB
	staged []stagedWrite

	// dirty holds the aggregates staged since the last successful flush
	dirty    []shared.AggregateRoot
	buffered []shared.DomainEvent

	// versions holds the persisted version per aggregate for optimistic checks
	versions map[uuid.UUID]int
	// committed is the versions snapshot taken at BeginTransaction
	committed map[uuid.UUID]int

	items        *GormItemRepository
	transactions *GormTransactionRepository
}

// UnitOfWorkObserver is notified of transaction outcomes
type UnitOfWorkObserver interface {
	RecordCommit(ctx context.Context, success bool)
	RecordRollback(ctx context.Context)
}

// UnitOfWorkOption configures a GormUnitOfWork
type UnitOfWorkOption func(*GormUnitOfWork)

// WithEventJournal records every harvested event in the same database transaction
func WithEventJournal(journal shared.EventJournal) UnitOfWorkOption {
	return func(u *GormUnitOfWork) {
		u.journal = journal
	}
}

// WithUnitOfWorkObserver reports commits and rollbacks, e.g. to metrics
func WithUnitOfWorkObserver(observer UnitOfWorkObserver) UnitOfWorkOption {
	return func(u *GormUnitOfWork) {
		u.observer = observer
	}
}

// WithUnitOfWorkLogger sets the logger
func WithUnitOfWorkLogger(l *zap.Logger) UnitOfWorkOption {
	return func(u *GormUnitOfWork) {
		if l != nil {
			u.logger = l
		}
	}
}

// NewGormUnitOfWork creates an idle unit of work
func NewGormUnitOfWork(db *gorm.DB, publisher shared.EventPublisher, opts ...UnitOfWorkOption) *GormUnitOfWork {
	u := &GormUnitOfWork{
		db:        db,
		publisher: publisher,
		logger:    zap.NewNop(),
		state:     shared.StateIdle,
		versions:  make(map[uuid.UUID]int),
	}
	for _, opt := range opts {
		opt(u)
	}
	u.items = &GormItemRepository{uow: u}
	u.transactions = &GormTransactionRepository{uow: u}
	return u
}

// Items returns the item repository bound to this unit of work
func (u *GormUnitOfWork) Items() inventory.ItemRepository {
	return u.items
}

// Transactions returns the transaction repository bound to this unit of work
func (u *GormUnitOfWork) Transactions() inventory.TransactionRepository {
	return u.transactions
}

// State returns the current transaction state
func (u *GormUnitOfWork) State() shared.TransactionState {
	return u.state
}

// InTransaction reports whether an explicit transaction is open
func (u *GormUnitOfWork) InTransaction() bool {
	return u.state == shared.StateInTransaction
}

// PendingEvents returns a copy of the events buffered for publication on commit
func (u *GormUnitOfWork) PendingEvents() []shared.DomainEvent {
	out := make([]shared.DomainEvent, len(u.buffered))
	copy(out, u.buffered)
	return out
}

// BeginTransaction opens an explicit transaction
func (u *GormUnitOfWork) BeginTransaction(ctx context.Context) error {
	if u.state == shared.StateInTransaction {
		panic(shared.ErrTransactionAlreadyActive)
	}
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	u.tx = tx
	u.buffered = nil
	u.committed = cloneVersions(u.versions)
	u.state = shared.StateInTransaction
	return nil
}

// SaveChanges flushes staged writes and the journal, then publishes or buffers the harvested events.
// On failure nothing is published and the staged writes and aggregate events are kept.
// Events of an aggregate mutated without a repository Add/Update/Delete stay queued on it.
func (u *GormUnitOfWork) SaveChanges(ctx context.Context) error {
	events := u.harvest()

	if err := u.flush(ctx, events); err != nil {
		return err
	}

	u.staged = nil
	for _, agg := range u.dirty {
		agg.ClearDomainEvents()
		u.versions[agg.GetID()] = agg.GetVersion()
	}
	u.dirty = nil

	if len(events) == 0 {
		return nil
	}
	if u.state == shared.StateInTransaction {
		u.buffered = append(u.buffered, events...)
		return nil
	}
	u.publish(ctx, events)
	return nil
}

// Commit commits the open transaction and publishes the buffered events in order
func (u *GormUnitOfWork) Commit(ctx context.Context) error {
	if u.state != shared.StateInTransaction {
		panic(shared.ErrNoActiveTransaction)
	}
	tx := u.tx
	events := u.buffered

	if err := tx.Commit().Error; err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.Enrich(ctx, u.logger).Warn("rollback after failed commit", zap.Error(rbErr))
		}
		u.versions = u.committed
		u.reset()
		u.observeCommit(ctx, false)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	u.observeCommit(ctx, true)

	// Handlers may open their own units of work, so state is reset before publishing.
	u.reset()
	u.publish(ctx, events)
	return nil
}

// Rollback discards the open transaction and its buffered events
func (u *GormUnitOfWork) Rollback(ctx context.Context) error {
	if u.state != shared.StateInTransaction {
		panic(shared.ErrNoActiveTransaction)
	}
	tx := u.tx
	u.versions = u.committed
	u.reset()
	if u.observer != nil {
		u.observer.RecordRollback(ctx)
	}
	if err := tx.Rollback().Error; err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

func (u *GormUnitOfWork) observeCommit(ctx context.Context, success bool) {
	if u.observer != nil {
		u.observer.RecordCommit(ctx, success)
	}
}

func (u *GormUnitOfWork) reset() {
	u.tx = nil
	u.buffered = nil
	u.committed = nil
	u.state = shared.StateIdle
}

func cloneVersions(in map[uuid.UUID]int) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(in))
	for id, v := range in {
		out[id] = v
	}
	return out
}

// harvest collects pending events of dirty aggregates in staging order, then raise order
func (u *GormUnitOfWork) harvest() []shared.DomainEvent {
	var events []shared.DomainEvent
	for _, agg := range u.dirty {
		events = append(events, agg.GetDomainEvents()...)
	}
	return events
}

func (u *GormUnitOfWork) flush(ctx context.Context, events []shared.DomainEvent) error {
	if len(u.staged) == 0 && (len(events) == 0 || u.journal == nil) {
		return nil
	}

	apply := func(tx *gorm.DB) error {
		for _, write := range u.staged {
			if err := write(tx); err != nil {
				return err
			}
		}
		if u.journal != nil && len(events) > 0 {
			if err := u.journal.Append(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to append event journal: %w", err)
			}
		}
		return nil
	}

	if u.state != shared.StateInTransaction {
		return u.db.WithContext(ctx).Transaction(apply)
	}

	// A savepoint keeps the explicit transaction usable after a failed save.
	tx := u.tx.WithContext(ctx)
	if err := tx.SavePoint(saveChangesSavepoint).Error; err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}
	if err := apply(tx); err != nil {
		if rbErr := tx.RollbackTo(saveChangesSavepoint).Error; rbErr != nil {
			logger.Enrich(ctx, u.logger).Warn("rollback to savepoint failed", zap.Error(rbErr))
		}
		return err
	}
	return nil
}

func (u *GormUnitOfWork) publish(ctx context.Context, events []shared.DomainEvent) {
	if len(events) == 0 || u.publisher == nil {
		return
	}
	if err := u.publisher.Publish(ctx, events...); err != nil {
		logger.Enrich(ctx, u.logger).Error("failed to publish domain events",
			zap.Int("event_count", len(events)),
			zap.Error(err),
		)
	}
}

// stage records a write and marks the aggregate dirty for the next flush
func (u *GormUnitOfWork) stage(agg shared.AggregateRoot, write stagedWrite) {
	u.markDirty(agg)
	u.staged = append(u.staged, write)
}

func (u *GormUnitOfWork) markDirty(agg shared.AggregateRoot) {
	for _, d := range u.dirty {
		if d == agg {
			return
		}
	}
	u.dirty = append(u.dirty, agg)
}

// conn returns the open transaction if any, else the database, bound to ctx
func (u *GormUnitOfWork) conn(ctx context.Context) *gorm.DB {
	if u.tx != nil {
		return u.tx.WithContext(ctx)
	}
	return u.db.WithContext(ctx)
}

// loaded remembers the persisted version of an aggregate read from storage
func (u *GormUnitOfWork) loaded(id uuid.UUID, version int) {
	u.versions[id] = version
}

// expectedVersion returns the persisted version of an aggregate, if known
func (u *GormUnitOfWork) expectedVersion(id uuid.UUID) (int, bool) {
	v, ok := u.versions[id]
	return v, ok
}

// GormUnitOfWorkFactory creates a GormUnitOfWork per operation
type GormUnitOfWorkFactory struct {
	db        *gorm.DB
	publisher shared.EventPublisher
	opts      []UnitOfWorkOption
}

// NewGormUnitOfWorkFactory creates a new GormUnitOfWorkFactory
func NewGormUnitOfWorkFactory(db *gorm.DB, publisher shared.EventPublisher, opts ...UnitOfWorkOption) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db, publisher: publisher, opts: opts}
}

// New returns a fresh idle unit of work
func (f *GormUnitOfWorkFactory) New() inventory.UnitOfWork {
	return NewGormUnitOfWork(f.db, f.publisher, f.opts...)
}

// Execute runs fn inside an explicit transaction of a fresh unit of work.
// The transaction is committed when fn returns nil, and rolled back otherwise.
func (f *GormUnitOfWorkFactory) Execute(ctx context.Context, fn func(uow inventory.UnitOfWork) error) error {
	uow := f.New()
	if err := uow.BeginTransaction(ctx); err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			_ = uow.Rollback(ctx)
			panic(r)
		}
	}()

	if err := fn(uow); err != nil {
		if rbErr := uow.Rollback(ctx); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return uow.Commit(ctx)
}

var (
	_ inventory.UnitOfWork        = (*GormUnitOfWork)(nil)
	_ inventory.UnitOfWorkFactory = (*GormUnitOfWorkFactory)(nil)
)
