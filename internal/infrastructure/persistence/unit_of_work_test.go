package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/AkramSamirElhayani/IMS/internal/domain/inventory"
	"github.com/AkramSamirElhayani/IMS/internal/domain/shared"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func TestGormUnitOfWork_SaveChangesWithoutTransaction(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	t.Run("persists then publishes events in raise order", func(t *testing.T) {
		pub := &recordingPublisher{}
		uow := NewGormUnitOfWork(db, pub)
		pub.uow = uow

		item := newTestItem(t, "SAVE-1", 10)
		require.NoError(t, item.UpdateStockLevel(20, nil))
		require.NoError(t, uow.Items().Add(ctx, item))

		require.NoError(t, uow.SaveChanges(ctx))

		assert.Equal(t, []string{inventory.EventTypeItemCreated, inventory.EventTypeStockLevelChanged}, pub.types())
		assert.Equal(t, []bool{false}, pub.inTxAtCall)
		assert.Empty(t, item.GetDomainEvents())

		stored, err := NewGormUnitOfWork(db, nil).Items().GetByID(ctx, item.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, 20, stored.StockLevel().Current())
	})

	t.Run("harvests aggregates in staging order", func(t *testing.T) {
		pub := &recordingPublisher{}
		uow := NewGormUnitOfWork(db, pub)

		item := newTestItem(t, "SAVE-2", 0)
		tx, err := inventory.NewInboundTransaction(item.ID, 5, "Dock", inventory.TransactionTypePurchase)
		require.NoError(t, err)

		require.NoError(t, uow.Items().Add(ctx, item))
		require.NoError(t, uow.Transactions().Add(ctx, tx))
		require.NoError(t, uow.SaveChanges(ctx))

		assert.Equal(t, []string{inventory.EventTypeItemCreated, inventory.EventTypeTransactionCreated}, pub.types())
	})

	t.Run("nothing staged publishes nothing", func(t *testing.T) {
		pub := &recordingPublisher{}
		uow := NewGormUnitOfWork(db, pub)

		require.NoError(t, uow.SaveChanges(ctx))
		assert.Equal(t, 0, pub.calls)
	})

	t.Run("publish failure does not fail the save", func(t *testing.T) {
		pub := &recordingPublisher{publishErr: errors.New("handler down")}
		uow := NewGormUnitOfWork(db, pub, WithUnitOfWorkLogger(zaptest.NewLogger(t)))

		item := newTestItem(t, "SAVE-3", 0)
		require.NoError(t, uow.Items().Add(ctx, item))

		assert.NoError(t, uow.SaveChanges(ctx))
		assert.Equal(t, 1, pub.calls)
	})
}

func TestGormUnitOfWork_SaveChangesFailure(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedItem(t, db, "DUP-1", 0)

	t.Run("keeps events and staged writes and publishes nothing", func(t *testing.T) {
		pub := &recordingPublisher{}
		uow := NewGormUnitOfWork(db, pub)

		dup := newTestItem(t, "DUP-1", 0)
		require.NoError(t, uow.Items().Add(ctx, dup))

		err := uow.SaveChanges(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		assert.Equal(t, 0, pub.calls)
		assert.Len(t, dup.GetDomainEvents(), 1)

		// the failed write is still staged
		assert.Error(t, uow.SaveChanges(ctx))
		assert.Equal(t, 0, pub.calls)
	})

	t.Run("journal failure leaves no state behind", func(t *testing.T) {
		pub := &recordingPublisher{}
		uow := NewGormUnitOfWork(db, pub, WithEventJournal(failingJournal{}))

		item := newTestItem(t, "JFAIL-1", 0)
		require.NoError(t, uow.Items().Add(ctx, item))

		require.Error(t, uow.SaveChanges(ctx))
		assert.Equal(t, 0, pub.calls)
		assert.NotEmpty(t, item.GetDomainEvents())

		exists, err := NewGormUnitOfWork(db, nil).Items().ExistsByID(ctx, item.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("failed save inside a transaction keeps the transaction usable", func(t *testing.T) {
		pub := &recordingPublisher{}
		uow := NewGormUnitOfWork(db, pub, WithUnitOfWorkLogger(zaptest.NewLogger(t)))
		require.NoError(t, uow.BeginTransaction(ctx))

		require.NoError(t, uow.Items().Add(ctx, newTestItem(t, "DUP-1", 0)))
		require.Error(t, uow.SaveChanges(ctx))

		found, err := uow.Items().GetBySKU(ctx, inventory.MustNewSKU("DUP-1"))
		require.NoError(t, err)
		assert.NotNil(t, found)

		require.NoError(t, uow.Rollback(ctx))
		assert.Equal(t, 0, pub.calls)
	})
}

func TestGormUnitOfWork_ExplicitTransaction(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	t.Run("buffers events until commit", func(t *testing.T) {
		pub := &recordingPublisher{}
		uow := NewGormUnitOfWork(db, pub)
		pub.uow = uow

		require.NoError(t, uow.BeginTransaction(ctx))
		assert.True(t, uow.InTransaction())
		assert.Equal(t, shared.StateInTransaction, uow.State())

		item := newTestItem(t, "TX-1", 0)
		require.NoError(t, uow.Items().Add(ctx, item))
		require.NoError(t, uow.SaveChanges(ctx))

		assert.Equal(t, 0, pub.calls)
		assert.Len(t, uow.PendingEvents(), 1)
		assert.Empty(t, item.GetDomainEvents())

		require.NoError(t, uow.Commit(ctx))

		assert.Equal(t, []string{inventory.EventTypeItemCreated}, pub.types())
		assert.Equal(t, []bool{false}, pub.inTxAtCall, "state must be idle while publishing")
		assert.False(t, uow.InTransaction())
		assert.Empty(t, uow.PendingEvents())
	})

	t.Run("commits several saves and publishes them in order", func(t *testing.T) {
		pub := &recordingPublisher{}
		uow := NewGormUnitOfWork(db, pub)

		require.NoError(t, uow.BeginTransaction(ctx))
		item := newTestItem(t, "TX-2", 0)
		require.NoError(t, uow.Items().Add(ctx, item))
		require.NoError(t, uow.SaveChanges(ctx))

		require.NoError(t, item.UpdateStockLevel(30, nil))
		require.NoError(t, uow.Items().Update(ctx, item))
		require.NoError(t, uow.SaveChanges(ctx))

		require.NoError(t, uow.Commit(ctx))

		assert.Equal(t, 1, pub.calls)
		assert.Equal(t, []string{inventory.EventTypeItemCreated, inventory.EventTypeStockLevelChanged}, pub.types())
	})

	t.Run("rollback discards state and buffered events", func(t *testing.T) {
		pub := &recordingPublisher{}
		uow := NewGormUnitOfWork(db, pub)

		require.NoError(t, uow.BeginTransaction(ctx))
		item := newTestItem(t, "TX-3", 0)
		require.NoError(t, uow.Items().Add(ctx, item))
		require.NoError(t, uow.SaveChanges(ctx))

		require.NoError(t, uow.Rollback(ctx))

		assert.Equal(t, 0, pub.calls)
		assert.False(t, uow.InTransaction())
		stored, err := NewGormUnitOfWork(db, nil).Items().GetByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Nil(t, stored)
	})

	t.Run("handlers may reuse the unit of work after commit", func(t *testing.T) {
		pub := &recordingPublisher{}
		uow := NewGormUnitOfWork(db, pub)
		reentered := false
		pub.onPublish = func(ctx context.Context, _ []shared.DomainEvent) {
			if reentered {
				return
			}
			reentered = true
			require.NoError(t, uow.BeginTransaction(ctx))
			require.NoError(t, uow.Rollback(ctx))
		}

		require.NoError(t, uow.BeginTransaction(ctx))
		require.NoError(t, uow.Items().Add(ctx, newTestItem(t, "TX-4", 0)))
		require.NoError(t, uow.SaveChanges(ctx))
		require.NoError(t, uow.Commit(ctx))

		assert.True(t, reentered)
	})

	t.Run("begin clears leftover buffer", func(t *testing.T) {
		uow := NewGormUnitOfWork(db, &recordingPublisher{})
		require.NoError(t, uow.BeginTransaction(ctx))
		assert.Empty(t, uow.PendingEvents())
		require.NoError(t, uow.Rollback(ctx))
	})
}

func TestGormUnitOfWork_Misuse(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	t.Run("double begin panics", func(t *testing.T) {
		uow := NewGormUnitOfWork(db, nil)
		require.NoError(t, uow.BeginTransaction(ctx))

		assert.PanicsWithValue(t, shared.ErrTransactionAlreadyActive, func() {
			_ = uow.BeginTransaction(ctx)
		})

		require.NoError(t, uow.Rollback(ctx))
	})

	t.Run("commit without transaction panics", func(t *testing.T) {
		uow := NewGormUnitOfWork(db, nil)
		assert.PanicsWithValue(t, shared.ErrNoActiveTransaction, func() {
			_ = uow.Commit(ctx)
		})
	})

	t.Run("rollback without transaction panics", func(t *testing.T) {
		uow := NewGormUnitOfWork(db, nil)
		assert.PanicsWithValue(t, shared.ErrNoActiveTransaction, func() {
			_ = uow.Rollback(ctx)
		})
	})
}

func TestGormUnitOfWork_OptimisticConcurrency(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seed := seedItem(t, db, "OCC-1", 10)

	first := NewGormUnitOfWork(db, nil)
	second := NewGormUnitOfWork(db, nil)

	a, err := first.Items().GetByID(ctx, seed.ID)
	require.NoError(t, err)
	b, err := second.Items().GetByID(ctx, seed.ID)
	require.NoError(t, err)

	require.NoError(t, a.UpdateStockLevel(11, nil))
	require.NoError(t, first.Items().Update(ctx, a))
	require.NoError(t, first.SaveChanges(ctx))

	require.NoError(t, b.UpdateStockLevel(12, nil))
	require.NoError(t, second.Items().Update(ctx, b))
	err = second.SaveChanges(ctx)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	// the winner can keep saving
	require.NoError(t, a.UpdateStockLevel(13, nil))
	require.NoError(t, first.Items().Update(ctx, a))
	require.NoError(t, first.SaveChanges(ctx))
}

func TestGormUnitOfWork_EventJournal(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	journal := NewGormEventJournal(db, nil)
	uow := NewGormUnitOfWork(db, &recordingPublisher{}, WithEventJournal(journal))

	item := newTestItem(t, "JRN-1", 0)
	require.NoError(t, item.UpdateStockLevel(3, nil))
	require.NoError(t, uow.Items().Add(ctx, item))
	require.NoError(t, uow.SaveChanges(ctx))

	records, err := journal.ListForAggregate(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, inventory.EventTypeItemCreated, records[0].EventType)
	assert.Equal(t, inventory.EventTypeStockLevelChanged, records[1].EventType)
	assert.Equal(t, inventory.EventTypeCriticalStockLevelReached, records[2].EventType)
	assert.Equal(t, inventory.AggregateTypeItem, records[0].AggregateType)
	assert.Contains(t, string(records[0].Payload), `"sku":"JRN-1"`)

	t.Run("rejects a non gorm transaction handle", func(t *testing.T) {
		err := journal.Append(ctx, "not a tx", inventory.NewItemCreatedEvent(item))
		assert.Error(t, err)
	})
}

func TestGormUnitOfWork_CommitFailure(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	ctx := context.Background()

	pub := &recordingPublisher{}
	observer := &countingObserver{}
	uow := NewGormUnitOfWork(db.DB, pub, WithUnitOfWorkObserver(observer))

	mock.ExpectBegin()
	mock.ExpectExec("SAVEPOINT uow_save_changes").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit().WillReturnError(errors.New("connection reset"))

	require.NoError(t, uow.BeginTransaction(ctx))
	item := newTestItem(t, "COMMIT-1", 0)
	uow.stage(item, func(*gorm.DB) error { return nil })
	require.NoError(t, uow.SaveChanges(ctx))
	require.Len(t, uow.PendingEvents(), 1)

	err := uow.Commit(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.False(t, uow.InTransaction())
	assert.Empty(t, uow.PendingEvents())
	assert.Equal(t, 0, pub.calls)
	assert.Equal(t, []bool{false}, observer.commits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUnitOfWorkFactory_Execute(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	t.Run("commits and publishes when fn succeeds", func(t *testing.T) {
		pub := &recordingPublisher{}
		observer := &countingObserver{}
		factory := NewGormUnitOfWorkFactory(db, pub, WithUnitOfWorkObserver(observer))
		item := newTestItem(t, "EXEC-1", 0)

		err := factory.Execute(ctx, func(uow inventory.UnitOfWork) error {
			if err := uow.Items().Add(ctx, item); err != nil {
				return err
			}
			return uow.SaveChanges(ctx)
		})

		require.NoError(t, err)
		assert.Equal(t, []string{inventory.EventTypeItemCreated}, pub.types())
		assert.Equal(t, []bool{true}, observer.commits)
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		pub := &recordingPublisher{}
		observer := &countingObserver{}
		factory := NewGormUnitOfWorkFactory(db, pub, WithUnitOfWorkObserver(observer))
		item := newTestItem(t, "EXEC-2", 0)
		boom := errors.New("boom")

		err := factory.Execute(ctx, func(uow inventory.UnitOfWork) error {
			require.NoError(t, uow.Items().Add(ctx, item))
			require.NoError(t, uow.SaveChanges(ctx))
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 0, pub.calls)
		assert.Equal(t, 1, observer.rollbacks)

		exists, err := factory.New().Items().ExistsByID(ctx, item.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("rolls back and re-panics", func(t *testing.T) {
		factory := NewGormUnitOfWorkFactory(db, nil)
		assert.Panics(t, func() {
			_ = factory.Execute(ctx, func(inventory.UnitOfWork) error {
				panic("unexpected")
			})
		})

		// the connection is free again
		_, err := factory.New().Items().GetActive(ctx)
		assert.NoError(t, err)
	})
}

type failingJournal struct{}

func (failingJournal) Append(context.Context, any, ...shared.DomainEvent) error {
	return errors.New("journal unavailable")
}

type countingObserver struct {
	commits   []bool
	rollbacks int
}

func (o *countingObserver) RecordCommit(_ context.Context, success bool) {
	o.commits = append(o.commits, success)
}

func (o *countingObserver) RecordRollback(context.Context) {
	o.rollbacks++
}

func TestGormUnitOfWork_MutationWithoutUpdateIsNotPublished(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	pub := &recordingPublisher{}
	uow := NewGormUnitOfWork(db, pub)

	item := newTestItem(t, "DIRTY-1", 10)
	require.NoError(t, uow.Items().Add(ctx, item))
	require.NoError(t, uow.SaveChanges(ctx))

	item.Deactivate()
	require.NoError(t, uow.SaveChanges(ctx))

	assert.Equal(t, []string{inventory.EventTypeItemCreated}, pub.types())
	require.Len(t, item.GetDomainEvents(), 1, "unsaved event stays queued on the item")

	stored, err := NewGormUnitOfWork(db, nil).Items().GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive())

	t.Run("update saves and publishes the queued event", func(t *testing.T) {
		require.NoError(t, uow.Items().Update(ctx, item))
		require.NoError(t, uow.SaveChanges(ctx))

		assert.Equal(t, []string{inventory.EventTypeItemCreated, inventory.EventTypeItemDeactivated}, pub.types())
		assert.Empty(t, item.GetDomainEvents())

		stored, err := NewGormUnitOfWork(db, nil).Items().GetByID(ctx, item.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsActive())
	})
}

func TestGormUnitOfWork_RollbackRestoresVersions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seed := seedItem(t, db, "ROLLBACK-VER", 10)
	uow := NewGormUnitOfWork(db, nil)

	item, err := uow.Items().GetByID(ctx, seed.ID)
	require.NoError(t, err)

	require.NoError(t, uow.BeginTransaction(ctx))
	require.NoError(t, item.UpdateStockLevel(11, nil))
	require.NoError(t, uow.Items().Update(ctx, item))
	require.NoError(t, uow.SaveChanges(ctx))
	require.NoError(t, uow.Rollback(ctx))

	require.NoError(t, item.UpdateStockLevel(12, nil))
	require.NoError(t, uow.Items().Update(ctx, item))
	require.NoError(t, uow.SaveChanges(ctx), "version must match the row the rollback left behind")

	stored, err := NewGormUnitOfWork(db, nil).Items().GetByID(ctx, seed.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, stored.StockLevel().Current())
}
