package shared

import "context"

// UnitOfWork coordinates persistence of tracked aggregates with publication
// of the events they raised.
//
// State machine: Idle -> InTransaction (BeginTransaction) -> Idle (Commit or Rollback).
// Events are published only after the state that produced them is durable:
// immediately after SaveChanges when Idle, after Commit when a transaction is open.
type UnitOfWork interface {
	// SaveChanges persists staged changes and harvests pending events from the aggregates staged since the last save.
	SaveChanges(ctx context.Context) error

	// BeginTransaction opens an explicit transaction.
	// Panics with ErrTransactionAlreadyActive if one is already open.
	BeginTransaction(ctx context.Context) error

	// Commit commits the open transaction and then publishes buffered events in order.
	// Panics with ErrNoActiveTransaction if no transaction is open.
	// A failed commit rolls back, discards the buffer and returns the error.
	Commit(ctx context.Context) error

	// Rollback discards the open transaction and its buffered events.
	// Panics with ErrNoActiveTransaction if no transaction is open.
	Rollback(ctx context.Context) error

	// InTransaction reports whether an explicit transaction is open
	InTransaction() bool
}

// TransactionState is the state of a unit of work
type TransactionState int

const (
	StateIdle TransactionState = iota
	StateInTransaction
)

// String returns the state name
func (s TransactionState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateInTransaction:
		return "InTransaction"
	default:
		return "Unknown"
	}
}
