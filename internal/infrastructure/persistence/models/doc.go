// Package models contains the GORM persistence models for the inventory ledger.
// Domain aggregates carry no ORM tags; each model converts to and from its aggregate
// through ToDomain and a FromDomain constructor.
//
// Tables:
//   - items and item_storage_locations: the Item aggregate
//   - inventory_transactions: the Transaction ledger
//   - domain_event_journal: events persisted alongside the state that raised them
package models
