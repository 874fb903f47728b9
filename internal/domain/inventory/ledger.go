package inventory

import "github.com/google/uuid"

// LedgerTotal folds a transaction history into the stock balance of one item.
// Only completed transactions count; internal types contribute zero.
// Repositories computing the balance in the database must return the same value.
func LedgerTotal(itemID uuid.UUID, transactions []*Transaction) int {
	total := 0
	for _, tx := range transactions {
		if tx == nil || tx.itemID != itemID || !tx.isCompleted {
			continue
		}
		total += tx.SignedQuantity()
	}
	return total
}

// LedgerEntry is one line of an item's running balance
type LedgerEntry struct {
	TransactionID uuid.UUID
	Reference     string
	Type          TransactionType
	Quantity      int
	Delta         int
	Balance       int
}

// RunningBalance returns completed transactions in the given order with their cumulative balance.
// Callers pass transactions ordered oldest first.
func RunningBalance(itemID uuid.UUID, transactions []*Transaction) []LedgerEntry {
	entries := make([]LedgerEntry, 0, len(transactions))
	balance := 0
	for _, tx := range transactions {
		if tx == nil || tx.itemID != itemID || !tx.isCompleted {
			continue
		}
		delta := tx.SignedQuantity()
		balance += delta
		entries = append(entries, LedgerEntry{
			TransactionID: tx.ID,
			Reference:     tx.reference.Value(),
			Type:          tx.transactionType,
			Quantity:      tx.quantity,
			Delta:         delta,
			Balance:       balance,
		})
	}
	return entries
}
