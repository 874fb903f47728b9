package inventory

import "github.com/AkramSamirElhayani/IMS/internal/domain/shared"

// TransactionType represents the kind of stock movement
type TransactionType string

const (
	// Inbound
	TransactionTypePurchase   TransactionType = "PURCHASE"
	TransactionTypeReturn     TransactionType = "RETURN"
	TransactionTypeTransferIn TransactionType = "TRANSFER_IN"

	// Outbound
	TransactionTypeSale        TransactionType = "SALE"
	TransactionTypeConsumption TransactionType = "CONSUMPTION"
	TransactionTypeTransferOut TransactionType = "TRANSFER_OUT"

	// Internal, stock neutral
	TransactionTypeQualityStatusChange TransactionType = "QUALITY_STATUS_CHANGE"
	TransactionTypeLocationTransfer    TransactionType = "LOCATION_TRANSFER"
)

// Direction classifies a transaction type
type Direction int

const (
	DirectionUnknown Direction = iota
	DirectionInbound
	DirectionOutbound
	DirectionInternal
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	return t.Direction() != DirectionUnknown
}

// Direction returns the movement direction implied by the type
func (t TransactionType) Direction() Direction {
	switch t {
	case TransactionTypePurchase, TransactionTypeReturn, TransactionTypeTransferIn:
		return DirectionInbound
	case TransactionTypeSale, TransactionTypeConsumption, TransactionTypeTransferOut:
		return DirectionOutbound
	case TransactionTypeQualityStatusChange, TransactionTypeLocationTransfer:
		return DirectionInternal
	}
	return DirectionUnknown
}

// IsInbound returns true for Purchase, Return and TransferIn
func (t TransactionType) IsInbound() bool {
	return t.Direction() == DirectionInbound
}

// IsOutbound returns true for Sale, Consumption and TransferOut
func (t TransactionType) IsOutbound() bool {
	return t.Direction() == DirectionOutbound
}

// IsInternal returns true for QualityStatusChange and LocationTransfer
func (t TransactionType) IsInternal() bool {
	return t.Direction() == DirectionInternal
}

// StockImpact returns the ledger multiplier: +1 inbound, -1 outbound, 0 otherwise
func (t TransactionType) StockImpact() int {
	switch t.Direction() {
	case DirectionInbound:
		return 1
	case DirectionOutbound:
		return -1
	}
	return 0
}

// ReferencePrefix returns the prefix used for generated references
func (t TransactionType) ReferencePrefix() string {
	switch t.Direction() {
	case DirectionInbound:
		return ReferencePrefixInbound
	case DirectionOutbound:
		return ReferencePrefixOutbound
	}
	return ReferencePrefixInternal
}

// InboundTransactionTypes lists the stock-increasing types
func InboundTransactionTypes() []TransactionType {
	return []TransactionType{TransactionTypePurchase, TransactionTypeReturn, TransactionTypeTransferIn}
}

// OutboundTransactionTypes lists the stock-decreasing types
func OutboundTransactionTypes() []TransactionType {
	return []TransactionType{TransactionTypeSale, TransactionTypeConsumption, TransactionTypeTransferOut}
}

// ParseTransactionType converts a raw string to a TransactionType
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(s)
	if !t.IsValid() {
		return "", shared.NewDomainError(codeInvalidTransactionType, "Unknown transaction type: "+s)
	}
	return t, nil
}
