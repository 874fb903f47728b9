package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Reference prefixes by movement direction
const (
	ReferencePrefixInbound  = "IN"
	ReferencePrefixOutbound = "OUT"
	ReferencePrefixInternal = "INT"
)

// TransactionReference is a human-readable code such as IN-20240131-9F86D081.
// It is descriptive only and never used as a lookup key.
type TransactionReference struct {
	value string
}

// NewTransactionReference builds "{prefix}-{yyyyMMdd}-{8 uppercase hex}" for the given date
func NewTransactionReference(prefix string, date time.Time) TransactionReference {
	id := uuid.New()
	suffix := strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
	return TransactionReference{
		value: fmt.Sprintf("%s-%s-%s", prefix, date.UTC().Format("20060102"), suffix),
	}
}

// TransactionReferenceFromString restores a stored reference
func TransactionReferenceFromString(value string) TransactionReference {
	return TransactionReference{value: value}
}

// Value returns the reference code
func (r TransactionReference) Value() string { return r.value }

// String implements fmt.Stringer
func (r TransactionReference) String() string { return r.value }
