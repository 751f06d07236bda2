package valueobject

import (
	"fmt"
	"strings"

	"github.com/ruudy-sib/payhook/internal/domain"
)

// RecordKey is an immutable value object holding the business key
// (e.g. a challan number) embedded in a composite basket identifier.
type RecordKey struct {
	value string
}

// ParseRecordKey extracts the record key from an identifier shaped as
// <tag>-<record-key>-<timestamp>. The record key may itself contain hyphens.
func ParseRecordKey(identifier string) (RecordKey, error) {
	parts := strings.Split(strings.TrimSpace(identifier), domain.IdentifierSeparator)
	if len(parts) < domain.MinIdentifierSegments {
		return RecordKey{}, fmt.Errorf("%w: %q has %d segments, need at least %d",
			domain.ErrInvalidIdentifier, identifier, len(parts), domain.MinIdentifierSegments)
	}

	key := strings.Join(parts[1:len(parts)-1], domain.IdentifierSeparator)
	if key == "" {
		return RecordKey{}, fmt.Errorf("%w: %q has an empty record key", domain.ErrInvalidIdentifier, identifier)
	}

	return RecordKey{value: key}, nil
}

// NewRecordKey wraps an already extracted record key.
func NewRecordKey(value string) (RecordKey, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return RecordKey{}, fmt.Errorf("%w: record key must not be empty", domain.ErrInvalidIdentifier)
	}
	return RecordKey{value: trimmed}, nil
}

// String returns the string representation of the RecordKey.
func (k RecordKey) String() string {
	return k.value
}

// Equals checks equality with another RecordKey.
func (k RecordKey) Equals(other RecordKey) bool {
	return k.value == other.value
}
