package secondary

import (
	"context"

	"github.com/ruudy-sib/payhook/internal/domain/entity"
)

// RecordStore defines the secondary port for locating and mutating records
// in a document store. Implementations return domain.ErrRecordNotFound when
// a lookup matches nothing; any other error is treated as transient.
type RecordStore interface {
	// Name identifies the backend in logs and health output.
	Name() string

	// Get addresses a record directly by its key.
	Get(ctx context.Context, lookup entity.Lookup) (*entity.Record, error)

	// QueryByField returns the first record whose field equals value.
	QueryByField(ctx context.Context, field, value string) (*entity.Record, error)

	// ScanAll searches every partition for records stored under key.
	ScanAll(ctx context.Context, key string) ([]*entity.Record, error)

	// Update applies the payment mutation to the addressed record in a single write.
	Update(ctx context.Context, ref entity.RecordRef, update entity.PaymentUpdate) error
}
