package secondary

import (
	"github.com/ruudy-sib/payhook/internal/domain/entity"
)

// WriteQueue defines the secondary port for deferred record writes.
// Enqueue returns without waiting for the write to complete.
type WriteQueue interface {
	// Enqueue hands the update over for asynchronous execution. It returns
	// domain.ErrQueueFull when the queue cannot accept more work and
	// domain.ErrQueueNotRunning when nothing would ever apply it.
	Enqueue(ref entity.RecordRef, update entity.PaymentUpdate) error
}
