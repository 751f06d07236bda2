package secondary

import (
	"context"

	"github.com/ruudy-sib/payhook/internal/domain/entity"
)

// EventPublisher defines the secondary port for announcing processed
// payments to downstream systems (e.g., Kafka, an HTTP sink).
type EventPublisher interface {
	// Publish sends the payment event.
	Publish(ctx context.Context, event entity.PaymentEvent) error

	// Close releases any resources held by the publisher.
	Close() error
}
