package entity

import "time"

// PaymentEventType names the kind of payment event published downstream.
type PaymentEventType string

const (
	PaymentEventReconciled PaymentEventType = "payment.reconciled"
	PaymentEventFailed     PaymentEventType = "payment.failed"
)

// PaymentEvent is emitted after a notification has been processed.
type PaymentEvent struct {
	Type           PaymentEventType `json:"type"`
	RecordKey      string           `json:"record_key,omitempty"`
	BasketID       string           `json:"basket_id"`
	StatusCode     string           `json:"status_code"`
	TransactionRef string           `json:"transaction_id,omitempty"`
	Outcome        ReconcileOutcome `json:"outcome"`
	OccurredAt     time.Time        `json:"occurred_at"`
}
