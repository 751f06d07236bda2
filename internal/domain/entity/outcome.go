package entity

// ReconcileOutcome describes how a notification was applied.
type ReconcileOutcome string

const (
	OutcomeUpdatedPrimary  ReconcileOutcome = "updated_primary"
	OutcomeUpdatedFallback ReconcileOutcome = "updated_fallback"
	OutcomePaymentFailed   ReconcileOutcome = "payment_failed"
)

// ReconcileRequest is the input of the reconciler.
type ReconcileRequest struct {
	RecordKey      string
	StatusCode     string
	TransactionRef string
	ContactAddress string
	BasketID       string
}

// ReconcileResult is the outcome of a reconcile call that did not error.
type ReconcileResult struct {
	Outcome   ReconcileOutcome
	RecordKey string
	Ref       RecordRef
	// Deferred is true when the fallback write was queued and may not yet be durable.
	Deferred bool
}

// NotificationResult is returned to the driving adapter after a notification
// has been fully processed.
type NotificationResult struct {
	Outcome        ReconcileOutcome
	BasketID       string
	RecordKey      string
	StatusCode     string
	TransactionRef string
	Deferred       bool
}
