package entity

import (
	"strings"
	"time"
)

// RecordStatus is the payment state of a record.
type RecordStatus string

const (
	RecordStatusUnpaid  RecordStatus = "unpaid"
	RecordStatusPending RecordStatus = "pending"
	RecordStatusPaid    RecordStatus = "paid"
)

// RecordRef addresses a record inside a store. Path is opaque to the domain
// and only interpreted by the adapter that produced it.
type RecordRef struct {
	Partition string
	Key       string
	Path      string
}

// Record is a persisted challan that a payment notification settles.
type Record struct {
	Ref            RecordRef
	Key            string
	Status         RecordStatus
	TransactionRef string
	PaidAt         time.Time
	PaymentMethod  string
	BasketID       string
	ContactAddress string
}

// IsPaid reports whether the record has already been settled.
func (r *Record) IsPaid() bool {
	return r.Status == RecordStatusPaid
}

// Lookup carries what the primary path needs to address a record directly.
type Lookup struct {
	Key            string
	ContactAddress string
}

// Partition returns the partition derived from the contact address, or ""
// when none is known.
func (l Lookup) Partition() string {
	return PartitionFor(l.ContactAddress)
}

// PartitionFor converts a contact address into a partition name: lower-cased,
// trimmed, with '.' replaced by ',' so it is usable as a path segment.
func PartitionFor(contact string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(contact)), ".", ",")
}

// PaymentUpdate is the single mutation applied to a matched record.
type PaymentUpdate struct {
	Status         RecordStatus
	TransactionRef string
	PaidAt         time.Time
	PaymentMethod  string
	BasketID       string
}

// Fields returns the update as store field names and string values.
func (u PaymentUpdate) Fields() map[string]string {
	return map[string]string{
		"status":        string(u.Status),
		"transactionId": u.TransactionRef,
		"paidAt":        u.PaidAt.UTC().Format(time.RFC3339),
		"paymentMethod": u.PaymentMethod,
		"basketId":      u.BasketID,
	}
}
