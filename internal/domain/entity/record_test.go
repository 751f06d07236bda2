package entity

import (
	"testing"
	"time"
)

func TestPartitionFor(t *testing.T) {
	tests := []struct {
		contact string
		want    string
	}{
		{" User@Mail.Example.com ", "user@mail,example,com"},
		{"a@b.co", "a@b,co"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := PartitionFor(tt.contact); got != tt.want {
			t.Fatalf("PartitionFor(%q) = %q, want %q", tt.contact, got, tt.want)
		}
	}

	if got := (Lookup{Key: "CH-1", ContactAddress: "x@y.z"}).Partition(); got != "x@y,z" {
		t.Fatalf("unexpected lookup partition %q", got)
	}
}

func TestPaymentUpdate_Fields(t *testing.T) {
	u := PaymentUpdate{
		Status:         RecordStatusPaid,
		TransactionRef: "TXN1",
		PaidAt:         time.Date(2025, 11, 24, 15, 30, 0, 0, time.FixedZone("PKT", 5*3600)),
		PaymentMethod:  "payfast",
		BasketID:       "CHALLAN-CH-1-2",
	}

	fields := u.Fields()
	if fields["paidAt"] != "2025-11-24T10:30:00Z" {
		t.Fatalf("expected UTC timestamp, got %s", fields["paidAt"])
	}
	if fields["status"] != "paid" || fields["transactionId"] != "TXN1" {
		t.Fatalf("unexpected fields: %v", fields)
	}
	if len(fields) != 5 {
		t.Fatalf("expected 5 fields, got %d", len(fields))
	}
}
