package valueobject

import (
	"errors"
	"testing"

	"github.com/ruudy-sib/payhook/internal/domain"
)

func TestParseRecordKey(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		want       string
		wantErr    bool
	}{
		{
			name:       "key with embedded hyphens",
			identifier: "CHALLAN-CH-20251124-19981-1764448963246",
			want:       "CH-20251124-19981",
		},
		{
			name:       "single segment key",
			identifier: "CHALLAN-CH001-1764448963246",
			want:       "CH001",
		},
		{
			name:       "surrounding whitespace is trimmed",
			identifier: "  CHALLAN-CH-001-1764448963246 ",
			want:       "CH-001",
		},
		{
			name:       "only tag and timestamp",
			identifier: "CHALLAN-1764448963246",
			wantErr:    true,
		},
		{
			name:       "exactly two segments",
			identifier: "A-B",
			wantErr:    true,
		},
		{
			name:       "empty key between separators",
			identifier: "CHALLAN--1764448963246",
			wantErr:    true,
		},
		{
			name:       "empty identifier",
			identifier: "",
			wantErr:    true,
		},
		{
			name:       "no separators",
			identifier: "CHALLAN",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecordKey(tt.identifier)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseRecordKey(%q) expected error, got %q", tt.identifier, got.String())
				}
				if !errors.Is(err, domain.ErrInvalidIdentifier) {
					t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRecordKey(%q) unexpected error: %v", tt.identifier, err)
			}
			if got.String() != tt.want {
				t.Fatalf("ParseRecordKey(%q) = %q, want %q", tt.identifier, got.String(), tt.want)
			}
		})
	}
}

func TestParseRecordKey_roundTrip(t *testing.T) {
	keys := []string{"CH-001", "CH-20251124-19981", "X", "a-b-c-d"}
	for _, key := range keys {
		got, err := ParseRecordKey("CHALLAN-" + key + "-1764448963246")
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", key, err)
		}
		if got.String() != key {
			t.Fatalf("round trip of %q gave %q", key, got.String())
		}
	}
}

func TestRecordKey_Equals(t *testing.T) {
	k1, _ := NewRecordKey("CH-001")
	k2, _ := ParseRecordKey("CHALLAN-CH-001-1")
	k3, _ := NewRecordKey("CH-002")

	if !k1.Equals(k2) {
		t.Fatal("expected CH-001 to equal CH-001")
	}
	if k1.Equals(k3) {
		t.Fatal("expected CH-001 to not equal CH-002")
	}
}

func TestNewRecordKey_empty(t *testing.T) {
	if _, err := NewRecordKey("   "); !errors.Is(err, domain.ErrInvalidIdentifier) {
		t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
	}
}
