package domain

import "testing"

func TestIsSuccessStatus(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"000", true},
		{"00", true},
		{"0", false},
		{"500", false},
		{"", false},
		{"0000", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := IsSuccessStatus(tt.code); got != tt.want {
				t.Fatalf("IsSuccessStatus(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}
