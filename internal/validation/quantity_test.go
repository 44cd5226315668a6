package validation

import (
	"errors"
	"testing"
)

func TestValidateOrderQuantity(t *testing.T) {
	tests := []struct {
		name     string
		standard int
		lowChol  int
		wantErr  error
	}{
		{name: "one lot", standard: 10, lowChol: 0, wantErr: nil},
		{name: "two lots mixed", standard: 10, lowChol: 10, wantErr: nil},
		{name: "no upper cap for orders", standard: 30, lowChol: 20, wantErr: nil},
		{name: "zero", standard: 0, lowChol: 0, wantErr: ErrBelowMinimum},
		{name: "below minimum", standard: 5, lowChol: 0, wantErr: ErrBelowMinimum},
		{name: "not a multiple", standard: 10, lowChol: 5, wantErr: ErrNotMultiple},
		{name: "negative standard", standard: -10, lowChol: 20, wantErr: ErrNegativeQuantity},
		{name: "negative low chol", standard: 20, lowChol: -10, wantErr: ErrNegativeQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOrderQuantity(tt.standard, tt.lowChol)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateOrderQuantity(%d, %d) = %v, want %v", tt.standard, tt.lowChol, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePreorderQuantity(t *testing.T) {
	tests := []struct {
		name     string
		standard int
		lowChol  int
		wantErr  error
	}{
		{name: "one lot", standard: 10, lowChol: 0, wantErr: nil},
		{name: "exactly at cap", standard: 10, lowChol: 10, wantErr: nil},
		{name: "over per-request cap", standard: 15, lowChol: 10, wantErr: ErrExceedsRequestCap},
		{name: "thirty is too much", standard: 30, lowChol: 0, wantErr: ErrExceedsRequestCap},
		{name: "below minimum", standard: 0, lowChol: 5, wantErr: ErrBelowMinimum},
		{name: "not a multiple", standard: 11, lowChol: 0, wantErr: ErrNotMultiple},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePreorderQuantity(tt.standard, tt.lowChol)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidatePreorderQuantity(%d, %d) = %v, want %v", tt.standard, tt.lowChol, err, tt.wantErr)
			}
		})
	}
}
