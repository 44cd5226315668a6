package pricing

import "testing"

func TestTotal(t *testing.T) {
	tests := []struct {
		name     string
		standard int
		lowChol  int
		want     int
	}{
		{name: "one lot of standard", standard: 10, lowChol: 0, want: 50},
		{name: "one lot of low chol", standard: 0, lowChol: 10, want: 70},
		{name: "mixed", standard: 10, lowChol: 10, want: 120},
		{name: "zero", standard: 0, lowChol: 0, want: 0},
		{name: "large order", standard: 40, lowChol: 20, want: 340},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Total(tt.standard, tt.lowChol)
			if got != tt.want {
				t.Fatalf("Total(%d, %d) = %d, want %d", tt.standard, tt.lowChol, got, tt.want)
			}
		})
	}
}
