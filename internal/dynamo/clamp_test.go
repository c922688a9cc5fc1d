package dynamo

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		v        float64
		expected float64
	}{
		{"inside", 3.5, 3.5},
		{"below", -2, 0},
		{"above", 100, 72},
		{"lower edge", 0, 0},
		{"upper edge", 72, 72},
		{"+Inf", math.Inf(1), 72},
		{"-Inf", math.Inf(-1), 0},
		{"NaN", math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.v, 0, 72); got != tt.expected {
				t.Errorf("Clamp(%v) = %v, want %v", tt.v, got, tt.expected)
			}
		})
	}
}

func TestSign(t *testing.T) {
	if Sign(5) != 1 || Sign(-0.1) != -1 || Sign(0) != 0 {
		t.Error("Sign returned wrong values")
	}
}
