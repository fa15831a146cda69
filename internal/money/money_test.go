package money

import "testing"

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{3.333333, 3.33},
		{3.335, 3.34},
		{100.0, 100.0},
		{-2.005, -2.01},
		{0, 0},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWithinTolerance(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		want bool
	}{
		{"exact", 100.00, 100.00, true},
		{"one cent over", 100.01, 100.00, true},
		{"one cent under", 99.99, 100.00, true},
		{"fifty cents under", 99.50, 100.00, false},
		{"fifty cents over", 100.50, 100.00, false},
		{"two cents over", 100.02, 100.00, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinTolerance(tt.a, tt.b); got != tt.want {
				t.Errorf("WithinTolerance(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSumAvoidsFloatDrift(t *testing.T) {
	// 0.1 added ten times drifts in raw float64 arithmetic.
	amounts := make([]float64, 10)
	for i := range amounts {
		amounts[i] = 0.1
	}
	if got := Sum(amounts); got != 1.0 {
		t.Errorf("Sum = %v, want exactly 1.0", got)
	}
}

func TestIsZero(t *testing.T) {
	if !IsZero(0.01) {
		t.Error("IsZero(0.01) = false, want true")
	}
	if IsZero(0.02) {
		t.Error("IsZero(0.02) = true, want false")
	}
}
