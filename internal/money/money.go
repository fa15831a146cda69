// Package money centralizes the decimal arithmetic used for split validation
// and payment rounding. Amounts travel through the system as float64; the
// comparisons and rounding that decide correctness go through decimals so
// they are exact.
package money

import "github.com/shopspring/decimal"

// Tolerance is the acceptance band for split-sum and zero-balance checks.
// Two cents of drift would already indicate a real mismatch; one cent covers
// rounding of equal splits.
var Tolerance = decimal.NewFromFloat(0.01)

// Round2 rounds an amount to two decimal places.
func Round2(amount float64) float64 {
	f, _ := decimal.NewFromFloat(amount).Round(2).Float64()
	return f
}

// Sum adds a list of amounts without accumulating float error.
func Sum(amounts []float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	f, _ := total.Float64()
	return f
}

// WithinTolerance reports whether two amounts differ by at most Tolerance.
func WithinTolerance(a, b float64) bool {
	diff := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs()
	return diff.LessThanOrEqual(Tolerance)
}

// IsZero reports whether an amount sits inside the zero band.
func IsZero(amount float64) bool {
	return decimal.NewFromFloat(amount).Abs().LessThanOrEqual(Tolerance)
}
