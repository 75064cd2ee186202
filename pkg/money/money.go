// Package money holds the decimal helpers shared by the loan engine.
// Amounts are carried unrounded internally; Cents is the display boundary.
package money

import (
	"github.com/shopspring/decimal"
)

var (
	hundred       = decimal.NewFromInt(100)
	monthsPerYear = decimal.NewFromInt(12)
)

// Cents rounds an amount to two decimal places, half away from zero.
func Cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// MonthlyRate converts an annual percentage (e.g. 6 for 6%) into the
// per-month fractional rate (0.005).
func MonthlyRate(annualPct decimal.Decimal) decimal.Decimal {
	return annualPct.Div(monthsPerYear).Div(hundred)
}

// PercentOf returns pct percent of amount.
func PercentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}

// Ratio returns part/whole*100, or zero when whole is zero.
func Ratio(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// RatioInt is Ratio over counts.
func RatioInt(part, whole int) decimal.Decimal {
	return Ratio(decimal.NewFromInt(int64(part)), decimal.NewFromInt(int64(whole)))
}

// Sum adds every value.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Max returns the larger of a and b.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}
