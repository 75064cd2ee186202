package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/money"
)

// LateFeePolicy describes how penalties grow once a payment is overdue.
// All percentages are of the payment amount.
type LateFeePolicy struct {
	BasePct   decimal.Decimal
	DailyPct  decimal.Decimal
	CapPct    decimal.Decimal
	GraceDays int
}

// DefaultLateFeePolicy charges 5% once late, 0.1% per day past a 5-day grace
// period, capped at 30%.
func DefaultLateFeePolicy() LateFeePolicy {
	return LateFeePolicy{
		BasePct:   decimal.NewFromInt(5),
		DailyPct:  decimal.RequireFromString("0.1"),
		CapPct:    decimal.NewFromInt(30),
		GraceDays: 5,
	}
}

// Fee computes the penalty for amount due on dueDate, evaluated at asOf.
// The result depends only on its inputs: calling it again later yields the
// new total, never an increment over a previous result.
func (p LateFeePolicy) Fee(amount decimal.Decimal, dueDate, asOf time.Time) decimal.Decimal {
	daysLate := DaysBetween(dueDate, asOf)
	if daysLate <= 0 {
		return decimal.Zero
	}

	fee := money.PercentOf(amount, p.BasePct)
	if extraDays := daysLate - p.GraceDays; extraDays > 0 {
		daily := money.PercentOf(amount, p.DailyPct)
		fee = fee.Add(daily.Mul(decimal.NewFromInt(int64(extraDays))))
	}

	limit := money.PercentOf(amount, p.CapPct)
	if fee.GreaterThan(limit) {
		fee = limit
	}
	return fee.Round(internalPlaces)
}
