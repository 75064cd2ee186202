package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/apperr"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/money"
)

// factorPlaces bounds the precision of (1+r)^n while it is accumulated.
const factorPlaces = 20

var maxAnnualRate = decimal.NewFromInt(100)

// AmortizationEntry is an immutable value object representing one period in an
// amortization schedule.
type AmortizationEntry struct {
	PaymentDate      time.Time
	PaymentAmount    decimal.Decimal
	PrincipalPayment decimal.Decimal
	InterestPayment  decimal.Decimal
	RemainingBalance decimal.Decimal
	PaymentNumber    int
}

// ComputeMonthlyPayment returns the fixed installment for a fully amortizing
// loan:
//
//	r       = annualRatePct / 12 / 100
//	payment = P * r * (1+r)^n / ((1+r)^n - 1)
//
// A zero rate is straight-line: P / n.
func ComputeMonthlyPayment(principal, annualRatePct decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	if err := validateTerms(principal, annualRatePct, termMonths); err != nil {
		return decimal.Zero, err
	}

	n := decimal.NewFromInt(int64(termMonths))
	r := money.MonthlyRate(annualRatePct)
	if r.IsZero() {
		return principal.Div(n).Round(internalPlaces), nil
	}

	factor := compoundFactor(r, termMonths)
	payment := principal.Mul(r).Mul(factor).Div(factor.Sub(decimal.NewFromInt(1)))
	return payment.Round(internalPlaces), nil
}

// GenerateSchedule computes the contractual plan for a loan from its original
// terms. Entry i is due startDate + 30*i days. The final entry takes whatever
// balance is left as its principal so the schedule always closes at zero.
func GenerateSchedule(
	principal, annualRatePct decimal.Decimal,
	termMonths int,
	startDate time.Time,
) ([]AmortizationEntry, error) {
	payment, err := ComputeMonthlyPayment(principal, annualRatePct, termMonths)
	if err != nil {
		return nil, err
	}

	r := money.MonthlyRate(annualRatePct)
	remaining := principal
	schedule := make([]AmortizationEntry, 0, termMonths)

	for i := 1; i <= termMonths; i++ {
		interest := remaining.Mul(r).Round(internalPlaces)
		principalPart := payment.Sub(interest)
		amount := payment

		if i == termMonths || principalPart.GreaterThan(remaining) {
			principalPart = remaining
			amount = principalPart.Add(interest)
		}

		remaining = money.Max(remaining.Sub(principalPart), decimal.Zero)

		schedule = append(schedule, AmortizationEntry{
			PaymentNumber:    i,
			PaymentDate:      AddDays(startDate, DaysPerPeriod*i),
			PaymentAmount:    amount,
			PrincipalPayment: principalPart,
			InterestPayment:  interest,
			RemainingBalance: remaining,
		})
	}

	return schedule, nil
}

// EndDate is the start date advanced by termMonths 30-day periods.
func EndDate(startDate time.Time, termMonths int) time.Time {
	return AddDays(startDate, DaysPerPeriod*termMonths)
}

func compoundFactor(r decimal.Decimal, n int) decimal.Decimal {
	base := decimal.NewFromInt(1).Add(r)
	factor := decimal.NewFromInt(1)
	for i := 0; i < n; i++ {
		factor = factor.Mul(base).Round(factorPlaces)
	}
	return factor
}

func validateTerms(principal, annualRatePct decimal.Decimal, termMonths int) error {
	if !principal.IsPositive() {
		return apperr.Validation("INVALID_PRINCIPAL", "principal must be positive, got %s", principal)
	}
	if termMonths <= 0 {
		return apperr.Validation("INVALID_TERM", "term months must be positive, got %d", termMonths)
	}
	if annualRatePct.IsNegative() || annualRatePct.GreaterThan(maxAnnualRate) {
		return apperr.Validation("INVALID_RATE", "interest rate must be between 0 and 100, got %s", annualRatePct)
	}
	return nil
}
