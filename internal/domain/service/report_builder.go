package service

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/valueobject"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/money"
)

// DefaultTopDefaulters is the number of loans listed in a report's
// top_defaulters section when none is configured.
const DefaultTopDefaulters = 5

// ---------------------------------------------------------------------------
// ReportBuilder – read-only aggregation over loans and payments
// ---------------------------------------------------------------------------

// ReportBuilder composes report documents from loan and payment snapshots.
// It holds no state beyond its settings and never mutates its inputs.
type ReportBuilder struct {
	topDefaulters         int
	projectedLateFeeRatio decimal.Decimal
}

// NewReportBuilder returns a builder listing topDefaulters loans per report.
// Non-positive values fall back to DefaultTopDefaulters.
func NewReportBuilder(topDefaulters int) *ReportBuilder {
	if topDefaulters <= 0 {
		topDefaulters = DefaultTopDefaulters
	}
	return &ReportBuilder{
		topDefaulters:         topDefaulters,
		projectedLateFeeRatio: decimal.NewFromInt(5),
	}
}

// MonthlyReport aggregates a calendar month.
//
// payments must be the payments whose payment date falls in the month window;
// cancelled ones are ignored. loans must be the open portfolio (ACTIVE and
// DEFAULT). today drives the "late" predicate and days overdue.
func (b *ReportBuilder) MonthlyReport(
	year int,
	month time.Month,
	loans []model.Loan,
	payments []model.LoanPayment,
	today, now time.Time,
) model.MonthlyReport {
	start, end := model.MonthWindow(year, month)

	return model.MonthlyReport{
		Period: model.ReportPeriod{
			Month:     int(month),
			Year:      year,
			StartDate: start.Format(time.DateOnly),
			EndDate:   end.Format(time.DateOnly),
		},
		LoanSummary:         portfolioSummary(loans),
		PaymentAnalysis:     paymentAnalysis(payments, today),
		FinancialSummary:    financialSummary(loans, payments),
		NextMonthProjection: b.projection(loans),
		TopDefaulters:       b.defaulters(loans, today),
		GeneratedAt:         now,
	}
}

func portfolioSummary(loans []model.Loan) model.PortfolioSummary {
	var s model.PortfolioSummary
	for _, l := range loans {
		switch {
		case l.Status().Equal(valueobject.LoanStatusActive):
			s.ActiveLoans++
		case l.Status().Equal(valueobject.LoanStatusDefault):
			s.DefaultedLoans++
		default:
			continue
		}
		s.TotalLoans++
	}
	s.DelinquencyRate = money.Cents(money.RatioInt(s.DefaultedLoans, s.TotalLoans))
	return s
}

func paymentAnalysis(payments []model.LoanPayment, today time.Time) model.PaymentAnalysis {
	var a model.PaymentAnalysis
	for _, p := range payments {
		if p.Status().Equal(valueobject.PaymentStatusCancelled) {
			continue
		}
		a.TotalPayments++
		if p.IsCompleted() {
			a.CompletedPayments++
		}
		if p.IsLate(today) {
			a.LatePayments++
		}
	}
	a.OnTimeRate = money.Cents(money.RatioInt(a.CompletedPayments, a.TotalPayments))
	return a
}

func financialSummary(loans []model.Loan, payments []model.LoanPayment) model.FinancialSummary {
	amount, principal, interest, fees := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for _, p := range payments {
		if !p.IsCompleted() {
			continue
		}
		amount = amount.Add(p.Amount())
		principal = principal.Add(p.Principal())
		interest = interest.Add(p.Interest())
		fees = fees.Add(p.LateFee())
	}

	overdue := decimal.Zero
	for _, l := range loans {
		if l.Status().Equal(valueobject.LoanStatusDefault) {
			overdue = overdue.Add(l.RemainingBalance())
		}
	}

	return model.FinancialSummary{
		TotalAmountPaid:    money.Cents(amount),
		TotalPrincipalPaid: money.Cents(principal),
		TotalInterestPaid:  money.Cents(interest),
		TotalLateFees:      money.Cents(fees),
		TotalOverdue:       money.Cents(overdue),
	}
}

// projection expects one full installment from every open loan, split at
// the current balance. The principal share is not capped at the balance, so a
// loan in its last period still projects a whole installment. DEFAULT loans
// add a flat base late fee on top.
func (b *ReportBuilder) projection(loans []model.Loan) model.Projection {
	principal, interest, fees := decimal.Zero, decimal.Zero, decimal.Zero
	for _, l := range loans {
		if !l.Status().AcceptsPayments() {
			continue
		}
		periodInterest := l.PeriodInterest()
		interest = interest.Add(periodInterest)
		principal = principal.Add(l.MonthlyPayment().Sub(periodInterest))
		if l.Status().Equal(valueobject.LoanStatusDefault) {
			fees = fees.Add(money.PercentOf(l.MonthlyPayment(), b.projectedLateFeeRatio))
		}
	}

	return model.Projection{
		ExpectedPrincipal: money.Cents(principal),
		ExpectedInterest:  money.Cents(interest),
		ExpectedLateFees:  money.Cents(fees),
		TotalExpected:     money.Cents(money.Sum(principal, interest, fees)),
	}
}

func (b *ReportBuilder) defaulters(loans []model.Loan, today time.Time) []model.Defaulter {
	var defaulted []model.Loan
	for _, l := range loans {
		if l.Status().Equal(valueobject.LoanStatusDefault) {
			defaulted = append(defaulted, l)
		}
	}
	sort.SliceStable(defaulted, func(i, j int) bool {
		return defaulted[i].RemainingBalance().GreaterThan(defaulted[j].RemainingBalance())
	})
	if len(defaulted) > b.topDefaulters {
		defaulted = defaulted[:b.topDefaulters]
	}

	out := make([]model.Defaulter, 0, len(defaulted))
	for _, l := range defaulted {
		out = append(out, model.Defaulter{
			LoanID:           l.ID(),
			LoanNumber:       l.LoanNumber(),
			RemainingBalance: money.Cents(l.RemainingBalance()),
			DaysOverdue:      daysOverdue(l, today),
			OriginalAmount:   money.Cents(l.Principal()),
		})
	}
	return out
}

// daysOverdue counts days since the last payment; a loan that never received
// one reports zero.
func daysOverdue(l model.Loan, today time.Time) int {
	if l.LastPaymentDate().IsZero() {
		return 0
	}
	if d := model.DaysBetween(l.LastPaymentDate(), today); d > 0 {
		return d
	}
	return 0
}

// ---------------------------------------------------------------------------
// Per-loan metrics
// ---------------------------------------------------------------------------

// Performance computes repayment metrics from a loan and all its payments.
// A completed payment that carried a late fee counts as late.
func (b *ReportBuilder) Performance(loan model.Loan, payments []model.LoanPayment) model.LoanPerformance {
	totalPaid, fees := decimal.Zero, decimal.Zero
	completed, late := 0, 0
	for _, p := range payments {
		if !p.IsCompleted() {
			continue
		}
		completed++
		totalPaid = totalPaid.Add(p.Amount())
		fees = fees.Add(p.LateFee())
		if p.LateFee().IsPositive() {
			late++
		}
	}

	return model.LoanPerformance{
		LoanID:            loan.ID(),
		TotalPaid:         money.Cents(totalPaid),
		TotalLateFees:     money.Cents(fees),
		CompletedPayments: completed,
		LatePayments:      late,
		OnTimeRate:        money.Cents(money.RatioInt(completed-late, completed)),
		Progress:          money.Cents(loan.Progress()),
		Status:            loan.Status().String(),
		RemainingBalance:  money.Cents(loan.RemainingBalance()),
		NextPaymentDate:   loan.NextPaymentDate(),
	}
}

// Summary computes the repayment position of a loan. The next payment is the
// earliest pending payment due on or after today.
func (b *ReportBuilder) Summary(loan model.Loan, payments []model.LoanPayment, today time.Time) model.LoanSummary {
	s := model.LoanSummary{
		LoanID:           loan.ID(),
		LoanNumber:       loan.LoanNumber(),
		Status:           loan.Status().String(),
		PrincipalAmount:  loan.Principal(),
		RemainingBalance: loan.RemainingBalance(),
		MonthlyPayment:   loan.MonthlyPayment(),
		TotalPaid:        decimal.Zero,
		PrincipalPaid:    decimal.Zero,
		InterestPaid:     decimal.Zero,
		LateFeesPaid:     decimal.Zero,
	}

	day := model.DateOf(today)
	var next *model.LoanPayment
	for i := range payments {
		p := payments[i]
		if p.IsCompleted() {
			s.PaymentsMade++
			s.TotalPaid = s.TotalPaid.Add(p.Amount())
			s.PrincipalPaid = s.PrincipalPaid.Add(p.Principal())
			s.InterestPaid = s.InterestPaid.Add(p.Interest())
			s.LateFeesPaid = s.LateFeesPaid.Add(p.LateFee())
			continue
		}
		if p.IsPending() && !p.DueDate().Before(day) {
			if next == nil || p.DueDate().Before(next.DueDate()) {
				next = &payments[i]
			}
		}
	}

	if next != nil {
		s.HasPendingPayment = true
		s.NextPaymentDate = next.DueDate()
		s.NextPaymentAmount = next.Amount()
	}
	if remaining := loan.TermMonths() - s.PaymentsMade; remaining > 0 {
		s.RemainingPayments = remaining
	}
	return s
}
