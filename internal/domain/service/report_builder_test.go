package service_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/service"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/valueobject"
)

var (
	start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	today = time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func loanWith(id string, status valueobject.LoanStatus, balance, monthly string, lastPayment time.Time) model.Loan {
	return model.ReconstructLoan(model.LoanSnapshot{
		ID:         id,
		LoanNumber: "LN-" + id,
		Terms: model.LoanTerms{
			StartDate:    start,
			Type:         valueobject.LoanTypeMortgage,
			Principal:    dec("100000"),
			InterestRate: dec("6"),
			TermMonths:   120,
			PaymentDay:   1,
		},
		MonthlyPayment:   dec(monthly),
		Status:           status,
		RemainingBalance: dec(balance),
		LastPaymentDate:  lastPayment,
		Version:          1,
	})
}

func paymentWith(id string, status valueobject.PaymentStatus, due time.Time, amount, principal, interest, fee string) model.LoanPayment {
	return model.ReconstructLoanPayment(model.PaymentSnapshot{
		ID:     id,
		LoanID: "a",
		Details: model.PaymentDetails{
			PaymentDate: due,
			DueDate:     due,
			Amount:      dec(amount),
			LateFee:     dec(fee),
			Method:      valueobject.PaymentMethodCash,
		},
		Principal: dec(principal),
		Interest:  dec(interest),
		Status:    status,
		Version:   1,
	})
}

func TestReportBuilder_MonthlyReport(t *testing.T) {
	b := service.NewReportBuilder(0)
	march := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	loans := []model.Loan{
		loanWith("a", valueobject.LoanStatusActive, "100000", "1110.21", time.Time{}),
		loanWith("b", valueobject.LoanStatusDefault, "50000", "1110.21", time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)),
		loanWith("c", valueobject.LoanStatusDefault, "80000", "1110.21", time.Time{}),
		loanWith("d", valueobject.LoanStatusActive, "20000", "1110.21", time.Time{}),
	}
	payments := []model.LoanPayment{
		paymentWith("p1", valueobject.PaymentStatusCompleted, march, "1110.21", "610.21", "500", "0"),
		paymentWith("p2", valueobject.PaymentStatusCompleted, march.AddDate(0, 0, 4), "1200", "600", "550", "50"),
		paymentWith("p3", valueobject.PaymentStatusPending, march.AddDate(0, 0, 9), "1110.21", "610.21", "500", "0"),
		paymentWith("p4", valueobject.PaymentStatusPending, march.AddDate(0, 0, 25), "1110.21", "610.21", "500", "0"),
		paymentWith("p5", valueobject.PaymentStatusCancelled, march.AddDate(0, 0, 2), "999", "499", "500", "0"),
	}

	r := b.MonthlyReport(2024, time.March, loans, payments, today, today)

	assert.Equal(t, model.ReportPeriod{Month: 3, Year: 2024, StartDate: "2024-03-01", EndDate: "2024-04-01"}, r.Period)

	assert.Equal(t, 4, r.LoanSummary.TotalLoans)
	assert.Equal(t, 2, r.LoanSummary.ActiveLoans)
	assert.Equal(t, 2, r.LoanSummary.DefaultedLoans)
	assert.True(t, dec("50").Equal(r.LoanSummary.DelinquencyRate))

	assert.Equal(t, 4, r.PaymentAnalysis.TotalPayments, "cancelled payments are excluded")
	assert.Equal(t, 2, r.PaymentAnalysis.CompletedPayments)
	assert.Equal(t, 1, r.PaymentAnalysis.LatePayments, "only p3 is pending past due")
	assert.True(t, dec("50").Equal(r.PaymentAnalysis.OnTimeRate))

	assert.True(t, dec("2310.21").Equal(r.FinancialSummary.TotalAmountPaid))
	assert.True(t, dec("1210.21").Equal(r.FinancialSummary.TotalPrincipalPaid))
	assert.True(t, dec("1050").Equal(r.FinancialSummary.TotalInterestPaid))
	assert.True(t, dec("50").Equal(r.FinancialSummary.TotalLateFees))
	assert.True(t, dec("130000").Equal(r.FinancialSummary.TotalOverdue))

	// interest: 500 + 250 + 400 + 100 = 1250
	// principal: 610.21 + 860.21 + 710.21 + 1010.21 = 3190.84
	// late fees: 2 * 55.5105 = 111.021
	assert.True(t, dec("1250").Equal(r.NextMonthProjection.ExpectedInterest))
	assert.True(t, dec("3190.84").Equal(r.NextMonthProjection.ExpectedPrincipal))
	assert.True(t, dec("111.02").Equal(r.NextMonthProjection.ExpectedLateFees))
	assert.True(t, dec("4551.86").Equal(r.NextMonthProjection.TotalExpected))

	require.Len(t, r.TopDefaulters, 2)
	assert.Equal(t, "c", r.TopDefaulters[0].LoanID, "largest balance first")
	assert.Equal(t, 0, r.TopDefaulters[0].DaysOverdue, "never paid")
	assert.Equal(t, "b", r.TopDefaulters[1].LoanID)
	assert.Equal(t, 60, r.TopDefaulters[1].DaysOverdue)
	assert.True(t, dec("100000").Equal(r.TopDefaulters[1].OriginalAmount))
}

func TestReportBuilder_MonthlyReport_Empty(t *testing.T) {
	r := service.NewReportBuilder(5).MonthlyReport(2023, time.December, nil, nil, today, today)

	assert.Equal(t, "2023-12-01", r.Period.StartDate)
	assert.Equal(t, "2024-01-01", r.Period.EndDate)
	assert.Equal(t, 0, r.LoanSummary.TotalLoans)
	assert.True(t, r.LoanSummary.DelinquencyRate.IsZero())
	assert.True(t, r.PaymentAnalysis.OnTimeRate.IsZero())
	assert.True(t, r.NextMonthProjection.TotalExpected.IsZero())
	assert.Empty(t, r.TopDefaulters)
}

func TestReportBuilder_ProjectionFinalInstallment(t *testing.T) {
	loans := []model.Loan{loanWith("a", valueobject.LoanStatusActive, "300", "1110.21", time.Time{})}

	r := service.NewReportBuilder(0).MonthlyReport(2024, time.March, loans, nil, today, today)

	// interest 300 * 0.005 = 1.5; principal is the rest of the installment
	assert.True(t, dec("1.5").Equal(r.NextMonthProjection.ExpectedInterest))
	assert.True(t, dec("1108.71").Equal(r.NextMonthProjection.ExpectedPrincipal))
	assert.True(t, dec("1110.21").Equal(r.NextMonthProjection.TotalExpected))
}

func TestReportBuilder_TopDefaultersLimit(t *testing.T) {
	var loans []model.Loan
	for i, balance := range []string{"100", "700", "300", "900", "500", "200"} {
		loans = append(loans, loanWith(string(rune('a'+i)), valueobject.LoanStatusDefault, balance, "50", time.Time{}))
	}

	r := service.NewReportBuilder(3).MonthlyReport(2024, time.March, loans, nil, today, today)

	require.Len(t, r.TopDefaulters, 3)
	assert.True(t, dec("900").Equal(r.TopDefaulters[0].RemainingBalance))
	assert.True(t, dec("700").Equal(r.TopDefaulters[1].RemainingBalance))
	assert.True(t, dec("500").Equal(r.TopDefaulters[2].RemainingBalance))
}

func TestReportBuilder_Performance(t *testing.T) {
	b := service.NewReportBuilder(0)
	next := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	loan := model.ReconstructLoan(model.LoanSnapshot{
		ID:               "a",
		Terms:            model.LoanTerms{Principal: dec("100000"), InterestRate: dec("6"), TermMonths: 120},
		Status:           valueobject.LoanStatusActive,
		RemainingBalance: dec("75000"),
		NextPaymentDate:  next,
	})
	payments := []model.LoanPayment{
		paymentWith("p1", valueobject.PaymentStatusCompleted, start, "1000", "500", "500", "0"),
		paymentWith("p2", valueobject.PaymentStatusCompleted, start, "1000", "445", "500", "55"),
		paymentWith("p3", valueobject.PaymentStatusCompleted, start, "1000", "500", "500", "0"),
		paymentWith("p4", valueobject.PaymentStatusCompleted, start, "1000", "500", "500", "0"),
		paymentWith("p5", valueobject.PaymentStatusPending, start, "1000", "500", "500", "0"),
	}

	m := b.Performance(loan, payments)

	assert.True(t, dec("4000").Equal(m.TotalPaid))
	assert.True(t, dec("55").Equal(m.TotalLateFees))
	assert.Equal(t, 4, m.CompletedPayments)
	assert.Equal(t, 1, m.LatePayments)
	assert.True(t, dec("75").Equal(m.OnTimeRate))
	assert.True(t, dec("25").Equal(m.Progress))
	assert.Equal(t, "ACTIVE", m.Status)
	assert.Equal(t, next, m.NextPaymentDate)

	empty := b.Performance(loan, nil)
	assert.True(t, empty.OnTimeRate.IsZero())
}

func TestReportBuilder_Summary(t *testing.T) {
	b := service.NewReportBuilder(0)
	loan := loanWith("a", valueobject.LoanStatusActive, "98779.58", "1110.21", start.AddDate(0, 2, 0))
	payments := []model.LoanPayment{
		paymentWith("p1", valueobject.PaymentStatusCompleted, start.AddDate(0, 1, 0), "1110.21", "610.21", "500", "0"),
		paymentWith("p2", valueobject.PaymentStatusCompleted, start.AddDate(0, 2, 0), "1110.21", "613.26", "496.95", "0"),
		paymentWith("p3", valueobject.PaymentStatusPending, today.AddDate(0, 0, 40), "1110.21", "616.33", "493.88", "0"),
		paymentWith("p4", valueobject.PaymentStatusPending, today.AddDate(0, 0, 10), "1200", "700", "500", "0"),
		paymentWith("p5", valueobject.PaymentStatusPending, today.AddDate(0, 0, -3), "1110.21", "610.21", "500", "0"),
	}

	s := b.Summary(loan, payments, today)

	assert.Equal(t, 2, s.PaymentsMade)
	assert.Equal(t, 118, s.RemainingPayments)
	assert.True(t, dec("2220.42").Equal(s.TotalPaid))
	assert.True(t, dec("1223.47").Equal(s.PrincipalPaid))
	assert.True(t, dec("996.95").Equal(s.InterestPaid))
	assert.True(t, s.LateFeesPaid.IsZero())
	require.True(t, s.HasPendingPayment)
	assert.Equal(t, today.AddDate(0, 0, 10), s.NextPaymentDate)
	assert.True(t, dec("1200").Equal(s.NextPaymentAmount))
}
