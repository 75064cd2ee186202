package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Report documents
// ---------------------------------------------------------------------------

// MonthlyReport is the persisted portfolio snapshot for one calendar month.
// Money values are already rounded to cents; the report is a display artifact.
type MonthlyReport struct {
	Period              ReportPeriod     `json:"period"`
	LoanSummary         PortfolioSummary `json:"loan_summary"`
	PaymentAnalysis     PaymentAnalysis  `json:"payment_analysis"`
	FinancialSummary    FinancialSummary `json:"financial_summary"`
	NextMonthProjection Projection       `json:"next_month_projection"`
	TopDefaulters       []Defaulter      `json:"top_defaulters"`
	GeneratedAt         time.Time        `json:"generated_at"`
}

// ReportPeriod is the [StartDate, EndDate) window a report covers.
type ReportPeriod struct {
	Month     int    `json:"month"`
	Year      int    `json:"year"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type PortfolioSummary struct {
	TotalLoans      int             `json:"total_loans"`
	ActiveLoans     int             `json:"active_loans"`
	DefaultedLoans  int             `json:"defaulted_loans"`
	DelinquencyRate decimal.Decimal `json:"delinquency_rate"`
}

type PaymentAnalysis struct {
	TotalPayments     int             `json:"total_payments"`
	CompletedPayments int             `json:"completed_payments"`
	LatePayments      int             `json:"late_payments"`
	OnTimeRate        decimal.Decimal `json:"on_time_rate"`
}

type FinancialSummary struct {
	TotalAmountPaid    decimal.Decimal `json:"total_amount_paid"`
	TotalPrincipalPaid decimal.Decimal `json:"total_principal_paid"`
	TotalInterestPaid  decimal.Decimal `json:"total_interest_paid"`
	TotalLateFees      decimal.Decimal `json:"total_late_fees"`
	TotalOverdue       decimal.Decimal `json:"total_overdue"`
}

// Projection is the expected collection for the month after the report.
type Projection struct {
	ExpectedPrincipal decimal.Decimal `json:"expected_principal"`
	ExpectedInterest  decimal.Decimal `json:"expected_interest"`
	ExpectedLateFees  decimal.Decimal `json:"expected_late_fees"`
	TotalExpected     decimal.Decimal `json:"total_expected"`
}

// Defaulter is one DEFAULT loan ranked by outstanding balance.
type Defaulter struct {
	LoanID           string          `json:"loan_id"`
	LoanNumber       string          `json:"loan_number"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	DaysOverdue      int             `json:"days_overdue"`
	OriginalAmount   decimal.Decimal `json:"original_amount"`
}

// PeriodKey formats a (year, month) pair as YYYY-MM.
func PeriodKey(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// ---------------------------------------------------------------------------
// Per-loan views
// ---------------------------------------------------------------------------

// LoanPerformance summarizes how a single loan has been repaid.
type LoanPerformance struct {
	LoanID            string
	TotalPaid         decimal.Decimal
	TotalLateFees     decimal.Decimal
	CompletedPayments int
	LatePayments      int
	OnTimeRate        decimal.Decimal
	Progress          decimal.Decimal
	Status            string
	RemainingBalance  decimal.Decimal
	NextPaymentDate   time.Time
}

// LoanSummary is the repayment position of a single loan.
type LoanSummary struct {
	LoanID            string
	LoanNumber        string
	Status            string
	PrincipalAmount   decimal.Decimal
	RemainingBalance  decimal.Decimal
	MonthlyPayment    decimal.Decimal
	TotalPaid         decimal.Decimal
	PrincipalPaid     decimal.Decimal
	InterestPaid      decimal.Decimal
	LateFeesPaid      decimal.Decimal
	PaymentsMade      int
	RemainingPayments int
	NextPaymentDate   time.Time
	NextPaymentAmount decimal.Decimal
	HasPendingPayment bool
}
