package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

const (
	aggregateLoan    = "Loan"
	aggregatePayment = "LoanPayment"
	aggregateReport  = "MonthlyReport"
)

// ---------------------------------------------------------------------------
// Loan Events
// ---------------------------------------------------------------------------

// LoanCreated is raised when a loan is registered.
type LoanCreated struct {
	events.BaseEvent
	LoanNumber     string          `json:"loan_number"`
	PropertyID     string          `json:"property_id"`
	Principal      decimal.Decimal `json:"principal_amount"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	TermMonths     int             `json:"term_months"`
}

func NewLoanCreated(
	loanID, loanNumber, propertyID string,
	principal, rate, monthlyPayment decimal.Decimal,
	termMonths int, now time.Time,
) LoanCreated {
	return LoanCreated{
		BaseEvent:      events.NewBaseEvent("loan.created", loanID, aggregateLoan, now),
		LoanNumber:     loanNumber,
		PropertyID:     propertyID,
		Principal:      principal,
		InterestRate:   rate,
		MonthlyPayment: monthlyPayment,
		TermMonths:     termMonths,
	}
}

// LoanTermsUpdated is raised when rate or term change and the installment is
// recomputed.
type LoanTermsUpdated struct {
	events.BaseEvent
	InterestRate   decimal.Decimal `json:"interest_rate"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	TermMonths     int             `json:"term_months"`
}

func NewLoanTermsUpdated(loanID string, rate, monthlyPayment decimal.Decimal, termMonths int, now time.Time) LoanTermsUpdated {
	return LoanTermsUpdated{
		BaseEvent:      events.NewBaseEvent("loan.terms_updated", loanID, aggregateLoan, now),
		InterestRate:   rate,
		MonthlyPayment: monthlyPayment,
		TermMonths:     termMonths,
	}
}

// LoanStatusChanged is raised on every loan status transition.
type LoanStatusChanged struct {
	events.BaseEvent
	From             string          `json:"from"`
	To               string          `json:"to"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

func NewLoanStatusChanged(loanID, from, to string, balance decimal.Decimal, now time.Time) LoanStatusChanged {
	return LoanStatusChanged{
		BaseEvent:        events.NewBaseEvent("loan.status_changed", loanID, aggregateLoan, now),
		From:             from,
		To:               to,
		RemainingBalance: balance,
	}
}

// LoanBalanceReduced is raised when a processed payment is folded into the loan.
type LoanBalanceReduced struct {
	events.BaseEvent
	PaymentID        string          `json:"payment_id"`
	PrincipalApplied decimal.Decimal `json:"principal_applied"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

func NewLoanBalanceReduced(loanID, paymentID string, principal, balance decimal.Decimal, now time.Time) LoanBalanceReduced {
	return LoanBalanceReduced{
		BaseEvent:        events.NewBaseEvent("loan.balance_reduced", loanID, aggregateLoan, now),
		PaymentID:        paymentID,
		PrincipalApplied: principal,
		RemainingBalance: balance,
	}
}

// ---------------------------------------------------------------------------
// Payment Events
// ---------------------------------------------------------------------------

// PaymentCreated is raised when a pending payment is registered.
type PaymentCreated struct {
	events.BaseEvent
	LoanID  string          `json:"loan_id"`
	Amount  decimal.Decimal `json:"amount"`
	DueDate time.Time       `json:"due_date"`
}

func NewPaymentCreated(paymentID, loanID string, amount decimal.Decimal, dueDate, now time.Time) PaymentCreated {
	return PaymentCreated{
		BaseEvent: events.NewBaseEvent("loan.payment.created", paymentID, aggregatePayment, now),
		LoanID:    loanID,
		Amount:    amount,
		DueDate:   dueDate,
	}
}

// LateFeeApplied is raised when a recomputed late fee changes a payment.
type LateFeeApplied struct {
	events.BaseEvent
	LoanID   string          `json:"loan_id"`
	LateFee  decimal.Decimal `json:"late_fee"`
	DaysLate int             `json:"days_late"`
}

func NewLateFeeApplied(paymentID, loanID string, fee decimal.Decimal, daysLate int, now time.Time) LateFeeApplied {
	return LateFeeApplied{
		BaseEvent: events.NewBaseEvent("loan.payment.late_fee_applied", paymentID, aggregatePayment, now),
		LoanID:    loanID,
		LateFee:   fee,
		DaysLate:  daysLate,
	}
}

// PaymentProcessed is raised when a payment completes.
type PaymentProcessed struct {
	events.BaseEvent
	LoanID    string          `json:"loan_id"`
	Amount    decimal.Decimal `json:"amount"`
	Principal decimal.Decimal `json:"principal_amount"`
	Interest  decimal.Decimal `json:"interest_amount"`
	LateFee   decimal.Decimal `json:"late_fee"`
	Actor     string          `json:"processed_by"`
}

func NewPaymentProcessed(
	paymentID, loanID string,
	amount, principal, interest, lateFee decimal.Decimal,
	actor string, now time.Time,
) PaymentProcessed {
	return PaymentProcessed{
		BaseEvent: events.NewBaseEvent("loan.payment.processed", paymentID, aggregatePayment, now),
		LoanID:    loanID,
		Amount:    amount,
		Principal: principal,
		Interest:  interest,
		LateFee:   lateFee,
		Actor:     actor,
	}
}

// PaymentCancelled is raised when a pending payment is cancelled.
type PaymentCancelled struct {
	events.BaseEvent
	LoanID string `json:"loan_id"`
	Reason string `json:"reason"`
}

func NewPaymentCancelled(paymentID, loanID, reason string, now time.Time) PaymentCancelled {
	return PaymentCancelled{
		BaseEvent: events.NewBaseEvent("loan.payment.cancelled", paymentID, aggregatePayment, now),
		LoanID:    loanID,
		Reason:    reason,
	}
}

// ---------------------------------------------------------------------------
// Report Events
// ---------------------------------------------------------------------------

// MonthlyReportGenerated is raised after a monthly report is stored.
type MonthlyReportGenerated struct {
	events.BaseEvent
	Year  int `json:"year"`
	Month int `json:"month"`
}

func NewMonthlyReportGenerated(periodKey string, year, month int, now time.Time) MonthlyReportGenerated {
	return MonthlyReportGenerated{
		BaseEvent: events.NewBaseEvent("loan.report.generated", periodKey, aggregateReport, now),
		Year:      year,
		Month:     month,
	}
}
