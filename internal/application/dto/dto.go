package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs – loans
// ---------------------------------------------------------------------------

// LoanTermsInput carries the contractual terms of a loan.
type LoanTermsInput struct {
	LoanType        string          `json:"loan_type" validate:"required,oneof=mortgage renovation equity personal business other"`
	PrincipalAmount decimal.Decimal `json:"principal_amount" validate:"gt=0"`
	InterestRate    decimal.Decimal `json:"interest_rate" validate:"gte=0,lte=100"`
	TermMonths      int             `json:"term_months" validate:"gt=0"`
	PaymentDay      int             `json:"payment_day" validate:"min=1,max=31"`
	StartDate       time.Time       `json:"start_date" validate:"required"`
}

// LenderInput carries free-form lender metadata.
type LenderInput struct {
	LenderName    string `json:"lender_name" validate:"max=200"`
	LenderContact string `json:"lender_contact" validate:"max=200"`
	Notes         string `json:"notes"`
}

// CreateLoanRequest carries the data needed to register a new loan.
type CreateLoanRequest struct {
	LoanNumber string `json:"loan_number" validate:"required,max=50"`
	PropertyID string `json:"property_id" validate:"required"`
	BorrowerID string `json:"borrower_id"`
	LoanTermsInput
	LenderInput
	Actor string `json:"actor" validate:"required"`
}

// UpdateLoanRequest carries editable loan fields. Nil fields are left as is.
type UpdateLoanRequest struct {
	LoanID        string           `json:"loan_id" validate:"required"`
	PropertyID    *string          `json:"property_id,omitempty"`
	LoanType      *string          `json:"loan_type,omitempty" validate:"omitempty,oneof=mortgage renovation equity personal business other"`
	InterestRate  *decimal.Decimal `json:"interest_rate,omitempty"`
	TermMonths    *int             `json:"term_months,omitempty" validate:"omitempty,gt=0"`
	PaymentDay    *int             `json:"payment_day,omitempty" validate:"omitempty,min=1,max=31"`
	LenderName    *string          `json:"lender_name,omitempty"`
	LenderContact *string          `json:"lender_contact,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
	Actor         string           `json:"actor" validate:"required"`
}

// GetLoanRequest identifies a loan.
type GetLoanRequest struct {
	LoanID string `json:"loan_id" validate:"required"`
}

// LoanActionRequest identifies a loan and who acts on it.
type LoanActionRequest struct {
	LoanID string `json:"loan_id" validate:"required"`
	Actor  string `json:"actor" validate:"required"`
}

// ListLoansRequest filters a loan listing.
type ListLoansRequest struct {
	PropertyID string   `json:"property_id,omitempty"`
	Statuses   []string `json:"statuses,omitempty" validate:"dive,oneof=PENDING ACTIVE PAID DEFAULT REFINANCED"`
	Offset     int      `json:"offset" validate:"min=0"`
	Limit      int      `json:"limit" validate:"min=0,max=500"`
}

// RefinanceLoanRequest closes a loan and opens its successor.
type RefinanceLoanRequest struct {
	LoanID        string `json:"loan_id" validate:"required"`
	NewLoanNumber string `json:"new_loan_number" validate:"required,max=50"`
	LoanTermsInput
	LenderInput
	Actor string `json:"actor" validate:"required"`
}

// ---------------------------------------------------------------------------
// Request DTOs – documents
// ---------------------------------------------------------------------------

// AddDocumentRequest attaches a document reference to a loan.
type AddDocumentRequest struct {
	LoanID       string `json:"loan_id" validate:"required"`
	DocumentType string `json:"document_type" validate:"required,max=50"`
	FileRef      string `json:"file_ref" validate:"required"`
	Description  string `json:"description"`
	Actor        string `json:"actor" validate:"required"`
}

// VerifyDocumentRequest marks a document verified.
type VerifyDocumentRequest struct {
	DocumentID string `json:"document_id" validate:"required"`
	Actor      string `json:"actor" validate:"required"`
}

// ---------------------------------------------------------------------------
// Request DTOs – payments
// ---------------------------------------------------------------------------

// CreatePaymentRequest registers a pending payment against a loan.
type CreatePaymentRequest struct {
	LoanID          string          `json:"loan_id" validate:"required"`
	Amount          decimal.Decimal `json:"amount" validate:"gt=0"`
	LateFee         decimal.Decimal `json:"late_fee" validate:"gte=0"`
	DueDate         time.Time       `json:"due_date" validate:"required"`
	PaymentDate     time.Time       `json:"payment_date" validate:"required"`
	PaymentMethod   string          `json:"payment_method" validate:"required,oneof=cash bank_transfer check card direct_debit other"`
	ReferenceNumber string          `json:"reference_number" validate:"max=100"`
	Notes           string          `json:"notes"`
	Actor           string          `json:"actor" validate:"required"`
}

// ProcessPaymentRequest completes a pending payment. A zero AsOf means today.
type ProcessPaymentRequest struct {
	PaymentID string    `json:"payment_id" validate:"required"`
	Actor     string    `json:"actor" validate:"required"`
	AsOf      time.Time `json:"as_of,omitempty"`
}

// CancelPaymentRequest cancels a pending payment.
type CancelPaymentRequest struct {
	PaymentID string `json:"payment_id" validate:"required"`
	Actor     string `json:"actor" validate:"required"`
	Reason    string `json:"reason" validate:"required,max=500"`
}

// ApplyLateFeeRequest recomputes the late fee of a pending payment.
type ApplyLateFeeRequest struct {
	PaymentID string    `json:"payment_id" validate:"required"`
	Actor     string    `json:"actor" validate:"required"`
	AsOf      time.Time `json:"as_of,omitempty"`
}

// UpdateLatePaymentsRequest recomputes late fees for every overdue pending
// payment.
type UpdateLatePaymentsRequest struct {
	Actor string    `json:"actor" validate:"required"`
	AsOf  time.Time `json:"as_of,omitempty"`
}

// ListPaymentsRequest lists the payments of a loan.
type ListPaymentsRequest struct {
	LoanID   string   `json:"loan_id" validate:"required"`
	Statuses []string `json:"statuses,omitempty" validate:"dive,oneof=PENDING COMPLETED CANCELLED"`
}

// PendingPaymentsRequest lists pending payments due within DaysAhead days.
type PendingPaymentsRequest struct {
	DaysAhead int `json:"days_ahead" validate:"min=0,max=366"`
}

// ---------------------------------------------------------------------------
// Request DTOs – reports
// ---------------------------------------------------------------------------

// GenerateMonthlyReportRequest selects the report period. Zero values mean
// the current month.
type GenerateMonthlyReportRequest struct {
	Year  int `json:"year" validate:"omitempty,min=1900,max=9999"`
	Month int `json:"month" validate:"omitempty,min=1,max=12"`
}

// GetMonthlyReportRequest identifies a stored report.
type GetMonthlyReportRequest struct {
	Year  int `json:"year" validate:"required,min=1900,max=9999"`
	Month int `json:"month" validate:"required,min=1,max=12"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// LoanResponse is the external representation of a loan.
type LoanResponse struct {
	ID               string          `json:"id"`
	LoanNumber       string          `json:"loan_number"`
	PropertyID       string          `json:"property_id"`
	BorrowerID       string          `json:"borrower_id,omitempty"`
	RefinancedFromID string          `json:"refinanced_from_id,omitempty"`
	LoanType         string          `json:"loan_type"`
	PrincipalAmount  decimal.Decimal `json:"principal_amount"`
	InterestRate     decimal.Decimal `json:"interest_rate"`
	TermMonths       int             `json:"term_months"`
	PaymentDay       int             `json:"payment_day"`
	StartDate        time.Time       `json:"start_date"`
	EndDate          time.Time       `json:"end_date"`
	MonthlyPayment   decimal.Decimal `json:"monthly_payment"`
	Status           string          `json:"status"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	LastPaymentDate  *time.Time      `json:"last_payment_date,omitempty"`
	NextPaymentDate  *time.Time      `json:"next_payment_date,omitempty"`
	LenderName       string          `json:"lender_name,omitempty"`
	LenderContact    string          `json:"lender_contact,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// RefinanceLoanResponse returns both sides of a refinance.
type RefinanceLoanResponse struct {
	Previous  LoanResponse `json:"previous"`
	Successor LoanResponse `json:"successor"`
}

// DocumentResponse is the external representation of a loan document.
type DocumentResponse struct {
	ID           string     `json:"id"`
	LoanID       string     `json:"loan_id"`
	DocumentType string     `json:"document_type"`
	FileRef      string     `json:"file_ref"`
	Description  string     `json:"description,omitempty"`
	UploadDate   time.Time  `json:"upload_date"`
	IsVerified   bool       `json:"is_verified"`
	VerifiedBy   string     `json:"verified_by,omitempty"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty"`
}

// PaymentResponse is the external representation of a loan payment.
type PaymentResponse struct {
	ID              string          `json:"id"`
	LoanID          string          `json:"loan_id"`
	PaymentDate     time.Time       `json:"payment_date"`
	DueDate         time.Time       `json:"due_date"`
	Amount          decimal.Decimal `json:"amount"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`
	InterestAmount  decimal.Decimal `json:"interest_amount"`
	LateFee         decimal.Decimal `json:"late_fee"`
	PaymentMethod   string          `json:"payment_method"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Status          string          `json:"status"`
	IsLate          bool            `json:"is_late"`
	ProcessedBy     string          `json:"processed_by,omitempty"`
	ProcessedAt     *time.Time      `json:"processed_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProcessPaymentResponse reports the completed payment and the loan after it.
type ProcessPaymentResponse struct {
	Payment PaymentResponse `json:"payment"`
	Loan    LoanResponse    `json:"loan"`
}

// UpdateLatePaymentsResponse counts payments whose late fee changed.
type UpdateLatePaymentsResponse struct {
	Updated int `json:"updated"`
}

// LoanStatusUpdateResponse counts loans moved by the status sweep.
type LoanStatusUpdateResponse struct {
	Defaulted int `json:"defaulted"`
	Paid      int `json:"paid"`
}

// RemindersResponse counts notifications sent by the reminder sweep.
type RemindersResponse struct {
	Upcoming int `json:"upcoming"`
	DueToday int `json:"due_today"`
	Overdue  int `json:"overdue"`
}

// AmortizationEntryResponse represents a single amortization schedule entry.
type AmortizationEntryResponse struct {
	PaymentNumber    int             `json:"payment_number"`
	PaymentDate      time.Time       `json:"payment_date"`
	PaymentAmount    decimal.Decimal `json:"payment_amount"`
	PrincipalPayment decimal.Decimal `json:"principal_payment"`
	InterestPayment  decimal.Decimal `json:"interest_payment"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// ScheduleResponse is the contractual amortization plan of a loan.
type ScheduleResponse struct {
	LoanID         string                      `json:"loan_id"`
	MonthlyPayment decimal.Decimal             `json:"monthly_payment"`
	Entries        []AmortizationEntryResponse `json:"entries"`
}

// LoanPerformanceResponse mirrors the per-loan performance document.
type LoanPerformanceResponse struct {
	LoanID  string             `json:"loan_id"`
	Metrics PerformanceMetrics `json:"metrics"`
	Status  LoanStanding       `json:"status"`
}

type PerformanceMetrics struct {
	TotalPaid         decimal.Decimal `json:"total_paid"`
	TotalLateFees     decimal.Decimal `json:"total_late_fees"`
	CompletedPayments int             `json:"completed_payments"`
	LatePayments      int             `json:"late_payments"`
	OnTimePaymentRate decimal.Decimal `json:"on_time_payment_rate"`
	LoanProgress      decimal.Decimal `json:"loan_progress"`
}

type LoanStanding struct {
	CurrentStatus    string          `json:"current_status"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	NextPaymentDate  *time.Time      `json:"next_payment_date"`
}

// LoanSummaryResponse is the repayment position of a loan.
type LoanSummaryResponse struct {
	LoanID            string          `json:"loan_id"`
	LoanNumber        string          `json:"loan_number"`
	Status            string          `json:"status"`
	PrincipalAmount   decimal.Decimal `json:"principal_amount"`
	RemainingBalance  decimal.Decimal `json:"remaining_balance"`
	MonthlyPayment    decimal.Decimal `json:"monthly_payment"`
	TotalPaid         decimal.Decimal `json:"total_paid"`
	PrincipalPaid     decimal.Decimal `json:"principal_paid"`
	InterestPaid      decimal.Decimal `json:"interest_paid"`
	LateFeesPaid      decimal.Decimal `json:"late_fees_paid"`
	PaymentsMade      int             `json:"payments_made"`
	RemainingPayments int             `json:"remaining_payments"`
	NextPaymentDate   *time.Time      `json:"next_payment_date,omitempty"`
	NextPaymentAmount decimal.Decimal `json:"next_payment_amount"`
}
