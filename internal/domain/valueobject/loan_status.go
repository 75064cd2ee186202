package valueobject

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// LoanStatus – immutable value object
// ---------------------------------------------------------------------------

// LoanStatus represents the lifecycle stage of a loan.
type LoanStatus struct {
	value string
}

const (
	loanStatusPending    = "PENDING"
	loanStatusActive     = "ACTIVE"
	loanStatusPaid       = "PAID"
	loanStatusDefault    = "DEFAULT"
	loanStatusRefinanced = "REFINANCED"
)

var (
	LoanStatusPending    = LoanStatus{value: loanStatusPending}
	LoanStatusActive     = LoanStatus{value: loanStatusActive}
	LoanStatusPaid       = LoanStatus{value: loanStatusPaid}
	LoanStatusDefault    = LoanStatus{value: loanStatusDefault}
	LoanStatusRefinanced = LoanStatus{value: loanStatusRefinanced}
)

var validLoanStatuses = map[string]LoanStatus{
	loanStatusPending:    LoanStatusPending,
	loanStatusActive:     LoanStatusActive,
	loanStatusPaid:       LoanStatusPaid,
	loanStatusDefault:    LoanStatusDefault,
	loanStatusRefinanced: LoanStatusRefinanced,
}

// NewLoanStatus creates a LoanStatus from a raw string.
func NewLoanStatus(s string) (LoanStatus, error) {
	v, ok := validLoanStatuses[s]
	if !ok {
		return LoanStatus{}, fmt.Errorf("invalid loan status: %q", s)
	}
	return v, nil
}

// String returns the string representation of the status.
func (s LoanStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s LoanStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s LoanStatus) Equal(other LoanStatus) bool { return s.value == other.value }

// AcceptsPayments reports whether new payments may be registered against a
// loan in this status.
func (s LoanStatus) AcceptsPayments() bool {
	return s.Equal(LoanStatusActive) || s.Equal(LoanStatusDefault)
}

// IsTerminal reports whether the loan has left servicing.
func (s LoanStatus) IsTerminal() bool {
	return s.Equal(LoanStatusPaid) || s.Equal(LoanStatusRefinanced)
}

// ---------------------------------------------------------------------------
// PaymentStatus – immutable value object
// ---------------------------------------------------------------------------

// PaymentStatus represents the lifecycle stage of a loan payment. Lateness is
// not a status; see LoanPayment.IsLate.
type PaymentStatus struct {
	value string
}

const (
	paymentStatusPending   = "PENDING"
	paymentStatusCompleted = "COMPLETED"
	paymentStatusCancelled = "CANCELLED"
)

var (
	PaymentStatusPending   = PaymentStatus{value: paymentStatusPending}
	PaymentStatusCompleted = PaymentStatus{value: paymentStatusCompleted}
	PaymentStatusCancelled = PaymentStatus{value: paymentStatusCancelled}
)

var validPaymentStatuses = map[string]PaymentStatus{
	paymentStatusPending:   PaymentStatusPending,
	paymentStatusCompleted: PaymentStatusCompleted,
	paymentStatusCancelled: PaymentStatusCancelled,
}

// NewPaymentStatus creates a PaymentStatus from a raw string.
func NewPaymentStatus(s string) (PaymentStatus, error) {
	v, ok := validPaymentStatuses[s]
	if !ok {
		return PaymentStatus{}, fmt.Errorf("invalid payment status: %q", s)
	}
	return v, nil
}

// String returns the string representation of the status.
func (s PaymentStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s PaymentStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s PaymentStatus) Equal(other PaymentStatus) bool { return s.value == other.value }

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)
