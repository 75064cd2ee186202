package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/apperr"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/event"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// LoanPayment aggregate
// ---------------------------------------------------------------------------

// PaymentDetails are the caller-supplied fields of a new payment.
type PaymentDetails struct {
	PaymentDate     time.Time
	DueDate         time.Time
	Amount          decimal.Decimal
	LateFee         decimal.Decimal
	Method          valueobject.PaymentMethod
	ReferenceNumber string
	Notes           string
}

// LoanPayment is one installment against a loan. It is immutable; mutations
// return a new copy.
type LoanPayment struct {
	id           string
	loanID       string
	details      PaymentDetails
	principal    decimal.Decimal
	interest     decimal.Decimal
	status       valueobject.PaymentStatus
	processedBy  string
	processedAt  time.Time
	version      int
	createdAt    time.Time
	updatedAt    time.Time
	domainEvents []event.DomainEvent
}

// Split is the allocation of a payment amount.
type Split struct {
	Principal decimal.Decimal
	Interest  decimal.Decimal
	LateFee   decimal.Decimal
}

// SplitPayment allocates amount against one period of interest on the loan's
// current balance and the late fee; the rest is principal. The amount must at
// least cover the interest, and the principal may not go negative.
func SplitPayment(loan Loan, amount, lateFee decimal.Decimal) (Split, error) {
	interest := loan.PeriodInterest()
	if amount.LessThan(interest) {
		return Split{}, apperr.Validation("PAYMENT_BELOW_INTEREST",
			"payment must cover interest: amount %s is less than interest %s", amount.StringFixed(2), interest.StringFixed(2))
	}
	principal := amount.Sub(interest).Sub(lateFee)
	if principal.IsNegative() {
		return Split{}, apperr.Validation("PAYMENT_BELOW_CHARGES",
			"payment must cover interest and late fee: amount %s is less than %s", amount.StringFixed(2), interest.Add(lateFee).StringFixed(2))
	}
	return Split{Principal: principal, Interest: interest, LateFee: lateFee}, nil
}

// NewLoanPayment registers a PENDING payment against loan, splitting it with
// the loan's balance at creation time.
func NewLoanPayment(loan Loan, d PaymentDetails, actor string, now time.Time) (LoanPayment, error) {
	if !loan.Status().AcceptsPayments() {
		return LoanPayment{}, apperr.Validation("LOAN_NOT_PAYABLE",
			"payments cannot be registered for loan %s in status %s", loan.ID(), loan.Status())
	}
	if !d.Amount.IsPositive() {
		return LoanPayment{}, apperr.Validation("INVALID_AMOUNT", "payment amount must be positive, got %s", d.Amount)
	}
	if d.LateFee.IsNegative() {
		return LoanPayment{}, apperr.Validation("INVALID_LATE_FEE", "late fee cannot be negative, got %s", d.LateFee)
	}
	if d.DueDate.IsZero() || d.PaymentDate.IsZero() {
		return LoanPayment{}, apperr.Validation("INVALID_DATE", "payment date and due date are required")
	}
	if d.Method.IsZero() {
		return LoanPayment{}, apperr.Validation("INVALID_METHOD", "payment method is required")
	}

	split, err := SplitPayment(loan, d.Amount, d.LateFee)
	if err != nil {
		return LoanPayment{}, err
	}

	d.PaymentDate = DateOf(d.PaymentDate)
	d.DueDate = DateOf(d.DueDate)
	id := uuid.NewString()
	p := LoanPayment{
		id:          id,
		loanID:      loan.ID(),
		details:     d,
		principal:   split.Principal,
		interest:    split.Interest,
		status:      valueobject.PaymentStatusPending,
		processedBy: actor,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}
	p.domainEvents = append(p.domainEvents, event.NewPaymentCreated(id, loan.ID(), d.Amount, d.DueDate, now))
	return p, nil
}

// PaymentSnapshot carries persisted payment state for ReconstructLoanPayment.
type PaymentSnapshot struct {
	ID          string
	LoanID      string
	Details     PaymentDetails
	Principal   decimal.Decimal
	Interest    decimal.Decimal
	Status      valueobject.PaymentStatus
	ProcessedBy string
	ProcessedAt time.Time
	Version     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ReconstructLoanPayment rebuilds a LoanPayment from persistence.
func ReconstructLoanPayment(s PaymentSnapshot) LoanPayment {
	return LoanPayment{
		id:          s.ID,
		loanID:      s.LoanID,
		details:     s.Details,
		principal:   s.Principal,
		interest:    s.Interest,
		status:      s.Status,
		processedBy: s.ProcessedBy,
		processedAt: s.ProcessedAt,
		version:     s.Version,
		createdAt:   s.CreatedAt,
		updatedAt:   s.UpdatedAt,
	}
}

// Snapshot exports the persisted state of the payment.
func (p LoanPayment) Snapshot() PaymentSnapshot {
	return PaymentSnapshot{
		ID:          p.id,
		LoanID:      p.loanID,
		Details:     p.details,
		Principal:   p.principal,
		Interest:    p.interest,
		Status:      p.status,
		ProcessedBy: p.processedBy,
		ProcessedAt: p.processedAt,
		Version:     p.version,
		CreatedAt:   p.createdAt,
		UpdatedAt:   p.updatedAt,
	}
}

// ---------------------------------------------------------------------------
// Late fees
// ---------------------------------------------------------------------------

// IsLate reports whether the payment is still pending past its due date.
func (p LoanPayment) IsLate(asOf time.Time) bool {
	return p.IsPending() && DateOf(asOf).After(p.details.DueDate)
}

// DaysLate is the number of days asOf is past the due date, or zero.
func (p LoanPayment) DaysLate(asOf time.Time) int {
	if d := DaysBetween(p.details.DueDate, asOf); d > 0 {
		return d
	}
	return 0
}

// CalculateLateFee evaluates policy for this payment as of asOf. Only pending
// payments carry a late fee.
func (p LoanPayment) CalculateLateFee(policy LateFeePolicy, asOf time.Time) (decimal.Decimal, error) {
	if !p.IsPending() {
		return decimal.Zero, apperr.Validation("PAYMENT_NOT_PENDING",
			"late fee can only be calculated for pending payments, payment %s is %s", p.id, p.status)
	}
	return policy.Fee(p.details.Amount, p.details.DueDate, asOf), nil
}

// ApplyLateFee overwrites the late fee with the value computed as of asOf.
// Principal absorbs the difference so amount == principal + interest + fee
// keeps holding. The boolean reports whether the fee changed.
func (p LoanPayment) ApplyLateFee(policy LateFeePolicy, asOf, now time.Time) (LoanPayment, bool, error) {
	fee, err := p.CalculateLateFee(policy, asOf)
	if err != nil {
		return p, false, err
	}
	next, changed := p.chargeLateFee(fee, asOf, now)
	return next, changed, nil
}

// SettleLateFee is ApplyLateFee at processing time, against the interest the
// payment will be split with. The fee is capped at amount - interest so the
// split never needs a negative principal.
func (p LoanPayment) SettleLateFee(policy LateFeePolicy, interest decimal.Decimal, asOf, now time.Time) (LoanPayment, bool, error) {
	fee, err := p.CalculateLateFee(policy, asOf)
	if err != nil {
		return p, false, err
	}
	if room := decimal.Max(p.details.Amount.Sub(interest), decimal.Zero); fee.GreaterThan(room) {
		fee = room
	}
	next, changed := p.chargeLateFee(fee, asOf, now)
	return next, changed, nil
}

func (p LoanPayment) chargeLateFee(fee decimal.Decimal, asOf, now time.Time) (LoanPayment, bool) {
	if fee.Equal(p.details.LateFee) {
		return p, false
	}

	next := p
	next.details.LateFee = fee
	next.principal = p.details.Amount.Sub(p.interest).Sub(fee)
	next.updatedAt = now
	next.domainEvents = copyEvents(p.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewLateFeeApplied(
		p.id, p.loanID, fee, p.DaysLate(asOf), now,
	))
	return next, true
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// Complete marks the payment COMPLETED with the authoritative split computed
// at processing time.
func (p LoanPayment) Complete(split Split, actor string, now time.Time) (LoanPayment, error) {
	if !p.IsPending() {
		return p, apperr.PaymentState(p.id, p.status.String(), "process")
	}

	next := p
	next.principal = split.Principal
	next.interest = split.Interest
	next.details.LateFee = split.LateFee
	next.status = valueobject.PaymentStatusCompleted
	next.processedBy = actor
	next.processedAt = now
	next.updatedAt = now
	next.domainEvents = copyEvents(p.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewPaymentProcessed(
		p.id, p.loanID, p.details.Amount, split.Principal, split.Interest, split.LateFee, actor, now,
	))
	return next, nil
}

// Cancel marks the payment CANCELLED and appends reason to its notes.
func (p LoanPayment) Cancel(actor, reason string, now time.Time) (LoanPayment, error) {
	if !p.IsPending() {
		return p, apperr.PaymentState(p.id, p.status.String(), "cancel")
	}

	next := p
	next.status = valueobject.PaymentStatusCancelled
	next.details.Notes = appendNote(p.details.Notes, "Cancelled: "+strings.TrimSpace(reason))
	next.processedBy = actor
	next.processedAt = now
	next.updatedAt = now
	next.domainEvents = copyEvents(p.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewPaymentCancelled(p.id, p.loanID, reason, now))
	return next, nil
}

func appendNote(notes, line string) string {
	if strings.TrimSpace(notes) == "" {
		return line
	}
	return notes + "\n" + line
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (p LoanPayment) ID() string { return p.id }
func (p LoanPayment) LoanID() string { return p.loanID }
func (p LoanPayment) Details() PaymentDetails { return p.details }
func (p LoanPayment) PaymentDate() time.Time { return p.details.PaymentDate }
func (p LoanPayment) DueDate() time.Time { return p.details.DueDate }
func (p LoanPayment) Amount() decimal.Decimal { return p.details.Amount }
func (p LoanPayment) Principal() decimal.Decimal { return p.principal }
func (p LoanPayment) Interest() decimal.Decimal { return p.interest }
func (p LoanPayment) LateFee() decimal.Decimal { return p.details.LateFee }
func (p LoanPayment) Method() valueobject.PaymentMethod { return p.details.Method }
func (p LoanPayment) ReferenceNumber() string { return p.details.ReferenceNumber }
func (p LoanPayment) Notes() string { return p.details.Notes }
func (p LoanPayment) Status() valueobject.PaymentStatus { return p.status }
func (p LoanPayment) ProcessedBy() string { return p.processedBy }
func (p LoanPayment) ProcessedAt() time.Time { return p.processedAt }
func (p LoanPayment) Version() int { return p.version }
func (p LoanPayment) CreatedAt() time.Time { return p.createdAt }
func (p LoanPayment) UpdatedAt() time.Time { return p.updatedAt }

func (p LoanPayment) IsPending() bool { return p.status.Equal(valueobject.PaymentStatusPending) }
func (p LoanPayment) IsCompleted() bool { return p.status.Equal(valueobject.PaymentStatusCompleted) }

// DomainEvents returns a copy of the pending domain events.
func (p LoanPayment) DomainEvents() []event.DomainEvent { return copyEvents(p.domainEvents) }

// ClearEvents returns a copy of the payment with no pending events.
func (p LoanPayment) ClearEvents() LoanPayment {
	next := p
	next.domainEvents = nil
	return next
}
