package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/apperr"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/event"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/valueobject"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/money"
)

// ---------------------------------------------------------------------------
// Loan aggregate root
// ---------------------------------------------------------------------------

// LoanTerms are the contractual inputs of a loan.
type LoanTerms struct {
	StartDate    time.Time
	Type         valueobject.LoanType
	Principal    decimal.Decimal
	InterestRate decimal.Decimal // annual percentage, 0..100
	TermMonths   int
	PaymentDay   int
}

// Lender is free-form lender metadata.
type Lender struct {
	Name    string
	Contact string
	Notes   string
}

// Loan is an immutable aggregate. Mutations return a new copy.
type Loan struct {
	id               string
	loanNumber       string
	propertyID       string
	borrowerID       string
	refinancedFromID string
	terms            LoanTerms
	lender           Lender
	endDate          time.Time
	monthlyPayment   decimal.Decimal
	status           valueobject.LoanStatus
	remainingBalance decimal.Decimal
	lastPaymentDate  time.Time
	nextPaymentDate  time.Time
	version          int
	createdAt        time.Time
	updatedAt        time.Time
	domainEvents     []event.DomainEvent
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewLoan registers a loan in PENDING status with the installment computed
// from its terms and the full principal outstanding.
func NewLoan(
	loanNumber, propertyID, borrowerID string,
	terms LoanTerms,
	lender Lender,
	now time.Time,
) (Loan, error) {
	if strings.TrimSpace(loanNumber) == "" {
		return Loan{}, apperr.Validation("INVALID_LOAN_NUMBER", "loan number is required")
	}
	if terms.Type.IsZero() {
		return Loan{}, apperr.Validation("INVALID_LOAN_TYPE", "loan type is required")
	}
	if terms.PaymentDay < 1 || terms.PaymentDay > 31 {
		return Loan{}, apperr.Validation("INVALID_PAYMENT_DAY", "payment day must be between 1 and 31, got %d", terms.PaymentDay)
	}
	if terms.StartDate.IsZero() {
		return Loan{}, apperr.Validation("INVALID_START_DATE", "start date is required")
	}

	payment, err := ComputeMonthlyPayment(terms.Principal, terms.InterestRate, terms.TermMonths)
	if err != nil {
		return Loan{}, err
	}

	terms.StartDate = DateOf(terms.StartDate)
	id := uuid.NewString()
	loan := Loan{
		id:               id,
		loanNumber:       strings.TrimSpace(loanNumber),
		propertyID:       propertyID,
		borrowerID:       borrowerID,
		terms:            terms,
		lender:           lender,
		endDate:          EndDate(terms.StartDate, terms.TermMonths),
		monthlyPayment:   payment,
		status:           valueobject.LoanStatusPending,
		remainingBalance: terms.Principal,
		nextPaymentDate:  AddDays(terms.StartDate, DaysPerPeriod),
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}

	loan.domainEvents = append(loan.domainEvents, event.NewLoanCreated(
		id, loan.loanNumber, propertyID,
		terms.Principal, terms.InterestRate, payment,
		terms.TermMonths, now,
	))

	return loan, nil
}

// LoanSnapshot carries persisted loan state for ReconstructLoan.
type LoanSnapshot struct {
	ID               string
	LoanNumber       string
	PropertyID       string
	BorrowerID       string
	RefinancedFromID string
	Terms            LoanTerms
	Lender           Lender
	EndDate          time.Time
	MonthlyPayment   decimal.Decimal
	Status           valueobject.LoanStatus
	RemainingBalance decimal.Decimal
	LastPaymentDate  time.Time
	NextPaymentDate  time.Time
	Version          int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ReconstructLoan rebuilds a Loan aggregate from persistence.
func ReconstructLoan(s LoanSnapshot) Loan {
	return Loan{
		id:               s.ID,
		loanNumber:       s.LoanNumber,
		propertyID:       s.PropertyID,
		borrowerID:       s.BorrowerID,
		refinancedFromID: s.RefinancedFromID,
		terms:            s.Terms,
		lender:           s.Lender,
		endDate:          s.EndDate,
		monthlyPayment:   s.MonthlyPayment,
		status:           s.Status,
		remainingBalance: s.RemainingBalance,
		lastPaymentDate:  s.LastPaymentDate,
		nextPaymentDate:  s.NextPaymentDate,
		version:          s.Version,
		createdAt:        s.CreatedAt,
		updatedAt:        s.UpdatedAt,
	}
}

// Snapshot exports the persisted state of the loan.
func (l Loan) Snapshot() LoanSnapshot {
	return LoanSnapshot{
		ID:               l.id,
		LoanNumber:       l.loanNumber,
		PropertyID:       l.propertyID,
		BorrowerID:       l.borrowerID,
		RefinancedFromID: l.refinancedFromID,
		Terms:            l.terms,
		Lender:           l.lender,
		EndDate:          l.endDate,
		MonthlyPayment:   l.monthlyPayment,
		Status:           l.status,
		RemainingBalance: l.remainingBalance,
		LastPaymentDate:  l.lastPaymentDate,
		NextPaymentDate:  l.nextPaymentDate,
		Version:          l.version,
		CreatedAt:        l.createdAt,
		UpdatedAt:        l.updatedAt,
	}
}

// ---------------------------------------------------------------------------
// Updates
// ---------------------------------------------------------------------------

// LoanChanges lists the editable fields of a loan. Nil means unchanged.
type LoanChanges struct {
	PropertyID    *string
	Type          *valueobject.LoanType
	InterestRate  *decimal.Decimal
	TermMonths    *int
	PaymentDay    *int
	LenderName    *string
	LenderContact *string
	Notes         *string
}

// Update applies changes. When the rate or the term changes the installment is
// recomputed from the remaining balance over the new term, and the end date is
// re-derived from the start date.
func (l Loan) Update(c LoanChanges, now time.Time) (Loan, error) {
	if l.status.IsTerminal() {
		return l, apperr.Validation("LOAN_CLOSED", "loan %s is %s and cannot be updated", l.id, l.status)
	}

	next := l
	next.domainEvents = copyEvents(l.domainEvents)

	if c.PropertyID != nil {
		next.propertyID = *c.PropertyID
	}
	if c.Type != nil {
		if c.Type.IsZero() {
			return l, apperr.Validation("INVALID_LOAN_TYPE", "loan type is required")
		}
		next.terms.Type = *c.Type
	}
	if c.PaymentDay != nil {
		if *c.PaymentDay < 1 || *c.PaymentDay > 31 {
			return l, apperr.Validation("INVALID_PAYMENT_DAY", "payment day must be between 1 and 31, got %d", *c.PaymentDay)
		}
		next.terms.PaymentDay = *c.PaymentDay
	}
	if c.LenderName != nil {
		next.lender.Name = *c.LenderName
	}
	if c.LenderContact != nil {
		next.lender.Contact = *c.LenderContact
	}
	if c.Notes != nil {
		next.lender.Notes = *c.Notes
	}

	if c.InterestRate != nil || c.TermMonths != nil {
		if c.InterestRate != nil {
			next.terms.InterestRate = *c.InterestRate
		}
		if c.TermMonths != nil {
			next.terms.TermMonths = *c.TermMonths
		}
		if !next.remainingBalance.IsPositive() {
			if err := validateTerms(next.terms.Principal, next.terms.InterestRate, next.terms.TermMonths); err != nil {
				return l, err
			}
		} else {
			payment, err := ComputeMonthlyPayment(next.remainingBalance, next.terms.InterestRate, next.terms.TermMonths)
			if err != nil {
				return l, err
			}
			next.monthlyPayment = payment
		}
		next.endDate = EndDate(next.terms.StartDate, next.terms.TermMonths)
		next.domainEvents = append(next.domainEvents, event.NewLoanTermsUpdated(
			l.id, next.terms.InterestRate, next.monthlyPayment, next.terms.TermMonths, now,
		))
	}

	next.updatedAt = now
	return next, nil
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// Activate transitions PENDING -> ACTIVE.
func (l Loan) Activate(now time.Time) (Loan, error) {
	if !l.status.Equal(valueobject.LoanStatusPending) {
		return l, l.transitionError(valueobject.LoanStatusActive)
	}
	return l.withStatus(valueobject.LoanStatusActive, now), nil
}

// MarkDefault transitions ACTIVE -> DEFAULT.
func (l Loan) MarkDefault(now time.Time) (Loan, error) {
	if !l.status.Equal(valueobject.LoanStatusActive) {
		return l, l.transitionError(valueobject.LoanStatusDefault)
	}
	return l.withStatus(valueobject.LoanStatusDefault, now), nil
}

// MarkPaid transitions an open loan whose balance is exhausted to PAID.
func (l Loan) MarkPaid(now time.Time) (Loan, error) {
	if l.status.IsTerminal() || l.remainingBalance.IsPositive() {
		return l, l.transitionError(valueobject.LoanStatusPaid)
	}
	next := l.withStatus(valueobject.LoanStatusPaid, now)
	next.remainingBalance = decimal.Zero
	return next, nil
}

// Refinance closes this loan as REFINANCED and returns the successor, which
// starts PENDING with the given terms and references this loan.
func (l Loan) Refinance(loanNumber string, terms LoanTerms, lender Lender, now time.Time) (Loan, Loan, error) {
	if !l.status.AcceptsPayments() {
		return l, Loan{}, l.transitionError(valueobject.LoanStatusRefinanced)
	}

	successor, err := NewLoan(loanNumber, l.propertyID, l.borrowerID, terms, lender, now)
	if err != nil {
		return l, Loan{}, err
	}
	successor.refinancedFromID = l.id

	return l.withStatus(valueobject.LoanStatusRefinanced, now), successor, nil
}

// ApplyPrincipal folds a completed payment into the loan: the balance drops by
// principal (floored at zero), payment dates advance, and the loan becomes PAID
// when nothing is left.
func (l Loan) ApplyPrincipal(paymentID string, principal decimal.Decimal, paymentDate, dueDate, now time.Time) (Loan, error) {
	if !l.status.AcceptsPayments() {
		return l, apperr.Validation("LOAN_NOT_PAYABLE", "loan %s is %s and cannot take payments", l.id, l.status)
	}

	next := l
	next.domainEvents = copyEvents(l.domainEvents)
	next.remainingBalance = money.Max(l.remainingBalance.Sub(principal), decimal.Zero)
	next.lastPaymentDate = DateOf(paymentDate)
	next.nextPaymentDate = AddDays(dueDate, DaysPerPeriod)
	next.updatedAt = now
	next.domainEvents = append(next.domainEvents, event.NewLoanBalanceReduced(
		l.id, paymentID, principal, next.remainingBalance, now,
	))

	if next.remainingBalance.IsZero() {
		next = next.withStatus(valueobject.LoanStatusPaid, now)
	}
	return next, nil
}

// PeriodInterest is one month of interest on the current balance.
func (l Loan) PeriodInterest() decimal.Decimal {
	return l.remainingBalance.Mul(l.MonthlyRate()).Round(internalPlaces)
}

// MonthlyRate is the per-period fractional rate.
func (l Loan) MonthlyRate() decimal.Decimal {
	return money.MonthlyRate(l.terms.InterestRate)
}

// Schedule regenerates the contractual amortization plan from the original
// terms.
func (l Loan) Schedule() ([]AmortizationEntry, error) {
	return GenerateSchedule(l.terms.Principal, l.terms.InterestRate, l.terms.TermMonths, l.terms.StartDate)
}

// Progress is the share of principal repaid, in percent.
func (l Loan) Progress() decimal.Decimal {
	return money.Ratio(l.terms.Principal.Sub(l.remainingBalance), l.terms.Principal)
}

func (l Loan) withStatus(to valueobject.LoanStatus, now time.Time) Loan {
	next := l
	next.status = to
	next.updatedAt = now
	next.domainEvents = copyEvents(l.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewLoanStatusChanged(
		l.id, l.status.String(), to.String(), l.remainingBalance, now,
	))
	return next
}

func (l Loan) transitionError(to valueobject.LoanStatus) error {
	return apperr.Validation("INVALID_LOAN_TRANSITION", "loan %s cannot move from %s to %s", l.id, l.status, to).
		WithCause(valueobject.ErrInvalidStatusTransition)
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (l Loan) ID() string { return l.id }
func (l Loan) LoanNumber() string { return l.loanNumber }
func (l Loan) PropertyID() string { return l.propertyID }
func (l Loan) BorrowerID() string { return l.borrowerID }
func (l Loan) RefinancedFromID() string { return l.refinancedFromID }
func (l Loan) Terms() LoanTerms { return l.terms }
func (l Loan) Type() valueobject.LoanType { return l.terms.Type }
func (l Loan) Principal() decimal.Decimal { return l.terms.Principal }
func (l Loan) InterestRate() decimal.Decimal { return l.terms.InterestRate }
func (l Loan) TermMonths() int { return l.terms.TermMonths }
func (l Loan) PaymentDay() int { return l.terms.PaymentDay }
func (l Loan) StartDate() time.Time { return l.terms.StartDate }
func (l Loan) EndDate() time.Time { return l.endDate }
func (l Loan) Lender() Lender { return l.lender }
func (l Loan) MonthlyPayment() decimal.Decimal { return l.monthlyPayment }
func (l Loan) Status() valueobject.LoanStatus { return l.status }
func (l Loan) RemainingBalance() decimal.Decimal { return l.remainingBalance }
func (l Loan) LastPaymentDate() time.Time { return l.lastPaymentDate }
func (l Loan) NextPaymentDate() time.Time { return l.nextPaymentDate }
func (l Loan) Version() int { return l.version }
func (l Loan) CreatedAt() time.Time { return l.createdAt }
func (l Loan) UpdatedAt() time.Time { return l.updatedAt }

// DomainEvents returns a copy of the pending domain events.
func (l Loan) DomainEvents() []event.DomainEvent { return copyEvents(l.domainEvents) }

// ClearEvents returns a copy of the aggregate with no pending events.
func (l Loan) ClearEvents() Loan {
	next := l
	next.domainEvents = nil
	return next
}

func copyEvents(src []event.DomainEvent) []event.DomainEvent {
	if len(src) == 0 {
		return nil
	}
	dst := make([]event.DomainEvent, len(src))
	copy(dst, src)
	return dst
}
