package port

import (
	"context"
	"time"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/event"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// LoanFilter narrows a loan listing. Zero-valued fields match everything.
type LoanFilter struct {
	PropertyID string
	Statuses   []valueobject.LoanStatus
	Offset     int
	Limit      int
}

// LoanRepository persists and retrieves loans. Save inserts new loans and
// updates existing ones only when the stored version matches the aggregate's;
// a mismatch is reported as a conflict.
type LoanRepository interface {
	Save(ctx context.Context, loan model.Loan) error
	FindByID(ctx context.Context, id string) (model.Loan, error)
	FindByLoanNumber(ctx context.Context, loanNumber string) (model.Loan, error)
	List(ctx context.Context, filter LoanFilter) ([]model.Loan, error)
	// Delete removes the loan together with its documents and payments.
	Delete(ctx context.Context, id string) error
}

// PaymentFilter narrows a payment listing. Date bounds are inclusive on the
// lower end and exclusive on the upper end; zero times are open.
type PaymentFilter struct {
	LoanID     string
	Statuses   []valueobject.PaymentStatus
	DueFrom    time.Time
	DueBefore  time.Time
	PaidFrom   time.Time
	PaidBefore time.Time
}

// PaymentRepository persists and retrieves loan payments. List orders by due
// date, newest first.
type PaymentRepository interface {
	Save(ctx context.Context, payment model.LoanPayment) error
	FindByID(ctx context.Context, id string) (model.LoanPayment, error)
	List(ctx context.Context, filter PaymentFilter) ([]model.LoanPayment, error)
}

// DocumentRepository persists loan document metadata.
type DocumentRepository interface {
	Save(ctx context.Context, doc model.LoanDocument) error
	FindByID(ctx context.Context, id string) (model.LoanDocument, error)
	ListByLoan(ctx context.Context, loanID string) ([]model.LoanDocument, error)
}

// ---------------------------------------------------------------------------
// Unit of work
// ---------------------------------------------------------------------------

// LoanTx is the view of the store available while a loan is locked. Writes
// made through it become visible together when the enclosing function returns
// nil, and are discarded otherwise.
type LoanTx interface {
	FindLoan(ctx context.Context, id string) (model.Loan, error)
	FindPayment(ctx context.Context, id string) (model.LoanPayment, error)
	SaveLoan(ctx context.Context, loan model.Loan) error
	SavePayment(ctx context.Context, payment model.LoanPayment) error
}

// UnitOfWork serializes read-modify-write cycles on a single loan.
type UnitOfWork interface {
	WithinLoanLock(ctx context.Context, loanID string, fn func(ctx context.Context, tx LoanTx) error) error
}

// ---------------------------------------------------------------------------
// Report store
// ---------------------------------------------------------------------------

// ReportStore keeps one monthly report per (year, month). Save overwrites;
// Load of a period never generated returns a not-found error.
type ReportStore interface {
	Save(ctx context.Context, report model.MonthlyReport) error
	Load(ctx context.Context, year int, month time.Month) (model.MonthlyReport, error)
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}
