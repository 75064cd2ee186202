package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/apperr"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/valueobject"
	pgutil "github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/postgres"
)

const loanColumns = `
	id, loan_number, property_id, borrower_id, refinanced_from_id,
	loan_type, principal, interest_rate, term_months, payment_day,
	start_date, end_date, monthly_payment, status, remaining_balance,
	last_payment_date, next_payment_date,
	lender_name, lender_contact, lender_notes,
	version, created_at, updated_at`

// LoanRepo implements port.LoanRepository. It runs against a pool or, inside
// a unit of work, a transaction.
type LoanRepo struct {
	q pgutil.Querier
}

// NewLoanRepo creates a new PostgreSQL-backed loan repository.
func NewLoanRepo(q pgutil.Querier) *LoanRepo {
	return &LoanRepo{q: q}
}

// Save inserts a new loan or updates an existing one when its stored version
// still matches.
func (r *LoanRepo) Save(ctx context.Context, loan model.Loan) error {
	s := loan.Snapshot()
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
		ON CONFLICT (id) DO UPDATE SET
			property_id        = EXCLUDED.property_id,
			borrower_id        = EXCLUDED.borrower_id,
			loan_type          = EXCLUDED.loan_type,
			interest_rate      = EXCLUDED.interest_rate,
			term_months        = EXCLUDED.term_months,
			payment_day        = EXCLUDED.payment_day,
			end_date           = EXCLUDED.end_date,
			monthly_payment    = EXCLUDED.monthly_payment,
			status             = EXCLUDED.status,
			remaining_balance  = EXCLUDED.remaining_balance,
			last_payment_date  = EXCLUDED.last_payment_date,
			next_payment_date  = EXCLUDED.next_payment_date,
			lender_name        = EXCLUDED.lender_name,
			lender_contact     = EXCLUDED.lender_contact,
			lender_notes       = EXCLUDED.lender_notes,
			version            = loans.version + 1,
			updated_at         = EXCLUDED.updated_at
		WHERE loans.version = $21
	`
	tag, err := r.q.Exec(ctx, query,
		s.ID, s.LoanNumber, s.PropertyID, s.BorrowerID, nullString(s.RefinancedFromID),
		s.Terms.Type.String(), s.Terms.Principal, s.Terms.InterestRate, s.Terms.TermMonths, s.Terms.PaymentDay,
		s.Terms.StartDate, s.EndDate, s.MonthlyPayment, s.Status.String(), s.RemainingBalance,
		nullTime(s.LastPaymentDate), nullTime(s.NextPaymentDate),
		s.Lender.Name, s.Lender.Contact, s.Lender.Notes,
		s.Version, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return apperr.Conflict("loan number %s already exists", s.LoanNumber).WithCause(err)
		}
		return fmt.Errorf("save loan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("loan %s was modified concurrently (version %d)", s.ID, s.Version)
	}
	return nil
}

func (r *LoanRepo) FindByID(ctx context.Context, id string) (model.Loan, error) {
	row := r.q.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)
	loan, err := scanLoan(row)
	if err != nil {
		return model.Loan{}, notFound(err, "loan", id)
	}
	return loan, nil
}

func (r *LoanRepo) FindByLoanNumber(ctx context.Context, loanNumber string) (model.Loan, error) {
	row := r.q.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans WHERE loan_number = $1`, loanNumber)
	loan, err := scanLoan(row)
	if err != nil {
		return model.Loan{}, notFound(err, "loan", loanNumber)
	}
	return loan, nil
}

// List returns matching loans, newest first. A zero limit returns all.
func (r *LoanRepo) List(ctx context.Context, f port.LoanFilter) ([]model.Loan, error) {
	var b queryBuilder
	if f.PropertyID != "" {
		b.add("property_id = $%d", f.PropertyID)
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, s.String())
		}
		b.add("status = ANY($%d)", statuses)
	}
	query := `SELECT ` + loanColumns + ` FROM loans` + b.whereSQL() +
		` ORDER BY created_at DESC, id` + b.page(f.Offset, f.Limit)

	rows, err := r.q.Query(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}
	defer rows.Close()

	var loans []model.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

// Delete removes the loan; documents and payments go with it through
// ON DELETE CASCADE.
func (r *LoanRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM loans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete loan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("loan", id)
	}
	return nil
}

// lock takes the row lock on the loan for the rest of the transaction.
func (r *LoanRepo) lock(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `SELECT 1 FROM loans WHERE id = $1 FOR UPDATE`, id); err != nil {
		return fmt.Errorf("lock loan: %w", err)
	}
	return nil
}

func scanLoan(row scannable) (model.Loan, error) {
	var (
		s                        model.LoanSnapshot
		refinancedFrom           *string
		loanType, status         string
		lastPayment, nextPayment *time.Time
	)
	err := row.Scan(
		&s.ID, &s.LoanNumber, &s.PropertyID, &s.BorrowerID, &refinancedFrom,
		&loanType, &s.Terms.Principal, &s.Terms.InterestRate, &s.Terms.TermMonths, &s.Terms.PaymentDay,
		&s.Terms.StartDate, &s.EndDate, &s.MonthlyPayment, &status, &s.RemainingBalance,
		&lastPayment, &nextPayment,
		&s.Lender.Name, &s.Lender.Contact, &s.Lender.Notes,
		&s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return model.Loan{}, err
	}

	if s.Terms.Type, err = valueobject.NewLoanType(loanType); err != nil {
		return model.Loan{}, fmt.Errorf("loan %s: %w", s.ID, err)
	}
	if s.Status, err = valueobject.NewLoanStatus(status); err != nil {
		return model.Loan{}, fmt.Errorf("loan %s: %w", s.ID, err)
	}
	s.RefinancedFromID = stringOrEmpty(refinancedFrom)
	s.LastPaymentDate = timeOrZero(lastPayment)
	s.NextPaymentDate = timeOrZero(nextPayment)
	s.Terms.StartDate = s.Terms.StartDate.UTC()
	s.EndDate = s.EndDate.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()

	return model.ReconstructLoan(s), nil
}
