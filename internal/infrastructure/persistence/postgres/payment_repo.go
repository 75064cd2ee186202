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

const paymentColumns = `
	id, loan_id, payment_date, due_date, amount,
	principal_amount, interest_amount, late_fee, status, payment_method,
	reference_number, notes, processed_by, processed_at,
	version, created_at, updated_at`

// PaymentRepo implements port.PaymentRepository.
type PaymentRepo struct {
	q pgutil.Querier
}

// NewPaymentRepo creates a new PostgreSQL-backed payment repository.
func NewPaymentRepo(q pgutil.Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

func (r *PaymentRepo) Save(ctx context.Context, payment model.LoanPayment) error {
	s := payment.Snapshot()
	query := `
		INSERT INTO loan_payments (` + paymentColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (id) DO UPDATE SET
			payment_date     = EXCLUDED.payment_date,
			principal_amount = EXCLUDED.principal_amount,
			interest_amount  = EXCLUDED.interest_amount,
			late_fee         = EXCLUDED.late_fee,
			status           = EXCLUDED.status,
			notes            = EXCLUDED.notes,
			processed_by     = EXCLUDED.processed_by,
			processed_at     = EXCLUDED.processed_at,
			version          = loan_payments.version + 1,
			updated_at       = EXCLUDED.updated_at
		WHERE loan_payments.version = $15
	`
	d := s.Details
	tag, err := r.q.Exec(ctx, query,
		s.ID, s.LoanID, d.PaymentDate, d.DueDate, d.Amount,
		s.Principal, s.Interest, d.LateFee, s.Status.String(), d.Method.String(),
		d.ReferenceNumber, d.Notes, s.ProcessedBy, nullTime(s.ProcessedAt),
		s.Version, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return apperr.NotFound("loan", s.LoanID)
		}
		return fmt.Errorf("save payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("payment %s was modified concurrently (version %d)", s.ID, s.Version)
	}
	return nil
}

func (r *PaymentRepo) FindByID(ctx context.Context, id string) (model.LoanPayment, error) {
	row := r.q.QueryRow(ctx, `SELECT `+paymentColumns+` FROM loan_payments WHERE id = $1`, id)
	payment, err := scanPayment(row)
	if err != nil {
		return model.LoanPayment{}, notFound(err, "payment", id)
	}
	return payment, nil
}

// List returns matching payments ordered by due date, newest first.
func (r *PaymentRepo) List(ctx context.Context, f port.PaymentFilter) ([]model.LoanPayment, error) {
	var b queryBuilder
	if f.LoanID != "" {
		b.add("loan_id = $%d", f.LoanID)
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, s.String())
		}
		b.add("status = ANY($%d)", statuses)
	}
	if !f.DueFrom.IsZero() {
		b.add("due_date >= $%d", f.DueFrom)
	}
	if !f.DueBefore.IsZero() {
		b.add("due_date < $%d", f.DueBefore)
	}
	if !f.PaidFrom.IsZero() {
		b.add("payment_date >= $%d", f.PaidFrom)
	}
	if !f.PaidBefore.IsZero() {
		b.add("payment_date < $%d", f.PaidBefore)
	}
	query := `SELECT ` + paymentColumns + ` FROM loan_payments` + b.whereSQL() + ` ORDER BY due_date DESC, id`

	rows, err := r.q.Query(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var payments []model.LoanPayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func scanPayment(row scannable) (model.LoanPayment, error) {
	var (
		s              model.PaymentSnapshot
		status, method string
		processedAt    *time.Time
	)
	d := &s.Details
	err := row.Scan(
		&s.ID, &s.LoanID, &d.PaymentDate, &d.DueDate, &d.Amount,
		&s.Principal, &s.Interest, &d.LateFee, &status, &method,
		&d.ReferenceNumber, &d.Notes, &s.ProcessedBy, &processedAt,
		&s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return model.LoanPayment{}, err
	}

	if s.Status, err = valueobject.NewPaymentStatus(status); err != nil {
		return model.LoanPayment{}, fmt.Errorf("payment %s: %w", s.ID, err)
	}
	if d.Method, err = valueobject.NewPaymentMethod(method); err != nil {
		return model.LoanPayment{}, fmt.Errorf("payment %s: %w", s.ID, err)
	}
	s.ProcessedAt = timeOrZero(processedAt)
	d.PaymentDate = d.PaymentDate.UTC()
	d.DueDate = d.DueDate.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()

	return model.ReconstructLoanPayment(s), nil
}
