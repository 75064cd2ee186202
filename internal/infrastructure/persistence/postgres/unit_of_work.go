package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
	pgutil "github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/postgres"
)

// UnitOfWork implements port.UnitOfWork with a transaction holding the
// loan's row lock (SELECT ... FOR UPDATE). Concurrent writers of the same
// loan queue on the lock; the loser of a race sees the winner's commit.
type UnitOfWork struct {
	pool *pgxpool.Pool
}

// NewUnitOfWork creates a unit of work over pool.
func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{pool: pool}
}

func (u *UnitOfWork) WithinLoanLock(ctx context.Context, loanID string, fn func(ctx context.Context, tx port.LoanTx) error) error {
	return pgutil.WithTransaction(ctx, u.pool, func(tx pgx.Tx) error {
		loans := NewLoanRepo(tx)
		if err := loans.lock(ctx, loanID); err != nil {
			return err
		}
		return fn(ctx, &loanTx{loans: loans, payments: NewPaymentRepo(tx)})
	})
}

// loanTx routes LoanTx calls to repositories bound to one transaction.
type loanTx struct {
	loans    *LoanRepo
	payments *PaymentRepo
}

func (t *loanTx) FindLoan(ctx context.Context, id string) (model.Loan, error) {
	return t.loans.FindByID(ctx, id)
}

func (t *loanTx) FindPayment(ctx context.Context, id string) (model.LoanPayment, error) {
	return t.payments.FindByID(ctx, id)
}

func (t *loanTx) SaveLoan(ctx context.Context, loan model.Loan) error {
	return t.loans.Save(ctx, loan)
}

func (t *loanTx) SavePayment(ctx context.Context, payment model.LoanPayment) error {
	return t.payments.Save(ctx, payment)
}
