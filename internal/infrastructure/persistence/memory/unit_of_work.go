package memory

import (
	"context"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
)

// UnitOfWork implements port.UnitOfWork with one mutex per loan. Writes are
// staged and applied together once fn succeeds.
type UnitOfWork struct {
	s *Store
}

// UnitOfWork returns the store's unit of work.
func (s *Store) UnitOfWork() *UnitOfWork { return &UnitOfWork{s: s} }

func (u *UnitOfWork) WithinLoanLock(ctx context.Context, loanID string, fn func(ctx context.Context, tx port.LoanTx) error) error {
	lock := u.s.loanLock(loanID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &stagedTx{s: u.s}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.commit()
}

// stagedTx buffers writes until commit. Reads see the buffered state first.
type stagedTx struct {
	s        *Store
	loans    []model.Loan
	payments []model.LoanPayment
}

func (t *stagedTx) FindLoan(_ context.Context, id string) (model.Loan, error) {
	for i := len(t.loans) - 1; i >= 0; i-- {
		if t.loans[i].ID() == id {
			return t.loans[i], nil
		}
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	return t.s.getLoan(id)
}

func (t *stagedTx) FindPayment(_ context.Context, id string) (model.LoanPayment, error) {
	for i := len(t.payments) - 1; i >= 0; i-- {
		if t.payments[i].ID() == id {
			return t.payments[i], nil
		}
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	return t.s.getPayment(id)
}

func (t *stagedTx) SaveLoan(_ context.Context, loan model.Loan) error {
	t.loans = append(t.loans, loan)
	return nil
}

func (t *stagedTx) SavePayment(_ context.Context, payment model.LoanPayment) error {
	t.payments = append(t.payments, payment)
	return nil
}

// commit applies every staged write or none of them.
func (t *stagedTx) commit() error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	loans := make(map[string]model.LoanSnapshot, len(t.loans))
	numbers := make(map[string]string, len(t.loans))
	payments := make(map[string]model.PaymentSnapshot, len(t.payments))
	for _, l := range t.loans {
		if snap, ok := t.s.loans[l.ID()]; ok {
			loans[l.ID()] = snap
		}
		numbers[l.LoanNumber()] = t.s.numbers[l.LoanNumber()]
	}
	for _, p := range t.payments {
		if snap, ok := t.s.payments[p.ID()]; ok {
			payments[p.ID()] = snap
		}
	}

	err := t.apply()
	if err != nil {
		t.rollback(loans, numbers, payments)
	}
	return err
}

func (t *stagedTx) apply() error {
	for _, l := range t.loans {
		if err := t.s.putLoan(l); err != nil {
			return err
		}
	}
	for _, p := range t.payments {
		if err := t.s.putPayment(p); err != nil {
			return err
		}
	}
	return nil
}

func (t *stagedTx) rollback(loans map[string]model.LoanSnapshot, numbers map[string]string, payments map[string]model.PaymentSnapshot) {
	for _, l := range t.loans {
		if snap, ok := loans[l.ID()]; ok {
			t.s.loans[l.ID()] = snap
		} else {
			delete(t.s.loans, l.ID())
		}
		if owner := numbers[l.LoanNumber()]; owner != "" {
			t.s.numbers[l.LoanNumber()] = owner
		} else {
			delete(t.s.numbers, l.LoanNumber())
		}
	}
	for _, p := range t.payments {
		if snap, ok := payments[p.ID()]; ok {
			t.s.payments[p.ID()] = snap
		} else {
			delete(t.s.payments, p.ID())
		}
	}
}
