package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/dto"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/apperr"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/valueobject"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/events"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/money"
)

// ---------------------------------------------------------------------------
// Single-loan transitions
// ---------------------------------------------------------------------------

// ChangeLoanStatusUseCase runs one status transition on a loan.
type ChangeLoanStatusUseCase struct {
	loanRepo   port.LoanRepository
	clock      port.Clock
	effects    *SideEffects
	transition func(model.Loan, time.Time) (model.Loan, error)
}

// NewActivateLoanUseCase moves a loan PENDING -> ACTIVE.
func NewActivateLoanUseCase(loanRepo port.LoanRepository, clock port.Clock, effects *SideEffects) *ChangeLoanStatusUseCase {
	return &ChangeLoanStatusUseCase{loanRepo: loanRepo, clock: clock, effects: effects, transition: model.Loan.Activate}
}

// NewMarkLoanDefaultUseCase moves a loan ACTIVE -> DEFAULT.
func NewMarkLoanDefaultUseCase(loanRepo port.LoanRepository, clock port.Clock, effects *SideEffects) *ChangeLoanStatusUseCase {
	return &ChangeLoanStatusUseCase{loanRepo: loanRepo, clock: clock, effects: effects, transition: model.Loan.MarkDefault}
}

// Execute applies the transition and notifies the borrower.
func (uc *ChangeLoanStatusUseCase) Execute(ctx context.Context, req dto.LoanActionRequest) (dto.LoanResponse, error) {
	if err := validateRequest(req); err != nil {
		return dto.LoanResponse{}, err
	}

	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find loan: %w", err)
	}

	now := uc.clock.Now()
	next, err := uc.transition(loan, now)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("change loan status: %w", err)
	}
	if err := uc.loanRepo.Save(ctx, next); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("save loan: %w", err)
	}

	announceStatusChange(ctx, uc.effects, loan, next, req.Actor, now)
	uc.effects.Publish(ctx, next.DomainEvents()...)
	return toLoanResponse(next), nil
}

// announceStatusChange audits a loan status transition and tells the borrower.
func announceStatusChange(ctx context.Context, fx *SideEffects, before, after model.Loan, actor string, now time.Time) {
	if before.Status().Equal(after.Status()) {
		return
	}
	fx.Audit(ctx, port.AuditEntry{
		EntityType: entityLoan,
		EntityID:   after.ID(),
		Action:     actionStatusChanged,
		Old:        loanAuditView(before),
		New:        loanAuditView(after),
		Actor:      actor,
		At:         now,
	})
	fx.Notify(ctx, after.BorrowerID(), port.NotifyLoanStatusChanged, map[string]any{
		"loan_id":           after.ID(),
		"loan_number":       after.LoanNumber(),
		"old_status":        before.Status().String(),
		"new_status":        after.Status().String(),
		"remaining_balance": money.Cents(after.RemainingBalance()).String(),
	})
}

// ---------------------------------------------------------------------------
// Refinance
// ---------------------------------------------------------------------------

// RefinanceLoanUseCase closes a loan as REFINANCED and opens its successor.
type RefinanceLoanUseCase struct {
	loanRepo port.LoanRepository
	uow      port.UnitOfWork
	clock    port.Clock
	effects  *SideEffects
}

// NewRefinanceLoanUseCase wires dependencies.
func NewRefinanceLoanUseCase(
	loanRepo port.LoanRepository,
	uow port.UnitOfWork,
	clock port.Clock,
	effects *SideEffects,
) *RefinanceLoanUseCase {
	return &RefinanceLoanUseCase{loanRepo: loanRepo, uow: uow, clock: clock, effects: effects}
}

// Execute writes both loans atomically under the old loan's lock.
func (uc *RefinanceLoanUseCase) Execute(ctx context.Context, req dto.RefinanceLoanRequest) (dto.RefinanceLoanResponse, error) {
	if err := validateRequest(req); err != nil {
		return dto.RefinanceLoanResponse{}, err
	}
	terms, err := toLoanTerms(req.LoanTermsInput)
	if err != nil {
		return dto.RefinanceLoanResponse{}, err
	}

	if _, err := uc.loanRepo.FindByLoanNumber(ctx, req.NewLoanNumber); err == nil {
		return dto.RefinanceLoanResponse{}, apperr.Conflict("loan number %s already exists", req.NewLoanNumber)
	} else if !apperr.IsNotFound(err) {
		return dto.RefinanceLoanResponse{}, fmt.Errorf("find loan by number: %w", err)
	}

	now := uc.clock.Now()
	var before, closed, successor model.Loan
	err = uc.uow.WithinLoanLock(ctx, req.LoanID, func(ctx context.Context, tx port.LoanTx) error {
		loan, err := tx.FindLoan(ctx, req.LoanID)
		if err != nil {
			return fmt.Errorf("find loan: %w", err)
		}
		old, next, err := loan.Refinance(req.NewLoanNumber, terms, toLender(req.LenderInput), now)
		if err != nil {
			return fmt.Errorf("refinance loan: %w", err)
		}
		if err := tx.SaveLoan(ctx, next); err != nil {
			return fmt.Errorf("save successor loan: %w", err)
		}
		if err := tx.SaveLoan(ctx, old); err != nil {
			return fmt.Errorf("save refinanced loan: %w", err)
		}
		before, closed, successor = loan, old, next
		return nil
	})
	if err != nil {
		return dto.RefinanceLoanResponse{}, err
	}

	uc.effects.Audit(ctx, port.AuditEntry{
		EntityType: entityLoan,
		EntityID:   successor.ID(),
		Action:     actionCreated,
		New:        loanAuditView(successor),
		Actor:      req.Actor,
		At:         now,
	})
	announceStatusChange(ctx, uc.effects, before, closed, req.Actor, now)
	var batch events.Batch
	batch.Add(closed.DomainEvents()...)
	batch.Add(successor.DomainEvents()...)
	uc.effects.Publish(ctx, batch.Drain()...)

	return dto.RefinanceLoanResponse{
		Previous:  toLoanResponse(closed),
		Successor: toLoanResponse(successor),
	}, nil
}

// ---------------------------------------------------------------------------
// Status sweep
// ---------------------------------------------------------------------------

// UpdateLoanStatusesUseCase defaults ACTIVE loans past their end date and
// closes open loans whose balance is exhausted.
type UpdateLoanStatusesUseCase struct {
	loanRepo port.LoanRepository
	clock    port.Clock
	effects  *SideEffects
}

// NewUpdateLoanStatusesUseCase wires dependencies.
func NewUpdateLoanStatusesUseCase(loanRepo port.LoanRepository, clock port.Clock, effects *SideEffects) *UpdateLoanStatusesUseCase {
	return &UpdateLoanStatusesUseCase{loanRepo: loanRepo, clock: clock, effects: effects}
}

// Execute sweeps every open loan. A loan that fails to update is logged and
// skipped.
func (uc *UpdateLoanStatusesUseCase) Execute(ctx context.Context, actor string) (dto.LoanStatusUpdateResponse, error) {
	loans, err := uc.loanRepo.List(ctx, port.LoanFilter{
		Statuses: []valueobject.LoanStatus{valueobject.LoanStatusActive, valueobject.LoanStatusDefault},
	})
	if err != nil {
		return dto.LoanStatusUpdateResponse{}, fmt.Errorf("list loans: %w", err)
	}

	now := uc.clock.Now()
	today := model.DateOf(now)
	var resp dto.LoanStatusUpdateResponse

	for _, loan := range loans {
		var next model.Loan
		switch {
		case !loan.RemainingBalance().IsPositive():
			next, err = loan.MarkPaid(now)
		case loan.Status().Equal(valueobject.LoanStatusActive) && loan.EndDate().Before(today):
			next, err = loan.MarkDefault(now)
		default:
			continue
		}
		if err == nil {
			err = uc.loanRepo.Save(ctx, next)
		}
		if err != nil {
			uc.effects.Logger().WarnContext(ctx, "loan status sweep skipped loan",
				"loan_id", loan.ID(),
				"error", err,
			)
			continue
		}

		if next.Status().Equal(valueobject.LoanStatusPaid) {
			resp.Paid++
		} else {
			resp.Defaulted++
		}
		announceStatusChange(ctx, uc.effects, loan, next, actor, now)
		uc.effects.Publish(ctx, next.DomainEvents()...)
	}

	return resp, nil
}
