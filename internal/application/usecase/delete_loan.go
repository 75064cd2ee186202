package usecase

import (
	"context"
	"fmt"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/dto"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
)

// DeleteLoanUseCase removes a loan with its documents and payments.
type DeleteLoanUseCase struct {
	loanRepo port.LoanRepository
	clock    port.Clock
	effects  *SideEffects
}

// NewDeleteLoanUseCase wires dependencies.
func NewDeleteLoanUseCase(loanRepo port.LoanRepository, clock port.Clock, effects *SideEffects) *DeleteLoanUseCase {
	return &DeleteLoanUseCase{loanRepo: loanRepo, clock: clock, effects: effects}
}

// Execute deletes the loan.
func (uc *DeleteLoanUseCase) Execute(ctx context.Context, req dto.LoanActionRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}

	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return fmt.Errorf("find loan: %w", err)
	}
	if err := uc.loanRepo.Delete(ctx, loan.ID()); err != nil {
		return fmt.Errorf("delete loan: %w", err)
	}

	uc.effects.Audit(ctx, port.AuditEntry{
		EntityType: entityLoan,
		EntityID:   loan.ID(),
		Action:     actionDeleted,
		Old:        loanAuditView(loan),
		Actor:      req.Actor,
		At:         uc.clock.Now(),
	})
	return nil
}
