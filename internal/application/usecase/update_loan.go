package usecase

import (
	"context"
	"fmt"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/dto"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/apperr"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/valueobject"
)

// UpdateLoanUseCase edits loan metadata and terms.
type UpdateLoanUseCase struct {
	loanRepo port.LoanRepository
	clock    port.Clock
	effects  *SideEffects
}

// NewUpdateLoanUseCase wires dependencies.
func NewUpdateLoanUseCase(loanRepo port.LoanRepository, clock port.Clock, effects *SideEffects) *UpdateLoanUseCase {
	return &UpdateLoanUseCase{loanRepo: loanRepo, clock: clock, effects: effects}
}

// Execute applies the requested changes. A new rate or term recomputes the
// installment from the remaining balance.
func (uc *UpdateLoanUseCase) Execute(ctx context.Context, req dto.UpdateLoanRequest) (dto.LoanResponse, error) {
	if err := validateRequest(req); err != nil {
		return dto.LoanResponse{}, err
	}

	changes := model.LoanChanges{
		PropertyID:    req.PropertyID,
		InterestRate:  req.InterestRate,
		TermMonths:    req.TermMonths,
		PaymentDay:    req.PaymentDay,
		LenderName:    req.LenderName,
		LenderContact: req.LenderContact,
		Notes:         req.Notes,
	}
	if req.LoanType != nil {
		loanType, err := valueobject.NewLoanType(*req.LoanType)
		if err != nil {
			return dto.LoanResponse{}, apperr.Validation("INVALID_LOAN_TYPE", "%v", err)
		}
		changes.Type = &loanType
	}

	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find loan: %w", err)
	}

	now := uc.clock.Now()
	updated, err := loan.Update(changes, now)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("update loan: %w", err)
	}

	if err := uc.loanRepo.Save(ctx, updated); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("save loan: %w", err)
	}

	uc.effects.Audit(ctx, port.AuditEntry{
		EntityType: entityLoan,
		EntityID:   loan.ID(),
		Action:     actionUpdated,
		Old:        loanAuditView(loan),
		New:        loanAuditView(updated),
		Actor:      req.Actor,
		At:         now,
	})
	uc.effects.Publish(ctx, updated.DomainEvents()...)

	return toLoanResponse(updated), nil
}
