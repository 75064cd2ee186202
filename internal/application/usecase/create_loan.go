package usecase

import (
	"context"
	"fmt"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/dto"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/apperr"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
)

// CreateLoanUseCase registers a new loan in PENDING status.
type CreateLoanUseCase struct {
	loanRepo port.LoanRepository
	clock    port.Clock
	effects  *SideEffects
}

// NewCreateLoanUseCase wires dependencies.
func NewCreateLoanUseCase(loanRepo port.LoanRepository, clock port.Clock, effects *SideEffects) *CreateLoanUseCase {
	return &CreateLoanUseCase{loanRepo: loanRepo, clock: clock, effects: effects}
}

// Execute validates the terms, computes the installment and persists the loan.
func (uc *CreateLoanUseCase) Execute(ctx context.Context, req dto.CreateLoanRequest) (dto.LoanResponse, error) {
	if err := validateRequest(req); err != nil {
		return dto.LoanResponse{}, err
	}

	terms, err := toLoanTerms(req.LoanTermsInput)
	if err != nil {
		return dto.LoanResponse{}, err
	}

	// 1. Loan numbers are unique.
	if _, err := uc.loanRepo.FindByLoanNumber(ctx, req.LoanNumber); err == nil {
		return dto.LoanResponse{}, apperr.Conflict("loan number %s already exists", req.LoanNumber)
	} else if !apperr.IsNotFound(err) {
		return dto.LoanResponse{}, fmt.Errorf("find loan by number: %w", err)
	}

	// 2. Build the aggregate.
	now := uc.clock.Now()
	loan, err := model.NewLoan(req.LoanNumber, req.PropertyID, req.BorrowerID, terms, toLender(req.LenderInput), now)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("create loan: %w", err)
	}

	// 3. Persist.
	if err := uc.loanRepo.Save(ctx, loan); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("save loan: %w", err)
	}

	// 4. Side effects.
	uc.effects.Audit(ctx, port.AuditEntry{
		EntityType: entityLoan,
		EntityID:   loan.ID(),
		Action:     actionCreated,
		New:        loanAuditView(loan),
		Actor:      req.Actor,
		At:         now,
	})
	uc.effects.Publish(ctx, loan.DomainEvents()...)

	return toLoanResponse(loan), nil
}
