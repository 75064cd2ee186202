package usecase

import (
	"context"
	"fmt"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/dto"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
)

const defaultListLimit = 100

// GetLoanUseCase retrieves a loan by ID.
type GetLoanUseCase struct {
	loanRepo port.LoanRepository
}

// NewGetLoanUseCase wires dependencies.
func NewGetLoanUseCase(loanRepo port.LoanRepository) *GetLoanUseCase {
	return &GetLoanUseCase{loanRepo: loanRepo}
}

// Execute returns a loan response for the given ID.
func (uc *GetLoanUseCase) Execute(ctx context.Context, req dto.GetLoanRequest) (dto.LoanResponse, error) {
	if err := validateRequest(req); err != nil {
		return dto.LoanResponse{}, err
	}
	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find loan: %w", err)
	}
	return toLoanResponse(loan), nil
}

// ListLoansUseCase lists loans by property and status.
type ListLoansUseCase struct {
	loanRepo port.LoanRepository
}

// NewListLoansUseCase wires dependencies.
func NewListLoansUseCase(loanRepo port.LoanRepository) *ListLoansUseCase {
	return &ListLoansUseCase{loanRepo: loanRepo}
}

// Execute returns one page of loans.
func (uc *ListLoansUseCase) Execute(ctx context.Context, req dto.ListLoansRequest) ([]dto.LoanResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	statuses, err := parseLoanStatuses(req.Statuses)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	loans, err := uc.loanRepo.List(ctx, port.LoanFilter{
		PropertyID: req.PropertyID,
		Statuses:   statuses,
		Offset:     req.Offset,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}

	out := make([]dto.LoanResponse, 0, len(loans))
	for _, l := range loans {
		out = append(out, toLoanResponse(l))
	}
	return out, nil
}
