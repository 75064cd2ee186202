package usecase

import (
	"context"
	"fmt"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/dto"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/valueobject"
)

// ListPaymentsUseCase lists the payments of a loan, newest due date first.
type ListPaymentsUseCase struct {
	loanRepo    port.LoanRepository
	paymentRepo port.PaymentRepository
	clock       port.Clock
}

// NewListPaymentsUseCase wires dependencies.
func NewListPaymentsUseCase(loanRepo port.LoanRepository, paymentRepo port.PaymentRepository, clock port.Clock) *ListPaymentsUseCase {
	return &ListPaymentsUseCase{loanRepo: loanRepo, paymentRepo: paymentRepo, clock: clock}
}

// Execute returns the loan's payments filtered by status.
func (uc *ListPaymentsUseCase) Execute(ctx context.Context, req dto.ListPaymentsRequest) ([]dto.PaymentResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	statuses, err := parsePaymentStatuses(req.Statuses)
	if err != nil {
		return nil, err
	}
	if _, err := uc.loanRepo.FindByID(ctx, req.LoanID); err != nil {
		return nil, fmt.Errorf("find loan: %w", err)
	}

	payments, err := uc.paymentRepo.List(ctx, port.PaymentFilter{LoanID: req.LoanID, Statuses: statuses})
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return toPaymentResponses(payments, uc.clock.Now()), nil
}

// PendingPaymentsUseCase lists pending payments falling due soon.
type PendingPaymentsUseCase struct {
	paymentRepo port.PaymentRepository
	clock       port.Clock
}

// NewPendingPaymentsUseCase wires dependencies.
func NewPendingPaymentsUseCase(paymentRepo port.PaymentRepository, clock port.Clock) *PendingPaymentsUseCase {
	return &PendingPaymentsUseCase{paymentRepo: paymentRepo, clock: clock}
}

// Execute returns pending payments due between today and today+DaysAhead,
// both inclusive.
func (uc *PendingPaymentsUseCase) Execute(ctx context.Context, req dto.PendingPaymentsRequest) ([]dto.PaymentResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	today := model.DateOf(now)
	payments, err := uc.paymentRepo.List(ctx, port.PaymentFilter{
		Statuses:  []valueobject.PaymentStatus{valueobject.PaymentStatusPending},
		DueFrom:   today,
		DueBefore: model.AddDays(today, req.DaysAhead+1),
	})
	if err != nil {
		return nil, fmt.Errorf("list pending payments: %w", err)
	}
	return toPaymentResponses(payments, now), nil
}
