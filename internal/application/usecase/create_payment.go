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

// CreatePaymentUseCase registers a pending payment against a loan.
type CreatePaymentUseCase struct {
	loanRepo    port.LoanRepository
	paymentRepo port.PaymentRepository
	clock       port.Clock
	effects     *SideEffects
}

// NewCreatePaymentUseCase wires dependencies.
func NewCreatePaymentUseCase(
	loanRepo port.LoanRepository,
	paymentRepo port.PaymentRepository,
	clock port.Clock,
	effects *SideEffects,
) *CreatePaymentUseCase {
	return &CreatePaymentUseCase{
		loanRepo:    loanRepo,
		paymentRepo: paymentRepo,
		clock:       clock,
		effects:     effects,
	}
}

// Execute splits the payment against the loan's current balance and stores it
// as PENDING. The loan itself is not modified.
func (uc *CreatePaymentUseCase) Execute(ctx context.Context, req dto.CreatePaymentRequest) (dto.PaymentResponse, error) {
	if err := validateRequest(req); err != nil {
		return dto.PaymentResponse{}, err
	}
	method, err := valueobject.NewPaymentMethod(req.PaymentMethod)
	if err != nil {
		return dto.PaymentResponse{}, apperr.Validation("INVALID_METHOD", "%v", err)
	}

	// 1. Retrieve the loan.
	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("find loan: %w", err)
	}

	// 2. Build the payment.
	now := uc.clock.Now()
	payment, err := model.NewLoanPayment(loan, model.PaymentDetails{
		PaymentDate:     req.PaymentDate,
		DueDate:         req.DueDate,
		Amount:          req.Amount,
		LateFee:         req.LateFee,
		Method:          method,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
	}, req.Actor, now)
	if err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("create payment: %w", err)
	}

	// 3. Persist.
	if err := uc.paymentRepo.Save(ctx, payment); err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("save payment: %w", err)
	}

	// 4. Side effects.
	uc.effects.Audit(ctx, port.AuditEntry{
		EntityType: entityPayment,
		EntityID:   payment.ID(),
		Action:     actionCreated,
		New:        paymentAuditView(payment),
		Actor:      req.Actor,
		At:         now,
	})
	uc.effects.Publish(ctx, payment.DomainEvents()...)

	return toPaymentResponse(payment, now), nil
}
