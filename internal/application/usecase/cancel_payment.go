package usecase

import (
	"context"
	"fmt"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/dto"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
)

// CancelPaymentUseCase cancels a pending payment. The loan is never touched:
// an uncompleted payment was never applied to its balance.
type CancelPaymentUseCase struct {
	paymentRepo port.PaymentRepository
	clock       port.Clock
	effects     *SideEffects
}

// NewCancelPaymentUseCase wires dependencies.
func NewCancelPaymentUseCase(paymentRepo port.PaymentRepository, clock port.Clock, effects *SideEffects) *CancelPaymentUseCase {
	return &CancelPaymentUseCase{paymentRepo: paymentRepo, clock: clock, effects: effects}
}

// Execute cancels the payment and records the reason in its notes.
func (uc *CancelPaymentUseCase) Execute(ctx context.Context, req dto.CancelPaymentRequest) (dto.PaymentResponse, error) {
	if err := validateRequest(req); err != nil {
		return dto.PaymentResponse{}, err
	}

	payment, err := uc.paymentRepo.FindByID(ctx, req.PaymentID)
	if err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("find payment: %w", err)
	}

	now := uc.clock.Now()
	cancelled, err := payment.Cancel(req.Actor, req.Reason, now)
	if err != nil {
		return dto.PaymentResponse{}, err
	}
	if err := uc.paymentRepo.Save(ctx, cancelled); err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("save payment: %w", err)
	}

	uc.effects.Audit(ctx, port.AuditEntry{
		EntityType: entityPayment,
		EntityID:   payment.ID(),
		Action:     actionCancelled,
		Old:        paymentAuditView(payment),
		New:        map[string]any{"status": cancelled.Status().String(), "reason": req.Reason},
		Actor:      req.Actor,
		At:         now,
	})
	uc.effects.Publish(ctx, cancelled.DomainEvents()...)

	return toPaymentResponse(cancelled, now), nil
}
