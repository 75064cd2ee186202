package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/dto"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/valueobject"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/money"
)

// ApplyLateFeeUseCase recomputes the late fee of one pending payment.
type ApplyLateFeeUseCase struct {
	paymentRepo port.PaymentRepository
	policy      model.LateFeePolicy
	clock       port.Clock
	effects     *SideEffects
}

// NewApplyLateFeeUseCase wires dependencies.
func NewApplyLateFeeUseCase(
	paymentRepo port.PaymentRepository,
	policy model.LateFeePolicy,
	clock port.Clock,
	effects *SideEffects,
) *ApplyLateFeeUseCase {
	return &ApplyLateFeeUseCase{paymentRepo: paymentRepo, policy: policy, clock: clock, effects: effects}
}

// Execute overwrites the payment's late fee with the value as of req.AsOf.
func (uc *ApplyLateFeeUseCase) Execute(ctx context.Context, req dto.ApplyLateFeeRequest) (dto.PaymentResponse, error) {
	if err := validateRequest(req); err != nil {
		return dto.PaymentResponse{}, err
	}

	now := uc.clock.Now()
	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = now
	}

	payment, err := uc.paymentRepo.FindByID(ctx, req.PaymentID)
	if err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("find payment: %w", err)
	}

	charged, err := applyLateFee(ctx, uc.paymentRepo, uc.effects, uc.policy, payment, req.Actor, asOf, now)
	if err != nil {
		return dto.PaymentResponse{}, err
	}
	return toPaymentResponse(charged, asOf), nil
}

// UpdateLatePaymentsUseCase recomputes late fees for every overdue pending
// payment. Running it repeatedly for the same date changes nothing.
type UpdateLatePaymentsUseCase struct {
	paymentRepo port.PaymentRepository
	policy      model.LateFeePolicy
	clock       port.Clock
	effects     *SideEffects
}

// NewUpdateLatePaymentsUseCase wires dependencies.
func NewUpdateLatePaymentsUseCase(
	paymentRepo port.PaymentRepository,
	policy model.LateFeePolicy,
	clock port.Clock,
	effects *SideEffects,
) *UpdateLatePaymentsUseCase {
	return &UpdateLatePaymentsUseCase{paymentRepo: paymentRepo, policy: policy, clock: clock, effects: effects}
}

// Execute returns how many payments had their fee changed. A payment that
// fails to update (for instance because it was processed concurrently) is
// logged and skipped.
func (uc *UpdateLatePaymentsUseCase) Execute(ctx context.Context, req dto.UpdateLatePaymentsRequest) (dto.UpdateLatePaymentsResponse, error) {
	if err := validateRequest(req); err != nil {
		return dto.UpdateLatePaymentsResponse{}, err
	}

	now := uc.clock.Now()
	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = now
	}

	overdue, err := uc.paymentRepo.List(ctx, port.PaymentFilter{
		Statuses:  []valueobject.PaymentStatus{valueobject.PaymentStatusPending},
		DueBefore: model.DateOf(asOf),
	})
	if err != nil {
		return dto.UpdateLatePaymentsResponse{}, fmt.Errorf("list overdue payments: %w", err)
	}

	var resp dto.UpdateLatePaymentsResponse
	for _, p := range overdue {
		charged, err := applyLateFee(ctx, uc.paymentRepo, uc.effects, uc.policy, p, req.Actor, asOf, now)
		if err != nil {
			uc.effects.Logger().WarnContext(ctx, "late fee update skipped payment",
				"payment_id", p.ID(),
				"loan_id", p.LoanID(),
				"error", err,
			)
			continue
		}
		if !charged.LateFee().Equal(p.LateFee()) {
			resp.Updated++
		}
	}

	if resp.Updated > 0 {
		uc.effects.Metrics().LateFeesApplied(ctx, resp.Updated)
	}
	return resp, nil
}

// applyLateFee recomputes and stores the fee of payment. Unchanged fees are
// not written.
func applyLateFee(
	ctx context.Context,
	repo port.PaymentRepository,
	fx *SideEffects,
	policy model.LateFeePolicy,
	payment model.LoanPayment,
	actor string,
	asOf, now time.Time,
) (model.LoanPayment, error) {
	charged, changed, err := payment.ApplyLateFee(policy, asOf, now)
	if err != nil {
		return payment, fmt.Errorf("apply late fee: %w", err)
	}
	if !changed {
		return payment, nil
	}
	if err := repo.Save(ctx, charged); err != nil {
		return payment, fmt.Errorf("save payment: %w", err)
	}

	fx.Audit(ctx, port.AuditEntry{
		EntityType: entityPayment,
		EntityID:   payment.ID(),
		Action:     actionLateFee,
		Old:        map[string]any{"late_fee": money.Cents(payment.LateFee()).String()},
		New: map[string]any{
			"late_fee":  money.Cents(charged.LateFee()).String(),
			"days_late": charged.DaysLate(asOf),
			"as_of":     dateString(model.DateOf(asOf)),
		},
		Actor: actor,
		At:    now,
	})
	fx.Publish(ctx, charged.DomainEvents()...)
	return charged, nil
}
