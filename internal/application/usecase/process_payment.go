package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/dto"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/apperr"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/events"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/money"
)

// ProcessPaymentUseCase completes a pending payment and folds it into its
// loan.
type ProcessPaymentUseCase struct {
	paymentRepo port.PaymentRepository
	uow         port.UnitOfWork
	policy      model.LateFeePolicy
	clock       port.Clock
	effects     *SideEffects
}

// NewProcessPaymentUseCase wires dependencies.
func NewProcessPaymentUseCase(
	paymentRepo port.PaymentRepository,
	uow port.UnitOfWork,
	policy model.LateFeePolicy,
	clock port.Clock,
	effects *SideEffects,
) *ProcessPaymentUseCase {
	return &ProcessPaymentUseCase{
		paymentRepo: paymentRepo,
		uow:         uow,
		policy:      policy,
		clock:       clock,
		effects:     effects,
	}
}

// Execute runs the read-modify-write of the loan balance under the loan's
// lock:
//
//  1. reload payment and loan; the payment must still be PENDING
//  2. recompute the late fee as of req.AsOf, capped at what the amount
//     leaves after interest; an on-time AsOf clears an earlier fee
//  3. split the amount against the locked balance
//  4. complete the payment and reduce the balance (PAID at zero)
//  5. store both rows together
//
// Audit, notification and events follow the commit and never undo it.
func (uc *ProcessPaymentUseCase) Execute(ctx context.Context, req dto.ProcessPaymentRequest) (dto.ProcessPaymentResponse, error) {
	if err := validateRequest(req); err != nil {
		return dto.ProcessPaymentResponse{}, err
	}

	now := uc.clock.Now()
	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = now
	}

	payment, err := uc.paymentRepo.FindByID(ctx, req.PaymentID)
	if err != nil {
		return dto.ProcessPaymentResponse{}, fmt.Errorf("find payment: %w", err)
	}

	var (
		pending, completed model.LoanPayment
		before, after      model.Loan
		feeCharged         bool
	)
	err = uc.uow.WithinLoanLock(ctx, payment.LoanID(), func(ctx context.Context, tx port.LoanTx) error {
		current, err := tx.FindPayment(ctx, payment.ID())
		if err != nil {
			return fmt.Errorf("find payment: %w", err)
		}
		if !current.IsPending() {
			return apperr.PaymentState(current.ID(), current.Status().String(), "process")
		}
		loan, err := tx.FindLoan(ctx, current.LoanID())
		if err != nil {
			return fmt.Errorf("find loan: %w", err)
		}

		charged, changed, err := current.SettleLateFee(uc.policy, loan.PeriodInterest(), asOf, now)
		if err != nil {
			return fmt.Errorf("apply late fee: %w", err)
		}

		split, err := model.SplitPayment(loan, charged.Amount(), charged.LateFee())
		if err != nil {
			return fmt.Errorf("split payment: %w", err)
		}
		done, err := charged.Complete(split, req.Actor, now)
		if err != nil {
			return err
		}
		updated, err := loan.ApplyPrincipal(done.ID(), split.Principal, done.PaymentDate(), done.DueDate(), now)
		if err != nil {
			return fmt.Errorf("apply principal: %w", err)
		}

		if err := tx.SavePayment(ctx, done); err != nil {
			return fmt.Errorf("save payment: %w", err)
		}
		if err := tx.SaveLoan(ctx, updated); err != nil {
			return fmt.Errorf("save loan: %w", err)
		}

		pending, completed, before, after, feeCharged = current, done, loan, updated, changed
		return nil
	})
	if err != nil {
		return dto.ProcessPaymentResponse{}, fmt.Errorf("process payment: %w", err)
	}

	if feeCharged {
		uc.effects.Audit(ctx, port.AuditEntry{
			EntityType: entityPayment,
			EntityID:   completed.ID(),
			Action:     actionLateFee,
			Old:        map[string]any{"late_fee": money.Cents(pending.LateFee()).String()},
			New:        map[string]any{"late_fee": money.Cents(completed.LateFee()).String()},
			Actor:      req.Actor,
			At:         now,
		})
		if completed.LateFee().IsPositive() {
			uc.effects.Metrics().LateFeesApplied(ctx, 1)
		}
	}
	uc.afterCommit(ctx, pending, completed, before, after, req.Actor, now)

	return dto.ProcessPaymentResponse{
		Payment: toPaymentResponse(completed, asOf),
		Loan:    toLoanResponse(after),
	}, nil
}

func (uc *ProcessPaymentUseCase) afterCommit(
	ctx context.Context,
	pending, completed model.LoanPayment,
	before, after model.Loan,
	actor string,
	now time.Time,
) {
	uc.effects.Audit(ctx, port.AuditEntry{
		EntityType: entityPayment,
		EntityID:   completed.ID(),
		Action:     actionProcessed,
		Old:        paymentAuditView(pending),
		New:        paymentAuditView(completed),
		Actor:      actor,
		At:         now,
	})
	uc.effects.Audit(ctx, port.AuditEntry{
		EntityType: entityLoan,
		EntityID:   after.ID(),
		Action:     actionUpdated,
		Old:        loanAuditView(before),
		New:        loanAuditView(after),
		Actor:      actor,
		At:         now,
	})

	uc.effects.Notify(ctx, after.BorrowerID(), port.NotifyPaymentProcessed, map[string]any{
		"payment_id":        completed.ID(),
		"loan_id":           after.ID(),
		"loan_number":       after.LoanNumber(),
		"amount":            money.Cents(completed.Amount()).String(),
		"principal_amount":  money.Cents(completed.Principal()).String(),
		"interest_amount":   money.Cents(completed.Interest()).String(),
		"late_fee":          money.Cents(completed.LateFee()).String(),
		"remaining_balance": money.Cents(after.RemainingBalance()).String(),
		"next_payment_date": dateString(after.NextPaymentDate()),
	})
	if !before.Status().Equal(after.Status()) {
		uc.effects.Notify(ctx, after.BorrowerID(), port.NotifyLoanStatusChanged, map[string]any{
			"loan_id":     after.ID(),
			"loan_number": after.LoanNumber(),
			"old_status":  before.Status().String(),
			"new_status":  after.Status().String(),
		})
	}

	var batch events.Batch
	batch.Add(completed.DomainEvents()...)
	batch.Add(after.DomainEvents()...)
	uc.effects.Publish(ctx, batch.Drain()...)
	uc.effects.Metrics().PaymentProcessed(ctx, completed.Principal(), completed.Interest(), completed.LateFee())
}
