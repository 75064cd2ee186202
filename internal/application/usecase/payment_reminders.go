package usecase

import (
	"context"
	"fmt"
	"slices"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/dto"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/valueobject"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/money"
)

// DefaultReminderLeadDays is how far ahead an upcoming payment is announced.
const DefaultReminderLeadDays = 7

// DefaultOverdueReminderDays are the days past due on which a late notice goes out.
var DefaultOverdueReminderDays = []int{1, 3, 7, 15, 30}

// SendPaymentRemindersUseCase notifies borrowers about upcoming, due and
// overdue payments.
type SendPaymentRemindersUseCase struct {
	loanRepo    port.LoanRepository
	paymentRepo port.PaymentRepository
	clock       port.Clock
	effects     *SideEffects
	leadDays    int
	overdueDays []int
}

// NewSendPaymentRemindersUseCase wires dependencies. Non-positive leadDays and
// an empty overdueDays fall back to the defaults.
func NewSendPaymentRemindersUseCase(
	loanRepo port.LoanRepository,
	paymentRepo port.PaymentRepository,
	clock port.Clock,
	effects *SideEffects,
	leadDays int,
	overdueDays []int,
) *SendPaymentRemindersUseCase {
	if leadDays <= 0 {
		leadDays = DefaultReminderLeadDays
	}
	if len(overdueDays) == 0 {
		overdueDays = DefaultOverdueReminderDays
	}
	return &SendPaymentRemindersUseCase{
		loanRepo:    loanRepo,
		paymentRepo: paymentRepo,
		clock:       clock,
		effects:     effects,
		leadDays:    leadDays,
		overdueDays: overdueDays,
	}
}

// Execute sends one notification per matching pending payment and counts
// those handed off to the notifier.
func (uc *SendPaymentRemindersUseCase) Execute(ctx context.Context) (dto.RemindersResponse, error) {
	today := model.DateOf(uc.clock.Now())
	maxOverdue := slices.Max(uc.overdueDays)

	pending, err := uc.paymentRepo.List(ctx, port.PaymentFilter{
		Statuses:  []valueobject.PaymentStatus{valueobject.PaymentStatusPending},
		DueFrom:   model.AddDays(today, -maxOverdue),
		DueBefore: model.AddDays(today, uc.leadDays+1),
	})
	if err != nil {
		return dto.RemindersResponse{}, fmt.Errorf("list pending payments: %w", err)
	}

	borrowers := make(map[string]model.Loan)
	var resp dto.RemindersResponse
	for _, p := range pending {
		days := model.DaysBetween(p.DueDate(), today)
		var (
			kind    port.NotificationKind
			counter *int
		)
		switch {
		case days == -uc.leadDays:
			kind, counter = port.NotifyPaymentDue, &resp.Upcoming
		case days == 0:
			kind, counter = port.NotifyPaymentDue, &resp.DueToday
		case days > 0 && slices.Contains(uc.overdueDays, days):
			kind, counter = port.NotifyPaymentLate, &resp.Overdue
		default:
			continue
		}

		loan, ok := borrowers[p.LoanID()]
		if !ok {
			loan, err = uc.loanRepo.FindByID(ctx, p.LoanID())
			if err != nil {
				uc.effects.Logger().WarnContext(ctx, "reminder skipped payment",
					"payment_id", p.ID(),
					"loan_id", p.LoanID(),
					"error", err,
				)
				continue
			}
			borrowers[p.LoanID()] = loan
		}

		payload := map[string]any{
			"payment_id":  p.ID(),
			"loan_id":     loan.ID(),
			"loan_number": loan.LoanNumber(),
			"amount":      money.Cents(p.Amount()).String(),
			"due_date":    dateString(p.DueDate()),
		}
		if days > 0 {
			payload["days_overdue"] = days
			payload["late_fee"] = money.Cents(p.LateFee()).String()
		}
		if uc.effects.Notify(ctx, loan.BorrowerID(), kind, payload) {
			*counter++
		}
	}
	return resp, nil
}
