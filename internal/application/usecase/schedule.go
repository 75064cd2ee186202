package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/dto"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/money"
)

var scheduleCSVHeader = []string{
	"payment_number",
	"payment_date",
	"payment_amount",
	"principal_payment",
	"interest_payment",
	"remaining_balance",
}

// AmortizationScheduleUseCase returns the contractual plan of a loan.
type AmortizationScheduleUseCase struct {
	loanRepo port.LoanRepository
}

// NewAmortizationScheduleUseCase wires dependencies.
func NewAmortizationScheduleUseCase(loanRepo port.LoanRepository) *AmortizationScheduleUseCase {
	return &AmortizationScheduleUseCase{loanRepo: loanRepo}
}

// Execute generates the schedule from the loan's original terms.
func (uc *AmortizationScheduleUseCase) Execute(ctx context.Context, req dto.GetLoanRequest) (dto.ScheduleResponse, error) {
	loan, schedule, err := uc.load(ctx, req)
	if err != nil {
		return dto.ScheduleResponse{}, err
	}

	entries := make([]dto.AmortizationEntryResponse, 0, len(schedule))
	for _, e := range schedule {
		entries = append(entries, dto.AmortizationEntryResponse{
			PaymentNumber:    e.PaymentNumber,
			PaymentDate:      e.PaymentDate,
			PaymentAmount:    money.Cents(e.PaymentAmount),
			PrincipalPayment: money.Cents(e.PrincipalPayment),
			InterestPayment:  money.Cents(e.InterestPayment),
			RemainingBalance: money.Cents(e.RemainingBalance),
		})
	}
	return dto.ScheduleResponse{
		LoanID:         loan.ID(),
		MonthlyPayment: money.Cents(loan.MonthlyPayment()),
		Entries:        entries,
	}, nil
}

// Export writes the schedule to w as CSV with a header row and cent-rounded
// amounts.
func (uc *AmortizationScheduleUseCase) Export(ctx context.Context, req dto.GetLoanRequest, w io.Writer) error {
	_, schedule, err := uc.load(ctx, req)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(scheduleCSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range schedule {
		row := []string{
			strconv.Itoa(e.PaymentNumber),
			e.PaymentDate.Format(time.DateOnly),
			money.Cents(e.PaymentAmount).StringFixed(2),
			money.Cents(e.PrincipalPayment).StringFixed(2),
			money.Cents(e.InterestPayment).StringFixed(2),
			money.Cents(e.RemainingBalance).StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", e.PaymentNumber, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (uc *AmortizationScheduleUseCase) load(ctx context.Context, req dto.GetLoanRequest) (model.Loan, []model.AmortizationEntry, error) {
	if err := validateRequest(req); err != nil {
		return model.Loan{}, nil, err
	}
	loan, err := uc.loanRepo.FindByID(ctx, req.LoanID)
	if err != nil {
		return model.Loan{}, nil, fmt.Errorf("find loan: %w", err)
	}
	schedule, err := loan.Schedule()
	if err != nil {
		return model.Loan{}, nil, fmt.Errorf("generate schedule: %w", err)
	}
	return loan, schedule, nil
}
