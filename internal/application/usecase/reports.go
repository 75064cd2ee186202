package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/dto"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/event"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/service"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/valueobject"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/money"
)

// openPortfolio is the set of loans a monthly report covers.
var openPortfolio = []valueobject.LoanStatus{valueobject.LoanStatusActive, valueobject.LoanStatusDefault}

// GenerateMonthlyReportUseCase builds and stores the portfolio report of a
// calendar month.
type GenerateMonthlyReportUseCase struct {
	loanRepo    port.LoanRepository
	paymentRepo port.PaymentRepository
	store       port.ReportStore
	builder     *service.ReportBuilder
	clock       port.Clock
	effects     *SideEffects
}

// NewGenerateMonthlyReportUseCase wires dependencies.
func NewGenerateMonthlyReportUseCase(
	loanRepo port.LoanRepository,
	paymentRepo port.PaymentRepository,
	store port.ReportStore,
	builder *service.ReportBuilder,
	clock port.Clock,
	effects *SideEffects,
) *GenerateMonthlyReportUseCase {
	return &GenerateMonthlyReportUseCase{
		loanRepo:    loanRepo,
		paymentRepo: paymentRepo,
		store:       store,
		builder:     builder,
		clock:       clock,
		effects:     effects,
	}
}

// Execute generates the report and overwrites any stored copy for the same
// month. A zero year or month selects the current one.
func (uc *GenerateMonthlyReportUseCase) Execute(ctx context.Context, req dto.GenerateMonthlyReportRequest) (model.MonthlyReport, error) {
	if err := validateRequest(req); err != nil {
		return model.MonthlyReport{}, err
	}

	now := uc.clock.Now()
	year, month := req.Year, time.Month(req.Month)
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = now.Month()
	}
	start, end := model.MonthWindow(year, month)

	loans, err := uc.loanRepo.List(ctx, port.LoanFilter{Statuses: openPortfolio})
	if err != nil {
		return model.MonthlyReport{}, fmt.Errorf("list loans: %w", err)
	}
	payments, err := uc.paymentRepo.List(ctx, port.PaymentFilter{PaidFrom: start, PaidBefore: end})
	if err != nil {
		return model.MonthlyReport{}, fmt.Errorf("list payments: %w", err)
	}

	report := uc.builder.MonthlyReport(year, month, loans, payments, model.DateOf(now), now)
	if err := uc.store.Save(ctx, report); err != nil {
		return model.MonthlyReport{}, fmt.Errorf("store report: %w", err)
	}

	period := model.PeriodKey(year, month)
	uc.effects.Logger().InfoContext(ctx, "monthly report generated",
		"period", period,
		"loans", report.LoanSummary.TotalLoans,
		"payments", report.PaymentAnalysis.TotalPayments,
	)
	uc.effects.Publish(ctx, event.NewMonthlyReportGenerated(period, year, int(month), now))
	uc.effects.Metrics().ReportGenerated(ctx, period)
	return report, nil
}

// GetMonthlyReportUseCase loads a previously generated report.
type GetMonthlyReportUseCase struct {
	store port.ReportStore
}

// NewGetMonthlyReportUseCase wires dependencies.
func NewGetMonthlyReportUseCase(store port.ReportStore) *GetMonthlyReportUseCase {
	return &GetMonthlyReportUseCase{store: store}
}

// Execute returns the stored report or a not-found error.
func (uc *GetMonthlyReportUseCase) Execute(ctx context.Context, req dto.GetMonthlyReportRequest) (model.MonthlyReport, error) {
	if err := validateRequest(req); err != nil {
		return model.MonthlyReport{}, err
	}
	report, err := uc.store.Load(ctx, req.Year, time.Month(req.Month))
	if err != nil {
		return model.MonthlyReport{}, fmt.Errorf("load report: %w", err)
	}
	return report, nil
}

// LoanPerformanceUseCase computes repayment metrics for a single loan.
type LoanPerformanceUseCase struct {
	loanRepo    port.LoanRepository
	paymentRepo port.PaymentRepository
	builder     *service.ReportBuilder
}

// NewLoanPerformanceUseCase wires dependencies.
func NewLoanPerformanceUseCase(
	loanRepo port.LoanRepository,
	paymentRepo port.PaymentRepository,
	builder *service.ReportBuilder,
) *LoanPerformanceUseCase {
	return &LoanPerformanceUseCase{loanRepo: loanRepo, paymentRepo: paymentRepo, builder: builder}
}

// Execute returns the loan's performance document.
func (uc *LoanPerformanceUseCase) Execute(ctx context.Context, req dto.GetLoanRequest) (dto.LoanPerformanceResponse, error) {
	if err := validateRequest(req); err != nil {
		return dto.LoanPerformanceResponse{}, err
	}
	loan, payments, err := loadLoanWithPayments(ctx, uc.loanRepo, uc.paymentRepo, req.LoanID)
	if err != nil {
		return dto.LoanPerformanceResponse{}, err
	}

	perf := uc.builder.Performance(loan, payments)
	return dto.LoanPerformanceResponse{
		LoanID: perf.LoanID,
		Metrics: dto.PerformanceMetrics{
			TotalPaid:         perf.TotalPaid,
			TotalLateFees:     perf.TotalLateFees,
			CompletedPayments: perf.CompletedPayments,
			LatePayments:      perf.LatePayments,
			OnTimePaymentRate: perf.OnTimeRate,
			LoanProgress:      perf.Progress,
		},
		Status: dto.LoanStanding{
			CurrentStatus:    perf.Status,
			RemainingBalance: perf.RemainingBalance,
			NextPaymentDate:  optionalTime(perf.NextPaymentDate),
		},
	}, nil
}

// LoanSummaryUseCase reports how much of a loan has been repaid and what is
// due next.
type LoanSummaryUseCase struct {
	loanRepo    port.LoanRepository
	paymentRepo port.PaymentRepository
	builder     *service.ReportBuilder
	clock       port.Clock
}

// NewLoanSummaryUseCase wires dependencies.
func NewLoanSummaryUseCase(
	loanRepo port.LoanRepository,
	paymentRepo port.PaymentRepository,
	builder *service.ReportBuilder,
	clock port.Clock,
) *LoanSummaryUseCase {
	return &LoanSummaryUseCase{loanRepo: loanRepo, paymentRepo: paymentRepo, builder: builder, clock: clock}
}

// Execute returns the loan's repayment summary.
func (uc *LoanSummaryUseCase) Execute(ctx context.Context, req dto.GetLoanRequest) (dto.LoanSummaryResponse, error) {
	if err := validateRequest(req); err != nil {
		return dto.LoanSummaryResponse{}, err
	}
	loan, payments, err := loadLoanWithPayments(ctx, uc.loanRepo, uc.paymentRepo, req.LoanID)
	if err != nil {
		return dto.LoanSummaryResponse{}, err
	}

	s := uc.builder.Summary(loan, payments, uc.clock.Now())
	resp := dto.LoanSummaryResponse{
		LoanID:            s.LoanID,
		LoanNumber:        s.LoanNumber,
		Status:            s.Status,
		PrincipalAmount:   money.Cents(s.PrincipalAmount),
		RemainingBalance:  money.Cents(s.RemainingBalance),
		MonthlyPayment:    money.Cents(s.MonthlyPayment),
		TotalPaid:         money.Cents(s.TotalPaid),
		PrincipalPaid:     money.Cents(s.PrincipalPaid),
		InterestPaid:      money.Cents(s.InterestPaid),
		LateFeesPaid:      money.Cents(s.LateFeesPaid),
		PaymentsMade:      s.PaymentsMade,
		RemainingPayments: s.RemainingPayments,
		NextPaymentAmount: money.Cents(s.NextPaymentAmount),
	}
	if s.HasPendingPayment {
		resp.NextPaymentDate = optionalTime(s.NextPaymentDate)
	}
	return resp, nil
}

func loadLoanWithPayments(
	ctx context.Context,
	loanRepo port.LoanRepository,
	paymentRepo port.PaymentRepository,
	loanID string,
) (model.Loan, []model.LoanPayment, error) {
	loan, err := loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return model.Loan{}, nil, fmt.Errorf("find loan: %w", err)
	}
	payments, err := paymentRepo.List(ctx, port.PaymentFilter{LoanID: loanID})
	if err != nil {
		return model.Loan{}, nil, fmt.Errorf("list payments: %w", err)
	}
	return loan, payments, nil
}
