// Package app assembles the loan engine's use cases from their ports.
package app

import (
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/usecase"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/service"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/infrastructure/scheduler"
	grpcpres "github.com/garciaurbina83/Rental-Properties-New-sub000/internal/presentation/grpc"
)

// Ports are the storage and side-channel adapters the engine runs on.
type Ports struct {
	Loans      port.LoanRepository
	Payments   port.PaymentRepository
	Documents  port.DocumentRepository
	UnitOfWork port.UnitOfWork
	Reports    port.ReportStore
	Clock      port.Clock
	Effects    *usecase.SideEffects
}

// Settings are the tunable business parameters.
type Settings struct {
	LateFees            model.LateFeePolicy
	TopDefaulters       int
	ReminderLeadDays    int
	OverdueReminderDays []int
}

// NewUseCases wires every use case over p.
func NewUseCases(p Ports, s Settings) grpcpres.UseCases {
	builder := service.NewReportBuilder(s.TopDefaulters)
	fx := p.Effects
	return grpcpres.UseCases{
		CreateLoan:      usecase.NewCreateLoanUseCase(p.Loans, p.Clock, fx),
		GetLoan:         usecase.NewGetLoanUseCase(p.Loans),
		ListLoans:       usecase.NewListLoansUseCase(p.Loans),
		UpdateLoan:      usecase.NewUpdateLoanUseCase(p.Loans, p.Clock, fx),
		DeleteLoan:      usecase.NewDeleteLoanUseCase(p.Loans, p.Clock, fx),
		ActivateLoan:    usecase.NewActivateLoanUseCase(p.Loans, p.Clock, fx),
		MarkDefault:     usecase.NewMarkLoanDefaultUseCase(p.Loans, p.Clock, fx),
		RefinanceLoan:   usecase.NewRefinanceLoanUseCase(p.Loans, p.UnitOfWork, p.Clock, fx),
		UpdateStatuses:  usecase.NewUpdateLoanStatusesUseCase(p.Loans, p.Clock, fx),
		AddDocument:     usecase.NewAddDocumentUseCase(p.Loans, p.Documents, p.Clock, fx),
		VerifyDocument:  usecase.NewVerifyDocumentUseCase(p.Documents, p.Clock, fx),
		ListDocuments:   usecase.NewListDocumentsUseCase(p.Loans, p.Documents),
		CreatePayment:   usecase.NewCreatePaymentUseCase(p.Loans, p.Payments, p.Clock, fx),
		ProcessPayment:  usecase.NewProcessPaymentUseCase(p.Payments, p.UnitOfWork, s.LateFees, p.Clock, fx),
		CancelPayment:   usecase.NewCancelPaymentUseCase(p.Payments, p.Clock, fx),
		ApplyLateFee:    usecase.NewApplyLateFeeUseCase(p.Payments, s.LateFees, p.Clock, fx),
		UpdateLateFees:  usecase.NewUpdateLatePaymentsUseCase(p.Payments, s.LateFees, p.Clock, fx),
		ListPayments:    usecase.NewListPaymentsUseCase(p.Loans, p.Payments, p.Clock),
		PendingPayments: usecase.NewPendingPaymentsUseCase(p.Payments, p.Clock),
		Reminders:       usecase.NewSendPaymentRemindersUseCase(p.Loans, p.Payments, p.Clock, fx, s.ReminderLeadDays, s.OverdueReminderDays),
		GenerateReport:  usecase.NewGenerateMonthlyReportUseCase(p.Loans, p.Payments, p.Reports, builder, p.Clock, fx),
		GetReport:       usecase.NewGetMonthlyReportUseCase(p.Reports),
		Performance:     usecase.NewLoanPerformanceUseCase(p.Loans, p.Payments, builder),
		Summary:         usecase.NewLoanSummaryUseCase(p.Loans, p.Payments, builder, p.Clock),
		Schedule:        usecase.NewAmortizationScheduleUseCase(p.Loans),
	}
}

// SchedulerJobs picks the use cases the scheduler drives.
func SchedulerJobs(uc grpcpres.UseCases) scheduler.Jobs {
	return scheduler.Jobs{
		LateFees:    uc.UpdateLateFees,
		Reminders:   uc.Reminders,
		Statuses:    uc.UpdateStatuses,
		Report:      uc.GenerateReport,
		Loans:       uc.ListLoans,
		Performance: uc.Performance,
	}
}
