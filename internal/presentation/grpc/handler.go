package grpc

import (
	"bytes"
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/dto"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/usecase"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/apperr"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/auth"
)

// UseCases groups every operation the loan service exposes.
type UseCases struct {
	CreateLoan      *usecase.CreateLoanUseCase
	GetLoan         *usecase.GetLoanUseCase
	ListLoans       *usecase.ListLoansUseCase
	UpdateLoan      *usecase.UpdateLoanUseCase
	DeleteLoan      *usecase.DeleteLoanUseCase
	ActivateLoan    *usecase.ChangeLoanStatusUseCase
	MarkDefault     *usecase.ChangeLoanStatusUseCase
	RefinanceLoan   *usecase.RefinanceLoanUseCase
	UpdateStatuses  *usecase.UpdateLoanStatusesUseCase
	AddDocument     *usecase.AddDocumentUseCase
	VerifyDocument  *usecase.VerifyDocumentUseCase
	ListDocuments   *usecase.ListDocumentsUseCase
	CreatePayment   *usecase.CreatePaymentUseCase
	ProcessPayment  *usecase.ProcessPaymentUseCase
	CancelPayment   *usecase.CancelPaymentUseCase
	ApplyLateFee    *usecase.ApplyLateFeeUseCase
	UpdateLateFees  *usecase.UpdateLatePaymentsUseCase
	ListPayments    *usecase.ListPaymentsUseCase
	PendingPayments *usecase.PendingPaymentsUseCase
	Reminders       *usecase.SendPaymentRemindersUseCase
	GenerateReport  *usecase.GenerateMonthlyReportUseCase
	GetReport       *usecase.GetMonthlyReportUseCase
	Performance     *usecase.LoanPerformanceUseCase
	Summary         *usecase.LoanSummaryUseCase
	Schedule        *usecase.AmortizationScheduleUseCase
}

// LoanHandler implements LoanServiceServer on top of the use cases.
type LoanHandler struct {
	uc     UseCases
	logger *slog.Logger
}

// NewLoanHandler creates a new handler with all use-case dependencies.
func NewLoanHandler(uc UseCases, logger *slog.Logger) *LoanHandler {
	return &LoanHandler{uc: uc, logger: logger}
}

var _ LoanServiceServer = (*LoanHandler)(nil)

// actor prefers the authenticated caller over the name in the request.
func actor(ctx context.Context, requested string) string {
	if name, ok := auth.ActorFromContext(ctx); ok {
		return name
	}
	return requested
}

// toStatus maps engine error kinds onto gRPC codes. Unclassified errors are
// logged and reported as Internal without their detail.
func (h *LoanHandler) toStatus(ctx context.Context, method string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return status.Error(codes.InvalidArgument, err.Error())
	case apperr.KindNotFound:
		return status.Error(codes.NotFound, err.Error())
	case apperr.KindPaymentState:
		return status.Error(codes.FailedPrecondition, err.Error())
	case apperr.KindConflict:
		return status.Error(codes.Aborted, err.Error())
	}
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, err.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	h.logger.ErrorContext(ctx, "request failed", "method", method, "error", err)
	return status.Error(codes.Internal, "internal error")
}

// reply finishes a call that produced a value.
func reply[T any](ctx context.Context, h *LoanHandler, method string, v T, err error) (*T, error) {
	if err != nil {
		return nil, h.toStatus(ctx, method, err)
	}
	return &v, nil
}

// ---------------------------------------------------------------------------
// Loans
// ---------------------------------------------------------------------------

func (h *LoanHandler) CreateLoan(ctx context.Context, req *dto.CreateLoanRequest) (*dto.LoanResponse, error) {
	req.Actor = actor(ctx, req.Actor)
	resp, err := h.uc.CreateLoan.Execute(ctx, *req)
	return reply(ctx, h, "CreateLoan", resp, err)
}

func (h *LoanHandler) GetLoan(ctx context.Context, req *dto.GetLoanRequest) (*dto.LoanResponse, error) {
	resp, err := h.uc.GetLoan.Execute(ctx, *req)
	return reply(ctx, h, "GetLoan", resp, err)
}

func (h *LoanHandler) ListLoans(ctx context.Context, req *dto.ListLoansRequest) (*ListLoansResponse, error) {
	loans, err := h.uc.ListLoans.Execute(ctx, *req)
	return reply(ctx, h, "ListLoans", ListLoansResponse{Loans: loans}, err)
}

func (h *LoanHandler) UpdateLoan(ctx context.Context, req *dto.UpdateLoanRequest) (*dto.LoanResponse, error) {
	req.Actor = actor(ctx, req.Actor)
	resp, err := h.uc.UpdateLoan.Execute(ctx, *req)
	return reply(ctx, h, "UpdateLoan", resp, err)
}

func (h *LoanHandler) DeleteLoan(ctx context.Context, req *dto.LoanActionRequest) (*Empty, error) {
	req.Actor = actor(ctx, req.Actor)
	err := h.uc.DeleteLoan.Execute(ctx, *req)
	return reply(ctx, h, "DeleteLoan", Empty{}, err)
}

func (h *LoanHandler) ActivateLoan(ctx context.Context, req *dto.LoanActionRequest) (*dto.LoanResponse, error) {
	req.Actor = actor(ctx, req.Actor)
	resp, err := h.uc.ActivateLoan.Execute(ctx, *req)
	return reply(ctx, h, "ActivateLoan", resp, err)
}

func (h *LoanHandler) MarkLoanDefault(ctx context.Context, req *dto.LoanActionRequest) (*dto.LoanResponse, error) {
	req.Actor = actor(ctx, req.Actor)
	resp, err := h.uc.MarkDefault.Execute(ctx, *req)
	return reply(ctx, h, "MarkLoanDefault", resp, err)
}

func (h *LoanHandler) RefinanceLoan(ctx context.Context, req *dto.RefinanceLoanRequest) (*dto.RefinanceLoanResponse, error) {
	req.Actor = actor(ctx, req.Actor)
	resp, err := h.uc.RefinanceLoan.Execute(ctx, *req)
	return reply(ctx, h, "RefinanceLoan", resp, err)
}

func (h *LoanHandler) UpdateLoanStatuses(ctx context.Context, req *SweepRequest) (*dto.LoanStatusUpdateResponse, error) {
	resp, err := h.uc.UpdateStatuses.Execute(ctx, actor(ctx, req.Actor))
	return reply(ctx, h, "UpdateLoanStatuses", resp, err)
}

// ---------------------------------------------------------------------------
// Documents
// ---------------------------------------------------------------------------

func (h *LoanHandler) AddDocument(ctx context.Context, req *dto.AddDocumentRequest) (*dto.DocumentResponse, error) {
	req.Actor = actor(ctx, req.Actor)
	resp, err := h.uc.AddDocument.Execute(ctx, *req)
	return reply(ctx, h, "AddDocument", resp, err)
}

func (h *LoanHandler) VerifyDocument(ctx context.Context, req *dto.VerifyDocumentRequest) (*dto.DocumentResponse, error) {
	req.Actor = actor(ctx, req.Actor)
	resp, err := h.uc.VerifyDocument.Execute(ctx, *req)
	return reply(ctx, h, "VerifyDocument", resp, err)
}

func (h *LoanHandler) ListDocuments(ctx context.Context, req *dto.GetLoanRequest) (*ListDocumentsResponse, error) {
	docs, err := h.uc.ListDocuments.Execute(ctx, *req)
	return reply(ctx, h, "ListDocuments", ListDocumentsResponse{Documents: docs}, err)
}

// ---------------------------------------------------------------------------
// Payments
// ---------------------------------------------------------------------------

func (h *LoanHandler) CreatePayment(ctx context.Context, req *dto.CreatePaymentRequest) (*dto.PaymentResponse, error) {
	req.Actor = actor(ctx, req.Actor)
	resp, err := h.uc.CreatePayment.Execute(ctx, *req)
	return reply(ctx, h, "CreatePayment", resp, err)
}

func (h *LoanHandler) ProcessPayment(ctx context.Context, req *dto.ProcessPaymentRequest) (*dto.ProcessPaymentResponse, error) {
	req.Actor = actor(ctx, req.Actor)
	resp, err := h.uc.ProcessPayment.Execute(ctx, *req)
	return reply(ctx, h, "ProcessPayment", resp, err)
}

func (h *LoanHandler) CancelPayment(ctx context.Context, req *dto.CancelPaymentRequest) (*dto.PaymentResponse, error) {
	req.Actor = actor(ctx, req.Actor)
	resp, err := h.uc.CancelPayment.Execute(ctx, *req)
	return reply(ctx, h, "CancelPayment", resp, err)
}

func (h *LoanHandler) ApplyLateFee(ctx context.Context, req *dto.ApplyLateFeeRequest) (*dto.PaymentResponse, error) {
	req.Actor = actor(ctx, req.Actor)
	resp, err := h.uc.ApplyLateFee.Execute(ctx, *req)
	return reply(ctx, h, "ApplyLateFee", resp, err)
}

func (h *LoanHandler) UpdateLatePayments(ctx context.Context, req *dto.UpdateLatePaymentsRequest) (*dto.UpdateLatePaymentsResponse, error) {
	req.Actor = actor(ctx, req.Actor)
	resp, err := h.uc.UpdateLateFees.Execute(ctx, *req)
	return reply(ctx, h, "UpdateLatePayments", resp, err)
}

func (h *LoanHandler) ListPayments(ctx context.Context, req *dto.ListPaymentsRequest) (*ListPaymentsResponse, error) {
	payments, err := h.uc.ListPayments.Execute(ctx, *req)
	return reply(ctx, h, "ListPayments", ListPaymentsResponse{Payments: payments}, err)
}

func (h *LoanHandler) PendingPayments(ctx context.Context, req *dto.PendingPaymentsRequest) (*ListPaymentsResponse, error) {
	payments, err := h.uc.PendingPayments.Execute(ctx, *req)
	return reply(ctx, h, "PendingPayments", ListPaymentsResponse{Payments: payments}, err)
}

func (h *LoanHandler) SendPaymentReminders(ctx context.Context, _ *Empty) (*dto.RemindersResponse, error) {
	resp, err := h.uc.Reminders.Execute(ctx)
	return reply(ctx, h, "SendPaymentReminders", resp, err)
}

// ---------------------------------------------------------------------------
// Reports
// ---------------------------------------------------------------------------

func (h *LoanHandler) GenerateMonthlyReport(ctx context.Context, req *dto.GenerateMonthlyReportRequest) (*model.MonthlyReport, error) {
	resp, err := h.uc.GenerateReport.Execute(ctx, *req)
	return reply(ctx, h, "GenerateMonthlyReport", resp, err)
}

func (h *LoanHandler) GetMonthlyReport(ctx context.Context, req *dto.GetMonthlyReportRequest) (*model.MonthlyReport, error) {
	resp, err := h.uc.GetReport.Execute(ctx, *req)
	return reply(ctx, h, "GetMonthlyReport", resp, err)
}

func (h *LoanHandler) GetLoanPerformance(ctx context.Context, req *dto.GetLoanRequest) (*dto.LoanPerformanceResponse, error) {
	resp, err := h.uc.Performance.Execute(ctx, *req)
	return reply(ctx, h, "GetLoanPerformance", resp, err)
}

func (h *LoanHandler) GetLoanSummary(ctx context.Context, req *dto.GetLoanRequest) (*dto.LoanSummaryResponse, error) {
	resp, err := h.uc.Summary.Execute(ctx, *req)
	return reply(ctx, h, "GetLoanSummary", resp, err)
}

func (h *LoanHandler) GetAmortizationSchedule(ctx context.Context, req *dto.GetLoanRequest) (*dto.ScheduleResponse, error) {
	resp, err := h.uc.Schedule.Execute(ctx, *req)
	return reply(ctx, h, "GetAmortizationSchedule", resp, err)
}

func (h *LoanHandler) ExportAmortizationSchedule(ctx context.Context, req *dto.GetLoanRequest) (*ExportScheduleResponse, error) {
	var buf bytes.Buffer
	err := h.uc.Schedule.Export(ctx, *req, &buf)
	return reply(ctx, h, "ExportAmortizationSchedule", ExportScheduleResponse{
		ContentType: "text/csv",
		Data:        buf.String(),
	}, err)
}
