package grpc

// proto.go describes rentaldesk.loans.v1.LoanService by hand. Messages are
// the application DTOs, carried by the JSON codec.

import (
	"context"

	grpclib "google.golang.org/grpc"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/dto"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "rentaldesk.loans.v1.LoanService"

// FullMethod returns the wire path of a LoanService method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// Empty is the message of calls with no payload.
type Empty struct{}

// SweepRequest names who runs a portfolio-wide maintenance call.
type SweepRequest struct {
	Actor string `json:"actor"`
}

type ListLoansResponse struct {
	Loans []dto.LoanResponse `json:"loans"`
}

type ListDocumentsResponse struct {
	Documents []dto.DocumentResponse `json:"documents"`
}

type ListPaymentsResponse struct {
	Payments []dto.PaymentResponse `json:"payments"`
}

// ExportScheduleResponse carries a schedule rendered as CSV.
type ExportScheduleResponse struct {
	ContentType string `json:"content_type"`
	Data        string `json:"data"`
}

// LoanServiceServer is the server API for LoanService.
type LoanServiceServer interface {
	CreateLoan(context.Context, *dto.CreateLoanRequest) (*dto.LoanResponse, error)
	GetLoan(context.Context, *dto.GetLoanRequest) (*dto.LoanResponse, error)
	ListLoans(context.Context, *dto.ListLoansRequest) (*ListLoansResponse, error)
	UpdateLoan(context.Context, *dto.UpdateLoanRequest) (*dto.LoanResponse, error)
	DeleteLoan(context.Context, *dto.LoanActionRequest) (*Empty, error)
	ActivateLoan(context.Context, *dto.LoanActionRequest) (*dto.LoanResponse, error)
	MarkLoanDefault(context.Context, *dto.LoanActionRequest) (*dto.LoanResponse, error)
	RefinanceLoan(context.Context, *dto.RefinanceLoanRequest) (*dto.RefinanceLoanResponse, error)
	UpdateLoanStatuses(context.Context, *SweepRequest) (*dto.LoanStatusUpdateResponse, error)

	AddDocument(context.Context, *dto.AddDocumentRequest) (*dto.DocumentResponse, error)
	VerifyDocument(context.Context, *dto.VerifyDocumentRequest) (*dto.DocumentResponse, error)
	ListDocuments(context.Context, *dto.GetLoanRequest) (*ListDocumentsResponse, error)

	CreatePayment(context.Context, *dto.CreatePaymentRequest) (*dto.PaymentResponse, error)
	ProcessPayment(context.Context, *dto.ProcessPaymentRequest) (*dto.ProcessPaymentResponse, error)
	CancelPayment(context.Context, *dto.CancelPaymentRequest) (*dto.PaymentResponse, error)
	ApplyLateFee(context.Context, *dto.ApplyLateFeeRequest) (*dto.PaymentResponse, error)
	UpdateLatePayments(context.Context, *dto.UpdateLatePaymentsRequest) (*dto.UpdateLatePaymentsResponse, error)
	ListPayments(context.Context, *dto.ListPaymentsRequest) (*ListPaymentsResponse, error)
	PendingPayments(context.Context, *dto.PendingPaymentsRequest) (*ListPaymentsResponse, error)
	SendPaymentReminders(context.Context, *Empty) (*dto.RemindersResponse, error)

	GenerateMonthlyReport(context.Context, *dto.GenerateMonthlyReportRequest) (*model.MonthlyReport, error)
	GetMonthlyReport(context.Context, *dto.GetMonthlyReportRequest) (*model.MonthlyReport, error)
	GetLoanPerformance(context.Context, *dto.GetLoanRequest) (*dto.LoanPerformanceResponse, error)
	GetLoanSummary(context.Context, *dto.GetLoanRequest) (*dto.LoanSummaryResponse, error)
	GetAmortizationSchedule(context.Context, *dto.GetLoanRequest) (*dto.ScheduleResponse, error)
	ExportAmortizationSchedule(context.Context, *dto.GetLoanRequest) (*ExportScheduleResponse, error)
}

// RegisterLoanServiceServer registers the LoanServiceServer with the gRPC server.
func RegisterLoanServiceServer(s grpclib.ServiceRegistrar, srv LoanServiceServer) {
	s.RegisterService(&loanServiceDesc, srv)
}

var loanServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LoanServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		unary("CreateLoan", LoanServiceServer.CreateLoan),
		unary("GetLoan", LoanServiceServer.GetLoan),
		unary("ListLoans", LoanServiceServer.ListLoans),
		unary("UpdateLoan", LoanServiceServer.UpdateLoan),
		unary("DeleteLoan", LoanServiceServer.DeleteLoan),
		unary("ActivateLoan", LoanServiceServer.ActivateLoan),
		unary("MarkLoanDefault", LoanServiceServer.MarkLoanDefault),
		unary("RefinanceLoan", LoanServiceServer.RefinanceLoan),
		unary("UpdateLoanStatuses", LoanServiceServer.UpdateLoanStatuses),
		unary("AddDocument", LoanServiceServer.AddDocument),
		unary("VerifyDocument", LoanServiceServer.VerifyDocument),
		unary("ListDocuments", LoanServiceServer.ListDocuments),
		unary("CreatePayment", LoanServiceServer.CreatePayment),
		unary("ProcessPayment", LoanServiceServer.ProcessPayment),
		unary("CancelPayment", LoanServiceServer.CancelPayment),
		unary("ApplyLateFee", LoanServiceServer.ApplyLateFee),
		unary("UpdateLatePayments", LoanServiceServer.UpdateLatePayments),
		unary("ListPayments", LoanServiceServer.ListPayments),
		unary("PendingPayments", LoanServiceServer.PendingPayments),
		unary("SendPaymentReminders", LoanServiceServer.SendPaymentReminders),
		unary("GenerateMonthlyReport", LoanServiceServer.GenerateMonthlyReport),
		unary("GetMonthlyReport", LoanServiceServer.GetMonthlyReport),
		unary("GetLoanPerformance", LoanServiceServer.GetLoanPerformance),
		unary("GetLoanSummary", LoanServiceServer.GetLoanSummary),
		unary("GetAmortizationSchedule", LoanServiceServer.GetAmortizationSchedule),
		unary("ExportAmortizationSchedule", LoanServiceServer.ExportAmortizationSchedule),
	},
	Streams: []grpclib.StreamDesc{},
}

// unary builds the method descriptor that decodes Req, runs the interceptor
// chain and dispatches to call.
func unary[Req, Resp any](name string, call func(LoanServiceServer, context.Context, *Req) (*Resp, error)) grpclib.MethodDesc {
	fullMethod := FullMethod(name)
	return grpclib.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(LoanServiceServer), ctx, in)
			}
			info := &grpclib.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(LoanServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
