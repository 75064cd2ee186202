package grpc_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/app"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/dto"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/usecase"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/infrastructure/audit"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/infrastructure/clock"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/infrastructure/notification"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/infrastructure/persistence/memory"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/infrastructure/reportstore"
	grpcpres "github.com/garciaurbina83/Rental-Properties-New-sub000/internal/presentation/grpc"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/auth"
)

var today = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startServer serves a loan service backed by an in-memory store and
// returns a connected client.
func startServer(t *testing.T, jwt *auth.JWTService) *grpc.ClientConn {
	t.Helper()
	logger := testLogger()
	store := memory.NewStore()
	effects := usecase.NewSideEffects(
		audit.NewLogRecorder(logger),
		notification.NewLogNotifier(logger),
		nil,
		nil,
		logger,
	)
	uc := app.NewUseCases(app.Ports{
		Loans:      store.Loans(),
		Payments:   store.Payments(),
		Documents:  store.Documents(),
		UnitOfWork: store.UnitOfWork(),
		Reports:    reportstore.NewFileStore(t.TempDir()),
		Clock:      clock.Fixed(today),
		Effects:    effects,
	}, app.Settings{LateFees: model.DefaultLateFeePolicy()})

	srv := grpcpres.NewServer(grpcpres.NewLoanHandler(uc, logger), logger, grpcpres.ServerOptions{JWT: jwt})
	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.ServeListener(lis) }()
	t.Cleanup(srv.GracefulStop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(grpcpres.CodecName)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func call[Resp any](t *testing.T, ctx context.Context, conn *grpc.ClientConn, method string, req any) (*Resp, error) {
	t.Helper()
	out := new(Resp)
	err := conn.Invoke(ctx, grpcpres.FullMethod(method), req, out)
	return out, err
}

func createLoanRequest(number string) dto.CreateLoanRequest {
	return dto.CreateLoanRequest{
		LoanNumber: number,
		PropertyID: "property-1",
		BorrowerID: "borrower-1",
		LoanTermsInput: dto.LoanTermsInput{
			LoanType:        "mortgage",
			PrincipalAmount: decimal.NewFromInt(100000),
			InterestRate:    decimal.NewFromInt(6),
			TermMonths:      120,
			PaymentDay:      15,
			StartDate:       today,
		},
		LenderInput: dto.LenderInput{LenderName: "First Bank"},
		Actor:       "clerk",
	}
}

func TestLoanService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	conn := startServer(t, nil)

	loan, err := call[dto.LoanResponse](t, ctx, conn, "CreateLoan", createLoanRequest("LN-1"))
	require.NoError(t, err)
	assert.Equal(t, "PENDING", loan.Status)
	assert.Equal(t, "1110.21", loan.MonthlyPayment.StringFixed(2))

	active, err := call[dto.LoanResponse](t, ctx, conn, "ActivateLoan", dto.LoanActionRequest{LoanID: loan.ID, Actor: "clerk"})
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", active.Status)

	payment, err := call[dto.PaymentResponse](t, ctx, conn, "CreatePayment", dto.CreatePaymentRequest{
		LoanID:        loan.ID,
		Amount:        decimal.RequireFromString("1110.21"),
		DueDate:       today.AddDate(0, 0, 30),
		PaymentDate:   today,
		PaymentMethod: "bank_transfer",
		Actor:         "clerk",
	})
	require.NoError(t, err)

	processed, err := call[dto.ProcessPaymentResponse](t, ctx, conn, "ProcessPayment", dto.ProcessPaymentRequest{PaymentID: payment.ID, Actor: "clerk"})
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", processed.Payment.Status)
	assert.Equal(t, "500.00", processed.Payment.InterestAmount.StringFixed(2))
	assert.Equal(t, "99389.79", processed.Loan.RemainingBalance.StringFixed(2))

	_, err = call[dto.PaymentResponse](t, ctx, conn, "ProcessPayment", dto.ProcessPaymentRequest{PaymentID: payment.ID, Actor: "clerk"})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	list, err := call[grpcpres.ListPaymentsResponse](t, ctx, conn, "ListPayments", dto.ListPaymentsRequest{LoanID: loan.ID})
	require.NoError(t, err)
	assert.Len(t, list.Payments, 1)

	export, err := call[grpcpres.ExportScheduleResponse](t, ctx, conn, "ExportAmortizationSchedule", dto.GetLoanRequest{LoanID: loan.ID})
	require.NoError(t, err)
	assert.Equal(t, "text/csv", export.ContentType)
	assert.Equal(t, 121, strings.Count(export.Data, "\n"))

	report, err := call[model.MonthlyReport](t, ctx, conn, "GenerateMonthlyReport", dto.GenerateMonthlyReportRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2024, report.Period.Year)

	stored, err := call[model.MonthlyReport](t, ctx, conn, "GetMonthlyReport", dto.GetMonthlyReportRequest{Year: 2024, Month: 1})
	require.NoError(t, err)
	assert.Equal(t, report.LoanSummary.ActiveLoans, stored.LoanSummary.ActiveLoans)
}

func TestLoanService_ErrorCodes(t *testing.T) {
	ctx := context.Background()
	conn := startServer(t, nil)

	_, err := call[dto.LoanResponse](t, ctx, conn, "GetLoan", dto.GetLoanRequest{LoanID: "missing"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	bad := createLoanRequest("LN-BAD")
	bad.TermMonths = 0
	_, err = call[dto.LoanResponse](t, ctx, conn, "CreateLoan", bad)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = call[dto.LoanResponse](t, ctx, conn, "CreateLoan", createLoanRequest("LN-DUP"))
	require.NoError(t, err)
	_, err = call[dto.LoanResponse](t, ctx, conn, "CreateLoan", createLoanRequest("LN-DUP"))
	assert.Equal(t, codes.Aborted, status.Code(err))

	_, err = call[dto.LoanResponse](t, ctx, conn, "GetMonthlyReport", dto.GetMonthlyReportRequest{Year: 2023, Month: 7})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestLoanService_Auth(t *testing.T) {
	jwt, err := auth.NewJWTService(auth.JWTConfig{Secret: "grpc-test-secret", Issuer: "loand"})
	require.NoError(t, err)
	conn := startServer(t, jwt)

	withToken := func(user string, roles ...string) context.Context {
		token, err := jwt.GenerateToken(user, roles)
		require.NoError(t, err)
		return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
	}

	_, err = call[dto.LoanResponse](t, context.Background(), conn, "CreateLoan", createLoanRequest("LN-A"))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = call[dto.LoanResponse](t, withToken("audra", auth.RoleAuditor), conn, "CreateLoan", createLoanRequest("LN-A"))
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	req := createLoanRequest("LN-A")
	req.Actor = "spoofed"
	loan, err := call[dto.LoanResponse](t, withToken("maria", auth.RoleClerk), conn, "CreateLoan", req)
	require.NoError(t, err)

	_, err = call[dto.LoanResponse](t, withToken("audra", auth.RoleAuditor), conn, "GetLoan", dto.GetLoanRequest{LoanID: loan.ID})
	assert.NoError(t, err)

	_, err = call[dto.LoanStatusUpdateResponse](t, withToken("maria", auth.RoleClerk), conn, "UpdateLoanStatuses", grpcpres.SweepRequest{})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}
