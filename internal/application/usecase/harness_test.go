package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/dto"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/usecase"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/service"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/infrastructure/persistence/memory"
)

var (
	openedAt = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	firstDue = time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// harness wires every use case against an in-memory store.
type harness struct {
	store *memory.Store
	clock *fixedClock
	collaborators

	createLoan      *usecase.CreateLoanUseCase
	activateLoan    *usecase.ChangeLoanStatusUseCase
	markDefault     *usecase.ChangeLoanStatusUseCase
	updateLoan      *usecase.UpdateLoanUseCase
	refinanceLoan   *usecase.RefinanceLoanUseCase
	deleteLoan      *usecase.DeleteLoanUseCase
	getLoan         *usecase.GetLoanUseCase
	listLoans       *usecase.ListLoansUseCase
	updateStatuses  *usecase.UpdateLoanStatusesUseCase
	addDocument     *usecase.AddDocumentUseCase
	verifyDocument  *usecase.VerifyDocumentUseCase
	listDocuments   *usecase.ListDocumentsUseCase
	createPayment   *usecase.CreatePaymentUseCase
	processPayment  *usecase.ProcessPaymentUseCase
	cancelPayment   *usecase.CancelPaymentUseCase
	applyLateFee    *usecase.ApplyLateFeeUseCase
	updateLateFees  *usecase.UpdateLatePaymentsUseCase
	listPayments    *usecase.ListPaymentsUseCase
	pendingPayments *usecase.PendingPaymentsUseCase
	reminders       *usecase.SendPaymentRemindersUseCase
	generateReport  *usecase.GenerateMonthlyReportUseCase
	getReport       *usecase.GetMonthlyReportUseCase
	performance     *usecase.LoanPerformanceUseCase
	summary         *usecase.LoanSummaryUseCase
	schedule        *usecase.AmortizationScheduleUseCase
	reports         *mockReportStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := memory.NewStore()
	clock := &fixedClock{now: openedAt}
	c := newCollaborators()
	fx := c.effects()
	loans, payments, docs, uow := store.Loans(), store.Payments(), store.Documents(), store.UnitOfWork()
	policy := model.DefaultLateFeePolicy()
	builder := service.NewReportBuilder(service.DefaultTopDefaulters)
	reports := &mockReportStore{}

	return &harness{
		store:           store,
		clock:           clock,
		collaborators:   c,
		createLoan:      usecase.NewCreateLoanUseCase(loans, clock, fx),
		activateLoan:    usecase.NewActivateLoanUseCase(loans, clock, fx),
		markDefault:     usecase.NewMarkLoanDefaultUseCase(loans, clock, fx),
		updateLoan:      usecase.NewUpdateLoanUseCase(loans, clock, fx),
		refinanceLoan:   usecase.NewRefinanceLoanUseCase(loans, uow, clock, fx),
		deleteLoan:      usecase.NewDeleteLoanUseCase(loans, clock, fx),
		getLoan:         usecase.NewGetLoanUseCase(loans),
		listLoans:       usecase.NewListLoansUseCase(loans),
		updateStatuses:  usecase.NewUpdateLoanStatusesUseCase(loans, clock, fx),
		addDocument:     usecase.NewAddDocumentUseCase(loans, docs, clock, fx),
		verifyDocument:  usecase.NewVerifyDocumentUseCase(docs, clock, fx),
		listDocuments:   usecase.NewListDocumentsUseCase(loans, docs),
		createPayment:   usecase.NewCreatePaymentUseCase(loans, payments, clock, fx),
		processPayment:  usecase.NewProcessPaymentUseCase(payments, uow, policy, clock, fx),
		cancelPayment:   usecase.NewCancelPaymentUseCase(payments, clock, fx),
		applyLateFee:    usecase.NewApplyLateFeeUseCase(payments, policy, clock, fx),
		updateLateFees:  usecase.NewUpdateLatePaymentsUseCase(payments, policy, clock, fx),
		listPayments:    usecase.NewListPaymentsUseCase(loans, payments, clock),
		pendingPayments: usecase.NewPendingPaymentsUseCase(payments, clock),
		reminders:       usecase.NewSendPaymentRemindersUseCase(loans, payments, clock, fx, 0, nil),
		generateReport:  usecase.NewGenerateMonthlyReportUseCase(loans, payments, reports, builder, clock, fx),
		getReport:       usecase.NewGetMonthlyReportUseCase(reports),
		performance:     usecase.NewLoanPerformanceUseCase(loans, payments, builder),
		summary:         usecase.NewLoanSummaryUseCase(loans, payments, builder, clock),
		schedule:        usecase.NewAmortizationScheduleUseCase(loans),
		reports:         reports,
	}
}

func mortgageRequest(number string) dto.CreateLoanRequest {
	return dto.CreateLoanRequest{
		LoanNumber: number,
		PropertyID: "property-1",
		BorrowerID: "borrower-1",
		LoanTermsInput: dto.LoanTermsInput{
			LoanType:        "mortgage",
			PrincipalAmount: dec("100000"),
			InterestRate:    dec("6"),
			TermMonths:      120,
			PaymentDay:      15,
			StartDate:       openedAt,
		},
		LenderInput: dto.LenderInput{LenderName: "First Bank"},
		Actor:       "clerk",
	}
}

// activeLoan creates and activates a loan from req.
func (h *harness) activeLoan(t *testing.T, req dto.CreateLoanRequest) dto.LoanResponse {
	t.Helper()
	ctx := context.Background()
	created, err := h.createLoan.Execute(ctx, req)
	require.NoError(t, err)
	active, err := h.activateLoan.Execute(ctx, dto.LoanActionRequest{LoanID: created.ID, Actor: "clerk"})
	require.NoError(t, err)
	return active
}

// pendingPayment registers a bank transfer of amount due on due.
func (h *harness) pendingPayment(t *testing.T, loanID, amount string, due time.Time) dto.PaymentResponse {
	t.Helper()
	resp, err := h.createPayment.Execute(context.Background(), dto.CreatePaymentRequest{
		LoanID:        loanID,
		Amount:        dec(amount),
		DueDate:       due,
		PaymentDate:   due,
		PaymentMethod: "bank_transfer",
		Actor:         "clerk",
	})
	require.NoError(t, err)
	return resp
}
