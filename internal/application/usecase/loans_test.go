package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/dto"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/usecase"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/apperr"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/port"
)

func TestCreateLoan_Execute(t *testing.T) {
	t.Run("registers a pending loan with its installment", func(t *testing.T) {
		h := newHarness(t)

		resp, err := h.createLoan.Execute(context.Background(), mortgageRequest("LN-0001"))

		require.NoError(t, err)
		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, "PENDING", resp.Status)
		assert.True(t, dec("1110.21").Equal(resp.MonthlyPayment))
		assert.True(t, dec("100000").Equal(resp.RemainingBalance))
		assert.Equal(t, openedAt.AddDate(0, 0, 3600).Format("2006-01-02"), resp.EndDate.Format("2006-01-02"))
		require.NotNil(t, resp.NextPaymentDate)
		assert.Equal(t, firstDue, *resp.NextPaymentDate)
		assert.Nil(t, resp.LastPaymentDate)

		assert.Equal(t, []string{"created"}, h.audit.actions())
		assert.Equal(t, []string{"loan.created"}, h.publisher.types())
	})

	t.Run("rejects a duplicate loan number", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.createLoan.Execute(context.Background(), mortgageRequest("LN-0001"))
		require.NoError(t, err)

		_, err = h.createLoan.Execute(context.Background(), mortgageRequest("LN-0001"))

		require.Error(t, err)
		assert.True(t, apperr.IsConflict(err))
	})

	t.Run("rejects invalid terms", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*dto.CreateLoanRequest)
		}{
			{"zero principal", func(r *dto.CreateLoanRequest) { r.PrincipalAmount = dec("0") }},
			{"negative rate", func(r *dto.CreateLoanRequest) { r.InterestRate = dec("-1") }},
			{"rate above 100", func(r *dto.CreateLoanRequest) { r.InterestRate = dec("100.5") }},
			{"zero term", func(r *dto.CreateLoanRequest) { r.TermMonths = 0 }},
			{"payment day 32", func(r *dto.CreateLoanRequest) { r.PaymentDay = 32 }},
			{"unknown type", func(r *dto.CreateLoanRequest) { r.LoanType = "yacht" }},
			{"missing start date", func(r *dto.CreateLoanRequest) { r.StartDate = time.Time{} }},
			{"missing actor", func(r *dto.CreateLoanRequest) { r.Actor = "" }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				h := newHarness(t)
				req := mortgageRequest("LN-0001")
				tt.mutate(&req)

				_, err := h.createLoan.Execute(context.Background(), req)

				require.Error(t, err)
				assert.True(t, apperr.IsValidation(err), "got %v", err)
			})
		}
	})

	t.Run("surfaces repository failures", func(t *testing.T) {
		repo := &mockLoanRepository{
			saveFunc: func(context.Context, model.Loan) error { return errors.New("disk full") },
		}
		uc := usecase.NewCreateLoanUseCase(repo, fixedClock{now: openedAt}, newCollaborators().effects())

		_, err := uc.Execute(context.Background(), mortgageRequest("LN-0001"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "save loan")
	})
}

func TestChangeLoanStatus_Execute(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	loan := h.activeLoan(t, mortgageRequest("LN-0001"))
	assert.Equal(t, "ACTIVE", loan.Status)

	defaulted, err := h.markDefault.Execute(ctx, dto.LoanActionRequest{LoanID: loan.ID, Actor: "clerk"})
	require.NoError(t, err)
	assert.Equal(t, "DEFAULT", defaulted.Status)

	_, err = h.activateLoan.Execute(ctx, dto.LoanActionRequest{LoanID: loan.ID, Actor: "clerk"})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	assert.Equal(t,
		[]port.NotificationKind{port.NotifyLoanStatusChanged, port.NotifyLoanStatusChanged},
		h.notifier.kinds(),
	)
	assert.Equal(t, "borrower-1", h.notifier.sent[1].borrowerID)
	assert.Equal(t, "DEFAULT", h.notifier.sent[1].payload["new_status"])
}

func TestUpdateLoan_RecomputesFromRemainingBalance(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	loan := h.activeLoan(t, mortgageRequest("LN-0001"))
	term := 240

	updated, err := h.updateLoan.Execute(ctx, dto.UpdateLoanRequest{
		LoanID:     loan.ID,
		TermMonths: &term,
		Actor:      "clerk",
	})

	require.NoError(t, err)
	assert.Equal(t, 240, updated.TermMonths)
	assert.True(t, dec("716.43").Equal(updated.MonthlyPayment), "got %s", updated.MonthlyPayment)
	assert.Equal(t, openedAt.AddDate(0, 0, 7200).Format("2006-01-02"), updated.EndDate.Format("2006-01-02"))
	assert.Contains(t, h.publisher.types(), "loan.terms_updated")
}

func TestRefinanceLoan_Execute(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	loan := h.activeLoan(t, mortgageRequest("LN-0001"))

	req := dto.RefinanceLoanRequest{
		LoanID:         loan.ID,
		NewLoanNumber:  "LN-0002",
		LoanTermsInput: mortgageRequest("x").LoanTermsInput,
		Actor:          "clerk",
	}
	req.InterestRate = dec("4.5")
	req.TermMonths = 360
	req.PrincipalAmount = dec("250000")

	resp, err := h.refinanceLoan.Execute(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, "REFINANCED", resp.Previous.Status)
	assert.Equal(t, "PENDING", resp.Successor.Status)
	assert.Equal(t, loan.ID, resp.Successor.RefinancedFromID)
	assert.True(t, dec("1266.71").Equal(resp.Successor.MonthlyPayment))

	stored, err := h.getLoan.Execute(ctx, dto.GetLoanRequest{LoanID: resp.Successor.ID})
	require.NoError(t, err)
	assert.Equal(t, "LN-0002", stored.LoanNumber)

	t.Run("refinanced loans cannot be refinanced again", func(t *testing.T) {
		req.NewLoanNumber = "LN-0003"
		_, err := h.refinanceLoan.Execute(ctx, req)
		require.Error(t, err)
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("the new number must be free", func(t *testing.T) {
		other := h.activeLoan(t, mortgageRequest("LN-0100"))
		req.LoanID = other.ID
		req.NewLoanNumber = "LN-0002"
		_, err := h.refinanceLoan.Execute(ctx, req)
		assert.True(t, apperr.IsConflict(err))
	})
}

func TestDeleteLoan_CascadesPaymentsAndDocuments(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	loan := h.activeLoan(t, mortgageRequest("LN-0001"))
	payment := h.pendingPayment(t, loan.ID, "1110.21", firstDue)
	doc, err := h.addDocument.Execute(ctx, dto.AddDocumentRequest{
		LoanID: loan.ID, DocumentType: "contract", FileRef: "docs/ln-0001.pdf", Actor: "clerk",
	})
	require.NoError(t, err)

	require.NoError(t, h.deleteLoan.Execute(ctx, dto.LoanActionRequest{LoanID: loan.ID, Actor: "clerk"}))

	_, err = h.getLoan.Execute(ctx, dto.GetLoanRequest{LoanID: loan.ID})
	assert.True(t, apperr.IsNotFound(err))
	_, err = h.store.Payments().FindByID(ctx, payment.ID)
	assert.True(t, apperr.IsNotFound(err))
	_, err = h.store.Documents().FindByID(ctx, doc.ID)
	assert.True(t, apperr.IsNotFound(err))
	assert.Contains(t, h.audit.actions(), "deleted")
}

func TestListLoans_Execute(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.activeLoan(t, mortgageRequest("LN-A"))
	other := mortgageRequest("LN-B")
	other.PropertyID = "property-2"
	h.activeLoan(t, other)
	_, err := h.createLoan.Execute(ctx, mortgageRequest("LN-C"))
	require.NoError(t, err)

	byProperty, err := h.listLoans.Execute(ctx, dto.ListLoansRequest{PropertyID: "property-2"})
	require.NoError(t, err)
	require.Len(t, byProperty, 1)
	assert.Equal(t, "LN-B", byProperty[0].LoanNumber)

	pending, err := h.listLoans.Execute(ctx, dto.ListLoansRequest{Statuses: []string{"PENDING"}})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "LN-C", pending[0].LoanNumber)

	_, err = h.listLoans.Execute(ctx, dto.ListLoansRequest{Statuses: []string{"LOST"}})
	assert.True(t, apperr.IsValidation(err))

	page, err := h.listLoans.Execute(ctx, dto.ListLoansRequest{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)
	assert.NotEmpty(t, a.ID)
}

func TestUpdateLoanStatuses_Execute(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	short := mortgageRequest("LN-SHORT")
	short.TermMonths = 1
	short.PrincipalAmount = dec("1000")
	expired := h.activeLoan(t, short)

	current := h.activeLoan(t, mortgageRequest("LN-CURRENT"))

	// Pay the short loan down to zero outside the processor so only the sweep
	// can close it.
	paidOff := mortgageRequest("LN-ZERO")
	paidOff.PrincipalAmount = dec("500")
	paidOff.TermMonths = 1
	zero := h.activeLoan(t, paidOff)
	stored, err := h.store.Loans().FindByID(ctx, zero.ID)
	require.NoError(t, err)
	drained, err := stored.ApplyPrincipal("manual", dec("500"), openedAt, openedAt, openedAt)
	require.NoError(t, err)
	reopened := model.ReconstructLoan(func() model.LoanSnapshot {
		s := drained.Snapshot()
		s.Status = stored.Status()
		return s
	}())
	require.NoError(t, h.store.Loans().Save(ctx, reopened))

	h.clock.now = openedAt.AddDate(0, 0, 45)
	resp, err := h.updateStatuses.Execute(ctx, "scheduler")

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Defaulted)
	assert.Equal(t, 1, resp.Paid)

	got, err := h.getLoan.Execute(ctx, dto.GetLoanRequest{LoanID: expired.ID})
	require.NoError(t, err)
	assert.Equal(t, "DEFAULT", got.Status)
	got, err = h.getLoan.Execute(ctx, dto.GetLoanRequest{LoanID: zero.ID})
	require.NoError(t, err)
	assert.Equal(t, "PAID", got.Status)
	got, err = h.getLoan.Execute(ctx, dto.GetLoanRequest{LoanID: current.ID})
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", got.Status)

	again, err := h.updateStatuses.Execute(ctx, "scheduler")
	require.NoError(t, err)
	assert.Zero(t, again.Defaulted)
	assert.Zero(t, again.Paid)
}

func TestDocuments(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	loan := h.activeLoan(t, mortgageRequest("LN-0001"))

	doc, err := h.addDocument.Execute(ctx, dto.AddDocumentRequest{
		LoanID: loan.ID, DocumentType: "appraisal", FileRef: "docs/appraisal.pdf", Actor: "clerk",
	})
	require.NoError(t, err)
	assert.False(t, doc.IsVerified)

	verified, err := h.verifyDocument.Execute(ctx, dto.VerifyDocumentRequest{DocumentID: doc.ID, Actor: "auditor"})
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	assert.Equal(t, "auditor", verified.VerifiedBy)

	again, err := h.verifyDocument.Execute(ctx, dto.VerifyDocumentRequest{DocumentID: doc.ID, Actor: "someone-else"})
	require.NoError(t, err)
	assert.Equal(t, "auditor", again.VerifiedBy)

	docs, err := h.listDocuments.Execute(ctx, dto.GetLoanRequest{LoanID: loan.ID})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	_, err = h.addDocument.Execute(ctx, dto.AddDocumentRequest{
		LoanID: "missing", DocumentType: "appraisal", FileRef: "x", Actor: "clerk",
	})
	assert.True(t, apperr.IsNotFound(err))
}
