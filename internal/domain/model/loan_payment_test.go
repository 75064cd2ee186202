package model_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/apperr"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/valueobject"
)

var firstDue = startDate.AddDate(0, 0, 30)

func paymentDetails(amount, fee string) model.PaymentDetails {
	return model.PaymentDetails{
		PaymentDate: firstDue,
		DueDate:     firstDue,
		Amount:      dec(amount),
		LateFee:     dec(fee),
		Method:      valueobject.PaymentMethodBankTransfer,
	}
}

func newPendingPayment(t *testing.T, loan model.Loan, amount string) model.LoanPayment {
	t.Helper()
	p, err := model.NewLoanPayment(loan, paymentDetails(amount, "0"), "clerk", now)
	require.NoError(t, err)
	return p.ClearEvents()
}

func TestSplitPayment(t *testing.T) {
	loan := newActiveLoan(t)

	split, err := model.SplitPayment(loan, dec("1110.21"), decimal.Zero)
	require.NoError(t, err)
	assert.True(t, dec("500").Equal(split.Interest))
	assert.True(t, dec("610.21").Equal(split.Principal))
	assert.True(t, split.LateFee.IsZero())

	split, err = model.SplitPayment(loan, dec("1000"), dec("55"))
	require.NoError(t, err)
	assert.True(t, dec("445").Equal(split.Principal))

	_, err = model.SplitPayment(loan, dec("400"), decimal.Zero)
	require.Error(t, err)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PAYMENT_BELOW_INTEREST", appErr.Code)

	_, err = model.SplitPayment(loan, dec("520"), dec("50"))
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PAYMENT_BELOW_CHARGES", appErr.Code)
}

func TestNewLoanPayment(t *testing.T) {
	loan := newActiveLoan(t)

	p, err := model.NewLoanPayment(loan, paymentDetails("1110.21", "0"), "clerk", now)
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID())
	assert.Equal(t, loan.ID(), p.LoanID())
	assert.Equal(t, valueobject.PaymentStatusPending, p.Status())
	assert.True(t, p.IsPending())
	assert.True(t, dec("610.21").Equal(p.Principal()))
	assert.True(t, dec("500").Equal(p.Interest()))
	assert.True(t, p.Amount().Equal(p.Principal().Add(p.Interest()).Add(p.LateFee())))

	evts := p.DomainEvents()
	require.Len(t, evts, 1)
	assert.Equal(t, "loan.payment.created", evts[0].EventType())
}

func TestNewLoanPayment_Validation(t *testing.T) {
	active := newActiveLoan(t)

	tests := []struct {
		name   string
		loan   model.Loan
		mutate func(*model.PaymentDetails)
	}{
		{name: "pending loan", loan: newPendingLoan(t), mutate: func(*model.PaymentDetails) {}},
		{name: "zero amount", loan: active, mutate: func(d *model.PaymentDetails) { d.Amount = decimal.Zero }},
		{name: "negative late fee", loan: active, mutate: func(d *model.PaymentDetails) { d.LateFee = dec("-1") }},
		{name: "missing due date", loan: active, mutate: func(d *model.PaymentDetails) { d.DueDate = time.Time{} }},
		{name: "missing method", loan: active, mutate: func(d *model.PaymentDetails) { d.Method = valueobject.PaymentMethod{} }},
		{name: "below interest", loan: active, mutate: func(d *model.PaymentDetails) { d.Amount = dec("499.99") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := paymentDetails("1110.21", "0")
			tt.mutate(&d)
			_, err := model.NewLoanPayment(tt.loan, d, "clerk", now)
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err))
		})
	}
}

func TestLoanPayment_IsLate(t *testing.T) {
	p := newPendingPayment(t, newActiveLoan(t), "1110.21")

	assert.False(t, p.IsLate(firstDue))
	assert.False(t, p.IsLate(firstDue.AddDate(0, 0, -1)))
	assert.True(t, p.IsLate(firstDue.AddDate(0, 0, 1)))
	assert.Equal(t, 12, p.DaysLate(firstDue.AddDate(0, 0, 12)))
	assert.Equal(t, 0, p.DaysLate(firstDue.AddDate(0, 0, -4)))

	completed, err := p.Complete(model.Split{Principal: p.Principal(), Interest: p.Interest()}, "clerk", now)
	require.NoError(t, err)
	assert.False(t, completed.IsLate(firstDue.AddDate(0, 0, 30)), "completed payments are never late")
}

func TestLoanPayment_ApplyLateFee(t *testing.T) {
	policy := model.DefaultLateFeePolicy()
	p := newPendingPayment(t, newActiveLoan(t), "1000")
	asOf := firstDue.AddDate(0, 0, 10)

	fee, err := p.CalculateLateFee(policy, asOf)
	require.NoError(t, err)
	assert.True(t, dec("55").Equal(fee))

	charged, changed, err := p.ApplyLateFee(policy, asOf, now)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, dec("55").Equal(charged.LateFee()))
	assert.True(t, dec("445").Equal(charged.Principal()))
	assert.True(t, p.LateFee().IsZero(), "original is untouched")

	again, changed, err := charged.ApplyLateFee(policy, asOf, now)
	require.NoError(t, err)
	assert.False(t, changed, "same as-of date yields the same fee")
	assert.True(t, dec("55").Equal(again.LateFee()))

	later, changed, err := charged.ApplyLateFee(policy, asOf.AddDate(0, 0, 5), now)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, dec("60").Equal(later.LateFee()), "fee is recomputed, not added on top")
}

func TestLoanPayment_SettleLateFee(t *testing.T) {
	policy := model.DefaultLateFeePolicy()
	p := newPendingPayment(t, newActiveLoan(t), "520")

	// 30 days late: 26 base plus 13 past grace, but only 20 is left after interest.
	capped, changed, err := p.SettleLateFee(policy, dec("500"), firstDue.AddDate(0, 0, 30), now)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, dec("20").Equal(capped.LateFee()))
	assert.True(t, capped.Principal().IsZero())

	cleared, changed, err := capped.SettleLateFee(policy, dec("500"), firstDue, now)
	require.NoError(t, err)
	assert.True(t, changed, "an on-time as-of date drops the earlier fee")
	assert.True(t, cleared.LateFee().IsZero())
	assert.True(t, dec("20").Equal(cleared.Principal()))
}

func TestLoanPayment_Complete(t *testing.T) {
	p := newPendingPayment(t, newActiveLoan(t), "1110.21")
	split := model.Split{Principal: dec("600"), Interest: dec("500"), LateFee: dec("10.21")}

	done, err := p.Complete(split, "manager", now)
	require.NoError(t, err)
	assert.Equal(t, valueobject.PaymentStatusCompleted, done.Status())
	assert.True(t, done.IsCompleted())
	assert.Equal(t, "manager", done.ProcessedBy())
	assert.Equal(t, now, done.ProcessedAt())
	assert.True(t, dec("600").Equal(done.Principal()))
	assert.True(t, dec("10.21").Equal(done.LateFee()))

	_, err = done.Complete(split, "manager", now)
	require.Error(t, err)
	assert.True(t, apperr.IsPaymentState(err))

	_, err = done.Cancel("manager", "duplicate", now)
	assert.True(t, apperr.IsPaymentState(err))

	_, err = done.CalculateLateFee(model.DefaultLateFeePolicy(), now)
	assert.True(t, apperr.IsValidation(err))
}

func TestLoanPayment_Cancel(t *testing.T) {
	loan := newActiveLoan(t)
	d := paymentDetails("1110.21", "0")
	d.Notes = "wire pending"
	p, err := model.NewLoanPayment(loan, d, "clerk", now)
	require.NoError(t, err)

	cancelled, err := p.Cancel("manager", "entered twice", now)
	require.NoError(t, err)
	assert.Equal(t, valueobject.PaymentStatusCancelled, cancelled.Status())
	assert.Equal(t, "wire pending\nCancelled: entered twice", cancelled.Notes())

	_, err = cancelled.Complete(model.Split{}, "manager", now)
	assert.True(t, apperr.IsPaymentState(err))
}

func TestLoanDocument_Verify(t *testing.T) {
	doc, err := model.NewLoanDocument("loan-1", "deed", "s3://docs/deed.pdf", "signed deed", now)
	require.NoError(t, err)
	assert.False(t, doc.IsVerified)

	verified := doc.Verify("auditor", now)
	assert.True(t, verified.IsVerified)
	assert.Equal(t, "auditor", verified.VerifiedBy)

	again := verified.Verify("someone-else", now.Add(time.Hour))
	assert.Equal(t, "auditor", again.VerifiedBy)
	assert.Equal(t, now, again.VerifiedAt)

	_, err = model.NewLoanDocument("loan-1", "", "ref", "", now)
	assert.True(t, apperr.IsValidation(err))
}
