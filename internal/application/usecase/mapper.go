package usecase

import (
	"time"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/application/dto"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/apperr"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/model"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/valueobject"
	"github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/money"
)

func toLoanResponse(l model.Loan) dto.LoanResponse {
	lender := l.Lender()
	return dto.LoanResponse{
		ID:               l.ID(),
		LoanNumber:       l.LoanNumber(),
		PropertyID:       l.PropertyID(),
		BorrowerID:       l.BorrowerID(),
		RefinancedFromID: l.RefinancedFromID(),
		LoanType:         l.Type().String(),
		PrincipalAmount:  money.Cents(l.Principal()),
		InterestRate:     l.InterestRate(),
		TermMonths:       l.TermMonths(),
		PaymentDay:       l.PaymentDay(),
		StartDate:        l.StartDate(),
		EndDate:          l.EndDate(),
		MonthlyPayment:   money.Cents(l.MonthlyPayment()),
		Status:           l.Status().String(),
		RemainingBalance: money.Cents(l.RemainingBalance()),
		LastPaymentDate:  optionalTime(l.LastPaymentDate()),
		NextPaymentDate:  optionalTime(l.NextPaymentDate()),
		LenderName:       lender.Name,
		LenderContact:    lender.Contact,
		Notes:            lender.Notes,
		CreatedAt:        l.CreatedAt(),
		UpdatedAt:        l.UpdatedAt(),
	}
}

func toPaymentResponse(p model.LoanPayment, today time.Time) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:              p.ID(),
		LoanID:          p.LoanID(),
		PaymentDate:     p.PaymentDate(),
		DueDate:         p.DueDate(),
		Amount:          money.Cents(p.Amount()),
		PrincipalAmount: money.Cents(p.Principal()),
		InterestAmount:  money.Cents(p.Interest()),
		LateFee:         money.Cents(p.LateFee()),
		PaymentMethod:   p.Method().String(),
		ReferenceNumber: p.ReferenceNumber(),
		Notes:           p.Notes(),
		Status:          p.Status().String(),
		IsLate:          p.IsLate(today),
		ProcessedBy:     p.ProcessedBy(),
		ProcessedAt:     optionalTime(p.ProcessedAt()),
		CreatedAt:       p.CreatedAt(),
		UpdatedAt:       p.UpdatedAt(),
	}
}

func toPaymentResponses(payments []model.LoanPayment, today time.Time) []dto.PaymentResponse {
	out := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p, today))
	}
	return out
}

func toDocumentResponse(d model.LoanDocument) dto.DocumentResponse {
	return dto.DocumentResponse{
		ID:           d.ID,
		LoanID:       d.LoanID,
		DocumentType: d.DocumentType,
		FileRef:      d.FileRef,
		Description:  d.Description,
		UploadDate:   d.UploadDate,
		IsVerified:   d.IsVerified,
		VerifiedBy:   d.VerifiedBy,
		VerifiedAt:   optionalTime(d.VerifiedAt),
	}
}

func toLoanTerms(in dto.LoanTermsInput) (model.LoanTerms, error) {
	loanType, err := valueobject.NewLoanType(in.LoanType)
	if err != nil {
		return model.LoanTerms{}, apperr.Validation("INVALID_LOAN_TYPE", "%v", err)
	}
	return model.LoanTerms{
		StartDate:    in.StartDate,
		Type:         loanType,
		Principal:    in.PrincipalAmount,
		InterestRate: in.InterestRate,
		TermMonths:   in.TermMonths,
		PaymentDay:   in.PaymentDay,
	}, nil
}

func toLender(in dto.LenderInput) model.Lender {
	return model.Lender{Name: in.LenderName, Contact: in.LenderContact, Notes: in.Notes}
}

func parseLoanStatuses(raw []string) ([]valueobject.LoanStatus, error) {
	out := make([]valueobject.LoanStatus, 0, len(raw))
	for _, s := range raw {
		status, err := valueobject.NewLoanStatus(s)
		if err != nil {
			return nil, apperr.Validation("INVALID_STATUS", "%v", err)
		}
		out = append(out, status)
	}
	return out, nil
}

func parsePaymentStatuses(raw []string) ([]valueobject.PaymentStatus, error) {
	out := make([]valueobject.PaymentStatus, 0, len(raw))
	for _, s := range raw {
		status, err := valueobject.NewPaymentStatus(s)
		if err != nil {
			return nil, apperr.Validation("INVALID_STATUS", "%v", err)
		}
		out = append(out, status)
	}
	return out, nil
}

// loanAuditView is the subset of loan state written to audit entries.
func loanAuditView(l model.Loan) map[string]any {
	return map[string]any{
		"status":            l.Status().String(),
		"remaining_balance": money.Cents(l.RemainingBalance()).String(),
		"monthly_payment":   money.Cents(l.MonthlyPayment()).String(),
		"interest_rate":     l.InterestRate().String(),
		"term_months":       l.TermMonths(),
		"next_payment_date": dateString(l.NextPaymentDate()),
	}
}

func paymentAuditView(p model.LoanPayment) map[string]any {
	return map[string]any{
		"status":           p.Status().String(),
		"amount":           money.Cents(p.Amount()).String(),
		"principal_amount": money.Cents(p.Principal()).String(),
		"interest_amount":  money.Cents(p.Interest()).String(),
		"late_fee":         money.Cents(p.LateFee()).String(),
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func dateString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
