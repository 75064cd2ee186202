package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// LoanType – immutable value object
// ---------------------------------------------------------------------------

// LoanType classifies what a loan finances.
type LoanType struct {
	value string
}

var (
	LoanTypeMortgage   = LoanType{value: "mortgage"}
	LoanTypeRenovation = LoanType{value: "renovation"}
	LoanTypeEquity     = LoanType{value: "equity"}
	LoanTypePersonal   = LoanType{value: "personal"}
	LoanTypeBusiness   = LoanType{value: "business"}
	LoanTypeOther      = LoanType{value: "other"}
)

var validLoanTypes = map[string]LoanType{
	LoanTypeMortgage.value:   LoanTypeMortgage,
	LoanTypeRenovation.value: LoanTypeRenovation,
	LoanTypeEquity.value:     LoanTypeEquity,
	LoanTypePersonal.value:   LoanTypePersonal,
	LoanTypeBusiness.value:   LoanTypeBusiness,
	LoanTypeOther.value:      LoanTypeOther,
}

// NewLoanType creates a LoanType from a raw string.
func NewLoanType(s string) (LoanType, error) {
	v, ok := validLoanTypes[s]
	if !ok {
		return LoanType{}, fmt.Errorf("invalid loan type: %q", s)
	}
	return v, nil
}

func (t LoanType) String() string { return t.value }
func (t LoanType) IsZero() bool { return t.value == "" }
func (t LoanType) Equal(other LoanType) bool { return t.value == other.value }

// ---------------------------------------------------------------------------
// PaymentMethod – immutable value object
// ---------------------------------------------------------------------------

// PaymentMethod is the channel a payment was made through.
type PaymentMethod struct {
	value string
}

var (
	PaymentMethodCash         = PaymentMethod{value: "cash"}
	PaymentMethodBankTransfer = PaymentMethod{value: "bank_transfer"}
	PaymentMethodCheck        = PaymentMethod{value: "check"}
	PaymentMethodCard         = PaymentMethod{value: "card"}
	PaymentMethodDirectDebit  = PaymentMethod{value: "direct_debit"}
	PaymentMethodOther        = PaymentMethod{value: "other"}
)

var validPaymentMethods = map[string]PaymentMethod{
	PaymentMethodCash.value:         PaymentMethodCash,
	PaymentMethodBankTransfer.value: PaymentMethodBankTransfer,
	PaymentMethodCheck.value:        PaymentMethodCheck,
	PaymentMethodCard.value:         PaymentMethodCard,
	PaymentMethodDirectDebit.value:  PaymentMethodDirectDebit,
	PaymentMethodOther.value:        PaymentMethodOther,
}

// NewPaymentMethod creates a PaymentMethod from a raw string.
func NewPaymentMethod(s string) (PaymentMethod, error) {
	v, ok := validPaymentMethods[s]
	if !ok {
		return PaymentMethod{}, fmt.Errorf("invalid payment method: %q", s)
	}
	return v, nil
}

func (m PaymentMethod) String() string { return m.value }
func (m PaymentMethod) IsZero() bool { return m.value == "" }
func (m PaymentMethod) Equal(other PaymentMethod) bool { return m.value == other.value }
