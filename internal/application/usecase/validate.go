package usecase

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/domain/apperr"
)

var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names in errors.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	// Range tags on decimals compare their float value. The domain re-checks
	// with exact arithmetic.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	return v
}

// validateRequest checks req's struct tags and reports the first violation as
// a validation error.
func validateRequest(req any) error {
	err := requestValidator.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		switch fe.Tag() {
		case "required":
			return apperr.Validation("INVALID_REQUEST", "%s is required", fe.Field())
		case "oneof":
			return apperr.Validation("INVALID_REQUEST", "%s must be one of [%s], got %v", fe.Field(), fe.Param(), fe.Value())
		default:
			if fe.Param() != "" {
				return apperr.Validation("INVALID_REQUEST", "%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
			}
			return apperr.Validation("INVALID_REQUEST", "%s failed %s", fe.Field(), fe.Tag())
		}
	}
	return apperr.Validation("INVALID_REQUEST", "invalid request: %v", err).WithCause(err)
}
