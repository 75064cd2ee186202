// Package apperr defines the error kinds surfaced by the loan engine.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers and transports.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindPaymentState Kind = "payment_state"
	KindConflict     Kind = "conflict"
)

// Error is a structured engine error.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithCause attaches an underlying error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// Validation reports bad input shape or a rule violation on the input.
func Validation(code, format string, args ...any) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// NotFound reports an unknown entity id.
func NotFound(resource, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s %s not found", resource, id),
	}
}

// PaymentState reports an illegal payment transition.
func PaymentState(paymentID, status, action string) *Error {
	return &Error{
		Kind:    KindPaymentState,
		Code:    "ILLEGAL_PAYMENT_TRANSITION",
		Message: fmt.Sprintf("cannot %s payment %s in status %s", action, paymentID, status),
	}
}

// Conflict reports a concurrent modification or uniqueness violation.
func Conflict(format string, args ...any) *Error {
	return &Error{
		Kind:    KindConflict,
		Code:    "CONFLICT",
		Message: fmt.Sprintf(format, args...),
	}
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }
func IsPaymentState(err error) bool { return KindOf(err) == KindPaymentState }
func IsConflict(err error) bool { return KindOf(err) == KindConflict }
