package unit

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a failure class across domains.
type ErrorCode string

// Generic codes.
const (
	ErrCodeUnknown          ErrorCode = "00001"
	ErrCodeInvalidRequest   ErrorCode = "00002"
	ErrCodeNotFound         ErrorCode = "00003"
	ErrCodeAlreadyExists    ErrorCode = "00004"
	ErrCodeTimeout          ErrorCode = "00005"
	ErrCodeInternalError    ErrorCode = "00006"
	ErrCodeValidationFailed ErrorCode = "00007"
)

// Alert domain codes.
const (
	ErrCodeRuleNotFound      ErrorCode = "00100"
	ErrCodeAlertNotFound     ErrorCode = "00101"
	ErrCodeInvalidSeverity   ErrorCode = "00102"
	ErrCodeInvalidOperator   ErrorCode = "00103"
	ErrCodeMetricUnavailable ErrorCode = "00104"
	ErrCodeStoreUnavailable  ErrorCode = "00105"
)

// UnitError is the uniform error type carried across unit boundaries.
type UnitError struct {
	Code    ErrorCode
	Domain  string
	Message string
	Details map[string]any
	Cause   error
}

func (e *UnitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *UnitError) Unwrap() error {
	return e.Cause
}

func (e *UnitError) WithDetails(key string, value any) *UnitError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func (e *UnitError) WithCause(err error) *UnitError {
	e.Cause = err
	return e
}

// Is matches on error code so sentinel UnitErrors work with errors.Is.
func (e *UnitError) Is(target error) bool {
	t, ok := target.(*UnitError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func NewError(code ErrorCode, message string) *UnitError {
	return &UnitError{Code: code, Message: message, Details: make(map[string]any)}
}

func NewDomainError(domain string, code ErrorCode, message string) *UnitError {
	return &UnitError{Code: code, Domain: domain, Message: message, Details: make(map[string]any)}
}

func WrapError(err error, code ErrorCode, message string) *UnitError {
	return &UnitError{Code: code, Message: message, Cause: err, Details: make(map[string]any)}
}

func AsUnitError(err error) (*UnitError, bool) {
	if err == nil {
		return nil, false
	}
	var ue *UnitError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

func IsNotFound(err error) bool {
	if ue, ok := AsUnitError(err); ok {
		return ue.Code == ErrCodeNotFound ||
			ue.Code == ErrCodeRuleNotFound ||
			ue.Code == ErrCodeAlertNotFound
	}
	return errors.Is(err, ErrNotFound)
}

func IsTimeout(err error) bool {
	if ue, ok := AsUnitError(err); ok {
		return ue.Code == ErrCodeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// Common sentinel errors.
var (
	ErrUnknown       = NewError(ErrCodeUnknown, "unknown error")
	ErrInvalidInput  = NewError(ErrCodeInvalidRequest, "invalid input")
	ErrNotFound      = NewError(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists = NewError(ErrCodeAlreadyExists, "resource already exists")
	ErrTimeout       = NewError(ErrCodeTimeout, "operation timeout")
	ErrInternal      = NewError(ErrCodeInternalError, "internal error")
	ErrValidation    = NewError(ErrCodeValidationFailed, "validation failed")
)
