package inventory

import (
	"errors"
	"strings"

	"github.com/AkramSamirElhayani/IMS/internal/domain/shared"
	"github.com/go-playground/validator/v10"
)

// ErrorType classifies a failed application operation
type ErrorType string

const (
	ErrorTypeNotFound     ErrorType = "NotFound"
	ErrorTypeValidation   ErrorType = "Validation"
	ErrorTypeConflict     ErrorType = "Conflict"
	ErrorTypeUnauthorized ErrorType = "Unauthorized"
	ErrorTypeUnexpected   ErrorType = "Unexpected"
)

// AppError is the failure half of a Result
type AppError struct {
	Type    ErrorType         `json:"type"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details []ValidationError `json:"details,omitempty"`
}

// ValidationError describes one rejected request field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// NewNotFoundError creates a NotFound AppError
func NewNotFoundError(message string) *AppError {
	return &AppError{Type: ErrorTypeNotFound, Code: shared.ErrNotFound.Code, Message: message}
}

// NewConflictError creates a Conflict AppError
func NewConflictError(message string) *AppError {
	return &AppError{Type: ErrorTypeConflict, Code: shared.ErrAlreadyExists.Code, Message: message}
}

// Result carries either a value or an AppError
type Result[T any] struct {
	Value T
	Err   *AppError
}

// Success wraps a value
func Success[T any](value T) Result[T] {
	return Result[T]{Value: value}
}

// Failure converts err into a failed Result
func Failure[T any](err error) Result[T] {
	return Result[T]{Err: FromError(err)}
}

// IsSuccess reports whether the operation succeeded
func (r Result[T]) IsSuccess() bool {
	return r.Err == nil
}

// IsFailure reports whether the operation failed
func (r Result[T]) IsFailure() bool {
	return r.Err != nil
}

// Error returns the failure as an error, or nil
func (r Result[T]) Error() error {
	if r.Err == nil {
		return nil
	}
	return r.Err
}

// FromError maps domain and validation failures to the application error taxonomy.
// Invariant violations become Validation, NOT_FOUND becomes NotFound,
// uniqueness and version clashes become Conflict, anything else is Unexpected.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return validationFailure(fieldErrs)
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return &AppError{
			Type:    typeForCode(domainErr.Code),
			Code:    domainErr.Code,
			Message: domainErr.Message,
		}
	}

	return &AppError{Type: ErrorTypeUnexpected, Code: "UNEXPECTED", Message: err.Error()}
}

func typeForCode(code string) ErrorType {
	switch {
	case code == shared.ErrNotFound.Code:
		return ErrorTypeNotFound
	case code == shared.ErrAlreadyExists.Code, code == shared.ErrConcurrencyConflict.Code:
		return ErrorTypeConflict
	case code == shared.ErrInsufficientStock.Code, strings.HasPrefix(code, "INVALID_"):
		return ErrorTypeValidation
	default:
		return ErrorTypeUnexpected
	}
}
