// Package errors provides structured error types for the hiveconnect system.
// All errors include a category, code, message, and retryable flag for
// consistent error handling across components.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by system component.
type ErrorCategory string

const (
	ErrCategoryValidation ErrorCategory = "VALIDATION"
	ErrCategoryMetastore  ErrorCategory = "METASTORE"
	ErrCategoryPlanning   ErrorCategory = "PLANNING"
	ErrCategoryListing    ErrorCategory = "LISTING"
	ErrCategoryResource   ErrorCategory = "RESOURCE"
	ErrCategoryInternal   ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Validation codes
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeUnknownColumn   = "UNKNOWN_COLUMN"

	// Metastore codes
	CodeMetastoreUnavailable = "METASTORE_UNAVAILABLE"
	CodeTableNotFound        = "TABLE_NOT_FOUND"

	// Planning codes
	CodeTooManyPartitions = "TOO_MANY_PARTITIONS"
	CodeUnknownFormat     = "UNKNOWN_FORMAT"
	CodeNotImplemented    = "NOT_IMPLEMENTED"

	// Listing codes
	CodeListingFailed = "LISTING_FAILED"

	// Resource codes
	CodeRegisterFailed = "REGISTER_FAILED"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// HiveError is the structured error type used throughout the system.
type HiveError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Details   map[string]interface{}
	Cause     error
	Retryable bool
}

// Error returns a formatted error string.
func (e *HiveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *HiveError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *HiveError) Is(target error) bool {
	var t *HiveError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new HiveError.
func New(category ErrorCategory, code, message string) *HiveError {
	return &HiveError{
		Category:  category,
		Code:      code,
		Message:   message,
		Retryable: isRetryable(category, code),
	}
}

// Wrap creates a new HiveError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *HiveError {
	return &HiveError{
		Category:  category,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryable(category, code),
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *HiveError) WithDetails(details map[string]interface{}) *HiveError {
	cp := *e
	cp.Details = details
	return &cp
}

// IsRetryable checks whether an error (or its chain) is retryable.
func IsRetryable(err error) bool {
	var he *HiveError
	if errors.As(err, &he) {
		return he.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a HiveError.
func GetCategory(err error) ErrorCategory {
	var he *HiveError
	if errors.As(err, &he) {
		return he.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a HiveError.
func GetCode(err error) string {
	var he *HiveError
	if errors.As(err, &he) {
		return he.Code
	}
	return ""
}

// isRetryable determines if an error code is retryable. Retry, when it
// happens at all, belongs to the calling query-execution layer; the
// planner itself never retries internally.
func isRetryable(category ErrorCategory, code string) bool {
	switch {
	case category == ErrCategoryMetastore && code == CodeMetastoreUnavailable:
		return true
	case category == ErrCategoryListing && code == CodeListingFailed:
		return true
	default:
		return false
	}
}

// Convenience constructors for common errors.

func NewValidationError(code, message string) *HiveError {
	return New(ErrCategoryValidation, code, message)
}

func NewMetastoreError(code, message string, cause error) *HiveError {
	return Wrap(ErrCategoryMetastore, code, message, cause)
}

func NewPlanningError(code, message string) *HiveError {
	return New(ErrCategoryPlanning, code, message)
}

func NewListingError(message string, cause error) *HiveError {
	return Wrap(ErrCategoryListing, CodeListingFailed, message, cause)
}

func NewResourceError(message string, cause error) *HiveError {
	return Wrap(ErrCategoryResource, CodeRegisterFailed, message, cause)
}

func NewInternalError(message string, cause error) *HiveError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
