// Package errors provides structured error types for the landex pipelines.
// All errors include a category, code, message, and optional cause for
// consistent error handling across components. landex is a batch one-shot
// tool, so no error is retryable; failures surface immediately.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by pipeline component.
type ErrorCategory string

const (
	ErrCategoryConfig   ErrorCategory = "CONFIG"
	ErrCategoryDecode   ErrorCategory = "DECODE"
	ErrCategoryLookup   ErrorCategory = "LOOKUP"
	ErrCategoryQuery    ErrorCategory = "QUERY"
	ErrCategoryReshape  ErrorCategory = "RESHAPE"
	ErrCategoryFraction ErrorCategory = "FRACTION"
	ErrCategoryIO       ErrorCategory = "IO"
)

// Error codes for each category.
const (
	// Config codes
	CodeInvalidConfig     = "INVALID_CONFIG"
	CodeMissingOutputPath = "MISSING_OUTPUT_PATH"

	// Decode codes
	CodeMalformedCategory = "MALFORMED_CATEGORY"

	// Lookup codes
	CodeMissingColumn = "MISSING_COLUMN"
	CodeBadID         = "BAD_ID"

	// Query codes
	CodeQueryFailed = "QUERY_FAILED"
	CodeBadYear     = "BAD_YEAR"
	CodeBadValue    = "BAD_VALUE"

	// IO codes
	CodeReadFailed  = "READ_FAILED"
	CodeWriteFailed = "WRITE_FAILED"
)

// Error is the structured error type used throughout landex.
type Error struct {
	Category ErrorCategory
	Code     string
	Message  string
	Details  map[string]interface{}
	Cause    error
}

// Error returns a formatted error string.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new Error.
func New(category ErrorCategory, code, message string) *Error {
	return &Error{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// Newf creates a new Error with a formatted message.
func Newf(category ErrorCategory, code, format string, args ...interface{}) *Error {
	return New(category, code, fmt.Sprintf(format, args...))
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *Error {
	return &Error{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    cause,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// IsMalformedCategory reports whether err (or its chain) signals a category
// string that does not decompose per the token-position rules.
func IsMalformedCategory(err error) bool {
	return errors.Is(err, New(ErrCategoryDecode, CodeMalformedCategory, ""))
}

// IsMissingOutputPath reports whether err (or its chain) signals that file
// output was requested without a configured destination.
func IsMissingOutputPath(err error) bool {
	return errors.Is(err, New(ErrCategoryConfig, CodeMissingOutputPath, ""))
}
