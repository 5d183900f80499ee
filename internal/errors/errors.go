package errors

import (
	"context"
	stderrors "errors"
	"fmt"
)

// TypeaheadError is the structured error type for typeahead.
// It carries enough context to be logged, rendered to the user, or mapped
// onto a transport error code.
type TypeaheadError struct {
	// Code is the unique error code (e.g., "ERR_301_LOOKUP_FAILED").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Lookup, Validation, ...).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if a user-initiated retry can succeed.
	Retryable bool

	// Suggestion is an actionable hint for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *TypeaheadError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *TypeaheadError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a TypeaheadError with the same code.
func (e *TypeaheadError) Is(target error) bool {
	if t, ok := target.(*TypeaheadError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *TypeaheadError) WithDetail(key, value string) *TypeaheadError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *TypeaheadError) WithSuggestion(suggestion string) *TypeaheadError {
	e.Suggestion = suggestion
	return e
}

// New creates a new TypeaheadError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *TypeaheadError {
	return &TypeaheadError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a TypeaheadError from an existing error.
// The error's message becomes the TypeaheadError message.
func Wrap(code string, err error) *TypeaheadError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *TypeaheadError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// LookupError creates a suggestion lookup error.
// Deadline and cancellation causes are mapped to their dedicated codes.
func LookupError(message string, cause error) *TypeaheadError {
	switch {
	case stderrors.Is(cause, context.DeadlineExceeded):
		return New(ErrCodeLookupTimeout, message, cause)
	case stderrors.Is(cause, context.Canceled):
		return New(ErrCodeLookupCanceled, message, cause)
	}
	return New(ErrCodeLookupFailed, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *TypeaheadError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *TypeaheadError {
	return New(ErrCodeInternal, message, cause)
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var te *TypeaheadError
	if stderrors.As(err, &te) {
		return te.Retryable
	}
	return false
}

// GetCode extracts the error code from a TypeaheadError anywhere in the chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	var te *TypeaheadError
	if stderrors.As(err, &te) {
		return te.Code
	}
	return ""
}

// GetCategory extracts the category from a TypeaheadError.
func GetCategory(err error) Category {
	var te *TypeaheadError
	if stderrors.As(err, &te) {
		return te.Category
	}
	return ""
}
