// Package errors provides structured error handling for typeahead.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (word lists, indexes)
//   - 3XX: Lookup and network errors
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and index I/O errors.
	CategoryIO Category = "IO"
	// CategoryLookup indicates suggestion lookup and network errors.
	CategoryLookup Category = "LOOKUP"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeWordsNotFound = "ERR_201_WORDS_NOT_FOUND"
	ErrCodeIndexOpen     = "ERR_202_INDEX_OPEN"
	ErrCodeIndexLocked   = "ERR_203_INDEX_LOCKED"
	ErrCodeCorruptIndex  = "ERR_205_CORRUPT_INDEX"

	// Lookup errors (300-399)
	ErrCodeLookupFailed      = "ERR_301_LOOKUP_FAILED"
	ErrCodeLookupUnavailable = "ERR_302_LOOKUP_UNAVAILABLE"
	ErrCodeLookupTimeout     = "ERR_303_LOOKUP_TIMEOUT"
	ErrCodeLookupCanceled    = "ERR_304_LOOKUP_CANCELED"
	ErrCodeLookupSimulated   = "ERR_305_LOOKUP_SIMULATED"

	// Validation errors (400-499)
	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"
	ErrCodeQueryEmpty   = "ERR_404_QUERY_EMPTY"
	ErrCodeQueryTooLong = "ERR_405_QUERY_TOO_LONG"
	ErrCodeInvalidLimit = "ERR_406_INVALID_LIMIT"

	// Internal errors (500-599)
	ErrCodeInternal    = "ERR_501_INTERNAL"
	ErrCodeLookupPanic = "ERR_502_LOOKUP_PANIC"
	ErrCodeClosed      = "ERR_503_CLOSED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Numeric portion, e.g. "301" from "ERR_301_LOOKUP_FAILED"
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryLookup
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeCorruptIndex:
		return SeverityFatal
	}

	if isRetryableCode(code) {
		return SeverityWarning
	}

	return SeverityError
}

// isRetryableCode reports whether a user-initiated retry can plausibly succeed.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeLookupFailed, ErrCodeLookupUnavailable, ErrCodeLookupTimeout, ErrCodeLookupSimulated:
		return true
	default:
		return false
	}
}
