package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeaheadError_Unwrap_PreservesCause(t *testing.T) {
	// Given: an underlying error
	cause := errors.New("connection refused")

	// When: wrapping it
	err := New(ErrCodeLookupUnavailable, "suggestion service unavailable", cause)

	// Then: the chain is preserved
	require.NotNil(t, err)
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
}

func TestTypeaheadError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{"config", ErrCodeConfigInvalid, "bad debounce", "[ERR_102_CONFIG_INVALID] bad debounce"},
		{"lookup", ErrCodeLookupFailed, "network error", "[ERR_301_LOOKUP_FAILED] network error"},
		{"internal", ErrCodeLookupPanic, "lookup panicked", "[ERR_502_LOOKUP_PANIC] lookup panicked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, New(tt.code, tt.message, nil).Error())
		})
	}
}

func TestTypeaheadError_Is_MatchesByCode(t *testing.T) {
	// Given: two errors with the same code and different messages
	a := New(ErrCodeLookupTimeout, "first", nil)
	b := New(ErrCodeLookupTimeout, "second", nil)
	other := New(ErrCodeLookupFailed, "first", nil)

	// Then: Is matches by code only
	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, other))
}

func TestNew_DerivesCategoryAndSeverity(t *testing.T) {
	tests := []struct {
		code      string
		category  Category
		severity  Severity
		retryable bool
	}{
		{ErrCodeConfigNotFound, CategoryConfig, SeverityError, false},
		{ErrCodeWordsNotFound, CategoryIO, SeverityError, false},
		{ErrCodeCorruptIndex, CategoryIO, SeverityFatal, false},
		{ErrCodeLookupFailed, CategoryLookup, SeverityWarning, true},
		{ErrCodeLookupCanceled, CategoryLookup, SeverityError, false},
		{ErrCodeInvalidLimit, CategoryValidation, SeverityError, false},
		{ErrCodeLookupPanic, CategoryInternal, SeverityError, false},
		{"bad", CategoryInternal, SeverityError, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "msg", nil)
			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.severity, err.Severity)
			assert.Equal(t, tt.retryable, err.Retryable)
		})
	}
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestLookupError_MapsContextCauses(t *testing.T) {
	assert.Equal(t, ErrCodeLookupTimeout, LookupError("slow", context.DeadlineExceeded).Code)
	assert.Equal(t, ErrCodeLookupCanceled, LookupError("gone", fmt.Errorf("call: %w", context.Canceled)).Code)
	assert.Equal(t, ErrCodeLookupFailed, LookupError("boom", errors.New("boom")).Code)
}

func TestGetCode_FindsCodeThroughWrapping(t *testing.T) {
	// Given: a structured error wrapped with fmt.Errorf
	inner := ValidationError("limit must be positive", nil)
	wrapped := fmt.Errorf("handler: %w", inner)

	// Then: the code and category are still reachable
	assert.Equal(t, ErrCodeInvalidInput, GetCode(wrapped))
	assert.Equal(t, CategoryValidation, GetCategory(wrapped))
	assert.Equal(t, "", GetCode(errors.New("plain")))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.False(t, IsRetryable(wrapped))
	assert.True(t, IsRetryable(fmt.Errorf("x: %w", LookupError("down", nil))))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("network error (simulated)"), "network error (simulated)"},
		{"structured", LookupError("service unavailable", errors.New("dial tcp")), "service unavailable"},
		{"structured without message", New(ErrCodeInternal, "", nil), ErrCodeInternal},
		{"wrapped structured", fmt.Errorf("x: %w", New(ErrCodeLookupFailed, "boom", nil)), "boom"},
		{"blank", errors.New("   "), "unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UserMessage(tt.err))
		})
	}
}

func TestFormatForCLI_IncludesHintAndCode(t *testing.T) {
	// Given: an error with a suggestion
	err := ConfigError("invalid debounce", nil).WithSuggestion("use a duration like 300ms")

	// When: formatting for the CLI
	out := FormatForCLI(err)

	// Then: message, hint, and code are present
	assert.Contains(t, out, "Error: invalid debounce")
	assert.Contains(t, out, "Hint: use a duration like 300ms")
	assert.Contains(t, out, "Code: ERR_102_CONFIG_INVALID")
	assert.Equal(t, "", FormatForCLI(nil))
}

func TestFormatJSON_PlainErrorBecomesInternal(t *testing.T) {
	// Given: a plain error
	data, err := FormatJSON(errors.New("kaboom"))
	require.NoError(t, err)

	// When: decoding
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	// Then: it is reported as an internal error with its cause
	assert.Equal(t, ErrCodeInternal, decoded["code"])
	assert.Equal(t, "kaboom", decoded["message"])
	assert.Equal(t, "kaboom", decoded["cause"])
	assert.Equal(t, false, decoded["retryable"])
}

func TestFormatJSON_IncludesDetails(t *testing.T) {
	err := New(ErrCodeQueryTooLong, "query too long", nil).WithDetail("max", "256")

	data, fmtErr := FormatJSON(err)
	require.NoError(t, fmtErr)

	assert.Contains(t, string(data), `"details":{"max":"256"}`)
	assert.Contains(t, string(data), `"category":"VALIDATION"`)
}
