package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
)

// UserMessage returns the short, single-line message shown in a render sink.
// Structured errors contribute their Message; anything else its Error text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var te *TypeaheadError
	if stderrors.As(err, &te) {
		if te.Message != "" {
			return te.Message
		}
		return te.Code
	}

	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return "unknown error"
	}
	return msg
}

// FormatForCLI formats an error for CLI output.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	var te *TypeaheadError
	if !stderrors.As(err, &te) {
		te = Wrap(ErrCodeInternal, err)
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Error: %s\n", te.Message))

	if te.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  Hint: %s\n", te.Suggestion))
	}

	sb.WriteString(fmt.Sprintf("  Code: %s\n", te.Code))

	return sb.String()
}

// jsonError is the JSON representation of an error.
type jsonError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Category   string            `json:"category"`
	Severity   string            `json:"severity"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
	Retryable  bool              `json:"retryable"`
}

// FormatJSON returns a JSON representation of the error.
// Used by the HTTP service for error bodies.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}

	var te *TypeaheadError
	if !stderrors.As(err, &te) {
		te = Wrap(ErrCodeInternal, err)
	}

	je := jsonError{
		Code:       te.Code,
		Message:    te.Message,
		Category:   string(te.Category),
		Severity:   string(te.Severity),
		Details:    te.Details,
		Suggestion: te.Suggestion,
		Retryable:  te.Retryable,
	}

	if te.Cause != nil {
		je.Cause = te.Cause.Error()
	}

	return json.Marshal(je)
}
