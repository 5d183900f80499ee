// Package mcp exposes typeahead suggestions as Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"
	"fmt"

	terrors "github.com/Aman-CERP/typeahead/internal/errors"
)

// Custom MCP error codes for typeahead.
const (
	// ErrCodeUnavailable indicates the suggestion backend cannot be reached.
	ErrCodeUnavailable = -32001

	// ErrCodeLookupFailed indicates the backend returned an error.
	ErrCodeLookupFailed = -32002

	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout = -32003

	// Standard JSON-RPC error codes.
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// Sentinel errors for internal use.
var (
	// ErrToolNotFound indicates the requested tool does not exist.
	ErrToolNotFound = errors.New("tool not found")

	// ErrInvalidParams indicates invalid parameters were provided.
	ErrInvalidParams = errors.New("invalid parameters")

	// ErrMetricsDisabled indicates telemetry is not collected.
	ErrMetricsDisabled = errors.New("metrics disabled")
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts internal errors to MCP errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}

	var te *terrors.TypeaheadError
	if errors.As(err, &te) {
		return mapTypeaheadError(te)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request timed out."}
	case errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request was canceled."}
	case errors.Is(err, ErrToolNotFound):
		return &MCPError{Code: ErrCodeMethodNotFound, Message: "Tool not found."}
	case errors.Is(err, ErrInvalidParams):
		return &MCPError{Code: ErrCodeInvalidParams, Message: "Invalid parameters."}
	case errors.Is(err, ErrMetricsDisabled):
		return &MCPError{Code: ErrCodeInvalidRequest, Message: "Telemetry is disabled. Set telemetry.enabled: true."}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: "Internal server error."}
	}
}

// NewInvalidParamsError creates an error for invalid parameters with a custom message.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{
		Code:    ErrCodeInvalidParams,
		Message: msg,
	}
}

// NewMethodNotFoundError creates an error for unknown tools.
func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{
		Code:    ErrCodeMethodNotFound,
		Message: fmt.Sprintf("Tool '%s' not found.", name),
	}
}

func mapTypeaheadError(te *terrors.TypeaheadError) *MCPError {
	message := te.Message
	if te.Suggestion != "" {
		message = fmt.Sprintf("%s %s", te.Message, te.Suggestion)
	}

	switch te.Code {
	case terrors.ErrCodeLookupTimeout, terrors.ErrCodeLookupCanceled:
		return &MCPError{Code: ErrCodeTimeout, Message: message}
	case terrors.ErrCodeLookupUnavailable:
		return &MCPError{Code: ErrCodeUnavailable, Message: message}
	}

	switch te.Category {
	case terrors.CategoryLookup:
		return &MCPError{Code: ErrCodeLookupFailed, Message: message}
	case terrors.CategoryValidation:
		return &MCPError{Code: ErrCodeInvalidParams, Message: message}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	}
}
