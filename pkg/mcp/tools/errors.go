package tools

import (
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ekaya-inc/aecdm-mcp/pkg/apperrors"
	"github.com/ekaya-inc/aecdm-mcp/pkg/logging"
)

// ErrorResponse represents a structured error in tool results.
// It is returned as a successful tool call so the client model sees the
// details instead of a bare protocol failure.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewErrorResult creates a tool result containing a structured error.
// Use this for recoverable/actionable errors the caller can fix (bad
// arguments, unknown ids, expired token).
//
// Example:
//
//	if len(ids) < 2 {
//	    return NewErrorResult("invalid_parameters", "at least two element ids are required"), nil
//	}
func NewErrorResult(code, message string) *mcp.CallToolResult {
	return NewErrorResultWithDetails(code, message, nil)
}

// NewErrorResultWithDetails creates an error result with additional context.
func NewErrorResultWithDetails(code, message string, details any) *mcp.CallToolResult {
	resp := ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
		Details: details,
	}
	jsonBytes, _ := json.Marshal(resp)
	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}

// errorCodes maps domain sentinel errors to tool error codes. Order matters:
// the first match wins.
var errorCodes = []struct {
	err  error
	code string
}{
	{apperrors.ErrValidation, "invalid_parameters"},
	{apperrors.ErrMissingContainer, "missing_container"},
	{apperrors.ErrUnauthorized, "unauthorized"},
	{apperrors.ErrNotFound, "not_found"},
	{apperrors.ErrGeometryUnavailable, "geometry_unavailable"},
	{apperrors.ErrUpstream, "upstream_error"},
}

// ErrorCode returns the tool error code for err, or "" when err is not an
// actionable domain error.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return ""
}

// AsErrorResult converts actionable domain errors into tool error results.
// It returns nil for anything else; those remain Go errors so the server
// reports them as internal failures.
func AsErrorResult(err error) *mcp.CallToolResult {
	code := ErrorCode(err)
	if code == "" {
		return nil
	}
	return NewErrorResult(code, logging.SanitizeError(err))
}
