package tools

import (
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ekaya-inc/ekaya-introspect/pkg/apperrors"
)

// ErrorResponse represents a structured error in tool results.
// It is returned as a tool result with IsError set so the client sees the
// details instead of a bare protocol error.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewErrorResult creates a tool result containing a structured error.
// Use this for errors the caller can act on (bad arguments, unknown table).
// Connectivity and internal failures are returned as Go errors instead.
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

// sqlStateCodes names the SQLSTATEs a catalog lookup can provoke through
// caller input.
var sqlStateCodes = map[string]string{
	"42P01": "undefined_table",
	"3F000": "invalid_schema_name",
	"42501": "insufficient_privilege",
	"42602": "invalid_name",
}

// EngineErrorCode classifies an introspection error. ok is false for
// failures the caller cannot fix (connection loss, unexpected row shape).
func EngineErrorCode(err error) (code string, ok bool) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidIdentifier):
		return "invalid_identifier", true
	case errors.Is(err, apperrors.ErrInconsistentMetadata):
		return "inconsistent_metadata", true
	case errors.Is(err, apperrors.ErrUnknownRelationKind):
		return "unknown_relation_kind", true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if code, found := sqlStateCodes[pgErr.Code]; found {
			return code, true
		}
	}
	return "", false
}

// engineErrorResult converts err to a structured result when the caller can
// act on it, and returns err unchanged otherwise.
func engineErrorResult(err error) (*mcp.CallToolResult, error) {
	code, ok := EngineErrorCode(err)
	if !ok {
		return nil, err
	}
	message := err.Error()
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		message = pgErr.Message
	}
	return NewErrorResult(code, message), nil
}
