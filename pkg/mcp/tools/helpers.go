package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// requiredString reads a non-blank string argument and returns it verbatim;
// quoted identifiers may carry spaces. A missing or blank argument yields a
// structured error result.
func requiredString(req mcp.CallToolRequest, name string) (string, *mcp.CallToolResult) {
	value, err := req.RequireString(name)
	if err != nil {
		return "", NewErrorResult("invalid_parameters", fmt.Sprintf("parameter '%s' is required", name))
	}
	if strings.TrimSpace(value) == "" {
		return "", NewErrorResult("invalid_parameters", fmt.Sprintf("parameter '%s' cannot be empty", name))
	}
	return value, nil
}

// jsonResult marshals v as the text content of a tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
