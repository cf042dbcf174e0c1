package mcp

import (
	"context"
	"sync"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-introspect/pkg/logging"
)

// CallLog writes one structured log entry per MCP tool call.
type CallLog struct {
	logger *zap.Logger

	// startTimes tracks when tool calls begin, keyed by the request the
	// hooks share. JSON-RPC ids repeat across stateless HTTP clients.
	startTimes sync.Map
}

// NewCallLog creates a CallLog writing to logger.
func NewCallLog(logger *zap.Logger) *CallLog {
	return &CallLog{logger: logger.Named("mcp-calls")}
}

// Hooks returns mcp-go Hooks configured to capture tool call events.
func (c *CallLog) Hooks() *server.Hooks {
	hooks := &server.Hooks{}
	hooks.AddBeforeCallTool(c.beforeCallTool)
	hooks.AddAfterCallTool(c.afterCallTool)
	hooks.AddOnError(c.onError)
	return hooks
}

func (c *CallLog) beforeCallTool(_ context.Context, _ any, req *mcplib.CallToolRequest) {
	c.startTimes.Store(req, time.Now())
}

func (c *CallLog) afterCallTool(_ context.Context, id any, req *mcplib.CallToolRequest, result *mcplib.CallToolResult) {
	fields := []zap.Field{
		zap.String("tool", req.Params.Name),
		zap.Any("id", id),
		zap.Any("arguments", req.GetArguments()),
		zap.Duration("elapsed", c.elapsed(req)),
	}
	if result != nil && result.IsError {
		c.logger.Info("Tool call rejected", fields...)
		return
	}
	c.logger.Info("Tool call", fields...)
}

func (c *CallLog) onError(_ context.Context, id any, method mcplib.MCPMethod, message any, err error) {
	if method != mcplib.MethodToolsCall {
		return
	}

	fields := []zap.Field{
		zap.Any("id", id),
		zap.String("error", logging.SanitizeError(err)),
	}
	if req, ok := message.(*mcplib.CallToolRequest); ok {
		fields = append(fields, zap.String("tool", req.Params.Name), zap.Duration("elapsed", c.elapsed(req)))
	}
	c.logger.Error("Tool call failed", fields...)
}

func (c *CallLog) elapsed(req *mcplib.CallToolRequest) time.Duration {
	if v, ok := c.startTimes.LoadAndDelete(req); ok {
		return time.Since(v.(time.Time))
	}
	return 0
}
