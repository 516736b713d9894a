package mcp

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aecdm-mcp/pkg/logging"
)

const (
	// maxParamLength bounds logged string arguments (filters can be long).
	maxParamLength = 500
	// maxPreviewLength bounds the logged preview of a tool result.
	maxPreviewLength = 200
)

// ToolCallLogger records every tool call through mcp-go hooks, so calls are
// logged the same way over stdio and HTTP.
type ToolCallLogger struct {
	logger *zap.Logger

	// startTimes tracks when tool calls begin, keyed by request ID.
	startTimes sync.Map
}

// NewToolCallLogger creates a ToolCallLogger.
func NewToolCallLogger(logger *zap.Logger) *ToolCallLogger {
	return &ToolCallLogger{
		logger: logger.Named("mcp-tools"),
	}
}

// Hooks returns mcp-go Hooks configured to capture tool call events.
func (a *ToolCallLogger) Hooks() *server.Hooks {
	hooks := &server.Hooks{}
	hooks.AddBeforeCallTool(a.beforeCallTool)
	hooks.AddAfterCallTool(a.afterCallTool)
	hooks.AddOnError(a.onError)
	return hooks
}

func (a *ToolCallLogger) beforeCallTool(_ context.Context, id any, _ *mcplib.CallToolRequest) {
	a.startTimes.Store(id, time.Now())
}

func (a *ToolCallLogger) afterCallTool(_ context.Context, id any, req *mcplib.CallToolRequest, result *mcplib.CallToolResult) {
	startTime, _ := a.loadAndDeleteStart(id)

	fields := []zap.Field{
		zap.String("tool", req.Params.Name),
		zap.Any("params", sanitizeParams(req.Params.Arguments)),
		zap.Int64("duration_ms", time.Since(startTime).Milliseconds()),
	}
	fields = append(fields, summarizeResult(result)...)

	if result != nil && result.IsError {
		a.logger.Warn("Tool call returned error result", fields...)
		return
	}
	a.logger.Info("Tool call", fields...)
}

func (a *ToolCallLogger) onError(_ context.Context, id any, method mcplib.MCPMethod, message any, err error) {
	if method != mcplib.MethodToolsCall {
		return
	}

	req, ok := message.(*mcplib.CallToolRequest)
	if !ok {
		return
	}

	startTime, _ := a.loadAndDeleteStart(id)
	a.logger.Error("Tool call failed",
		zap.String("tool", req.Params.Name),
		zap.Any("params", sanitizeParams(req.Params.Arguments)),
		zap.Int64("duration_ms", time.Since(startTime).Milliseconds()),
		zap.String("error", logging.SanitizeError(err)))
}

func (a *ToolCallLogger) loadAndDeleteStart(id any) (time.Time, bool) {
	if v, ok := a.startTimes.LoadAndDelete(id); ok {
		return v.(time.Time), true
	}
	return time.Now(), false
}

// sanitizeParams prepares tool arguments for logging. Token-like values are
// hashed, long strings truncated and id arrays reduced to their length.
func sanitizeParams(args any) map[string]any {
	params, ok := args.(map[string]any)
	if !ok || len(params) == 0 {
		return nil
	}

	sanitized := make(map[string]any, len(params))
	for k, v := range params {
		sanitized[k] = sanitizeValue(k, v)
	}
	return sanitized
}

func sanitizeValue(key string, value any) any {
	if isSensitiveParam(key) {
		return hashSensitiveValue(value)
	}

	switch val := value.(type) {
	case string:
		return logging.SanitizeText(logging.TruncateString(val, maxParamLength))
	case []any:
		return fmt.Sprintf("[%d items]", len(val))
	case map[string]any:
		return sanitizeParams(val)
	default:
		return value
	}
}

func isSensitiveParam(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range []string{"token", "secret", "password", "authorization"} {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// hashSensitiveValue returns a SHA-256 hash prefix for sensitive values,
// allowing correlation across log entries without storing the actual value.
func hashSensitiveValue(value any) string {
	var str string
	switch v := value.(type) {
	case string:
		str = v
	default:
		str = fmt.Sprintf("%v", v)
	}
	hash := sha256.Sum256([]byte(str))
	return "sha256:" + hex.EncodeToString(hash[:8])
}

// summarizeResult creates compact log fields for a tool result.
func summarizeResult(result *mcplib.CallToolResult) []zap.Field {
	if result == nil {
		return nil
	}

	fields := []zap.Field{zap.Bool("is_error", result.IsError)}
	for _, c := range result.Content {
		if tc, ok := c.(mcplib.TextContent); ok {
			fields = append(fields,
				zap.Int("result_bytes", len(tc.Text)),
				zap.String("preview", logging.TruncateString(tc.Text, maxPreviewLength)))
			break
		}
	}
	return fields
}
