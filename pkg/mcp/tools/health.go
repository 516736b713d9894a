package tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type healthResult struct {
	Status          string `json:"status"`
	Version         string `json:"version"`
	TokenConfigured bool   `json:"token_configured"`
	GeometryWorkers int    `json:"geometry_workers,omitempty"`
	Uptime          string `json:"uptime"`
}

// RegisterHealthTool adds a health check tool to the MCP server.
// The tool returns the server status, version and whether a token is set.
func RegisterHealthTool(s *server.MCPServer, version string, deps *ToolDeps) {
	started := time.Now()

	tool := mcp.NewTool(
		"health",
		mcp.WithDescription("Returns server health status and version"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := healthResult{
			Status:  "ok",
			Version: version,
			Uptime:  time.Since(started).Truncate(time.Second).String(),
		}
		if deps != nil {
			result.TokenConfigured = trimString(deps.AccessToken) != ""
			if deps.Pool != nil {
				result.GeometryWorkers = deps.Pool.MaxConcurrent()
			}
		}
		return jsonResult(result)
	})
}
