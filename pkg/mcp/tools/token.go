package tools

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ekaya-inc/aecdm-mcp/pkg/auth"
)

// RegisterTokenTool adds get_token_info, which decodes the active APS token
// without revealing it.
func RegisterTokenTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"get_token_info",
		mcp.WithDescription(
			"Describe the Autodesk access token this server is using: client id, scopes, "+
				"and expiry. The token itself is never returned. Use this when API calls fail "+
				"with unauthorized errors.",
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		token, ok := auth.GetToken(ctx)
		if !ok {
			token = deps.AccessToken
		}

		info, err := auth.Inspect(token, time.Now())
		if errors.Is(err, auth.ErrNoToken) {
			return NewErrorResult("unauthorized", "no access token configured; set APS_ACCESS_TOKEN"), nil
		}
		if err != nil {
			return NewErrorResult("invalid_token", err.Error()), nil
		}
		return jsonResult(info)
	})
}
