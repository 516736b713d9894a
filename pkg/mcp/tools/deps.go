// Package tools provides the MCP tools exposed by aecdm-mcp.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aecdm-mcp/pkg/aecdm"
	"github.com/ekaya-inc/aecdm-mcp/pkg/analysis"
	"github.com/ekaya-inc/aecdm-mcp/pkg/workpool"
)

// AECDMClient is the slice of the AEC Data Model API the tools use.
type AECDMClient interface {
	analysis.GeometrySource
	GetHubs(ctx context.Context) ([]aecdm.Hub, error)
	GetProjects(ctx context.Context, hubID string) ([]aecdm.Project, error)
	GetElementGroupsByProject(ctx context.Context, projectID string) ([]aecdm.ElementGroup, error)
	GetElementsByCategory(ctx context.Context, elementGroupID, category string) ([]aecdm.Element, error)
	GetElementsByFilter(ctx context.Context, elementGroupID, filter string) ([]aecdm.Element, error)
}

// ToolDeps contains dependencies shared by the AEC Data Model tools.
type ToolDeps struct {
	Client           AECDMClient
	Analyzer         *analysis.Analyzer
	Pool             *workpool.Pool
	DefaultThreshold float64
	// AccessToken is the configured token, used when the request carries none.
	AccessToken string
	Logger      *zap.Logger
}

// RegisterAll registers every tool on s.
func RegisterAll(s *server.MCPServer, deps *ToolDeps, version string) {
	RegisterHealthTool(s, version, deps)
	RegisterTokenTool(s, deps)
	RegisterListingTools(s, deps)
	RegisterElementTools(s, deps)
	RegisterClashTool(s, deps)
	RegisterContainmentTools(s, deps)
}

// jsonResult marshals v as the tool's text content.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

// upstreamResult converts a client error into a tool result, or returns it as
// a Go error when it is not actionable.
func upstreamResult(err error) (*mcp.CallToolResult, error) {
	if result := AsErrorResult(err); result != nil {
		return result, nil
	}
	return nil, err
}
