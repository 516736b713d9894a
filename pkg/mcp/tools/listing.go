package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterListingTools registers hub, project and file (element group) listing.
func RegisterListingTools(s *server.MCPServer, deps *ToolDeps) {
	registerGetHubsTool(s, deps)
	registerGetProjectsTool(s, deps)
	registerGetFilesTool(s, deps)
}

func registerGetHubsTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"get_hubs",
		mcp.WithDescription("Get the ACC hubs available to the user. Returns id and name for each hub."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hubs, err := deps.Client.GetHubs(ctx)
		if err != nil {
			return upstreamResult(err)
		}
		return jsonResult(hubs)
	})
}

func registerGetProjectsTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"get_projects",
		mcp.WithDescription("Get the ACC projects from one hub. Use get_hubs first to find the hub id."),
		mcp.WithString(
			"hubId",
			mcp.Required(),
			mcp.Description("Hub id to list projects from"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hubID, err := getRequiredString(req, "hubId")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}

		projects, err := deps.Client.GetProjects(ctx, hubID)
		if err != nil {
			return upstreamResult(err)
		}
		return jsonResult(projects)
	})
}

func registerGetFilesTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"get_files",
		mcp.WithDescription(
			"Get the designs (element groups) in an ACC project. Each result has the "+
				"element group id needed by the element tools and its file version URN.",
		),
		mcp.WithString(
			"projectId",
			mcp.Required(),
			mcp.Description("Project id to list designs from"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projectID, err := getRequiredString(req, "projectId")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}

		groups, err := deps.Client.GetElementGroupsByProject(ctx, projectID)
		if err != nil {
			return upstreamResult(err)
		}
		return jsonResult(groups)
	})
}
