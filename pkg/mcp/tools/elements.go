package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// elementGroupIDDescription warns callers off the most common mistake.
const elementGroupIDDescription = "Element group id (NOT a file version URN). Get this from get_files."

// RegisterElementTools registers the element listing tools.
func RegisterElementTools(s *server.MCPServer, deps *ToolDeps) {
	registerElementsByCategoryTool(s, deps)
	registerElementsByFilterTool(s, deps)
}

func registerElementsByCategoryTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"get_elements_by_category",
		mcp.WithDescription(
			"Get the instance elements of one category from a design. Possible categories "+
				"include Walls, Windows, Floors, Doors, Furniture, Roofs, Ceilings, "+
				"Electrical Equipment, Structural Framing, Structural Columns, Structural Rebar.",
		),
		mcp.WithString(
			"elementGroupId",
			mcp.Required(),
			mcp.Description(elementGroupIDDescription),
		),
		mcp.WithString(
			"category",
			mcp.Required(),
			mcp.Description("Element category, e.g. 'Walls'"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		elementGroupID, err := getRequiredString(req, "elementGroupId")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		category, err := getRequiredString(req, "category")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}

		elements, err := deps.Client.GetElementsByCategory(ctx, elementGroupID, category)
		if err != nil {
			return upstreamResult(err)
		}
		return jsonResult(elements)
	})
}

func registerElementsByFilterTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"get_elements_by_filter",
		mcp.WithDescription(
			"Get the elements of a design matching an AEC Data Model filter expression. "+
				"Example filter: 'property.name.category'=='Walls' and "+
				"'property.name.Element Context'=='Instance'",
		),
		mcp.WithString(
			"elementGroupId",
			mcp.Required(),
			mcp.Description(elementGroupIDDescription),
		),
		mcp.WithString(
			"filter",
			mcp.Required(),
			mcp.Description("AEC Data Model filter expression"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		elementGroupID, err := getRequiredString(req, "elementGroupId")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		filter, err := getRequiredString(req, "filter")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}

		elements, err := deps.Client.GetElementsByFilter(ctx, elementGroupID, filter)
		if err != nil {
			return upstreamResult(err)
		}
		return jsonResult(elements)
	})
}
