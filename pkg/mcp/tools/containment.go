package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ekaya-inc/aecdm-mcp/pkg/analysis"
	"github.com/ekaya-inc/aecdm-mcp/pkg/apperrors"
	"github.com/ekaya-inc/aecdm-mcp/pkg/spatial"
)

// RegisterContainmentTools registers the category search and explicit list
// containment tools.
func RegisterContainmentTools(s *server.MCPServer, deps *ToolDeps) {
	registerFindContainedTool(s, deps)
	registerFindSpecificContainedTool(s, deps)
}

// fetchContainer fetches the container's geometry. A container the upstream
// does not return has no geometry to test against, so it is reported as a
// missing container rather than a plain not-found.
func fetchContainer(ctx context.Context, deps *ToolDeps, containerID string) (spatial.Element, error) {
	container, err := deps.Client.GetElementGeometry(ctx, containerID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return spatial.Element{}, fmt.Errorf("%w: container %s was not returned by the data model",
			apperrors.ErrMissingContainer, containerID)
	}
	if err != nil {
		return spatial.Element{}, fmt.Errorf("container %s: %w", containerID, err)
	}
	return container, nil
}

func registerFindContainedTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"find_elements_contained_within",
		mcp.WithDescription(
			"Find the elements of a category that lie inside a container element (a room, "+
				"space or zone), using bounding boxes. Only fully and partially contained "+
				"elements are listed, grouped by category.",
		),
		mcp.WithString(
			"containerElementId",
			mcp.Required(),
			mcp.Description("Id of the container element"),
		),
		mcp.WithString(
			"elementGroupId",
			mcp.Required(),
			mcp.Description(elementGroupIDDescription),
		),
		mcp.WithString(
			"category",
			mcp.Required(),
			mcp.Description("Category of elements to search, e.g. 'Furniture'"),
		),
		mcp.WithString(
			"format",
			mcp.Description(formatDescription),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		containerID, err := getRequiredString(req, "containerElementId")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		elementGroupID, err := getRequiredString(req, "elementGroupId")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		category, err := getRequiredString(req, "category")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		format, errResult := getFormat(req)
		if errResult != nil {
			return errResult, nil
		}

		container, err := fetchContainer(ctx, deps, containerID)
		if err != nil {
			return upstreamResult(err)
		}

		listed, err := deps.Client.GetElementsByCategory(ctx, elementGroupID, category)
		if err != nil {
			return upstreamResult(err)
		}

		ids := make([]string, 0, len(listed))
		seen := make(map[string]struct{}, len(listed))
		for _, el := range listed {
			if el.ID == containerID {
				continue
			}
			if _, dup := seen[el.ID]; dup {
				continue
			}
			seen[el.ID] = struct{}{}
			ids = append(ids, el.ID)
		}

		var candidates []spatial.Element
		var failures map[string]error
		if len(ids) > 0 {
			candidates, failures, err = fetchGeometry(ctx, deps, ids)
			if err != nil {
				return upstreamResult(err)
			}
		}

		report, err := deps.Analyzer.ComputeContainment(container, candidates, analysis.ModeCategorySearch)
		if err != nil {
			return upstreamResult(err)
		}
		report.ApplyFetchFailures(failures)

		return renderResult(report, format)
	})
}

func registerFindSpecificContainedTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"find_specific_elements_contained_within",
		mcp.WithDescription(
			"Check whether specific elements lie inside a container element, using bounding "+
				"boxes. Every element is reported as fully contained, partially contained or "+
				"outside; elements without geometry are listed as missing.",
		),
		mcp.WithString(
			"containerElementId",
			mcp.Required(),
			mcp.Description("Id of the container element"),
		),
		mcp.WithArray(
			"elementIds",
			mcp.Required(),
			mcp.Description("Ids of the elements to check. Each id may appear only once."),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString(
			"format",
			mcp.Description(formatDescription),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		containerID, err := getRequiredString(req, "containerElementId")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		ids, err := getStringArray(req, "elementIds")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		if len(ids) == 0 {
			return NewErrorResult("invalid_parameters", "elementIds must contain at least one id"), nil
		}
		// Duplicates reject the call before any geometry is fetched.
		if err := analysis.ValidateCandidateIDs(ids); err != nil {
			return upstreamResult(err)
		}
		format, errResult := getFormat(req)
		if errResult != nil {
			return errResult, nil
		}

		container, err := fetchContainer(ctx, deps, containerID)
		if err != nil {
			return upstreamResult(err)
		}

		candidates, failures, err := fetchGeometry(ctx, deps, ids)
		if err != nil {
			return upstreamResult(err)
		}

		report, err := deps.Analyzer.ComputeContainment(container, candidates, analysis.ModeExplicitList)
		if err != nil {
			return upstreamResult(err)
		}
		report.ApplyFetchFailures(failures)

		return renderResult(report, format)
	})
}
