package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// RegisterClashTool adds perform_clash_detection.
func RegisterClashTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"perform_clash_detection",
		mcp.WithDescription(
			"Check a set of elements for clashes by comparing the axis-aligned bounding boxes "+
				"of their geometry. Every pair is checked once. A pair clashes when the boxes "+
				"overlap by at least clashThreshold cubic model units; touching faces never clash. "+
				"Clashes above 0.1 cubic units are reported as major intersections.",
		),
		mcp.WithArray(
			"elementIds",
			mcp.Required(),
			mcp.Description("Element ids to check against each other (at least 2)"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithNumber(
			"clashThreshold",
			mcp.Description(fmt.Sprintf("Minimum intersection volume to report (default %g)", deps.DefaultThreshold)),
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
		ids, err := getStringArray(req, "elementIds")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		if len(ids) < 2 {
			return NewErrorResult("invalid_parameters", "at least two element ids are required for clash detection"), nil
		}
		if dup, ok := firstDuplicate(ids); ok {
			return NewErrorResultWithDetails("invalid_parameters",
				fmt.Sprintf("element id %q appears more than once", dup),
				map[string]any{"duplicate_id": dup}), nil
		}

		threshold := deps.DefaultThreshold
		v, ok, err := getOptionalFloat(req, "clashThreshold")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		if ok {
			threshold = v
		}
		if threshold < 0 {
			return NewErrorResult("invalid_parameters", "clashThreshold must not be negative"), nil
		}

		format, errResult := getFormat(req)
		if errResult != nil {
			return errResult, nil
		}

		elements, failures, err := fetchGeometry(ctx, deps, ids)
		if err != nil {
			return upstreamResult(err)
		}

		report := deps.Analyzer.ComputeClashes(elements, threshold)
		report.ApplyFetchFailures(failures)

		deps.Logger.Debug("Clash detection finished",
			zap.String("run_id", report.RunID),
			zap.Int("clashes", report.ClashCount))

		return renderResult(report, format)
	})
}
