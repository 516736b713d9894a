package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aecdm-mcp/pkg/analysis"
	"github.com/ekaya-inc/aecdm-mcp/pkg/apperrors"
	"github.com/ekaya-inc/aecdm-mcp/pkg/spatial"
)

const formatDescription = "Output format: text (default), json or yaml"

// getFormat parses the optional format argument.
func getFormat(req mcp.CallToolRequest) (analysis.Format, *mcp.CallToolResult) {
	raw, err := getOptionalString(req, "format")
	if err != nil {
		return "", NewErrorResult("invalid_parameters", err.Error())
	}
	format, err := analysis.ParseFormat(raw)
	if err != nil {
		return "", NewErrorResult("invalid_parameters", err.Error())
	}
	return format, nil
}

// fetchGeometry fetches ids through the worker pool. Individual failures
// degrade to skipped or missing elements. When every fetch failed and at
// least one failure was not a plain "not found", that failure is returned
// instead; it is usually an expired token or an upstream outage.
func fetchGeometry(ctx context.Context, deps *ToolDeps, ids []string) ([]spatial.Element, map[string]error, error) {
	elements, failures := analysis.FetchElements(ctx, deps.Client, deps.Pool, ids, deps.Logger)
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if len(ids) > 0 && len(failures) == len(ids) {
		for _, id := range ids {
			if err := failures[id]; !errors.Is(err, apperrors.ErrNotFound) {
				return nil, nil, err
			}
		}
	}
	if len(failures) > 0 {
		deps.Logger.Info("Continuing analysis without some elements",
			zap.Int("requested", len(ids)),
			zap.Int("failed", len(failures)))
	}
	return elements, failures, nil
}

// renderResult renders a report in the requested format.
func renderResult(report analysis.Report, format analysis.Format) (*mcp.CallToolResult, error) {
	out, err := analysis.Render(report, format)
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return mcp.NewToolResultText(out), nil
}
