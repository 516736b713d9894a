package analysis

import (
	"context"

	"go.uber.org/zap"

	"github.com/ekaya-inc/aecdm-mcp/pkg/spatial"
	"github.com/ekaya-inc/aecdm-mcp/pkg/workpool"
)

// GeometrySource resolves an element id to its name and mesh geometry.
type GeometrySource interface {
	GetElementGeometry(ctx context.Context, elementID string) (spatial.Element, error)
}

// FetchElements retrieves geometry for every id concurrently and waits for
// all of them. The returned elements keep the order of ids. An element whose
// fetch failed is returned without meshes, so the analysis reports it as
// skipped, and its error is recorded in the failures map.
func FetchElements(ctx context.Context, src GeometrySource, pool *workpool.Pool, ids []string, logger *zap.Logger) ([]spatial.Element, map[string]error) {
	items := make([]workpool.Item[spatial.Element], len(ids))
	for i, id := range ids {
		items[i] = workpool.Item[spatial.Element]{
			ID: id,
			Execute: func(ctx context.Context) (spatial.Element, error) {
				return src.GetElementGeometry(ctx, id)
			},
		}
	}

	results := workpool.Process(ctx, pool, items)

	elements := make([]spatial.Element, len(ids))
	failures := make(map[string]error)
	for _, r := range results {
		if r.Err != nil {
			logger.Warn("Failed to fetch element geometry",
				zap.String("element_id", r.ID),
				zap.Error(r.Err))
			elements[r.Index] = spatial.Element{ID: r.ID}
			failures[r.ID] = r.Err
			continue
		}
		el := r.Result
		if el.ID == "" {
			el.ID = r.ID
		}
		elements[r.Index] = el
	}
	return elements, failures
}
