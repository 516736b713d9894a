package aecdm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/aecdm-mcp/pkg/apperrors"
	"github.com/ekaya-inc/aecdm-mcp/pkg/spatial"
)

type rawGeometry struct {
	ElementAtTip *struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Geometry *struct {
			Meshes []struct {
				Vertices []any `json:"vertices"`
			} `json:"meshes"`
		} `json:"geometry"`
	} `json:"elementAtTip"`
}

// GetElementGeometry fetches an element's name and mesh vertices. Malformed
// meshes are dropped and logged; an element without usable meshes is still
// returned so the analysis can report it as skipped.
func (c *Client) GetElementGeometry(ctx context.Context, elementID string) (spatial.Element, error) {
	if err := requireID("elementId", elementID); err != nil {
		return spatial.Element{}, err
	}

	var data rawGeometry
	if err := c.Query(ctx, elementGeometryQuery, map[string]any{"elementId": elementID}, &data); err != nil {
		return spatial.Element{}, fmt.Errorf("failed to fetch geometry for element %s: %w", elementID, err)
	}
	if data.ElementAtTip == nil {
		return spatial.Element{}, fmt.Errorf("element %s: %w", elementID, apperrors.ErrNotFound)
	}

	raw := data.ElementAtTip
	id := raw.ID
	if id == "" {
		id = elementID
	}

	var rawMeshes [][]any
	if raw.Geometry != nil {
		rawMeshes = make([][]any, len(raw.Geometry.Meshes))
		for i, m := range raw.Geometry.Meshes {
			rawMeshes[i] = groupFlatVertices(m.Vertices)
		}
	}

	el, errs := spatial.ElementFromRaw(id, raw.Name, rawMeshes)
	for _, err := range errs {
		c.logger.Debug("Dropped malformed mesh",
			zap.String("element_id", id),
			zap.Error(err))
	}
	return el, nil
}

// groupFlatVertices turns [x0,y0,z0,x1,...] into [[x0,y0,z0],...]. Lists that
// already hold per-vertex values are returned unchanged.
func groupFlatVertices(vertices []any) []any {
	if len(vertices) == 0 || len(vertices)%3 != 0 {
		return vertices
	}
	for _, v := range vertices {
		switch v.(type) {
		case float64, string:
		default:
			return vertices
		}
	}

	grouped := make([]any, 0, len(vertices)/3)
	for i := 0; i < len(vertices); i += 3 {
		grouped = append(grouped, []any{vertices[i], vertices[i+1], vertices[i+2]})
	}
	return grouped
}
