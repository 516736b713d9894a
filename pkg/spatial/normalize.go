package spatial

import (
	"fmt"
	"math"

	"github.com/ekaya-inc/aecdm-mcp/pkg/apperrors"
)

// GeometryStats describes how much of an element's geometry was usable.
type GeometryStats struct {
	MeshCount        int `json:"mesh_count" yaml:"mesh_count"`
	UsableMeshCount  int `json:"usable_mesh_count" yaml:"usable_mesh_count"`
	DroppedMeshCount int `json:"dropped_mesh_count" yaml:"dropped_mesh_count"`
	VertexCount      int `json:"vertex_count" yaml:"vertex_count"`
}

// Stats counts meshes and vertices that Normalize would fold. MeshCount
// includes meshes dropped as malformed when the element was parsed.
func Stats(el Element) GeometryStats {
	s := GeometryStats{
		MeshCount:        len(el.Meshes) + el.DroppedMeshes,
		DroppedMeshCount: el.DroppedMeshes,
	}
	for _, m := range el.Meshes {
		if !m.Valid() {
			continue
		}
		s.UsableMeshCount++
		s.VertexCount += len(m)
	}
	return s
}

// Normalize folds every vertex of every usable mesh of el into one box.
// Meshes with fewer than MinMeshVertices vertices are skipped. When nothing is
// left the error wraps apperrors.ErrGeometryUnavailable.
func Normalize(el Element) (BoundingBox, error) {
	minX, minY, minZ := math.Inf(1), math.Inf(1), math.Inf(1)
	maxX, maxY, maxZ := math.Inf(-1), math.Inf(-1), math.Inf(-1)

	count := 0
	for _, m := range el.Meshes {
		if !m.Valid() {
			continue
		}
		for _, v := range m {
			x, y, z := float64(v[0]), float64(v[1]), float64(v[2])
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
			minZ, maxZ = math.Min(minZ, z), math.Max(maxZ, z)
			count++
		}
	}

	if count < MinMeshVertices {
		return BoundingBox{}, fmt.Errorf("element %s: %w: no mesh with at least %d vertices",
			el.ID, apperrors.ErrGeometryUnavailable, MinMeshVertices)
	}

	return NewBoundingBox(el.ID, el.Name, minX, minY, minZ, maxX, maxY, maxZ), nil
}

// ElementFromRaw builds an Element from loosely typed upstream meshes. A mesh
// containing a malformed vertex is dropped and its error returned alongside;
// the remaining meshes still form the element.
func ElementFromRaw(id, name string, rawMeshes [][]any) (Element, []error) {
	el := Element{ID: id, Name: name}
	var errs []error
	for i, raw := range rawMeshes {
		mesh, err := ParseMesh(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("mesh %d: %w", i, err))
			continue
		}
		el.Meshes = append(el.Meshes, mesh)
	}
	el.DroppedMeshes = len(errs)
	return el, errs
}
