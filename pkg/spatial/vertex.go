// Package spatial derives axis-aligned bounding boxes from element mesh
// geometry and computes clash and containment relationships between them.
//
// Everything in this package is pure arithmetic over values passed in by the
// caller. It performs no I/O and holds no shared state, so a single analysis
// is a function of its inputs only.
package spatial

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// MinMeshVertices is the smallest vertex count for a mesh to be usable.
const MinMeshVertices = 3

// Vertex is a point in model units. Single precision is enough for AABB work.
type Vertex = mgl32.Vec3

// Mesh is one disjoint piece of an element's geometry.
type Mesh []Vertex

// Valid reports whether the mesh has enough vertices to contribute to a box.
func (m Mesh) Valid() bool {
	return len(m) >= MinMeshVertices
}

// ParseVertex converts a loosely typed vertex, as decoded from upstream JSON,
// into a Vertex. Accepted shapes are a 3-element array and an object with
// x/y/z keys (any case). Coordinates may be numbers or numeric strings.
func ParseVertex(raw any) (Vertex, error) {
	switch v := raw.(type) {
	case Vertex:
		return v, checkFinite(v)
	case []float64:
		if len(v) != 3 {
			return Vertex{}, fmt.Errorf("vertex has %d coordinates, want 3", len(v))
		}
		return finiteVertex(v[0], v[1], v[2])
	case []any:
		if len(v) != 3 {
			return Vertex{}, fmt.Errorf("vertex has %d coordinates, want 3", len(v))
		}
		var c [3]float64
		for i := range c {
			f, err := coerceFloat(v[i])
			if err != nil {
				return Vertex{}, fmt.Errorf("coordinate %d: %w", i, err)
			}
			c[i] = f
		}
		return finiteVertex(c[0], c[1], c[2])
	case map[string]any:
		var c [3]float64
		for i, axis := range [3]string{"x", "y", "z"} {
			val, ok := lookupAxis(v, axis)
			if !ok {
				return Vertex{}, fmt.Errorf("vertex missing %s coordinate", axis)
			}
			f, err := coerceFloat(val)
			if err != nil {
				return Vertex{}, fmt.Errorf("coordinate %s: %w", axis, err)
			}
			c[i] = f
		}
		return finiteVertex(c[0], c[1], c[2])
	case nil:
		return Vertex{}, fmt.Errorf("vertex is null")
	default:
		return Vertex{}, fmt.Errorf("unsupported vertex representation %T", raw)
	}
}

// ParseMesh converts every vertex of a raw mesh. The first malformed vertex
// rejects the whole mesh; callers skip that mesh and keep the rest of the
// element.
func ParseMesh(raw []any) (Mesh, error) {
	mesh := make(Mesh, 0, len(raw))
	for i, rv := range raw {
		v, err := ParseVertex(rv)
		if err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
		mesh = append(mesh, v)
	}
	return mesh, nil
}

func lookupAxis(m map[string]any, axis string) (any, bool) {
	if v, ok := m[axis]; ok {
		return v, true
	}
	if v, ok := m[strings.ToUpper(axis)]; ok {
		return v, true
	}
	return nil, false
}

func coerceFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid numeric string %q", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("non-numeric coordinate of type %T", raw)
	}
}

func finiteVertex(x, y, z float64) (Vertex, error) {
	for _, f := range [3]float64{x, y, z} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Vertex{}, fmt.Errorf("non-finite coordinate %v", f)
		}
	}
	v := Vertex{float32(x), float32(y), float32(z)}
	return v, checkFinite(v)
}

// checkFinite catches values that overflow float32 on conversion.
func checkFinite(v Vertex) error {
	for _, f := range v {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return fmt.Errorf("non-finite coordinate %v", f)
		}
	}
	return nil
}
