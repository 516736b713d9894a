package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// MinExtent is the smallest allowed extent on any axis of a box.
	MinExtent = 0.001
	// extentPadding is added to both bounds of an axis thinner than MinExtent.
	extentPadding = 0.0005
)

// Element is one building-model object and the mesh geometry that belongs to it.
type Element struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Meshes []Mesh `json:"meshes,omitempty" yaml:"meshes,omitempty"`
	// DroppedMeshes counts meshes discarded as malformed before Meshes was built.
	DroppedMeshes int `json:"dropped_meshes,omitempty" yaml:"dropped_meshes,omitempty"`
}

// DisplayName returns the element name, or "Element_<id>" when it has none.
func (e Element) DisplayName() string {
	return displayName(e.ID, e.Name)
}

func displayName(id, name string) string {
	if name != "" {
		return name
	}
	return "Element_" + id
}

// BoundingBox is the axis-aligned box around all usable geometry of one element.
// Boxes are values; nothing mutates them after Normalize returns.
type BoundingBox struct {
	ElementID   string  `json:"element_id" yaml:"element_id"`
	ElementName string  `json:"element_name" yaml:"element_name"`
	MinX        float64 `json:"min_x" yaml:"min_x"`
	MinY        float64 `json:"min_y" yaml:"min_y"`
	MinZ        float64 `json:"min_z" yaml:"min_z"`
	MaxX        float64 `json:"max_x" yaml:"max_x"`
	MaxY        float64 `json:"max_y" yaml:"max_y"`
	MaxZ        float64 `json:"max_z" yaml:"max_z"`
}

// NewBoundingBox builds a box from explicit bounds, applying the same
// minimum-extent padding as Normalize.
func NewBoundingBox(id, name string, minX, minY, minZ, maxX, maxY, maxZ float64) BoundingBox {
	b := BoundingBox{ElementID: id, ElementName: displayName(id, name)}
	b.MinX, b.MaxX = padAxis(minX, maxX)
	b.MinY, b.MaxY = padAxis(minY, maxY)
	b.MinZ, b.MaxZ = padAxis(minZ, maxZ)
	return b
}

// Min returns the lower corner of the box.
func (b BoundingBox) Min() mgl64.Vec3 {
	return mgl64.Vec3{b.MinX, b.MinY, b.MinZ}
}

// Max returns the upper corner of the box.
func (b BoundingBox) Max() mgl64.Vec3 {
	return mgl64.Vec3{b.MaxX, b.MaxY, b.MaxZ}
}

// Extents returns the absolute size of the box along each axis.
func (b BoundingBox) Extents() (x, y, z float64) {
	d := b.Max().Sub(b.Min())
	return math.Abs(d[0]), math.Abs(d[1]), math.Abs(d[2])
}

// Volume returns the box volume in cubic model units.
func (b BoundingBox) Volume() float64 {
	x, y, z := b.Extents()
	return x * y * z
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() Vertex {
	return Vertex{
		float32((b.MinX + b.MaxX) / 2),
		float32((b.MinY + b.MaxY) / 2),
		float32((b.MinZ + b.MaxZ) / 2),
	}
}

// padAxis orders the bounds and widens an axis thinner than MinExtent so that
// flat geometry (a slab modelled as a plane) still has a usable volume.
func padAxis(lo, hi float64) (float64, float64) {
	if lo > hi {
		lo, hi = hi, lo
	}
	if hi-lo < MinExtent {
		lo -= extentPadding
		hi += extentPadding
	}
	return lo, hi
}
