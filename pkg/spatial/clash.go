package spatial

import "math"

const (
	// ClashTolerance keeps boxes that only share a face or edge from clashing.
	ClashTolerance = 0.001
	// MajorIntersectionVolume is the intersection volume above which a clash
	// is reported as a major intersection.
	MajorIntersectionVolume = 0.1
	// DefaultClashThreshold is the minimum reported intersection volume when
	// the caller does not pick one.
	DefaultClashThreshold = 0.01
)

// ClashType grades a clash by its intersection volume.
type ClashType string

const (
	MinorOverlap      ClashType = "MinorOverlap"
	MajorIntersection ClashType = "MajorIntersection"
)

// ClashResult describes the overlap between two element boxes.
type ClashResult struct {
	FirstElementID        string    `json:"first_element_id" yaml:"first_element_id"`
	FirstElementName      string    `json:"first_element_name" yaml:"first_element_name"`
	SecondElementID       string    `json:"second_element_id" yaml:"second_element_id"`
	SecondElementName     string    `json:"second_element_name" yaml:"second_element_name"`
	ClashType             ClashType `json:"clash_type" yaml:"clash_type"`
	IntersectionVolume    float64   `json:"intersection_volume" yaml:"intersection_volume"`
	ContactCenter         Vertex    `json:"contact_center" yaml:"contact_center,flow"`
	VolumePercentOfFirst  float64   `json:"volume_percent_of_first" yaml:"volume_percent_of_first"`
	VolumePercentOfSecond float64   `json:"volume_percent_of_second" yaml:"volume_percent_of_second"`
}

// DetectClash reports whether a and b overlap by at least threshold cubic
// units. Boxes that merely touch never clash, whatever the threshold.
func DetectClash(a, b BoundingBox, threshold float64) (ClashResult, bool) {
	if !clashOverlap(a.MinX, a.MaxX, b.MinX, b.MaxX) ||
		!clashOverlap(a.MinY, a.MaxY, b.MinY, b.MaxY) ||
		!clashOverlap(a.MinZ, a.MaxZ, b.MinZ, b.MaxZ) {
		return ClashResult{}, false
	}

	x0, x1 := math.Max(a.MinX, b.MinX), math.Min(a.MaxX, b.MaxX)
	y0, y1 := math.Max(a.MinY, b.MinY), math.Min(a.MaxY, b.MaxY)
	z0, z1 := math.Max(a.MinZ, b.MinZ), math.Min(a.MaxZ, b.MaxZ)
	dx, dy, dz := x1-x0, y1-y0, z1-z0
	if dx <= ClashTolerance || dy <= ClashTolerance || dz <= ClashTolerance {
		return ClashResult{}, false
	}

	volume := dx * dy * dz
	if volume < threshold {
		return ClashResult{}, false
	}

	clashType := MinorOverlap
	if volume > MajorIntersectionVolume {
		clashType = MajorIntersection
	}

	return ClashResult{
		FirstElementID:     a.ElementID,
		FirstElementName:   a.ElementName,
		SecondElementID:    b.ElementID,
		SecondElementName:  b.ElementName,
		ClashType:          clashType,
		IntersectionVolume: volume,
		ContactCenter: Vertex{
			float32((x0 + x1) / 2),
			float32((y0 + y1) / 2),
			float32((z0 + z1) / 2),
		},
		VolumePercentOfFirst:  percentOf(volume, a.Volume()),
		VolumePercentOfSecond: percentOf(volume, b.Volume()),
	}, true
}

func clashOverlap(aMin, aMax, bMin, bMax float64) bool {
	return aMax-ClashTolerance > bMin && bMax-ClashTolerance > aMin
}

func percentOf(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}
