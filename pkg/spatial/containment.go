package spatial

import "math"

const (
	// ContainmentTolerance is the slack allowed for modelling imprecision when
	// testing whether one element sits inside another. It is deliberately
	// looser than ClashTolerance; unifying them changes classifications.
	ContainmentTolerance = 0.01
	// PartialContainmentRatio is the share of the candidate's own volume that
	// must lie inside the container for a partial containment.
	PartialContainmentRatio = 0.01
)

// ContainmentType is the relationship of a candidate box to a container box.
type ContainmentType string

const (
	Outside            ContainmentType = "Outside"
	PartiallyContained ContainmentType = "PartiallyContained"
	FullyContained     ContainmentType = "FullyContained"
)

// ContainmentResult is the classification of one candidate element.
type ContainmentResult struct {
	ElementID       string          `json:"element_id" yaml:"element_id"`
	ElementName     string          `json:"element_name" yaml:"element_name"`
	Category        string          `json:"category" yaml:"category"`
	ContainmentType ContainmentType `json:"containment_type" yaml:"containment_type"`
	BoundingBox     BoundingBox     `json:"bounding_box" yaml:"bounding_box"`
}

// Classify decides whether candidate lies fully, partially or not at all
// inside container.
func Classify(container, candidate BoundingBox) ContainmentType {
	const tol = ContainmentTolerance

	if candidate.MinX >= container.MinX-tol && candidate.MaxX <= container.MaxX+tol &&
		candidate.MinY >= container.MinY-tol && candidate.MaxY <= container.MaxY+tol &&
		candidate.MinZ >= container.MinZ-tol && candidate.MaxZ <= container.MaxZ+tol {
		return FullyContained
	}

	if !innerOverlap(container.MinX, container.MaxX, candidate.MinX, candidate.MaxX) ||
		!innerOverlap(container.MinY, container.MaxY, candidate.MinY, candidate.MaxY) ||
		!innerOverlap(container.MinZ, container.MaxZ, candidate.MinZ, candidate.MaxZ) {
		return Outside
	}

	dx := math.Min(container.MaxX, candidate.MaxX) - math.Max(container.MinX, candidate.MinX)
	dy := math.Min(container.MaxY, candidate.MaxY) - math.Max(container.MinY, candidate.MinY)
	dz := math.Min(container.MaxZ, candidate.MaxZ) - math.Max(container.MinZ, candidate.MinZ)
	if dx <= tol || dy <= tol || dz <= tol {
		return Outside
	}

	if dx*dy*dz > PartialContainmentRatio*candidate.Volume() {
		return PartiallyContained
	}
	return Outside
}

// ClassifyElement classifies candidate and attaches its inferred category.
func ClassifyElement(container, candidate BoundingBox) ContainmentResult {
	return ContainmentResult{
		ElementID:       candidate.ElementID,
		ElementName:     candidate.ElementName,
		Category:        CategoryFromName(candidate.ElementName),
		ContainmentType: Classify(container, candidate),
		BoundingBox:     candidate,
	}
}

func innerOverlap(cMin, cMax, eMin, eMax float64) bool {
	return eMax > cMin+ContainmentTolerance && eMin < cMax-ContainmentTolerance
}
