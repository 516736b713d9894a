// Package analysis runs clash and containment analyses over a batch of
// elements and assembles the reports returned to tool callers.
//
// Per-element and per-pair failures are recorded in the report and never
// abort the batch. Only request-level problems (duplicate candidate ids, a
// container without geometry) are returned as errors.
package analysis

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/ekaya-inc/aecdm-mcp/pkg/apperrors"
	"github.com/ekaya-inc/aecdm-mcp/pkg/spatial"
)

// ElementStatus tells whether an element took part in the analysis.
type ElementStatus string

const (
	StatusAnalyzed ElementStatus = "analyzed"
	StatusSkipped  ElementStatus = "skipped"
)

// ElementSummary describes one input element and the box derived from it.
type ElementSummary struct {
	ElementID             string `json:"element_id" yaml:"element_id"`
	ElementName           string `json:"element_name" yaml:"element_name"`
	spatial.GeometryStats `yaml:",inline"`
	Status                ElementStatus        `json:"status" yaml:"status"`
	Reason                string               `json:"reason,omitempty" yaml:"reason,omitempty"`
	BoundingBox           *spatial.BoundingBox `json:"bounding_box,omitempty" yaml:"bounding_box,omitempty"`
}

// Analyzer runs analyses. It holds no per-run state and is safe to share.
type Analyzer struct {
	logger *zap.Logger
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(logger *zap.Logger) *Analyzer {
	return &Analyzer{logger: logger.Named("analysis")}
}

// summarize normalizes el and records why it was skipped if that failed.
func (a *Analyzer) summarize(el spatial.Element) ElementSummary {
	s := ElementSummary{
		ElementID:     el.ID,
		ElementName:   el.DisplayName(),
		GeometryStats: spatial.Stats(el),
		Status:        StatusSkipped,
	}

	b, err := a.normalizeSafely(el)
	if err != nil {
		s.Reason = skipReason(err)
		a.logger.Debug("Element skipped",
			zap.String("element_id", el.ID),
			zap.Error(err))
		return s
	}

	s.Status = StatusAnalyzed
	s.BoundingBox = &b
	return s
}

func (a *Analyzer) normalizeSafely(el spatial.Element) (b spatial.BoundingBox, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: normalizing element %s: %v", apperrors.ErrComputation, el.ID, rec)
		}
	}()

	b, err = spatial.Normalize(el)
	if err != nil {
		return b, err
	}
	if !finiteBox(b) {
		return b, fmt.Errorf("%w: element %s has non-finite bounds", apperrors.ErrComputation, el.ID)
	}
	return b, nil
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrGeometryUnavailable):
		return "no usable mesh geometry"
	case errors.Is(err, apperrors.ErrComputation):
		return "geometry could not be computed"
	default:
		return err.Error()
	}
}

func finiteBox(b spatial.BoundingBox) bool {
	for _, f := range []float64{b.MinX, b.MinY, b.MinZ, b.MaxX, b.MaxY, b.MaxZ} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// applyFetchFailures replaces the generic skip reason of elements whose
// geometry could not be fetched with the fetch error.
func applyFetchFailures(summaries []ElementSummary, failures map[string]error) {
	for i := range summaries {
		if summaries[i].Status != StatusSkipped {
			continue
		}
		if err, ok := failures[summaries[i].ElementID]; ok && err != nil {
			summaries[i].Reason = "geometry fetch failed: " + err.Error()
		}
	}
}
