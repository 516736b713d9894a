package analysis

import (
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aecdm-mcp/pkg/spatial"
)

// ClashReport is the outcome of one all-pairs clash analysis.
type ClashReport struct {
	RunID         string                `json:"run_id" yaml:"run_id"`
	Threshold     float64               `json:"threshold" yaml:"threshold"`
	Elements      []ElementSummary      `json:"elements" yaml:"elements"`
	Clashes       []spatial.ClashResult `json:"clashes" yaml:"clashes"`
	AnalyzedCount int                   `json:"analyzed_count" yaml:"analyzed_count"`
	SkippedCount  int                   `json:"skipped_count" yaml:"skipped_count"`
	TotalPairs    int                   `json:"total_pairs" yaml:"total_pairs"`
	ClashCount    int                   `json:"clash_count" yaml:"clash_count"`
	DurationMS    int64                 `json:"duration_ms" yaml:"duration_ms"`
}

// ComputeClashes derives a box for every element and checks each unordered
// pair of analyzed elements exactly once. Elements without usable geometry
// are listed as skipped and left out of the pairing.
func (a *Analyzer) ComputeClashes(elements []spatial.Element, threshold float64) *ClashReport {
	start := time.Now()
	report := &ClashReport{
		RunID:     uuid.New().String(),
		Threshold: threshold,
		Elements:  make([]ElementSummary, 0, len(elements)),
		Clashes:   []spatial.ClashResult{},
	}

	boxes := make([]spatial.BoundingBox, 0, len(elements))
	for _, el := range elements {
		s := a.summarize(el)
		report.Elements = append(report.Elements, s)
		if s.Status != StatusAnalyzed {
			report.SkippedCount++
			continue
		}
		report.AnalyzedCount++
		boxes = append(boxes, *s.BoundingBox)
	}

	for i := 0; i < len(boxes); i++ {
		for j := i + 1; j < len(boxes); j++ {
			report.TotalPairs++
			r, ok := a.detectSafely(boxes[i], boxes[j], threshold)
			if !ok {
				continue
			}
			report.Clashes = append(report.Clashes, r)
			report.ClashCount++
		}
	}

	report.DurationMS = time.Since(start).Milliseconds()
	a.logger.Info("Clash analysis complete",
		zap.String("run_id", report.RunID),
		zap.Int("elements", len(elements)),
		zap.Int("skipped", report.SkippedCount),
		zap.Int("pairs", report.TotalPairs),
		zap.Int("clashes", report.ClashCount),
		zap.Int64("duration_ms", report.DurationMS))

	return report
}

// ApplyFetchFailures annotates skipped elements whose geometry fetch failed.
func (r *ClashReport) ApplyFetchFailures(failures map[string]error) {
	applyFetchFailures(r.Elements, failures)
}

// detectSafely treats any failure inside one pair as "no clash" for that pair.
func (a *Analyzer) detectSafely(x, y spatial.BoundingBox, threshold float64) (r spatial.ClashResult, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			a.logger.Error("Clash computation failed",
				zap.String("first_element_id", x.ElementID),
				zap.String("second_element_id", y.ElementID),
				zap.Any("panic", rec))
			r, ok = spatial.ClashResult{}, false
		}
	}()

	r, ok = spatial.DetectClash(x, y, threshold)
	if ok && (math.IsNaN(r.IntersectionVolume) || math.IsInf(r.IntersectionVolume, 0)) {
		a.logger.Error("Clash computation produced a non-finite volume",
			zap.String("first_element_id", x.ElementID),
			zap.String("second_element_id", y.ElementID))
		return spatial.ClashResult{}, false
	}
	return r, ok
}
