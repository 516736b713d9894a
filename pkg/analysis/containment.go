package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aecdm-mcp/pkg/apperrors"
	"github.com/ekaya-inc/aecdm-mcp/pkg/spatial"
)

// Mode selects how containment candidates are chosen and reported.
type Mode string

const (
	// ModeCategorySearch checks every element returned by a category filter
	// and keeps only the ones at least partially inside the container.
	ModeCategorySearch Mode = "category_search"
	// ModeExplicitList checks a caller-supplied list and reports every
	// candidate, Outside included.
	ModeExplicitList Mode = "explicit_list"
)

// ContainmentCounts are tallied in the same pass that builds Results.
type ContainmentCounts struct {
	Checked            int `json:"checked" yaml:"checked"`
	FullyContained     int `json:"fully_contained" yaml:"fully_contained"`
	PartiallyContained int `json:"partially_contained" yaml:"partially_contained"`
	Outside            int `json:"outside" yaml:"outside"`
	Missing            int `json:"missing" yaml:"missing"`
}

// CategoryGroup holds the contained elements of one inferred category.
type CategoryGroup struct {
	Category string                      `json:"category" yaml:"category"`
	Results  []spatial.ContainmentResult `json:"results" yaml:"results"`
}

// ContainmentReport is the outcome of one container-vs-candidates analysis.
type ContainmentReport struct {
	RunID      string                      `json:"run_id" yaml:"run_id"`
	Mode       Mode                        `json:"mode" yaml:"mode"`
	Container  ElementSummary              `json:"container" yaml:"container"`
	Results    []spatial.ContainmentResult `json:"results" yaml:"results"`
	Groups     []CategoryGroup             `json:"groups,omitempty" yaml:"groups,omitempty"`
	Missing    []ElementSummary            `json:"missing" yaml:"missing"`
	Counts     ContainmentCounts           `json:"counts" yaml:"counts"`
	DurationMS int64                       `json:"duration_ms" yaml:"duration_ms"`
}

// ValidateCandidateIDs rejects a candidate list that names the same element
// twice. The error wraps apperrors.ErrValidation and cites the id.
func ValidateCandidateIDs(ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: element id %q appears more than once in the candidate list",
				apperrors.ErrValidation, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// ComputeContainment classifies every candidate against container.
//
// In ModeExplicitList duplicate candidate ids reject the call before any
// geometry is examined. A container without geometry fails the call with an
// error wrapping apperrors.ErrMissingContainer. Candidates without geometry
// are listed in Missing in both modes.
func (a *Analyzer) ComputeContainment(container spatial.Element, candidates []spatial.Element, mode Mode) (*ContainmentReport, error) {
	start := time.Now()

	switch mode {
	case ModeCategorySearch:
	case ModeExplicitList:
		ids := make([]string, len(candidates))
		for i, c := range candidates {
			ids[i] = c.ID
		}
		if err := ValidateCandidateIDs(ids); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown containment mode %q", apperrors.ErrValidation, mode)
	}

	containerSummary := a.summarize(container)
	if containerSummary.Status != StatusAnalyzed {
		return nil, fmt.Errorf("%w: %s (%s): %s", apperrors.ErrMissingContainer,
			containerSummary.ElementName, container.ID, containerSummary.Reason)
	}
	containerBox := *containerSummary.BoundingBox

	report := &ContainmentReport{
		RunID:     uuid.New().String(),
		Mode:      mode,
		Container: containerSummary,
		Results:   []spatial.ContainmentResult{},
		Missing:   []ElementSummary{},
	}

	for _, c := range candidates {
		if mode == ModeCategorySearch && c.ID == container.ID {
			continue
		}

		s := a.summarize(c)
		if s.Status != StatusAnalyzed {
			report.Missing = append(report.Missing, s)
			report.Counts.Missing++
			continue
		}

		r := a.classifySafely(containerBox, *s.BoundingBox)
		report.Counts.Checked++
		switch r.ContainmentType {
		case spatial.FullyContained:
			report.Counts.FullyContained++
		case spatial.PartiallyContained:
			report.Counts.PartiallyContained++
		default:
			report.Counts.Outside++
			if mode == ModeCategorySearch {
				continue
			}
		}
		report.Results = append(report.Results, r)
	}

	if mode == ModeCategorySearch {
		report.Groups = groupByCategory(report.Results)
	}

	report.DurationMS = time.Since(start).Milliseconds()
	a.logger.Info("Containment analysis complete",
		zap.String("run_id", report.RunID),
		zap.String("mode", string(mode)),
		zap.String("container_id", container.ID),
		zap.Int("checked", report.Counts.Checked),
		zap.Int("fully_contained", report.Counts.FullyContained),
		zap.Int("partially_contained", report.Counts.PartiallyContained),
		zap.Int("missing", report.Counts.Missing),
		zap.Int64("duration_ms", report.DurationMS))

	return report, nil
}

// ApplyFetchFailures annotates missing candidates whose geometry fetch failed.
func (r *ContainmentReport) ApplyFetchFailures(failures map[string]error) {
	applyFetchFailures(r.Missing, failures)
}

// MissingIDs returns the ids of candidates that had no geometry.
func (r *ContainmentReport) MissingIDs() []string {
	ids := make([]string, len(r.Missing))
	for i, m := range r.Missing {
		ids[i] = m.ElementID
	}
	return ids
}

// classifySafely treats any failure for one candidate as Outside.
func (a *Analyzer) classifySafely(container, candidate spatial.BoundingBox) (r spatial.ContainmentResult) {
	defer func() {
		if rec := recover(); rec != nil {
			a.logger.Error("Containment computation failed",
				zap.String("container_id", container.ElementID),
				zap.String("element_id", candidate.ElementID),
				zap.Any("panic", rec))
			r = spatial.ContainmentResult{
				ElementID:       candidate.ElementID,
				ElementName:     candidate.ElementName,
				Category:        spatial.UnknownCategory,
				ContainmentType: spatial.Outside,
				BoundingBox:     candidate,
			}
		}
	}()
	return spatial.ClassifyElement(container, candidate)
}

func groupByCategory(results []spatial.ContainmentResult) []CategoryGroup {
	byCategory := make(map[string][]spatial.ContainmentResult)
	for _, r := range results {
		byCategory[r.Category] = append(byCategory[r.Category], r)
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	groups := make([]CategoryGroup, 0, len(categories))
	for _, c := range categories {
		groups = append(groups, CategoryGroup{Category: c, Results: byCategory[c]})
	}
	return groups
}
