package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/aecdm-mcp/pkg/apperrors"
	"github.com/ekaya-inc/aecdm-mcp/pkg/spatial"
)

// Format is the output encoding of a rendered report.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "text", "json" or "yaml"; empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q (use text, json or yaml)", apperrors.ErrValidation, s)
	}
}

// Report is anything that can be rendered for a tool caller.
type Report interface {
	Text() string
}

// Render encodes report in the requested format.
func Render(report Report, format Format) (string, error) {
	switch format {
	case FormatJSON:
		b, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal report: %w", err)
		}
		return string(b), nil
	case FormatYAML:
		b, err := yaml.Marshal(report)
		if err != nil {
			return "", fmt.Errorf("failed to marshal report: %w", err)
		}
		return string(b), nil
	default:
		return report.Text(), nil
	}
}

// Status glyphs.
const (
	glyphOK      = "✅"
	glyphClash   = "⚠️"
	glyphPartial = "🔶"
	glyphOutside = "❌"
	glyphSkipped = "⏭️"
)

// Text renders the clash report for quick reading.
func (r *ClashReport) Text() string {
	var b strings.Builder

	b.WriteString("🔍 Clash Detection Report\n")
	fmt.Fprintf(&b, "Run: %s\n", r.RunID)
	fmt.Fprintf(&b, "Threshold: %.4f cubic units\n\n", r.Threshold)

	fmt.Fprintf(&b, "Elements (%d analyzed, %d skipped):\n", r.AnalyzedCount, r.SkippedCount)
	for _, e := range r.Elements {
		writeElementLine(&b, e)
	}

	fmt.Fprintf(&b, "\nSummary: %d pairs checked, %d clashes found\n", r.TotalPairs, r.ClashCount)
	if r.ClashCount == 0 {
		fmt.Fprintf(&b, "%s No clashes found above threshold\n", glyphOK)
		return b.String()
	}

	for i, c := range r.Clashes {
		fmt.Fprintf(&b, "\n%s Clash %d: %s ↔ %s\n", glyphClash, i+1, c.FirstElementName, c.SecondElementName)
		fmt.Fprintf(&b, "   Elements: %s ↔ %s\n", c.FirstElementID, c.SecondElementID)
		fmt.Fprintf(&b, "   Type: %s\n", c.ClashType)
		fmt.Fprintf(&b, "   Intersection volume: %.4f cubic units\n", c.IntersectionVolume)
		fmt.Fprintf(&b, "   Contact center: %s\n", formatVertex(c.ContactCenter))
		fmt.Fprintf(&b, "   Overlap: %.2f%% of %s, %.2f%% of %s\n",
			c.VolumePercentOfFirst, c.FirstElementName, c.VolumePercentOfSecond, c.SecondElementName)
	}
	return b.String()
}

// Text renders the containment report for quick reading.
func (r *ContainmentReport) Text() string {
	var b strings.Builder

	b.WriteString("📦 Containment Report\n")
	fmt.Fprintf(&b, "Run: %s\n", r.RunID)
	fmt.Fprintf(&b, "Container: %s (%s)\n", r.Container.ElementName, r.Container.ElementID)
	if bb := r.Container.BoundingBox; bb != nil {
		fmt.Fprintf(&b, "Container box: %s\n", formatBox(*bb))
	}
	fmt.Fprintf(&b, "Container geometry: %s, %d vertices\n\n",
		meshSummary(r.Container.GeometryStats), r.Container.VertexCount)

	fmt.Fprintf(&b, "Summary: %d checked, %d fully contained, %d partially contained, %d outside",
		r.Counts.Checked, r.Counts.FullyContained, r.Counts.PartiallyContained, r.Counts.Outside)
	if r.Counts.Missing > 0 {
		fmt.Fprintf(&b, ", %d without geometry", r.Counts.Missing)
	}
	b.WriteString("\n")

	switch r.Mode {
	case ModeCategorySearch:
		if len(r.Results) == 0 {
			fmt.Fprintf(&b, "\n%s No elements found inside the container\n", glyphOutside)
		}
		for _, g := range r.Groups {
			fmt.Fprintf(&b, "\n%s (%d):\n", g.Category, len(g.Results))
			for _, res := range g.Results {
				writeContainmentLine(&b, res)
			}
		}
	default:
		b.WriteString("\nResults:\n")
		for _, res := range r.Results {
			writeContainmentLine(&b, res)
		}
	}

	if len(r.Missing) > 0 {
		b.WriteString("\nMissing (no geometry):\n")
		for _, m := range r.Missing {
			fmt.Fprintf(&b, "  %s %s (%s): %s\n", glyphSkipped, m.ElementName, m.ElementID, m.Reason)
		}
	}
	return b.String()
}

func writeElementLine(b *strings.Builder, e ElementSummary) {
	if e.Status != StatusAnalyzed {
		fmt.Fprintf(b, "  %s %s (%s): skipped, %s", glyphSkipped, e.ElementName, e.ElementID, e.Reason)
		if e.DroppedMeshCount > 0 {
			fmt.Fprintf(b, " (%d malformed meshes dropped)", e.DroppedMeshCount)
		}
		b.WriteString("\n")
		return
	}
	fmt.Fprintf(b, "  • %s (%s): %s, %d vertices, box %s\n",
		e.ElementName, e.ElementID, meshSummary(e.GeometryStats), e.VertexCount, formatBox(*e.BoundingBox))
}

func meshSummary(s spatial.GeometryStats) string {
	out := fmt.Sprintf("%d meshes", s.UsableMeshCount)
	if s.DroppedMeshCount > 0 {
		out += fmt.Sprintf(" (%d malformed dropped)", s.DroppedMeshCount)
	}
	return out
}

func writeContainmentLine(b *strings.Builder, r spatial.ContainmentResult) {
	fmt.Fprintf(b, "  %s %s (%s) [%s]: %s\n",
		containmentGlyph(r.ContainmentType), r.ElementName, r.ElementID, r.Category, r.ContainmentType)
}

func containmentGlyph(t spatial.ContainmentType) string {
	switch t {
	case spatial.FullyContained:
		return glyphOK
	case spatial.PartiallyContained:
		return glyphPartial
	default:
		return glyphOutside
	}
}

func formatVertex(v spatial.Vertex) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v[0], v[1], v[2])
}

func formatBox(bb spatial.BoundingBox) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f) → (%.3f, %.3f, %.3f), volume %.4f",
		bb.MinX, bb.MinY, bb.MinZ, bb.MaxX, bb.MaxY, bb.MaxZ, bb.Volume())
}
