package tools

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/aecdm-mcp/pkg/aecdm"
	"github.com/ekaya-inc/aecdm-mcp/pkg/analysis"
	"github.com/ekaya-inc/aecdm-mcp/pkg/apperrors"
	"github.com/ekaya-inc/aecdm-mcp/pkg/spatial"
)

func clashClient() *mockClient {
	return &mockClient{
		geometry: map[string]spatial.Element{
			"a": box("a", "Element A", 0, 1),
			"b": box("b", "Element B", 0.5, 1.5),
			"c": box("c", "Element C", 5, 6),
		},
	}
}

func TestPerformClashDetection_JSON(t *testing.T) {
	s := newTestServer(newTestDeps(clashClient()))

	resp := callTool(t, s, "perform_clash_detection", map[string]any{
		"elementIds": []any{"a", "b", "c"},
		"format":     "json",
	})
	require.Nil(t, resp.Error)
	require.False(t, resp.Result.IsError, resp.text())

	var report analysis.ClashReport
	require.NoError(t, json.Unmarshal([]byte(resp.text()), &report))
	assert.Equal(t, spatial.DefaultClashThreshold, report.Threshold)
	assert.Equal(t, 3, report.TotalPairs)
	require.Equal(t, 1, report.ClashCount)

	c := report.Clashes[0]
	assert.Equal(t, "a", c.FirstElementID)
	assert.Equal(t, "b", c.SecondElementID)
	assert.Equal(t, spatial.MajorIntersection, c.ClashType)
	assert.InDelta(t, 0.125, c.IntersectionVolume, 1e-6)
	assert.InDelta(t, 12.5, c.VolumePercentOfFirst, 1e-4)
}

func TestPerformClashDetection_TextDefault(t *testing.T) {
	s := newTestServer(newTestDeps(clashClient()))

	resp := callTool(t, s, "perform_clash_detection", map[string]any{
		"elementIds": []any{"a", "b"},
	})
	require.Nil(t, resp.Error)
	assert.Contains(t, resp.text(), "Clash Detection Report")
	assert.Contains(t, resp.text(), "Clash 1: Element A ↔ Element B")
}

func TestPerformClashDetection_ThresholdAboveOverlap(t *testing.T) {
	s := newTestServer(newTestDeps(clashClient()))

	resp := callTool(t, s, "perform_clash_detection", map[string]any{
		"elementIds":     []any{"a", "b"},
		"clashThreshold": 0.2,
		"format":         "yaml",
	})
	require.Nil(t, resp.Error)

	var report struct {
		ClashCount int     `yaml:"clash_count"`
		Threshold  float64 `yaml:"threshold"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(resp.text()), &report))
	assert.Equal(t, 0, report.ClashCount)
	assert.Equal(t, 0.2, report.Threshold)
}

func TestPerformClashDetection_SkipsFailedFetch(t *testing.T) {
	client := clashClient()
	client.geometryErr = map[string]error{"c": fmt.Errorf("element c: %w", apperrors.ErrNotFound)}
	s := newTestServer(newTestDeps(client))

	resp := callTool(t, s, "perform_clash_detection", map[string]any{
		"elementIds": []any{"a", "b", "c"},
		"format":     "json",
	})
	require.Nil(t, resp.Error)

	var report analysis.ClashReport
	require.NoError(t, json.Unmarshal([]byte(resp.text()), &report))
	assert.Equal(t, 1, report.SkippedCount)
	assert.Equal(t, 1, report.TotalPairs)
	assert.Contains(t, report.Elements[2].Reason, "geometry fetch failed")
}

func TestPerformClashDetection_AllFetchesUnauthorized(t *testing.T) {
	client := &mockClient{geometryErr: map[string]error{
		"a": apperrors.ErrUnauthorized,
		"b": apperrors.ErrUnauthorized,
	}}
	s := newTestServer(newTestDeps(client))

	resp := callTool(t, s, "perform_clash_detection", map[string]any{
		"elementIds": []any{"a", "b"},
	})
	assert.Equal(t, "unauthorized", resp.errorCode(t))
}

func TestPerformClashDetection_InvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing ids", map[string]any{}},
		{"single id", map[string]any{"elementIds": []any{"a"}}},
		{"duplicate ids", map[string]any{"elementIds": []any{"a", "b", "a"}}},
		{"non-string id", map[string]any{"elementIds": []any{"a", 2.0}}},
		{"negative threshold", map[string]any{"elementIds": []any{"a", "b"}, "clashThreshold": -1.0}},
		{"bad format", map[string]any{"elementIds": []any{"a", "b"}, "format": "xml"}},
		{"string threshold", map[string]any{"elementIds": []any{"a", "b"}, "clashThreshold": "500"}},
		{"bool threshold", map[string]any{"elementIds": []any{"a", "b"}, "clashThreshold": true}},
		{"non-string format", map[string]any{"elementIds": []any{"a", "b"}, "format": 1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := clashClient()
			s := newTestServer(newTestDeps(client))

			resp := callTool(t, s, "perform_clash_detection", tt.args)
			assert.Equal(t, "invalid_parameters", resp.errorCode(t))
			assert.Empty(t, client.geometryCalls, "no geometry should be fetched")
		})
	}
}

func containmentClient() *mockClient {
	return &mockClient{
		geometry: map[string]spatial.Element{
			"room":   box("room", "Room 101", 0, 10),
			"chair":  box("chair", "Office Chair Furniture", 2, 3),
			"desk":   boxXYZ("desk", "Desk Furniture", spatial.Vertex{8, 8, 0}, spatial.Vertex{12, 12, 1}),
			"lamp":   box("lamp", "Lamp Furniture", 20, 21),
			"ghost":  {ID: "ghost", Name: "Ghost"},
			"hollow": {ID: "hollow", Name: "Hollow Room"},
		},
		elements: []aecdm.Element{
			{ID: "chair", Name: "Office Chair Furniture"},
			{ID: "desk", Name: "Desk Furniture"},
			{ID: "lamp", Name: "Lamp Furniture"},
			{ID: "room", Name: "Room 101"},
		},
	}
}

func TestFindSpecificElementsContainedWithin(t *testing.T) {
	s := newTestServer(newTestDeps(containmentClient()))

	resp := callTool(t, s, "find_specific_elements_contained_within", map[string]any{
		"containerElementId": "room",
		"elementIds":         []any{"chair", "desk", "lamp", "ghost"},
		"format":             "json",
	})
	require.Nil(t, resp.Error)
	require.False(t, resp.Result.IsError, resp.text())

	var report analysis.ContainmentReport
	require.NoError(t, json.Unmarshal([]byte(resp.text()), &report))
	assert.Equal(t, analysis.ModeExplicitList, report.Mode)
	require.Len(t, report.Results, 3)

	byID := map[string]spatial.ContainmentType{}
	for _, r := range report.Results {
		byID[r.ElementID] = r.ContainmentType
	}
	assert.Equal(t, spatial.FullyContained, byID["chair"])
	assert.Equal(t, spatial.PartiallyContained, byID["desk"])
	assert.Equal(t, spatial.Outside, byID["lamp"])

	require.Len(t, report.Missing, 1)
	assert.Equal(t, "ghost", report.Missing[0].ElementID)
	assert.Equal(t, 1, report.Counts.Missing)
}

func TestFindSpecificElementsContainedWithin_DuplicateIDs(t *testing.T) {
	client := containmentClient()
	s := newTestServer(newTestDeps(client))

	resp := callTool(t, s, "find_specific_elements_contained_within", map[string]any{
		"containerElementId": "room",
		"elementIds":         []any{"chair", "desk", "chair"},
	})
	assert.Equal(t, "invalid_parameters", resp.errorCode(t))
	assert.Contains(t, resp.text(), `\"chair\"`)
	assert.Empty(t, client.geometryCalls)
}

func TestFindSpecificElementsContainedWithin_MissingContainer(t *testing.T) {
	s := newTestServer(newTestDeps(containmentClient()))

	resp := callTool(t, s, "find_specific_elements_contained_within", map[string]any{
		"containerElementId": "hollow",
		"elementIds":         []any{"chair"},
	})
	assert.Equal(t, "missing_container", resp.errorCode(t))
}

func TestContainmentTools_ContainerNotReturned(t *testing.T) {
	tests := []struct {
		name     string
		tool     string
		args     map[string]any
		err      error
		wantCode string
	}{
		{
			name:     "explicit list not found",
			tool:     "find_specific_elements_contained_within",
			args:     map[string]any{"containerElementId": "nope", "elementIds": []any{"chair"}},
			err:      fmt.Errorf("element nope: %w", apperrors.ErrNotFound),
			wantCode: "missing_container",
		},
		{
			name:     "category search not found",
			tool:     "find_elements_contained_within",
			args:     map[string]any{"containerElementId": "nope", "elementGroupId": "eg1", "category": "Furniture"},
			err:      fmt.Errorf("element nope: %w", apperrors.ErrNotFound),
			wantCode: "missing_container",
		},
		{
			name:     "category search unauthorized",
			tool:     "find_elements_contained_within",
			args:     map[string]any{"containerElementId": "nope", "elementGroupId": "eg1", "category": "Furniture"},
			err:      fmt.Errorf("%w: token expired", apperrors.ErrUnauthorized),
			wantCode: "unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := containmentClient()
			client.geometryErr = map[string]error{"nope": tt.err}
			s := newTestServer(newTestDeps(client))

			resp := callTool(t, s, tt.tool, tt.args)
			assert.Equal(t, tt.wantCode, resp.errorCode(t))
			assert.Equal(t, []string{"nope"}, client.geometryCalls, "no candidate is fetched without a container")
		})
	}
}

func TestFindElementsContainedWithin(t *testing.T) {
	client := containmentClient()
	s := newTestServer(newTestDeps(client))

	resp := callTool(t, s, "find_elements_contained_within", map[string]any{
		"containerElementId": "room",
		"elementGroupId":     "eg1",
		"category":           "Furniture",
		"format":             "json",
	})
	require.Nil(t, resp.Error)
	require.False(t, resp.Result.IsError, resp.text())
	assert.Equal(t, "Furniture", client.lastCategory)

	var report analysis.ContainmentReport
	require.NoError(t, json.Unmarshal([]byte(resp.text()), &report))
	assert.Equal(t, analysis.ModeCategorySearch, report.Mode)
	assert.Equal(t, 3, report.Counts.Checked)
	assert.Equal(t, 1, report.Counts.Outside)
	require.Len(t, report.Results, 2, "outside elements are not listed")
	require.Len(t, report.Groups, 1)
	assert.Equal(t, "Furniture", report.Groups[0].Category)

	assert.NotContains(t, client.geometryCalls[1:], "room", "container is fetched once, not as a candidate")
}

func TestFindElementsContainedWithin_TextNoneInside(t *testing.T) {
	client := containmentClient()
	client.elements = []aecdm.Element{{ID: "lamp", Name: "Lamp Furniture"}}
	s := newTestServer(newTestDeps(client))

	resp := callTool(t, s, "find_elements_contained_within", map[string]any{
		"containerElementId": "room",
		"elementGroupId":     "eg1",
		"category":           "Furniture",
	})
	require.Nil(t, resp.Error)
	assert.Contains(t, resp.text(), "No elements found inside the container")
}

func TestFindElementsContainedWithin_ListingFails(t *testing.T) {
	client := containmentClient()
	client.listErr = fmt.Errorf("%w: category %q contains invalid characters", apperrors.ErrValidation, "x'")
	s := newTestServer(newTestDeps(client))

	resp := callTool(t, s, "find_elements_contained_within", map[string]any{
		"containerElementId": "room",
		"elementGroupId":     "eg1",
		"category":           "x'",
	})
	assert.Equal(t, "invalid_parameters", resp.errorCode(t))
}
