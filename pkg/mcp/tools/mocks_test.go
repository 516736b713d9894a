package tools

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aecdm-mcp/pkg/aecdm"
	"github.com/ekaya-inc/aecdm-mcp/pkg/analysis"
	"github.com/ekaya-inc/aecdm-mcp/pkg/spatial"
	"github.com/ekaya-inc/aecdm-mcp/pkg/workpool"
)

// mockClient implements AECDMClient for testing.
type mockClient struct {
	hubs        []aecdm.Hub
	projects    []aecdm.Project
	groups      []aecdm.ElementGroup
	elements    []aecdm.Element
	geometry    map[string]spatial.Element
	geometryErr map[string]error
	listErr     error

	mu            sync.Mutex
	lastHubID     string
	lastFilter    string
	lastCategory  string
	geometryCalls []string
}

func (m *mockClient) GetHubs(ctx context.Context) ([]aecdm.Hub, error) {
	return m.hubs, m.listErr
}

func (m *mockClient) GetProjects(ctx context.Context, hubID string) ([]aecdm.Project, error) {
	m.lastHubID = hubID
	return m.projects, m.listErr
}

func (m *mockClient) GetElementGroupsByProject(ctx context.Context, projectID string) ([]aecdm.ElementGroup, error) {
	return m.groups, m.listErr
}

func (m *mockClient) GetElementsByCategory(ctx context.Context, elementGroupID, category string) ([]aecdm.Element, error) {
	m.lastCategory = category
	return m.elements, m.listErr
}

func (m *mockClient) GetElementsByFilter(ctx context.Context, elementGroupID, filter string) ([]aecdm.Element, error) {
	m.lastFilter = filter
	return m.elements, m.listErr
}

func (m *mockClient) GetElementGeometry(ctx context.Context, elementID string) (spatial.Element, error) {
	m.mu.Lock()
	m.geometryCalls = append(m.geometryCalls, elementID)
	m.mu.Unlock()

	if err, ok := m.geometryErr[elementID]; ok {
		return spatial.Element{}, err
	}
	if el, ok := m.geometry[elementID]; ok {
		return el, nil
	}
	return spatial.Element{ID: elementID}, nil
}

// box builds an element whose single mesh spans (lo,lo,lo)-(hi,hi,hi).
func box(id, name string, lo, hi float32) spatial.Element {
	return boxXYZ(id, name, spatial.Vertex{lo, lo, lo}, spatial.Vertex{hi, hi, hi})
}

func boxXYZ(id, name string, lo, hi spatial.Vertex) spatial.Element {
	return spatial.Element{
		ID:   id,
		Name: name,
		Meshes: []spatial.Mesh{{
			lo,
			hi,
			{lo[0], hi[1], lo[2]},
		}},
	}
}

func newTestDeps(client *mockClient) *ToolDeps {
	return &ToolDeps{
		Client:           client,
		Analyzer:         analysis.NewAnalyzer(zap.NewNop()),
		Pool:             workpool.New(workpool.Config{MaxConcurrent: 4}, zap.NewNop()),
		DefaultThreshold: spatial.DefaultClashThreshold,
		Logger:           zap.NewNop(),
	}
}

func newTestServer(deps *ToolDeps) *server.MCPServer {
	s := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
	RegisterAll(s, deps, "test-version")
	return s
}

// toolResponse is the decoded JSON-RPC response of a tools/call.
type toolResponse struct {
	Result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (r toolResponse) text() string {
	if len(r.Result.Content) == 0 {
		return ""
	}
	return r.Result.Content[0].Text
}

// errorCode decodes the structured tool error, failing the test when the
// result is not one.
func (r toolResponse) errorCode(t *testing.T) string {
	t.Helper()
	require.Nil(t, r.Error, "expected tool error result, got protocol error")
	require.True(t, r.Result.IsError, "expected isError, got %s", r.text())
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(r.text()), &errResp))
	return errResp.Code
}

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) toolResponse {
	t.Helper()

	request, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      name,
			"arguments": args,
		},
	})
	require.NoError(t, err)

	result := s.HandleMessage(context.Background(), request)
	resultBytes, err := json.Marshal(result)
	require.NoError(t, err)

	var response toolResponse
	require.NoError(t, json.Unmarshal(resultBytes, &response))
	return response
}
