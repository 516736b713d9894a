package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/aecdm-mcp/pkg/aecdm"
	"github.com/ekaya-inc/aecdm-mcp/pkg/apperrors"
	"github.com/ekaya-inc/aecdm-mcp/pkg/auth"
)

func TestGetHubs(t *testing.T) {
	client := &mockClient{hubs: []aecdm.Hub{{ID: "h1", Name: "Hub"}}}
	s := newTestServer(newTestDeps(client))

	resp := callTool(t, s, "get_hubs", nil)
	require.Nil(t, resp.Error)
	assert.False(t, resp.Result.IsError)

	var hubs []aecdm.Hub
	require.NoError(t, json.Unmarshal([]byte(resp.text()), &hubs))
	assert.Equal(t, client.hubs, hubs)
}

func TestGetHubs_UpstreamErrorIsToolError(t *testing.T) {
	client := &mockClient{listErr: fmt.Errorf("failed to list hubs: %w: Not authorized for hub", apperrors.ErrUpstream)}
	s := newTestServer(newTestDeps(client))

	resp := callTool(t, s, "get_hubs", nil)
	assert.Equal(t, "upstream_error", resp.errorCode(t))
	assert.Contains(t, resp.text(), "Not authorized for hub")
}

func TestGetHubs_InternalErrorIsProtocolError(t *testing.T) {
	client := &mockClient{listErr: errors.New("boom")}
	s := newTestServer(newTestDeps(client))

	resp := callTool(t, s, "get_hubs", nil)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "boom")
}

func TestGetProjects(t *testing.T) {
	client := &mockClient{projects: []aecdm.Project{{ID: "p1", Name: "Tower"}}}
	s := newTestServer(newTestDeps(client))

	resp := callTool(t, s, "get_projects", map[string]any{"hubId": " h1 "})
	require.Nil(t, resp.Error)
	assert.False(t, resp.Result.IsError)
	assert.Equal(t, "h1", client.lastHubID)
	assert.Contains(t, resp.text(), `"name":"Tower"`)
}

func TestGetProjects_MissingHubID(t *testing.T) {
	s := newTestServer(newTestDeps(&mockClient{}))

	resp := callTool(t, s, "get_projects", map[string]any{})
	assert.Equal(t, "invalid_parameters", resp.errorCode(t))
}

func TestGetFiles(t *testing.T) {
	client := &mockClient{groups: []aecdm.ElementGroup{{ID: "eg1", Name: "Tower.rvt", FileVersionURN: "urn:1"}}}
	s := newTestServer(newTestDeps(client))

	resp := callTool(t, s, "get_files", map[string]any{"projectId": "p1"})
	require.Nil(t, resp.Error)
	assert.Contains(t, resp.text(), `"fileVersionUrn":"urn:1"`)
}

func TestGetElementsByCategory(t *testing.T) {
	client := &mockClient{elements: []aecdm.Element{{ID: "e1", Name: "Basic Wall", Category: "Walls"}}}
	s := newTestServer(newTestDeps(client))

	resp := callTool(t, s, "get_elements_by_category", map[string]any{
		"elementGroupId": "eg1",
		"category":       "Walls",
	})
	require.Nil(t, resp.Error)
	assert.Equal(t, "Walls", client.lastCategory)

	var elements []aecdm.Element
	require.NoError(t, json.Unmarshal([]byte(resp.text()), &elements))
	assert.Equal(t, client.elements, elements)
}

func TestGetElementsByFilter(t *testing.T) {
	client := &mockClient{}
	s := newTestServer(newTestDeps(client))

	filter := "'property.name.category'=='Doors'"
	resp := callTool(t, s, "get_elements_by_filter", map[string]any{
		"elementGroupId": "eg1",
		"filter":         filter,
	})
	require.Nil(t, resp.Error)
	assert.Equal(t, filter, client.lastFilter)

	resp = callTool(t, s, "get_elements_by_filter", map[string]any{"elementGroupId": "eg1"})
	assert.Equal(t, "invalid_parameters", resp.errorCode(t))
}

func TestGetTokenInfo(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"client_id": "client-abc",
		"scope":     "data:read",
		"exp":       time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("k"))
	require.NoError(t, err)

	deps := newTestDeps(&mockClient{})
	deps.AccessToken = signed
	s := newTestServer(deps)

	resp := callTool(t, s, "get_token_info", nil)
	require.Nil(t, resp.Error)
	assert.False(t, resp.Result.IsError)
	assert.NotContains(t, resp.text(), signed)

	var info auth.TokenInfo
	require.NoError(t, json.Unmarshal([]byte(resp.text()), &info))
	assert.Equal(t, "client-abc", info.ClientID)
	assert.Equal(t, []string{"data:read"}, info.Scopes)
	assert.False(t, info.Expired)
}

func TestGetTokenInfo_NoToken(t *testing.T) {
	s := newTestServer(newTestDeps(&mockClient{}))

	resp := callTool(t, s, "get_token_info", nil)
	assert.Equal(t, "unauthorized", resp.errorCode(t))
}

func TestGetTokenInfo_Malformed(t *testing.T) {
	deps := newTestDeps(&mockClient{})
	deps.AccessToken = "not-a-jwt"
	s := newTestServer(deps)

	resp := callTool(t, s, "get_token_info", nil)
	assert.Equal(t, "invalid_token", resp.errorCode(t))
}
