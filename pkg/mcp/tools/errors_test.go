package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/aecdm-mcp/pkg/apperrors"
)

// getTextContent extracts the text string from the first text content item
func getTextContent(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	jsonBytes, _ := json.Marshal(result.Content[0])
	var textContent struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	_ = json.Unmarshal(jsonBytes, &textContent)
	return textContent.Text
}

func TestNewErrorResult(t *testing.T) {
	result := NewErrorResult("test_error", "this is a test error")

	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	assert.True(t, result.IsError)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(getTextContent(result)), &errResp))

	assert.True(t, errResp.Error)
	assert.Equal(t, "test_error", errResp.Code)
	assert.Equal(t, "this is a test error", errResp.Message)
	assert.Nil(t, errResp.Details)
}

func TestNewErrorResultWithDetails(t *testing.T) {
	result := NewErrorResultWithDetails("invalid_parameters", "duplicate ids",
		map[string]any{"duplicate": "e1"})

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(getTextContent(result)), &errResp))
	assert.Equal(t, map[string]any{"duplicate": "e1"}, errResp.Details)
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", fmt.Errorf("%w: bad", apperrors.ErrValidation), "invalid_parameters"},
		{"missing container", fmt.Errorf("%w: c1", apperrors.ErrMissingContainer), "missing_container"},
		{"unauthorized", fmt.Errorf("wrap: %w", apperrors.ErrUnauthorized), "unauthorized"},
		{"not found", fmt.Errorf("element x: %w", apperrors.ErrNotFound), "not_found"},
		{"upstream", fmt.Errorf("%w: Project not found", apperrors.ErrUpstream), "upstream_error"},
		{"plain error", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestAsErrorResult(t *testing.T) {
	assert.Nil(t, AsErrorResult(errors.New("internal")))

	result := AsErrorResult(fmt.Errorf("%w: rejected Bearer abc.def", apperrors.ErrUnauthorized))
	require.NotNil(t, result)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(getTextContent(result)), &errResp))
	assert.Equal(t, "unauthorized", errResp.Code)
	assert.NotContains(t, errResp.Message, "abc.def")
}
