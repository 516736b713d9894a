package cmd

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ekaya-inc/aecdm-mcp/pkg/config"
)

func TestRootCmd_Version(t *testing.T) {
	out, err := runCmd(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "test")
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd("test")

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["analyze"])

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.NotNil(t, serve.Flags().Lookup("http"))
}

func TestLoadRuntime_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\ngeometry:\n  max_concurrent: 3\n"), 0o600))

	cfg, logger, err := loadRuntime(path, "1.2.3")
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Equal(t, 3, cfg.Geometry.MaxConcurrent)
}

func TestLoadRuntime_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: loud\n"), 0o600))

	_, _, err := loadRuntime(path, "test")
	assert.Error(t, err)
}

func TestBuildServer_RegistersTools(t *testing.T) {
	cfg := &config.Config{
		Version:  "test",
		AECDM:    config.AECDMConfig{GraphQLURL: "https://example.invalid/graphql", MaxPages: 1, PageSize: 10},
		Geometry: config.GeometryConfig{MaxConcurrent: 2},
		Clash:    config.ClashConfig{DefaultThreshold: 0.01},
	}
	srv := buildServer(cfg, zap.NewNop())

	raw := srv.MCP().HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(raw)
	require.NoError(t, err)

	var resp struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Len(t, resp.Result.Tools, 10)
}

func TestLogStartup_MasksToken(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	const token = "not-a-jwt-but-long-enough"
	cfg := &config.Config{AECDM: config.AECDMConfig{AccessToken: token}}

	logStartup(cfg, zap.New(core), true)

	for _, entry := range logs.All() {
		for _, v := range entry.ContextMap() {
			if s, ok := v.(string); ok {
				assert.NotContains(t, s, token)
			}
		}
	}
	assert.Equal(t, 1, logs.FilterMessage("Configured APS token could not be decoded").Len())
}

func TestLogStartup_NoToken(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	logStartup(&config.Config{}, zap.New(core), false)

	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}
