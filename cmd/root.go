// Package cmd holds the aecdm-mcp command line: the MCP server and offline
// analysis of exported element geometry.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aecdm-mcp/pkg/config"
	"github.com/ekaya-inc/aecdm-mcp/pkg/logging"
)

// NewRootCmd builds the command tree. version is injected at build time.
func NewRootCmd(version string) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "aecdm-mcp",
		Short: "MCP server for the Autodesk AEC Data Model",
		Long: `aecdm-mcp exposes Autodesk Construction Cloud building models to MCP clients.
It lists hubs, projects, files and elements through the AEC Data Model GraphQL API
and runs bounding-box clash and containment analysis over element geometry.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath,
		"path to config.yaml; environment variables override its values")

	rootCmd.AddCommand(
		newServeCmd(version, &configPath),
		newAnalyzeCmd(),
	)
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute(version string) {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadRuntime reads the configuration and builds the logger it asks for.
func loadRuntime(configPath, version string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadFrom(configPath, version)
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.Env)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}
