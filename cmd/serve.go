package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aecdm-mcp/pkg/aecdm"
	"github.com/ekaya-inc/aecdm-mcp/pkg/analysis"
	"github.com/ekaya-inc/aecdm-mcp/pkg/auth"
	"github.com/ekaya-inc/aecdm-mcp/pkg/config"
	"github.com/ekaya-inc/aecdm-mcp/pkg/handlers"
	"github.com/ekaya-inc/aecdm-mcp/pkg/logging"
	"github.com/ekaya-inc/aecdm-mcp/pkg/mcp"
	"github.com/ekaya-inc/aecdm-mcp/pkg/mcp/tools"
	"github.com/ekaya-inc/aecdm-mcp/pkg/middleware"
	"github.com/ekaya-inc/aecdm-mcp/pkg/workpool"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(version string, configPath *string) *cobra.Command {
	var httpMode bool

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Long: `Run the MCP server. By default it speaks MCP over stdin/stdout for desktop
clients. With --http it serves streamable HTTP at /mcp plus /health and /ping.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(*configPath, version)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logStartup(cfg, logger, httpMode)
			srv := buildServer(cfg, logger)

			if !httpMode {
				err := srv.ServeStdio(ctx)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
			return serveHTTP(ctx, cfg, srv, logger)
		},
	}

	serveCmd.Flags().BoolVar(&httpMode, "http", false, "serve streamable HTTP instead of stdio")
	return serveCmd
}

// buildServer wires the AECDM client, geometry pool and analyzer into an MCP
// server with every tool registered.
func buildServer(cfg *config.Config, logger *zap.Logger) *mcp.Server {
	client := aecdm.NewClient(cfg.AECDM, cfg.Retry, logger)
	pool := workpool.New(workpool.Config{MaxConcurrent: cfg.Geometry.MaxConcurrent}, logger)

	srv := mcp.NewServer("aecdm-mcp", cfg.Version, logger)
	tools.RegisterAll(srv.MCP(), &tools.ToolDeps{
		Client:           client,
		Analyzer:         analysis.NewAnalyzer(logger),
		Pool:             pool,
		DefaultThreshold: cfg.Clash.DefaultThreshold,
		AccessToken:      cfg.AECDM.AccessToken,
		Logger:           logger,
	}, cfg.Version)
	return srv
}

func serveHTTP(ctx context.Context, cfg *config.Config, srv *mcp.Server, logger *zap.Logger) error {
	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewMCPHandler(srv, logger).RegisterRoutes(mux, auth.NewMiddleware(logger))

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Serving MCP over HTTP", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// logStartup records the effective configuration. The APS token is only ever
// logged masked.
func logStartup(cfg *config.Config, logger *zap.Logger, httpMode bool) {
	transport := "stdio"
	if httpMode {
		transport = "http"
	}
	logger.Info("Configuration loaded",
		zap.String("version", cfg.Version),
		zap.String("env", cfg.Env),
		zap.String("transport", transport),
		zap.String("graphql_url", cfg.AECDM.GraphQLURL),
		zap.String("region", cfg.AECDM.Region),
		zap.Int("geometry_workers", cfg.Geometry.MaxConcurrent),
		zap.Float64("default_clash_threshold", cfg.Clash.DefaultThreshold),
	)

	if !cfg.AECDM.HasAccessToken() {
		logger.Warn("APS_ACCESS_TOKEN is not set; API tools need a bearer token on each HTTP request")
		return
	}

	info, err := auth.Inspect(cfg.AECDM.AccessToken, time.Now())
	if err != nil {
		logger.Warn("Configured APS token could not be decoded",
			zap.String("token", logging.MaskToken(cfg.AECDM.AccessToken)),
			zap.String("error", logging.SanitizeError(err)))
		return
	}

	fields := []zap.Field{
		zap.String("token", logging.MaskToken(cfg.AECDM.AccessToken)),
		zap.String("client_id", info.ClientID),
		zap.Strings("scopes", info.Scopes),
		zap.Bool("expired", info.Expired),
	}
	if info.Expired {
		logger.Warn("Configured APS token has expired", fields...)
		return
	}
	logger.Info("Configured APS token", fields...)
}
