package handlers

import (
	"net/http"
	"os"
	"runtime"

	"go.uber.org/zap"

	"github.com/ekaya-inc/aecdm-mcp/pkg/config"
)

// PingResponse contains service status and version information.
type PingResponse struct {
	Status          string `json:"status"`
	Version         string `json:"version"`
	Service         string `json:"service"`
	GoVersion       string `json:"go_version"`
	Hostname        string `json:"hostname"`
	Environment     string `json:"environment"`
	Region          string `json:"region"`
	TokenConfigured bool   `json:"token_configured"`
}

// HealthHandler handles health check and ping endpoints.
type HealthHandler struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler with the given configuration.
func NewHealthHandler(cfg *config.Config, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, logger: logger}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
}

// Health returns a plain "ok" for container liveness probes.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ping returns service details. The APS token itself is never exposed.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	hostname, err := os.Hostname()
	if err != nil {
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to get hostname")
		return
	}

	response := PingResponse{
		Status:          "ok",
		Version:         h.cfg.Version,
		Service:         "aecdm-mcp",
		GoVersion:       runtime.Version(),
		Hostname:        hostname,
		Environment:     h.cfg.Env,
		Region:          h.cfg.AECDM.Region,
		TokenConfigured: h.cfg.AECDM.HasAccessToken(),
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}
