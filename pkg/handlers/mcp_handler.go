package handlers

import (
	"net/http"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/aecdm-mcp/pkg/auth"
	"github.com/ekaya-inc/aecdm-mcp/pkg/mcp"
	"github.com/ekaya-inc/aecdm-mcp/pkg/middleware"
)

// MCPHandler serves the MCP protocol over streamable HTTP.
type MCPHandler struct {
	httpServer *server.StreamableHTTPServer
	logger     *zap.Logger
}

// NewMCPHandler creates a new MCP handler from an MCP server.
func NewMCPHandler(mcpServer *mcp.Server, logger *zap.Logger) *MCPHandler {
	return &MCPHandler{
		httpServer: mcpServer.NewStreamableHTTPServer(),
		logger:     logger,
	}
}

// RegisterRoutes mounts the MCP endpoint at /mcp.
//
// Layers from the outside in: method check, bearer passthrough, JSON-RPC
// logging. A request's bearer token replaces the configured APS token for
// the tool calls it carries.
func (h *MCPHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	loggedHandler := middleware.MCPRequestLogger(h.logger)(h.httpServer)
	authHandler := authMiddleware.BearerPassthrough(loggedHandler)
	mux.Handle("/mcp", h.requirePOST(authHandler))
}

// requirePOST answers 405 for anything but POST; the server is stateless so
// there is no SSE stream to GET and no session to DELETE.
func (h *MCPHandler) requirePOST(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			_ = ErrorResponse(w, http.StatusMethodNotAllowed, "method_not_allowed", "MCP requests must use POST")
			return
		}
		next.ServeHTTP(w, r)
	})
}
