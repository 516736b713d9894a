package auth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Middleware lets HTTP clients supply their own APS token.
// Requests without an Authorization header fall back to the configured token.
type Middleware struct {
	logger *zap.Logger
}

// NewMiddleware creates a new auth middleware.
func NewMiddleware(logger *zap.Logger) *Middleware {
	return &Middleware{
		logger: logger.Named("auth"),
	}
}

// BearerPassthrough stores a bearer token from the request in the context.
func (m *Middleware) BearerPassthrough(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			m.logger.Debug("Ignoring non-bearer Authorization header",
				zap.String("path", r.URL.Path))
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithToken(r.Context(), strings.TrimSpace(token))))
	})
}
