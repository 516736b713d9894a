package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBearerPassthrough(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantToken string
		wantFound bool
	}{
		{name: "bearer token", header: "Bearer abc123", wantToken: "abc123", wantFound: true},
		{name: "lowercase scheme", header: "bearer xyz", wantToken: "xyz", wantFound: true},
		{name: "no header", header: "", wantFound: false},
		{name: "basic auth ignored", header: "Basic dXNlcjpwYXNz", wantFound: false},
		{name: "empty bearer", header: "Bearer   ", wantFound: false},
	}

	m := NewMiddleware(zap.NewNop())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotToken string
			var gotFound bool
			handler := m.BearerPassthrough(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotToken, gotFound = GetToken(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantFound, gotFound)
			assert.Equal(t, tt.wantToken, gotToken)
		})
	}
}
