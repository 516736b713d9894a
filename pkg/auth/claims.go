// Package auth inspects Autodesk Platform Services access tokens and carries
// per-request tokens through the context.
package auth

import (
	"context"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// TokenKey is the context key for a per-request APS access token.
const TokenKey contextKey = "aps_token"

// Claims is the subset of an APS access token this server cares about.
// APS issues scope either as a space separated string or as a list.
type Claims struct {
	jwt.RegisteredClaims
	ClientID string `json:"client_id,omitempty"`
	UserID   string `json:"userid,omitempty"`
	Scope    any    `json:"scope,omitempty"`
}

// Scopes normalizes the scope claim into a list.
func (c *Claims) Scopes() []string {
	switch s := c.Scope.(type) {
	case string:
		return strings.Fields(s)
	case []any:
		out := make([]string, 0, len(s))
		for _, v := range s {
			if str, ok := v.(string); ok {
				out = append(out, str)
			}
		}
		return out
	case []string:
		return s
	}
	return nil
}

// WithToken returns a context carrying token for downstream API calls.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, TokenKey, token)
}

// GetToken retrieves the per-request token from the context.
// Returns empty string and false if token is not present.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
