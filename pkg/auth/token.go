package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoToken is returned when no access token is configured.
var ErrNoToken = errors.New("no access token configured")

// TokenInfo is what Inspect learns about a token. It never includes the token itself.
type TokenInfo struct {
	ClientID  string     `json:"client_id,omitempty"`
	UserID    string     `json:"user_id,omitempty"`
	Scopes    []string   `json:"scopes,omitempty"`
	Audience  []string   `json:"audience,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
	ExpiresIn string     `json:"expires_in,omitempty"`
}

// Inspect decodes an APS token without verifying its signature. Signature and
// expiry are enforced by the upstream API; an expired token is reported here,
// not rejected.
func Inspect(token string, now time.Time) (*TokenInfo, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return nil, ErrNoToken
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to decode access token: %w", err)
	}

	info := &TokenInfo{
		ClientID: claims.ClientID,
		UserID:   claims.UserID,
		Scopes:   claims.Scopes(),
		Audience: claims.Audience,
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time.UTC()
		info.ExpiresAt = &exp
		info.Expired = !now.Before(exp)
		if !info.Expired {
			info.ExpiresIn = exp.Sub(now).Truncate(time.Second).String()
		}
	}
	return info, nil
}
