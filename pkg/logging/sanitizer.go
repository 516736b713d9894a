package logging

import (
	"regexp"
)

const (
	// MaxBodyLogLength is the maximum length of an upstream response body to log
	MaxBodyLogLength = 300
	// RedactedText is the replacement text for sensitive data
	RedactedText = "[REDACTED]"
)

var (
	// Pattern to match bearer tokens in headers or error text
	bearerPattern = regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9\-_.~+/]+=*`)

	// Pattern to match bare JWTs (three base64url segments separated by dots)
	jwtPattern = regexp.MustCompile(`eyJ[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_]*`)

	// Pattern to match token-like query or form parameters
	tokenParamPattern = regexp.MustCompile(`(?i)(access_token|refresh_token|client_secret|code_verifier|token)=[^&\s"]+`)
)

// SanitizeError sanitizes error messages that might contain credentials.
// Use this before logging any error from upstream API calls.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeText(err.Error())
}

// SanitizeText redacts bearer tokens, bare JWTs and token parameters.
func SanitizeText(s string) string {
	if s == "" {
		return ""
	}

	sanitized := bearerPattern.ReplaceAllString(s, "Bearer "+RedactedText)
	sanitized = jwtPattern.ReplaceAllString(sanitized, RedactedText)
	sanitized = tokenParamPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)

	return sanitized
}

// SanitizeBody truncates and sanitizes an upstream response body for logging.
func SanitizeBody(body []byte) string {
	return SanitizeText(TruncateString(string(body), MaxBodyLogLength))
}

// MaskToken keeps the last four characters of a token so operators can tell
// tokens apart in logs without exposing them.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return RedactedText
	}
	return RedactedText + "..." + token[len(token)-4:]
}

// TruncateString truncates a string to maxLen and adds ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
