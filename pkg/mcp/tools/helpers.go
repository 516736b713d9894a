package tools

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// trimString removes leading and trailing whitespace from a string.
func trimString(s string) string {
	return strings.TrimSpace(s)
}

// getOptionalString extracts an optional string argument from the request.
// An absent key yields "", a present key of another type is an error.
func getOptionalString(req mcp.CallToolRequest, key string) (string, error) {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return "", nil
	}
	raw, present := args[key]
	if !present || raw == nil {
		return "", nil
	}
	val, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return val, nil
}

// getOptionalFloat extracts an optional number argument. ok is false when the
// key is absent; a present key that is not a number is an error.
func getOptionalFloat(req mcp.CallToolRequest, key string) (val float64, ok bool, err error) {
	args, isMap := req.Params.Arguments.(map[string]any)
	if !isMap {
		return 0, false, nil
	}
	raw, present := args[key]
	if !present || raw == nil {
		return 0, false, nil
	}
	val, isNum := raw.(float64)
	if !isNum {
		return 0, false, fmt.Errorf("%s must be a number", key)
	}
	return val, true, nil
}

// getRequiredString extracts a required, non-blank string argument.
func getRequiredString(req mcp.CallToolRequest, key string) (string, error) {
	val, err := req.RequireString(key)
	if err != nil {
		return "", fmt.Errorf("%s is required", key)
	}
	val = trimString(val)
	if val == "" {
		return "", fmt.Errorf("%s cannot be empty", key)
	}
	return val, nil
}

// getStringArray extracts an array of non-blank strings. Items that are not
// strings are an error rather than being skipped, so a malformed id list is
// never analyzed partially.
func getStringArray(req mcp.CallToolRequest, key string) ([]string, error) {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s is required", key)
	}
	raw, ok := args[key].([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an array of strings", key)
	}

	out := make([]string, 0, len(raw))
	for i, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be a string", key, i)
		}
		s = trimString(s)
		if s == "" {
			return nil, fmt.Errorf("%s[%d] cannot be empty", key, i)
		}
		out = append(out, s)
	}
	return out, nil
}

// firstDuplicate returns the first id that occurs more than once.
func firstDuplicate(ids []string) (string, bool) {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return id, true
		}
		seen[id] = struct{}{}
	}
	return "", false
}
