package apperrors

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation failed")
	ErrGeometryUnavailable = errors.New("geometry unavailable")
	ErrMissingContainer    = errors.New("container element has no geometry")
	ErrComputation         = errors.New("computation failed")
	ErrUpstream            = errors.New("upstream API error")
	ErrUnauthorized        = errors.New("access token missing or rejected")
)
