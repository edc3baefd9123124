package areena

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid areena configuration")
	// ErrNotFound indicates the upstream has no such resource
	ErrNotFound = errors.New("not found")
	// ErrBadResponse indicates a non-200 status or a non-JSON content type
	ErrBadResponse = errors.New("bad response")
	// ErrMalformed indicates a body that is not the expected JSON
	ErrMalformed = errors.New("malformed response")
	// ErrConnectivity indicates a transport-level failure
	ErrConnectivity = errors.New("connectivity error")
)

// NotFoundError carries the URL that produced a 404 or an empty listing.
// The URL never contains credentials.
type NotFoundError struct {
	URL string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("error: 404: %s", e.URL)
}

// Is lets errors.Is match ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ResponseError describes an upstream contract violation
type ResponseError struct {
	URL         string
	StatusCode  int
	ContentType string
	Message     string
}

// Error implements the error interface
func (e *ResponseError) Error() string {
	return fmt.Sprintf("areena API error: status %d (%s): %s: %s", e.StatusCode, e.ContentType, e.Message, e.URL)
}

// Is lets errors.Is match ErrBadResponse
func (e *ResponseError) Is(target error) bool {
	return target == ErrBadResponse
}

// IsUnauthorized checks if the error indicates rejected credentials
func (e *ResponseError) IsUnauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}
