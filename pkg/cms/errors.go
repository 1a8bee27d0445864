package cms

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError represents an error response from the content API.
type APIError struct {
	StatusCode int    `json:"-"       yaml:"status_code"`
	Message    string `json:"message" yaml:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("content API error (status: %d)", e.StatusCode)
	}

	return fmt.Sprintf("%s (status: %d)", e.Message, e.StatusCode)
}

// Static errors for err113 compliance.
var (
	ErrConfigRequired        = errors.New("config is required")
	ErrServiceRequired       = errors.New("service name is required")
	ErrEndpointRequired      = errors.New("endpoint is required")
	ErrReadKeyNotConfigured  = errors.New("read API key is not configured")
	ErrWriteKeyNotConfigured = errors.New("write API key is not configured")
	ErrUnknownEndpoint       = errors.New("unknown endpoint")
	ErrSchemaViolation       = errors.New("schema violation")
	ErrMalformedResponse     = errors.New("malformed response body")
	ErrInvalidConfig         = errors.New("invalid configuration")
	ErrInvalidSchema         = errors.New("invalid schema definition")
	ErrUnsupportedSchemaFile = errors.New("unsupported schema file extension")
	ErrUnsupportedTransport  = errors.New("unsupported transport type")
	ErrUnsupportedOperation  = errors.New("unsupported operation type")
	ErrInvalidOperationData  = errors.New("invalid data for operation")
	ErrNoMoreItems           = errors.New("no more items")
)

// IsNotFound reports whether err is an API error with status 404.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized reports whether err is an API error with status 401.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden reports whether err is an API error with status 403.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

// IsBadRequest reports whether err is an API error with status 400.
func IsBadRequest(err error) bool {
	return hasStatus(err, http.StatusBadRequest)
}

func hasStatus(err error, status int) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}

	return false
}

// ParseAPIError parses an error response body. Bodies that are empty or not
// JSON still produce an APIError carrying the status code.
func ParseAPIError(statusCode int, data []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}
	if len(data) == 0 {
		return apiErr
	}

	var body struct {
		Message string `json:"message"`
	}

	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.Message = body.Message
	}

	return apiErr
}
