package cms

import (
	"context"
	"net/http"
)

// Request metadata keys set by the client on every request.
const (
	MetadataEndpoint  = "endpoint"
	MetadataOperation = "operation"
	MetadataID        = "id"
	MetadataStartTime = "start_time"
)

// Request represents an HTTP request that can be intercepted and sent.
type Request struct {
	Method   string
	URL      string
	Headers  http.Header
	Body     []byte
	Metadata map[string]interface{}
}

// Response represents an HTTP response that can be intercepted.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Error      error
}

// Transport sends one request and returns the raw response. A non-nil error
// means no response was received; every HTTP status is returned as a Response.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

// Do implements Transport.
func (f TransportFunc) Do(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// MetadataString returns a string metadata value.
func (r *Request) MetadataString(key string) string {
	if r.Metadata == nil {
		return ""
	}

	s, _ := r.Metadata[key].(string)

	return s
}
