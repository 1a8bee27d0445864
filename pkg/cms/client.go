package cms

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Client is the content API surface. Every method issues at most one HTTP
// request and reports its outcome in the returned Result.
type Client interface {
	// Get fetches one record. An empty id addresses an object-format endpoint.
	Get(ctx context.Context, endpoint, id string, opts *QueryOptions) Result[Record]
	// List fetches one page of an endpoint's collection.
	List(ctx context.Context, endpoint string, opts *QueryOptions) Result[ListResult]
	// Create posts a new record and returns its id. Succeeds with 201.
	Create(ctx context.Context, endpoint string, params Record) Result[string]
	// Replace puts a full record at id and returns its id. Succeeds with 201.
	Replace(ctx context.Context, endpoint, id string, params Record) Result[string]
	// Update patches part of a record and returns its id. Succeeds with 200.
	Update(ctx context.Context, endpoint, id string, params Record) Result[string]
	// Delete removes a record. Succeeds with 202.
	Delete(ctx context.Context, endpoint, id string) Result[bool]
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// TransportType selects a built-in transport.
type TransportType string

const (
	// TransportRetryable uses hashicorp/go-retryablehttp with retries disabled.
	TransportRetryable TransportType = "retryable"
	// TransportResty uses go-resty.
	TransportResty TransportType = "resty"
)

// Config represents client configuration for building a cms.Client.
//
// # Credentials
//
// Reads need APIKey and writes need WriteAPIKey. A missing key is not an
// error at construction time: calls that need it return a NotConfigured
// result without touching the network. GlobalDraftKey is only sent when a
// read asks for it with QueryOptions.WithGlobalKey.
//
// # Endpoint
//
// Requests go to https://<Service>.<APIHost>/api/v1/<endpoint>. BaseURL
// replaces the scheme and host entirely and is meant for tests and proxies.
type Config struct {
	// Service is the service subdomain, e.g. "my-blog".
	Service string `validate:"required,hostname_rfc1123"`
	// APIKey is the read key sent as X-API-KEY.
	APIKey string
	// WriteAPIKey is the write key sent as X-WRITE-API-KEY.
	WriteAPIKey string
	// GlobalDraftKey is sent as X-GLOBAL-DRAFT-KEY when a read requests it.
	GlobalDraftKey string

	// APIHost is the API domain. Defaults to microcms.io.
	APIHost string `validate:"omitempty,fqdn"`
	// BaseURL overrides scheme and host, e.g. "http://127.0.0.1:8080".
	BaseURL string `validate:"omitempty,url"`

	// HTTPTimeout bounds each request. Zero leaves requests bounded only by ctx.
	HTTPTimeout time.Duration `validate:"gte=0"`
	// Debug enables request/response logging when a Logger is provided.
	Debug bool
	// Logger is an optional structured logger.
	Logger Logger
	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// Transport replaces the built-in transport when set.
	Transport Transport
	// TransportType selects the built-in transport. Defaults to TransportRetryable.
	TransportType TransportType `validate:"omitempty,oneof=retryable resty"`

	// Schemas binds the client to endpoint schemas. Nil disables validation.
	Schemas SchemaSet
	// Interceptors run around every request that reaches the transport.
	Interceptors *InterceptorChain
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigRequired
	}

	if c.Service == "" {
		return ErrServiceRequired
	}

	err := configValidator.Struct(c)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}
