package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fivetwenty-io/cms-client/internal/constants"
	"github.com/fivetwenty-io/cms-client/pkg/cms"
	"github.com/hashicorp/go-retryablehttp"
)

// Client sends content API requests over hashicorp/go-retryablehttp with
// retries disabled: exactly one attempt is made and every status is returned.
type Client struct {
	httpClient *retryablehttp.Client
	options
}

// options are shared by every transport in this package.
type options struct {
	logger    cms.Logger
	leveled   retryablehttp.LeveledLogger
	debug     bool
	userAgent string
	timeout   time.Duration
	transport http.RoundTripper
}

// Option configures a transport.
type Option func(*options)

// WithLogger sets the logger used for debug request/response lines.
func WithLogger(logger cms.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLeveledLogger sets the logger handed to retryablehttp itself.
func WithLeveledLogger(logger retryablehttp.LeveledLogger) Option {
	return func(o *options) {
		o.leveled = logger
	}
}

// WithDebug enables debug logging.
func WithDebug(debug bool) Option {
	return func(o *options) {
		o.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(o *options) {
		o.userAgent = userAgent
	}
}

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithRoundTripper replaces the underlying net/http transport, e.g. to route
// through a proxy or to record traffic.
func WithRoundTripper(roundTripper http.RoundTripper) Option {
	return func(o *options) {
		o.transport = roundTripper
	}
}

func buildOptions(opts []Option) options {
	o := options{userAgent: constants.DefaultUserAgent}
	for _, opt := range opts {
		opt(&o)
	}

	if o.userAgent == "" {
		o.userAgent = constants.DefaultUserAgent
	}

	return o
}

// NewClient creates a new transport.
func NewClient(opts ...Option) *Client {
	o := buildOptions(opts)

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.CheckRetry = neverRetry
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.HTTPClient.Timeout = o.timeout

	if o.transport != nil {
		retryClient.HTTPClient.Transport = o.transport
	}

	// A nil logger silences retryablehttp's default stderr logger.
	if o.leveled != nil {
		retryClient.Logger = o.leveled
	} else {
		retryClient.Logger = nil
	}

	return &Client{
		httpClient: retryClient,
		options:    o,
	}
}

func neverRetry(ctx context.Context, _ *http.Response, _ error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	return false, nil
}

// Do implements cms.Transport.
func (c *Client) Do(ctx context.Context, req *cms.Request) (*cms.Response, error) {
	var body interface{}
	if len(req.Body) > 0 {
		body = req.Body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for key, values := range req.Headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	httpReq.Header.Set(constants.HeaderUserAgent, c.userAgent)

	c.logRequest(req)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// The passthrough error handler may hand back the response with the error.
		if httpResp != nil && httpResp.Body != nil {
			_ = httpResp.Body.Close()
		}

		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return &cms.Response{StatusCode: httpResp.StatusCode, Headers: httpResp.Header},
			fmt.Errorf("reading response body: %w", err)
	}

	resp := &cms.Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	c.logResponse(req, resp)

	return resp, nil
}

func (o *options) logRequest(req *cms.Request) {
	if !o.debug || o.logger == nil {
		return
	}

	o.logger.Debug("HTTP Request", map[string]interface{}{
		"method":    req.Method,
		"url":       req.URL,
		"operation": req.MetadataString(cms.MetadataOperation),
		"body_size": len(req.Body),
	})
}

func (o *options) logResponse(req *cms.Request, resp *cms.Response) {
	if !o.debug || o.logger == nil {
		return
	}

	fields := map[string]interface{}{
		"method":      req.Method,
		"url":         req.URL,
		"status_code": resp.StatusCode,
	}

	if resp.StatusCode >= http.StatusBadRequest {
		fields["body"] = string(bytes.TrimSpace(resp.Body))
	}

	o.logger.Debug("HTTP Response", fields)
}
