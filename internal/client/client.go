package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/cms-client/internal/constants"
	"github.com/fivetwenty-io/cms-client/pkg/cms"
)

var _ cms.Client = (*Client)(nil)

// Client implements the cms.Client interface. It holds only configuration
// copied at construction, so concurrent calls share no mutable state.
type Client struct {
	transport      cms.Transport
	baseURL        string
	apiKey         string
	writeAPIKey    string
	globalDraftKey string
	schemas        cms.SchemaSet
	interceptors   *cms.InterceptorChain
	logger         cms.Logger
	debug          bool
}

// New creates a client from an already validated config.
func New(config *cms.Config, transport cms.Transport) *Client {
	return &Client{
		transport:      transport,
		baseURL:        BaseURL(config),
		apiKey:         config.APIKey,
		writeAPIKey:    config.WriteAPIKey,
		globalDraftKey: config.GlobalDraftKey,
		schemas:        config.Schemas,
		interceptors:   config.Interceptors,
		logger:         config.Logger,
		debug:          config.Debug,
	}
}

// BaseURL returns the scheme and host requests are sent to.
func BaseURL(config *cms.Config) string {
	if config.BaseURL != "" {
		return strings.TrimRight(config.BaseURL, "/")
	}

	host := config.APIHost
	if host == "" {
		host = constants.DefaultAPIHost
	}

	return "https://" + config.Service + "." + host
}

// endpointURL builds {base}/api/v1/{endpoint}[/{id}]{query}.
func (c *Client) endpointURL(endpoint, id string, opts *cms.QueryOptions) string {
	var b strings.Builder

	b.WriteString(c.baseURL)
	b.WriteString(constants.APIBasePath)
	b.WriteString(url.PathEscape(endpoint))

	if id != "" {
		b.WriteString("/")
		b.WriteString(url.PathEscape(id))
	}

	b.WriteString(opts.Encode())

	return b.String()
}

func (c *Client) readHeaders(opts *cms.QueryOptions) http.Header {
	headers := make(http.Header)
	headers.Set(constants.HeaderAPIKey, c.apiKey)

	if opts.GlobalKey() && c.globalDraftKey != "" {
		headers.Set(constants.HeaderGlobalDraftKey, c.globalDraftKey)
	}

	return headers
}

func (c *Client) writeHeaders() http.Header {
	headers := make(http.Header)
	headers.Set(constants.HeaderWriteAPIKey, c.writeAPIKey)
	headers.Set(constants.HeaderContentType, constants.ContentTypeJSON)

	return headers
}

func newRequest(method, rawURL string, headers http.Header, body []byte, op cms.Operation, endpoint, id string) *cms.Request {
	return &cms.Request{
		Method:  method,
		URL:     rawURL,
		Headers: headers,
		Body:    body,
		Metadata: map[string]interface{}{
			cms.MetadataEndpoint:  endpoint,
			cms.MetadataOperation: string(op),
			cms.MetadataID:        id,
		},
	}
}

// send runs the interceptor chain around one transport call. A returned
// error means no usable response; the response may still carry a status.
func (c *Client) send(ctx context.Context, req *cms.Request) (*cms.Response, error) {
	err := c.interceptors.ExecuteRequestInterceptors(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Do(ctx, req)
	if err == nil && resp == nil {
		err = fmt.Errorf("%w: transport returned no response", cms.ErrMalformedResponse)
	}

	if err != nil {
		failed := &cms.Response{Error: err}
		if resp != nil {
			failed.StatusCode = resp.StatusCode
		}

		_ = c.interceptors.ExecuteResponseInterceptors(ctx, req, failed)

		return failed, err
	}

	err = c.interceptors.ExecuteResponseInterceptors(ctx, req, resp)
	if err != nil {
		return resp, err
	}

	return resp, nil
}

func (c *Client) debugLog(msg string, fields map[string]interface{}) {
	if c.debug && c.logger != nil {
		c.logger.Debug(msg, fields)
	}
}

// schemaFor returns the endpoint's schema, or nil when no schemas are bound.
func (c *Client) schemaFor(endpoint string) (*cms.Schema, error) {
	if c.schemas == nil {
		return nil, nil //nolint:nilnil // no schema set bound
	}

	return c.schemas.Lookup(endpoint)
}
