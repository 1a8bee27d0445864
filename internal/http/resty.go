package http

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/cms-client/internal/constants"
	"github.com/fivetwenty-io/cms-client/pkg/cms"
	"github.com/go-resty/resty/v2"
)

// RestyTransport sends content API requests with go-resty. resty does not
// retry unless told to, so one call is one request.
type RestyTransport struct {
	client *resty.Client
	options
}

// NewRestyTransport creates a resty-backed transport.
func NewRestyTransport(opts ...Option) *RestyTransport {
	o := buildOptions(opts)

	client := resty.New()
	client.SetTimeout(o.timeout)
	client.SetHeader(constants.HeaderUserAgent, o.userAgent)

	if o.transport != nil {
		client.SetTransport(o.transport)
	}

	return &RestyTransport{client: client, options: o}
}

// Do implements cms.Transport.
func (t *RestyTransport) Do(ctx context.Context, req *cms.Request) (*cms.Response, error) {
	r := t.client.R().SetContext(ctx)

	for key, values := range req.Headers {
		for _, value := range values {
			r.Header.Add(key, value)
		}
	}

	if len(req.Body) > 0 {
		r.SetBody(req.Body)
	}

	t.logRequest(req)

	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	out := &cms.Response{
		StatusCode: resp.StatusCode(),
		Headers:    resp.Header(),
		Body:       resp.Body(),
	}

	t.logResponse(req, out)

	return out, nil
}
