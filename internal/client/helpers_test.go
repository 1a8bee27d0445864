package client_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fivetwenty-io/cms-client/internal/client"
	"github.com/fivetwenty-io/cms-client/internal/cmstest"
	cmshttp "github.com/fivetwenty-io/cms-client/internal/http"
	"github.com/fivetwenty-io/cms-client/pkg/cms"
)

// Test static errors.
var (
	ErrTestConnectionRefused = errors.New("connection refused")
	ErrTestInterceptor       = errors.New("interceptor refused")
)

// recordingTransport answers every request with a canned response and keeps
// what it was sent.
type recordingTransport struct {
	mu       sync.Mutex
	requests []*cms.Request
	status   int
	body     string
	err      error
}

func (r *recordingTransport) Do(ctx context.Context, req *cms.Request) (*cms.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests = append(r.requests, req)

	if r.err != nil {
		return nil, r.err
	}

	return &cms.Response{StatusCode: r.status, Body: []byte(r.body)}, nil
}

func (r *recordingTransport) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.requests)
}

func (r *recordingTransport) last() *cms.Request {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.requests) == 0 {
		return nil
	}

	return r.requests[len(r.requests)-1]
}

func fullConfig() *cms.Config {
	return &cms.Config{
		Service:        "demo",
		APIKey:         cmstest.ReadKey,
		WriteAPIKey:    cmstest.WriteKey,
		GlobalDraftKey: cmstest.GlobalDraftKey,
	}
}

// newServerClient returns a client wired to a fresh fake content API.
func newServerClient(t *testing.T, mutate ...func(*cms.Config)) (*client.Client, *cmstest.Server) {
	t.Helper()

	server := cmstest.NewServer()
	t.Cleanup(server.Close)

	config := fullConfig()
	config.BaseURL = server.URL

	for _, m := range mutate {
		m(config)
	}

	return client.New(config, cmshttp.NewClient()), server
}

// newRecordingClient returns a client whose transport answers with status and body.
func newRecordingClient(status int, body string, mutate ...func(*cms.Config)) (*client.Client, *recordingTransport) {
	transport := &recordingTransport{status: status, body: body}

	config := fullConfig()
	for _, m := range mutate {
		m(config)
	}

	return client.New(config, transport), transport
}
