package client_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/fivetwenty-io/cms-client/internal/client"
	"github.com/fivetwenty-io/cms-client/pkg/cms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Get(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		c, server := newServerClient(t)
		ids := server.Seed("blogs", cms.Record{"title": "hello", "views": 3})

		res := c.Get(context.Background(), "blogs", ids[0], nil)
		require.True(t, res.OK())
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "hello", res.Value["title"])
		assert.False(t, res.Value.CreatedAt().IsZero())

		status, ok := res.StatusAware()
		require.True(t, ok)
		assert.Equal(t, 200, status.Code)
		assert.Equal(t, ids[0], status.Value.ID())
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		c, _ := newServerClient(t)

		res := c.Get(context.Background(), "blogs", "missing", nil)
		assert.Equal(t, cms.ResultFailure, res.Kind)
		assert.True(t, cms.IsNotFound(res.Error()))

		value, ok := res.Lenient()
		assert.False(t, ok)
		assert.Nil(t, value)

		status, ok := res.StatusAware()
		require.True(t, ok)
		assert.Equal(t, 404, status.Code)
		assert.Equal(t, "Content is not found.", status.Error.Message)
	})

	t.Run("fields restrict the record", func(t *testing.T) {
		t.Parallel()

		c, server := newServerClient(t)
		ids := server.Seed("blogs", cms.Record{"title": "hello", "body": "long"})

		res := c.Get(context.Background(), "blogs", ids[0], cms.NewQueryOptions().WithFields("id", "title"))
		require.True(t, res.OK())
		assert.Equal(t, cms.Record{"id": ids[0], "title": "hello"}, res.Value)
	})

	t.Run("object endpoint", func(t *testing.T) {
		t.Parallel()

		c, server := newServerClient(t)
		server.SetObject("settings", cms.Record{"siteName": "demo"})

		res := c.Get(context.Background(), "settings", "", nil)
		require.True(t, res.OK())
		assert.Equal(t, "demo", res.Value["siteName"])
	})

	t.Run("wrong key is a failure", func(t *testing.T) {
		t.Parallel()

		c, _ := newServerClient(t, func(cfg *cms.Config) { cfg.APIKey = "wrong" })

		res := c.Get(context.Background(), "blogs", "abc", nil)
		assert.Equal(t, cms.ResultFailure, res.Kind)
		assert.True(t, cms.IsUnauthorized(res.Error()))
	})

	t.Run("global draft key is accepted", func(t *testing.T) {
		t.Parallel()

		c, server := newServerClient(t)
		ids := server.Seed("blogs", cms.Record{"title": "draft"})

		res := c.Get(context.Background(), "blogs", ids[0], cms.NewQueryOptions().WithGlobalKey(true))
		require.True(t, res.OK())

		requests := server.Requests()
		require.Len(t, requests, 1)
		assert.Equal(t, "test-global-draft-key", requests[0].Header.Get("X-GLOBAL-DRAFT-KEY"))
		assert.Empty(t, requests[0].RawQuery)
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_List(t *testing.T) {
	t.Parallel()

	t.Run("pages through contents", func(t *testing.T) {
		t.Parallel()

		c, server := newServerClient(t)
		server.Seed("blogs",
			cms.Record{"title": "a"},
			cms.Record{"title": "b"},
			cms.Record{"title": "c"},
		)

		res := c.List(context.Background(), "blogs", cms.NewQueryOptions().WithLimit(2).WithOrders("title"))
		page, ok := res.Lenient()
		require.True(t, ok)
		assert.Equal(t, 3, page.TotalCount)
		assert.Equal(t, 2, page.Limit)
		require.Len(t, page.Contents, 2)
		assert.Equal(t, "a", page.Contents[0]["title"])
		assert.True(t, page.HasMore())

		res = c.List(context.Background(), "blogs", cms.NewQueryOptions().WithLimit(2).WithOffset(2).WithOrders("title"))
		page, ok = res.Lenient()
		require.True(t, ok)
		require.Len(t, page.Contents, 1)
		assert.Equal(t, "c", page.Contents[0]["title"])
		assert.False(t, page.HasMore())
	})

	t.Run("empty endpoint lists nothing", func(t *testing.T) {
		t.Parallel()

		c, _ := newServerClient(t)

		res := c.List(context.Background(), "blogs", nil)
		page, ok := res.Lenient()
		require.True(t, ok)
		assert.Empty(t, page.Contents)
		assert.NotNil(t, page.Contents)
	})

	t.Run("ids filter", func(t *testing.T) {
		t.Parallel()

		c, server := newServerClient(t)
		ids := server.Seed("blogs", cms.Record{"title": "a"}, cms.Record{"title": "b"}, cms.Record{"title": "c"})

		res := c.List(context.Background(), "blogs", cms.NewQueryOptions().WithIDs(ids[2], ids[0]))
		page, ok := res.Lenient()
		require.True(t, ok)
		require.Len(t, page.Contents, 2)
		assert.Equal(t, ids[2], page.Contents[0].ID())
	})

	t.Run("malformed success body", func(t *testing.T) {
		t.Parallel()

		c, _ := newRecordingClient(http.StatusOK, `not json`)

		res := c.List(context.Background(), "blogs", nil)
		assert.Equal(t, cms.ResultTransportError, res.Kind)
		assert.Equal(t, 200, res.StatusCode)
		require.ErrorIs(t, res.Error(), cms.ErrMalformedResponse)

		_, ok := res.StatusAware()
		assert.False(t, ok)
	})
}

func TestClient_ReadTransportError(t *testing.T) {
	t.Parallel()

	c, transport := newRecordingClient(0, "")
	transport.err = ErrTestConnectionRefused

	res := c.Get(context.Background(), "blogs", "abc", nil)
	assert.Equal(t, cms.ResultTransportError, res.Kind)
	require.ErrorIs(t, res.Error(), ErrTestConnectionRefused)

	_, ok := res.Lenient()
	assert.False(t, ok)

	_, ok = res.StatusAware()
	assert.False(t, ok)
}

// parityOutcome reduces a result to what its two access modes report.
type parityOutcome struct {
	lenientOK bool
	statusOK  bool
	code      int
}

func outcomeOf[T any](res cms.Result[T]) parityOutcome {
	_, lenientOK := res.Lenient()
	status, statusOK := res.StatusAware()

	outcome := parityOutcome{lenientOK: lenientOK, statusOK: statusOK}
	if statusOK {
		outcome.code = status.Code
	}

	return outcome
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_StatusAwareParity(t *testing.T) {
	t.Parallel()

	verbs := []struct {
		name    string
		success int
		call    func(c *client.Client) parityOutcome
	}{
		{name: "get", success: http.StatusOK, call: func(c *client.Client) parityOutcome {
			return outcomeOf(c.Get(context.Background(), "blogs", "abc", nil))
		}},
		{name: "list", success: http.StatusOK, call: func(c *client.Client) parityOutcome {
			return outcomeOf(c.List(context.Background(), "blogs", nil))
		}},
		{name: "create", success: http.StatusCreated, call: func(c *client.Client) parityOutcome {
			return outcomeOf(c.Create(context.Background(), "blogs", cms.Record{"title": "hello"}))
		}},
		{name: "replace", success: http.StatusCreated, call: func(c *client.Client) parityOutcome {
			return outcomeOf(c.Replace(context.Background(), "blogs", "abc", cms.Record{"title": "hello"}))
		}},
		{name: "update", success: http.StatusOK, call: func(c *client.Client) parityOutcome {
			return outcomeOf(c.Update(context.Background(), "blogs", "abc", cms.Record{"title": "hello"}))
		}},
		{name: "delete", success: http.StatusAccepted, call: func(c *client.Client) parityOutcome {
			return outcomeOf(c.Delete(context.Background(), "blogs", "abc"))
		}},
	}

	tests := []struct {
		name   string
		status int // 0 answers with the verb's success status
		body   string
		err    error
	}{
		{name: "success", body: `{"id":"abc"}`},
		{name: "not found", status: 404, body: `{"message":"Content is not found."}`},
		{name: "bad request", status: 400, body: `{"message":"Invalid query."}`},
		{name: "server error without body", status: 500},
		{name: "unexpected success status", status: 204},
		{name: "transport failure", err: ErrTestConnectionRefused},
	}

	for _, verb := range verbs {
		verb := verb
		for _, testCase := range tests {
			testCase := testCase
			t.Run(verb.name+"/"+testCase.name, func(t *testing.T) {
				t.Parallel()

				status := testCase.status
				if status == 0 {
					status = verb.success
				}

				c, transport := newRecordingClient(status, testCase.body)
				transport.err = testCase.err

				outcome := verb.call(c)

				assert.Equal(t, outcome.lenientOK, outcome.statusOK && outcome.code == verb.success)
				assert.Equal(t, 1, transport.calls())

				if testCase.err != nil {
					assert.False(t, outcome.statusOK)

					return
				}

				require.True(t, outcome.statusOK)
				assert.Equal(t, status, outcome.code)
				assert.Equal(t, testCase.status == 0, outcome.lenientOK)
			})
		}
	}
}

func TestClient_TransportWithoutResponse(t *testing.T) {
	t.Parallel()

	var delivered []*cms.Response

	chain := cms.NewInterceptorChain()
	chain.AddResponseInterceptor(func(_ context.Context, _ *cms.Request, resp *cms.Response) error {
		delivered = append(delivered, resp)

		return nil
	})

	silent := cms.TransportFunc(func(context.Context, *cms.Request) (*cms.Response, error) {
		return nil, nil //nolint:nilnil // a transport that answers with nothing
	})

	config := fullConfig()
	config.Interceptors = chain

	c := client.New(config, silent)

	get := c.Get(context.Background(), "blogs", "abc", nil)
	assert.Equal(t, cms.ResultTransportError, get.Kind)
	require.ErrorIs(t, get.Error(), cms.ErrMalformedResponse)

	_, ok := get.StatusAware()
	assert.False(t, ok)

	assert.Equal(t, cms.ResultTransportError, c.List(context.Background(), "blogs", nil).Kind)
	assert.Equal(t, cms.ResultTransportError, c.Create(context.Background(), "blogs", cms.Record{"title": "x"}).Kind)
	assert.Equal(t, cms.ResultTransportError, c.Delete(context.Background(), "blogs", "abc").Kind)

	require.Len(t, delivered, 4)

	for _, resp := range delivered {
		require.ErrorIs(t, resp.Error, cms.ErrMalformedResponse)
	}
}

func TestClient_ReadWithoutKey(t *testing.T) {
	t.Parallel()

	c, transport := newRecordingClient(http.StatusOK, `{}`, func(cfg *cms.Config) { cfg.APIKey = "" })

	get := c.Get(context.Background(), "blogs", "abc", nil)
	list := c.List(context.Background(), "blogs", nil)

	assert.Equal(t, cms.ResultNotConfigured, get.Kind)
	assert.Equal(t, cms.ResultNotConfigured, list.Kind)
	require.ErrorIs(t, get.Error(), cms.ErrReadKeyNotConfigured)

	_, ok := get.StatusAware()
	assert.False(t, ok)
	assert.Equal(t, 0, transport.calls())
}

func TestClient_ReadSchema(t *testing.T) {
	t.Parallel()

	schemas, err := cms.NewSchemaSet(&cms.Schema{
		Endpoint: "blogs",
		Fields:   []cms.Field{{Name: "title", Type: cms.FieldTypeText, Required: true}},
	})
	require.NoError(t, err)

	c, transport := newRecordingClient(http.StatusOK, `{"id":"abc"}`, func(cfg *cms.Config) { cfg.Schemas = schemas })

	res := c.Get(context.Background(), "unknown", "abc", nil)
	assert.Equal(t, cms.ResultRejected, res.Kind)
	require.ErrorIs(t, res.Error(), cms.ErrUnknownEndpoint)

	res = c.Get(context.Background(), "blogs", "abc", cms.NewQueryOptions().WithFields("id", "nope"))
	assert.Equal(t, cms.ResultRejected, res.Kind)
	require.ErrorIs(t, res.Error(), cms.ErrSchemaViolation)
	assert.Equal(t, 0, transport.calls())

	res = c.Get(context.Background(), "blogs", "abc", cms.NewQueryOptions().WithFields("id", "title", "createdAt"))
	assert.True(t, res.OK())
	assert.Equal(t, 1, transport.calls())
}
