package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/fivetwenty-io/cms-client/pkg/cms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CreateThenGet(t *testing.T) {
	t.Parallel()

	c, _ := newServerClient(t)

	created := c.Create(context.Background(), "contents", cms.Record{"title": "a"})
	id, ok := created.Lenient()
	require.True(t, ok)
	require.NotEmpty(t, id)
	assert.Equal(t, http.StatusCreated, created.StatusCode)

	got := c.Get(context.Background(), "contents", id, nil)
	rec, ok := got.Lenient()
	require.True(t, ok)
	assert.Equal(t, "a", rec["title"])
}

func TestClient_CreateBody(t *testing.T) {
	t.Parallel()

	c, transport := newRecordingClient(http.StatusCreated, `{"id":"new"}`)

	res := c.Create(context.Background(), "blogs", cms.Record{
		"id":          "client-chosen",
		"title":       "a",
		"publishedAt": "2024-01-02T03:04:05Z",
	})
	require.True(t, res.OK())
	assert.Equal(t, "new", res.Value)

	var sent map[string]any

	require.NoError(t, json.Unmarshal(transport.last().Body, &sent))
	assert.NotContains(t, sent, "id")
	assert.NotContains(t, sent, "createdAt")
	assert.Equal(t, "2024-01-02T03:04:05Z", sent["publishedAt"])
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_WriteSuccessStatuses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		call    func(c cms.Client) (bool, int)
		status  int
		success bool
	}{
		{name: "create 201", status: 201, success: true, call: create},
		{name: "create 200", status: 200, success: false, call: create},
		{name: "replace 201", status: 201, success: true, call: replace},
		{name: "replace 200", status: 200, success: false, call: replace},
		{name: "update 200", status: 200, success: true, call: update},
		{name: "update 201", status: 201, success: false, call: update},
		{name: "delete 202", status: 202, success: true, call: remove},
		{name: "delete 200", status: 200, success: false, call: remove},
		{name: "delete 204", status: 204, success: false, call: remove},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			c, _ := newRecordingClient(testCase.status, `{"id":"abc"}`)

			ok, code := testCase.call(c)
			assert.Equal(t, testCase.success, ok)
			assert.Equal(t, testCase.status, code)
		})
	}
}

func create(c cms.Client) (bool, int) {
	res := c.Create(context.Background(), "blogs", cms.Record{"title": "a"})
	status, _ := res.StatusAware()

	return res.OK(), status.Code
}

func replace(c cms.Client) (bool, int) {
	res := c.Replace(context.Background(), "blogs", "abc", cms.Record{"title": "a"})
	status, _ := res.StatusAware()

	return res.OK(), status.Code
}

func update(c cms.Client) (bool, int) {
	res := c.Update(context.Background(), "blogs", "abc", cms.Record{"title": "a"})
	status, _ := res.StatusAware()

	return res.OK(), status.Code
}

func remove(c cms.Client) (bool, int) {
	res := c.Delete(context.Background(), "blogs", "abc")
	status, _ := res.StatusAware()

	return res.OK(), status.Code
}

func TestClient_ReplaceAndUpdate(t *testing.T) {
	t.Parallel()

	c, server := newServerClient(t)
	ids := server.Seed("blogs", cms.Record{"title": "a", "body": "x"})

	replaced := c.Replace(context.Background(), "blogs", ids[0], cms.Record{"title": "b"})
	require.True(t, replaced.OK())
	assert.Equal(t, 201, replaced.StatusCode)
	assert.Equal(t, ids[0], replaced.Value)

	updated := c.Update(context.Background(), "blogs", ids[0], cms.Record{"body": "y"})
	require.True(t, updated.OK())
	assert.Equal(t, 200, updated.StatusCode)

	stored, ok := server.Lookup("blogs", ids[0])
	require.True(t, ok)
	assert.Equal(t, "b", stored["title"])
	assert.Equal(t, "y", stored["body"])

	missing := c.Update(context.Background(), "blogs", "missing", cms.Record{"body": "z"})
	assert.Equal(t, cms.ResultFailure, missing.Kind)
	assert.True(t, cms.IsNotFound(missing.Error()))
}

func TestClient_DeleteTwice(t *testing.T) {
	t.Parallel()

	c, server := newServerClient(t)
	ids := server.Seed("blogs", cms.Record{"title": "a"})

	first := c.Delete(context.Background(), "blogs", ids[0])
	deleted, _ := first.Lenient()
	assert.True(t, deleted)

	status, ok := first.StatusAware()
	require.True(t, ok)
	assert.Equal(t, 202, status.Code)
	assert.True(t, status.Value)

	second := c.Delete(context.Background(), "blogs", ids[0])
	deleted, _ = second.Lenient()
	assert.False(t, deleted)

	status, ok = second.StatusAware()
	require.True(t, ok)
	assert.Equal(t, 404, status.Code)
	assert.False(t, status.Value)
	assert.Equal(t, 0, server.Count("blogs"))
}

func TestClient_WriteWithoutKey(t *testing.T) {
	t.Parallel()

	c, transport := newRecordingClient(http.StatusCreated, `{"id":"x"}`, func(cfg *cms.Config) { cfg.WriteAPIKey = "" })

	results := []cms.ResultKind{
		c.Create(context.Background(), "blogs", cms.Record{"title": "a"}).Kind,
		c.Replace(context.Background(), "blogs", "abc", cms.Record{"title": "a"}).Kind,
		c.Update(context.Background(), "blogs", "abc", cms.Record{"title": "a"}).Kind,
		c.Delete(context.Background(), "blogs", "abc").Kind,
	}

	for _, kind := range results {
		assert.Equal(t, cms.ResultNotConfigured, kind)
	}

	deleted, _ := c.Delete(context.Background(), "blogs", "abc").Lenient()
	assert.False(t, deleted)

	id, _ := c.Create(context.Background(), "blogs", nil).Lenient()
	assert.Empty(t, id)
	assert.Equal(t, 0, transport.calls())
}

func TestClient_BadRequestIsStatusAware(t *testing.T) {
	t.Parallel()

	c, _ := newRecordingClient(http.StatusBadRequest, `{"message":"title is required"}`)

	res := c.Create(context.Background(), "blogs", cms.Record{})
	assert.True(t, cms.IsBadRequest(res.Error()))

	status, ok := res.StatusAware()
	require.True(t, ok)
	assert.Equal(t, 400, status.Code)
	assert.Empty(t, status.Value)
	assert.Equal(t, "title is required", status.Error.Message)
}

func TestClient_WriteMissingID(t *testing.T) {
	t.Parallel()

	c, _ := newRecordingClient(http.StatusCreated, `{}`)

	res := c.Create(context.Background(), "blogs", cms.Record{"title": "a"})
	assert.Equal(t, cms.ResultTransportError, res.Kind)
	require.ErrorIs(t, res.Error(), cms.ErrMalformedResponse)
}

func TestClient_WriteNeedsID(t *testing.T) {
	t.Parallel()

	c, transport := newRecordingClient(http.StatusOK, `{"id":"x"}`)

	assert.Equal(t, cms.ResultRejected, c.Update(context.Background(), "blogs", "", cms.Record{"a": 1}).Kind)
	assert.Equal(t, cms.ResultRejected, c.Delete(context.Background(), "blogs", "").Kind)
	assert.Equal(t, cms.ResultRejected, c.Create(context.Background(), "", cms.Record{"a": 1}).Kind)
	assert.Equal(t, 0, transport.calls())
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_WriteSchema(t *testing.T) {
	t.Parallel()

	schemas, err := cms.NewSchemaSet(&cms.Schema{
		Endpoint: "blogs",
		Fields: []cms.Field{
			{Name: "title", Type: cms.FieldTypeText, Required: true},
			{Name: "views", Type: cms.FieldTypeNumber},
			{Name: "tags", Type: cms.FieldTypeSelect},
		},
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		call     func(c cms.Client) cms.ResultKind
		wantKind cms.ResultKind
	}{
		{
			name: "create with required fields",
			call: func(c cms.Client) cms.ResultKind {
				return c.Create(context.Background(), "blogs", cms.Record{"title": "a", "tags": []string{"go"}}).Kind
			},
			wantKind: cms.ResultSuccess,
		},
		{
			name: "create missing required field",
			call: func(c cms.Client) cms.ResultKind {
				return c.Create(context.Background(), "blogs", cms.Record{"views": 1}).Kind
			},
			wantKind: cms.ResultRejected,
		},
		{
			name: "create with unknown field",
			call: func(c cms.Client) cms.ResultKind {
				return c.Create(context.Background(), "blogs", cms.Record{"title": "a", "author": "me"}).Kind
			},
			wantKind: cms.ResultRejected,
		},
		{
			name: "create with explicit id",
			call: func(c cms.Client) cms.ResultKind {
				return c.Create(context.Background(), "blogs", cms.Record{"id": "x", "title": "a"}).Kind
			},
			wantKind: cms.ResultRejected,
		},
		{
			name: "create with date override",
			call: func(c cms.Client) cms.ResultKind {
				return c.Create(context.Background(), "blogs", cms.Record{"title": "a", "publishedAt": "2024-01-02T03:04:05Z"}).Kind
			},
			wantKind: cms.ResultSuccess,
		},
		{
			name: "replace missing required field",
			call: func(c cms.Client) cms.ResultKind {
				return c.Replace(context.Background(), "blogs", "abc", cms.Record{"views": 2}).Kind
			},
			wantKind: cms.ResultRejected,
		},
		{
			name: "update with subset",
			call: func(c cms.Client) cms.ResultKind {
				return c.Update(context.Background(), "blogs", "abc", cms.Record{"views": 2}).Kind
			},
			wantKind: cms.ResultSuccess,
		},
		{
			name: "update with wrong type",
			call: func(c cms.Client) cms.ResultKind {
				return c.Update(context.Background(), "blogs", "abc", cms.Record{"views": "many"}).Kind
			},
			wantKind: cms.ResultRejected,
		},
		{
			name: "write to unknown endpoint",
			call: func(c cms.Client) cms.ResultKind {
				return c.Create(context.Background(), "news", cms.Record{"title": "a"}).Kind
			},
			wantKind: cms.ResultRejected,
		},
		{
			name: "delete skips body validation",
			call: func(c cms.Client) cms.ResultKind {
				return c.Delete(context.Background(), "blogs", "abc").Kind
			},
			wantKind: cms.ResultSuccess,
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			c, server := newServerClient(t, func(cfg *cms.Config) { cfg.Schemas = schemas })
			server.Seed("blogs", cms.Record{"id": "abc", "title": "seed"})

			assert.Equal(t, testCase.wantKind, testCase.call(c))

			if testCase.wantKind == cms.ResultRejected {
				assert.Equal(t, 0, server.RequestCount())
			}
		})
	}
}
