package cms_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fivetwenty-io/cms-client/pkg/cms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blogSchema() *cms.Schema {
	return &cms.Schema{
		Endpoint: "blogs",
		Fields: []cms.Field{
			{Name: "title", Type: cms.FieldTypeText, Required: true},
			{Name: "views", Type: cms.FieldTypeNumber},
			{Name: "draft", Type: cms.FieldTypeBoolean},
			{Name: "releasedAt", Type: cms.FieldTypeDate},
			{Name: "category", Type: cms.FieldTypeSelect},
			{Name: "author", Type: cms.FieldTypeRelation},
			{Name: "related", Type: cms.FieldTypeRelationList},
			{Name: "cover", Type: cms.FieldTypeMedia},
			{Name: "blocks", Type: cms.FieldTypeArray},
			{Name: "extra", Type: cms.FieldTypeAny},
		},
	}
}

//nolint:funlen // Test functions can be longer for detailed testing
func TestSchema_ValidateBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		op      cms.Operation
		body    cms.Record
		wantErr bool
	}{
		{name: "create minimal", op: cms.OperationCreate, body: cms.Record{"title": "a"}},
		{
			name: "create every type",
			op:   cms.OperationCreate,
			body: cms.Record{
				"title":      "a",
				"views":      3,
				"draft":      false,
				"releasedAt": "2024-01-02T03:04:05Z",
				"category":   []any{"news"},
				"author":     "author-id",
				"related":    []string{"x", "y"},
				"cover":      map[string]any{"url": "https://img"},
				"blocks":     []any{map[string]any{"fieldId": "text"}},
				"extra":      struct{}{},
			},
		},
		{name: "create missing required", op: cms.OperationCreate, body: cms.Record{"views": 1}, wantErr: true},
		{name: "create required null", op: cms.OperationCreate, body: cms.Record{"title": nil}, wantErr: true},
		{name: "replace missing required", op: cms.OperationReplace, body: cms.Record{}, wantErr: true},
		{name: "update subset", op: cms.OperationUpdate, body: cms.Record{"views": 10.5}},
		{name: "update empty", op: cms.OperationUpdate, body: cms.Record{}},
		{name: "unknown field", op: cms.OperationUpdate, body: cms.Record{"subtitle": "x"}, wantErr: true},
		{name: "explicit id", op: cms.OperationUpdate, body: cms.Record{"id": "x"}, wantErr: true},
		{name: "date override", op: cms.OperationCreate, body: cms.Record{"title": "a", "publishedAt": "2024-01-02T03:04:05Z"}},
		{name: "date override as time", op: cms.OperationUpdate, body: cms.Record{"revisedAt": time.Now()}},
		{name: "malformed date override", op: cms.OperationUpdate, body: cms.Record{"createdAt": "yesterday"}, wantErr: true},
		{name: "wrong text type", op: cms.OperationUpdate, body: cms.Record{"title": 1}, wantErr: true},
		{name: "wrong number type", op: cms.OperationUpdate, body: cms.Record{"views": "1"}, wantErr: true},
		{name: "wrong boolean type", op: cms.OperationUpdate, body: cms.Record{"draft": "no"}, wantErr: true},
		{name: "wrong select type", op: cms.OperationUpdate, body: cms.Record{"category": []any{1}}, wantErr: true},
		{name: "wrong media type", op: cms.OperationUpdate, body: cms.Record{"cover": "url"}, wantErr: true},
		{name: "wrong array type", op: cms.OperationUpdate, body: cms.Record{"blocks": "x"}, wantErr: true},
		{name: "null clears optional", op: cms.OperationUpdate, body: cms.Record{"views": nil}},
	}

	schema := blogSchema()

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			err := schema.ValidateBody(testCase.op, testCase.body)
			if testCase.wantErr {
				require.ErrorIs(t, err, cms.ErrSchemaViolation)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestSchema_ValidateFields(t *testing.T) {
	t.Parallel()

	schema := blogSchema()

	require.NoError(t, schema.ValidateFields([]string{"id", "title", "createdAt", "views"}))
	require.NoError(t, schema.ValidateFields(nil))

	err := schema.ValidateFields([]string{"title", "nope", "other"})
	require.ErrorIs(t, err, cms.ErrSchemaViolation)
	assert.Contains(t, err.Error(), `"nope"`)
	assert.Contains(t, err.Error(), `"other"`)
}

func TestSchema_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		schema *cms.Schema
	}{
		{name: "missing endpoint", schema: &cms.Schema{Fields: []cms.Field{{Name: "a", Type: cms.FieldTypeText}}}},
		{name: "unknown type", schema: &cms.Schema{Endpoint: "x", Fields: []cms.Field{{Name: "a", Type: "color"}}}},
		{name: "missing field name", schema: &cms.Schema{Endpoint: "x", Fields: []cms.Field{{Type: cms.FieldTypeText}}}},
		{name: "metadata field", schema: &cms.Schema{Endpoint: "x", Fields: []cms.Field{{Name: "createdAt", Type: cms.FieldTypeDate}}}},
		{name: "duplicate field", schema: &cms.Schema{Endpoint: "x", Fields: []cms.Field{
			{Name: "a", Type: cms.FieldTypeText},
			{Name: "a", Type: cms.FieldTypeNumber},
		}}},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			require.ErrorIs(t, testCase.schema.Validate(), cms.ErrInvalidSchema)
		})
	}
}

func TestNewSchemaSet(t *testing.T) {
	t.Parallel()

	set, err := cms.NewSchemaSet(blogSchema(), &cms.Schema{Endpoint: "authors"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"authors", "blogs"}, set.Endpoints())

	schema, err := set.Lookup("blogs")
	require.NoError(t, err)
	assert.Equal(t, "blogs", schema.Endpoint)

	_, err = set.Lookup("news")
	require.ErrorIs(t, err, cms.ErrUnknownEndpoint)

	_, err = cms.NewSchemaSet(blogSchema(), blogSchema())
	require.ErrorIs(t, err, cms.ErrInvalidSchema)
}

//nolint:funlen // Test functions can be longer for detailed testing
func TestLoadSchemaFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	files := map[string]string{
		"schemas.yaml": `endpoints:
  - endpoint: blogs
    fields:
      - name: title
        type: text
        required: true
      - name: tags
        type: select
  - endpoint: authors
    fields:
      - name: name
        type: text
`,
		"schemas.toml": `[[endpoints]]
endpoint = "blogs"

  [[endpoints.fields]]
  name = "title"
  type = "text"
  required = true

  [[endpoints.fields]]
  name = "tags"
  type = "select"

[[endpoints]]
endpoint = "authors"

  [[endpoints.fields]]
  name = "name"
  type = "text"
`,
	}

	for name, content := range files {
		content := content
		name := name
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

			set, err := cms.LoadSchemaFile(path)
			require.NoError(t, err)
			assert.Equal(t, []string{"authors", "blogs"}, set.Endpoints())

			blogs, err := set.Lookup("blogs")
			require.NoError(t, err)

			field, ok := blogs.Field("title")
			require.True(t, ok)
			assert.True(t, field.Required)
			assert.Equal(t, cms.FieldTypeText, field.Type)
		})
	}

	t.Run("unsupported extension", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(dir, "schemas.json")
		require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

		_, err := cms.LoadSchemaFile(path)
		require.ErrorIs(t, err, cms.ErrUnsupportedSchemaFile)
	})

	t.Run("invalid definition", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(dir, "bad.yml")
		require.NoError(t, os.WriteFile(path, []byte("endpoints:\n  - endpoint: x\n    fields:\n      - name: a\n        type: color\n"), 0o600))

		_, err := cms.LoadSchemaFile(path)
		require.ErrorIs(t, err, cms.ErrInvalidSchema)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := cms.LoadSchemaFile(filepath.Join(dir, "nope.yaml"))
		require.Error(t, err)
	})
}
