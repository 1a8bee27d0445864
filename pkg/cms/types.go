package cms

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Server-assigned record fields.
const (
	FieldID          = "id"
	FieldCreatedAt   = "createdAt"
	FieldUpdatedAt   = "updatedAt"
	FieldPublishedAt = "publishedAt"
	FieldRevisedAt   = "revisedAt"
)

// DateFields lists the server-assigned timestamps a caller may override on write.
var DateFields = []string{FieldCreatedAt, FieldUpdatedAt, FieldPublishedAt, FieldRevisedAt}

// IsMetadataField reports whether name is one of the server-assigned fields.
func IsMetadataField(name string) bool {
	if name == FieldID {
		return true
	}

	return isDateField(name)
}

func isDateField(name string) bool {
	for _, f := range DateFields {
		if f == name {
			return true
		}
	}

	return false
}

// Record is one JSON object stored in an endpoint.
type Record map[string]any

// ID returns the record id or "" when absent.
func (r Record) ID() string {
	return r.String(FieldID)
}

// String returns the named field when it holds a string.
func (r Record) String(name string) string {
	if s, ok := r[name].(string); ok {
		return s
	}

	return ""
}

// CreatedAt returns the parsed createdAt timestamp.
func (r Record) CreatedAt() time.Time { return r.Time(FieldCreatedAt) }

// UpdatedAt returns the parsed updatedAt timestamp.
func (r Record) UpdatedAt() time.Time { return r.Time(FieldUpdatedAt) }

// PublishedAt returns the parsed publishedAt timestamp.
func (r Record) PublishedAt() time.Time { return r.Time(FieldPublishedAt) }

// RevisedAt returns the parsed revisedAt timestamp.
func (r Record) RevisedAt() time.Time { return r.Time(FieldRevisedAt) }

// Time parses the named field as an RFC3339 timestamp. Missing or malformed
// values yield the zero time.
func (r Record) Time(name string) time.Time {
	s := r.String(name)
	if s == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}

	return t
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}

	return out
}

// Without returns a copy of the record with the named keys removed.
func (r Record) Without(keys ...string) Record {
	out := r.Clone()
	for _, k := range keys {
		delete(out, k)
	}

	return out
}

// Decode copies the record into out, which must be a pointer to a struct.
// Struct fields are matched by their json tag.
func (r Record) Decode(out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("creating record decoder: %w", err)
	}

	err = decoder.Decode(map[string]any(r))
	if err != nil {
		return fmt.Errorf("decoding record: %w", err)
	}

	return nil
}

// DecodeRecord decodes a record into a new value of type T.
func DecodeRecord[T any](r Record) (T, error) {
	var out T

	err := r.Decode(&out)

	return out, err
}

// ListResult is one page of an endpoint's collection.
type ListResult struct {
	Contents   []Record `json:"contents"   yaml:"contents"`
	TotalCount int      `json:"totalCount" yaml:"totalCount"`
	Offset     int      `json:"offset"     yaml:"offset"`
	Limit      int      `json:"limit"      yaml:"limit"`
}

// HasMore reports whether records remain after this page.
func (l *ListResult) HasMore() bool {
	return l.Offset+len(l.Contents) < l.TotalCount
}

// WriteResponse is the body returned by successful create, replace and update calls.
type WriteResponse struct {
	ID string `json:"id" yaml:"id"`
}
