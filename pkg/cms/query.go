package cms

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// Query option names understood by the content API.
const (
	OptionDraftKey  = "draftKey"
	OptionLimit     = "limit"
	OptionOffset    = "offset"
	OptionOrders    = "orders"
	OptionQ         = "q"
	OptionFields    = "fields"
	OptionIDs       = "ids"
	OptionFilters   = "filters"
	OptionDepth     = "depth"
	OptionGlobalKey = "globalKey"
)

// The list separator and filter syntax are sent literally.
var queryUnescaper = strings.NewReplacer("%2C", ",", "%5B", "[", "%5D", "]", "%3A", ":")

type queryParam struct {
	name  string
	value any
}

// QueryOptions holds request options in insertion order.
type QueryOptions struct {
	params    []queryParam
	globalKey bool
}

// NewQueryOptions creates an empty set of options.
func NewQueryOptions() *QueryOptions {
	return &QueryOptions{}
}

// Set assigns a value to the named option. Re-setting an option keeps its
// original position. Supported values are strings, integers, floats, booleans
// and string slices. The globalKey option only toggles header selection.
func (q *QueryOptions) Set(name string, value any) *QueryOptions {
	if name == OptionGlobalKey {
		if b, ok := value.(bool); ok {
			q.globalKey = b
		}

		return q
	}

	for i := range q.params {
		if q.params[i].name == name {
			q.params[i].value = value

			return q
		}
	}

	q.params = append(q.params, queryParam{name: name, value: value})

	return q
}

// Get returns the value of the named option.
func (q *QueryOptions) Get(name string) (any, bool) {
	if q == nil {
		return nil, false
	}

	if name == OptionGlobalKey {
		return q.globalKey, true
	}

	for _, p := range q.params {
		if p.name == name {
			return p.value, true
		}
	}

	return nil, false
}

// Names returns the option names in serialization order.
func (q *QueryOptions) Names() []string {
	if q == nil {
		return nil
	}

	names := make([]string, 0, len(q.params))
	for _, p := range q.params {
		names = append(names, p.name)
	}

	return names
}

// GlobalKey reports whether the global draft key should be sent.
func (q *QueryOptions) GlobalKey() bool {
	return q != nil && q.globalKey
}

// WithDraftKey sets draftKey.
func (q *QueryOptions) WithDraftKey(key string) *QueryOptions {
	return q.Set(OptionDraftKey, key)
}

// WithLimit sets limit.
func (q *QueryOptions) WithLimit(limit int) *QueryOptions {
	return q.Set(OptionLimit, limit)
}

// WithOffset sets offset.
func (q *QueryOptions) WithOffset(offset int) *QueryOptions {
	return q.Set(OptionOffset, offset)
}

// WithOrders sets orders, e.g. "-publishedAt".
func (q *QueryOptions) WithOrders(orders string) *QueryOptions {
	return q.Set(OptionOrders, orders)
}

// WithQ sets the full-text search term.
func (q *QueryOptions) WithQ(term string) *QueryOptions {
	return q.Set(OptionQ, term)
}

// WithFields restricts the returned fields.
func (q *QueryOptions) WithFields(fields ...string) *QueryOptions {
	return q.Set(OptionFields, fields)
}

// WithIDs restricts the result to the given ids.
func (q *QueryOptions) WithIDs(ids ...string) *QueryOptions {
	return q.Set(OptionIDs, ids)
}

// WithFilters sets the filters expression, e.g. "title[contains]go".
func (q *QueryOptions) WithFilters(filters string) *QueryOptions {
	return q.Set(OptionFilters, filters)
}

// WithDepth sets the reference expansion depth.
func (q *QueryOptions) WithDepth(depth int) *QueryOptions {
	return q.Set(OptionDepth, depth)
}

// WithGlobalKey requests the X-GLOBAL-DRAFT-KEY header.
func (q *QueryOptions) WithGlobalKey(enabled bool) *QueryOptions {
	return q.Set(OptionGlobalKey, enabled)
}

// Clone returns an independent copy.
func (q *QueryOptions) Clone() *QueryOptions {
	if q == nil {
		return NewQueryOptions()
	}

	out := &QueryOptions{globalKey: q.globalKey, params: make([]queryParam, len(q.params))}
	copy(out.params, q.params)

	return out
}

// Encode serializes the options as a query string including the leading "?".
// Empty options encode to "".
func (q *QueryOptions) Encode() string {
	if q == nil || len(q.params) == 0 {
		return ""
	}

	var b strings.Builder

	for i, p := range q.params {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}

		b.WriteString(p.name)
		b.WriteByte('=')
		b.WriteString(formatQueryValue(p.value))
	}

	return b.String()
}

// EncodeQuery serializes an ordered list of name/value pairs. It exists for
// callers that build options from dynamic input such as CLI flags.
func EncodeQuery(names []string, values map[string]any) string {
	opts := NewQueryOptions()
	for _, name := range names {
		if v, ok := values[name]; ok {
			opts.Set(name, v)
		}
	}

	return opts.Encode()
}

func formatQueryValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return escapeQueryValue(v)
	case []string:
		parts := make([]string, len(v))
		for i, s := range v {
			parts[i] = escapeQueryValue(s)
		}

		return strings.Join(parts, ",")
	case []any:
		parts := make([]string, len(v))
		for i, s := range v {
			parts[i] = formatQueryValue(s)
		}

		return strings.Join(parts, ",")
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return escapeQueryValue(v.String())
	case []byte:
		return escapeQueryValue(string(v))
	}

	// Any other slice or array of scalars is comma-joined like []string.
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = formatQueryValue(rv.Index(i).Interface())
		}

		return strings.Join(parts, ",")
	}

	return escapeQueryValue(fmt.Sprint(value))
}

func escapeQueryValue(s string) string {
	return queryUnescaper.Replace(url.QueryEscape(s))
}
