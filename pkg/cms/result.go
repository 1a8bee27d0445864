package cms

import (
	"fmt"
	"net/http"
)

// ResultKind tags the outcome of a single call.
type ResultKind int

const (
	// ResultSuccess means the API answered with the operation's success status.
	ResultSuccess ResultKind = iota
	// ResultFailure means the API answered with any other status.
	ResultFailure
	// ResultTransportError means no usable response was received.
	ResultTransportError
	// ResultNotConfigured means the required key is missing; no request was sent.
	ResultNotConfigured
	// ResultRejected means schema validation refused the request; no request was sent.
	ResultRejected
)

// String implements fmt.Stringer.
func (k ResultKind) String() string {
	switch k {
	case ResultSuccess:
		return "success"
	case ResultFailure:
		return "failure"
	case ResultTransportError:
		return "transport_error"
	case ResultNotConfigured:
		return "not_configured"
	case ResultRejected:
		return "rejected"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Result is the tagged outcome of an operation.
type Result[T any] struct {
	Kind       ResultKind
	StatusCode int
	Value      T
	Body       []byte
	APIError   *APIError
	Err        error
}

// StatusResponse is the status-aware view of a result: the literal HTTP status
// with either the success value or the API's error body.
type StatusResponse[T any] struct {
	Code  int       `json:"code"            yaml:"code"`
	Value T         `json:"body,omitempty"  yaml:"body,omitempty"`
	Error *APIError `json:"error,omitempty" yaml:"error,omitempty"`
}

// Success builds a successful result.
func Success[T any](status int, value T, body []byte) Result[T] {
	return Result[T]{Kind: ResultSuccess, StatusCode: status, Value: value, Body: body}
}

// Failure builds a result for a non-success HTTP status.
func Failure[T any](status int, body []byte) Result[T] {
	return Result[T]{Kind: ResultFailure, StatusCode: status, Body: body, APIError: ParseAPIError(status, body)}
}

// TransportError builds a result for a call that produced no usable response.
// status is kept when a response arrived but could not be read.
func TransportError[T any](status int, err error) Result[T] {
	return Result[T]{Kind: ResultTransportError, StatusCode: status, Err: err}
}

// NotConfigured builds a result for a missing credential.
func NotConfigured[T any](err error) Result[T] {
	return Result[T]{Kind: ResultNotConfigured, Err: err}
}

// Rejected builds a result for a request refused before sending.
func Rejected[T any](err error) Result[T] {
	return Result[T]{Kind: ResultRejected, Err: err}
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool {
	return r.Kind == ResultSuccess
}

// Lenient returns the success value, or the zero value and false for every
// other outcome.
func (r Result[T]) Lenient() (T, bool) {
	if r.Kind != ResultSuccess {
		var zero T

		return zero, false
	}

	return r.Value, true
}

// StatusAware returns the HTTP status with its body for success and failure
// outcomes, and false when no response was received or no request was sent.
func (r Result[T]) StatusAware() (*StatusResponse[T], bool) {
	switch r.Kind {
	case ResultSuccess:
		return &StatusResponse[T]{Code: r.StatusCode, Value: r.Value}, true
	case ResultFailure:
		return &StatusResponse[T]{Code: r.StatusCode, Error: r.APIError}, true
	default:
		return nil, false
	}
}

// Error returns nil on success, the APIError on failure, and the cause otherwise.
func (r Result[T]) Error() error {
	switch r.Kind {
	case ResultSuccess:
		return nil
	case ResultFailure:
		if r.APIError != nil {
			return r.APIError
		}

		return &APIError{StatusCode: r.StatusCode, Message: http.StatusText(r.StatusCode)}
	default:
		return r.Err
	}
}
