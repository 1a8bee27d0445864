package cms

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"
)

// RequestInterceptor sees every request before it reaches the transport. It may
// add headers or metadata; returning an error aborts the call.
type RequestInterceptor func(ctx context.Context, req *Request) error

// ResponseInterceptor sees the response of every sent request, including
// requests that failed in the transport (resp.Error is then set).
type ResponseInterceptor func(ctx context.Context, req *Request, resp *Response) error

// InterceptorChain holds the hooks a client runs around each request. A nil
// chain runs nothing.
type InterceptorChain struct {
	onRequest  []RequestInterceptor
	onResponse []ResponseInterceptor
}

func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{}
}

// AddRequestInterceptor appends a hook; hooks run in the order they were added.
func (c *InterceptorChain) AddRequestInterceptor(interceptor RequestInterceptor) {
	c.onRequest = append(c.onRequest, interceptor)
}

// AddResponseInterceptor appends a hook; hooks run in the order they were added.
func (c *InterceptorChain) AddResponseInterceptor(interceptor ResponseInterceptor) {
	c.onResponse = append(c.onResponse, interceptor)
}

// ExecuteRequestInterceptors stops at the first failing hook.
func (c *InterceptorChain) ExecuteRequestInterceptors(ctx context.Context, req *Request) error {
	if c == nil {
		return nil
	}

	for i, hook := range c.onRequest {
		if err := hook(ctx, req); err != nil {
			return fmt.Errorf("request interceptor %d failed: %w", i, err)
		}
	}

	return nil
}

// ExecuteResponseInterceptors stops at the first failing hook.
func (c *InterceptorChain) ExecuteResponseInterceptors(ctx context.Context, req *Request, resp *Response) error {
	if c == nil {
		return nil
	}

	for i, hook := range c.onResponse {
		if err := hook(ctx, req, resp); err != nil {
			return fmt.Errorf("response interceptor %d failed: %w", i, err)
		}
	}

	return nil
}

func requestFields(req *Request) map[string]interface{} {
	fields := map[string]interface{}{
		"method":    req.Method,
		"endpoint":  req.MetadataString(MetadataEndpoint),
		"operation": req.MetadataString(MetadataOperation),
	}

	if id := req.MetadataString(MetadataID); id != "" {
		fields["id"] = id
	}

	return fields
}

// LoggingInterceptor logs each outgoing call at debug level. Keys and bodies
// are never logged.
func LoggingInterceptor(logger Logger) RequestInterceptor {
	return func(_ context.Context, req *Request) error {
		logger.Debug("content request", requestFields(req))

		return nil
	}
}

// LoggingResponseInterceptor logs the outcome of each call: transport errors at
// error level, API error statuses at warn level, everything else at debug.
func LoggingResponseInterceptor(logger Logger) ResponseInterceptor {
	return func(_ context.Context, req *Request, resp *Response) error {
		fields := requestFields(req)
		fields["status_code"] = resp.StatusCode

		switch {
		case resp.Error != nil:
			fields["error"] = resp.Error.Error()
			logger.Error("content request failed", fields)
		case resp.StatusCode >= http.StatusBadRequest:
			logger.Warn("content API error", fields)
		default:
			logger.Debug("content response", fields)
		}

		return nil
	}
}

// HeaderInterceptor sets fixed headers on every request, overwriting earlier values.
func HeaderInterceptor(headers map[string]string) RequestInterceptor {
	return func(_ context.Context, req *Request) error {
		if req.Headers == nil {
			req.Headers = make(http.Header, len(headers))
		}

		for name, value := range headers {
			req.Headers.Set(name, value)
		}

		return nil
	}
}

// Metrics holds counters for one operation on one endpoint.
type Metrics struct {
	TotalRequests   int64
	TotalErrors     int64
	TotalLatency    time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time
}

// MetricsCollector aggregates per-endpoint call counts and latencies. It is
// safe for concurrent use and is the only state shared between calls.
type MetricsCollector struct {
	mu       sync.Mutex
	byKey    map[string]*Metrics
	onChange func(key string, metrics Metrics)
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{byKey: make(map[string]*Metrics)}
}

// SetOnChange registers fn to receive a snapshot after every recorded call.
// fn runs outside the collector lock.
func (m *MetricsCollector) SetOnChange(fn func(key string, metrics Metrics)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.onChange = fn
}

// GetMetrics returns a snapshot for key ("<operation> <endpoint>"), or nil.
func (m *MetricsCollector) GetMetrics(key string) *Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.byKey[key]
	if !ok {
		return nil
	}

	snapshot := *current

	return &snapshot
}

// Keys returns the recorded keys in sorted order.
func (m *MetricsCollector) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.byKey))
	for key := range m.byKey {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func (m *MetricsCollector) record(key string, latency time.Duration, failed bool) {
	m.mu.Lock()

	current, ok := m.byKey[key]
	if !ok {
		current = &Metrics{}
		m.byKey[key] = current
	}

	current.TotalRequests++
	current.LastRequestTime = time.Now()

	if failed {
		current.TotalErrors++
	}

	if latency > 0 {
		current.TotalLatency += latency
		current.AverageLatency = current.TotalLatency / time.Duration(current.TotalRequests)
	}

	snapshot := *current
	notify := m.onChange
	m.mu.Unlock()

	if notify != nil {
		notify(key, snapshot)
	}
}

// MetricsKey returns "<operation> <endpoint>" for req, e.g. "list blogs".
func MetricsKey(req *Request) string {
	return req.MetadataString(MetadataOperation) + " " + req.MetadataString(MetadataEndpoint)
}

// MetricsRequestInterceptor stamps the request start time. Pair it with
// MetricsResponseInterceptor on the same collector.
func MetricsRequestInterceptor(_ *MetricsCollector) RequestInterceptor {
	return func(_ context.Context, req *Request) error {
		if req.Metadata == nil {
			req.Metadata = make(map[string]interface{})
		}

		req.Metadata[MetadataStartTime] = time.Now()

		return nil
	}
}

// MetricsResponseInterceptor records one call. Transport errors and statuses of
// 400 and above count as errors.
func MetricsResponseInterceptor(collector *MetricsCollector) ResponseInterceptor {
	return func(_ context.Context, req *Request, resp *Response) error {
		var latency time.Duration

		if started, ok := req.Metadata[MetadataStartTime].(time.Time); ok {
			latency = time.Since(started)
		}

		collector.record(MetricsKey(req), latency, resp.Error != nil || resp.StatusCode >= http.StatusBadRequest)

		return nil
	}
}
