// Package cmstest serves an in-memory content API for tests. It speaks the
// same wire protocol as the hosted service: key headers, per-verb success
// statuses, {message} error bodies and offset/limit list envelopes.
package cmstest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/cms-client/internal/constants"
	"github.com/fivetwenty-io/cms-client/pkg/cms"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Default keys accepted by a new server.
const (
	ReadKey        = "test-read-key"
	WriteKey       = "test-write-key"
	GlobalDraftKey = "test-global-draft-key"
)

const defaultListLimit = 10

// Server is a fake content API.
type Server struct {
	*httptest.Server

	readKey        string
	writeKey       string
	globalDraftKey string

	mu          sync.Mutex
	collections map[string]*collection
	objects     map[string]cms.Record
	requests    []RecordedRequest
}

// RecordedRequest captures what the server received.
type RecordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

type collection struct {
	order   []string
	records map[string]cms.Record
}

// Option configures a Server.
type Option func(*Server)

// WithKeys overrides the accepted keys.
func WithKeys(read, write, globalDraft string) Option {
	return func(s *Server) {
		s.readKey = read
		s.writeKey = write
		s.globalDraftKey = globalDraft
	}
}

// NewServer starts a fake content API. Close it when done.
func NewServer(opts ...Option) *Server {
	s := &Server{
		readKey:        ReadKey,
		writeKey:       WriteKey,
		globalDraftKey: GlobalDraftKey,
		collections:    make(map[string]*collection),
		objects:        make(map[string]cms.Record),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.Server = httptest.NewServer(s.routes())

	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)

	r.Route(strings.TrimSuffix(constants.APIBasePath, "/")+"/{endpoint}", func(r chi.Router) {
		r.With(s.requireReadKey).Get("/", s.handleList)
		r.With(s.requireReadKey).Get("/{id}", s.handleGet)
		r.With(s.requireWriteKey).Post("/", s.handleCreate)
		r.With(s.requireWriteKey).Put("/", s.handleCreate)
		r.With(s.requireWriteKey).Put("/{id}", s.handleReplace)
		r.With(s.requireWriteKey).Patch("/{id}", s.handleUpdate)
		r.With(s.requireWriteKey).Delete("/{id}", s.handleDelete)
	})

	return r
}

// Requests returns every request received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)

	return out
}

// RequestCount returns the number of requests received so far.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.requests)
}

// Seed stores records in endpoint and returns their ids. Records without an
// id get one.
func (s *Server) Seed(endpoint string, records ...cms.Record) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(records))

	for _, rec := range records {
		id := rec.ID()
		if id == "" {
			id = uuid.New().String()
		}

		s.put(endpoint, id, rec.Without(cms.FieldID))
		ids = append(ids, id)
	}

	return ids
}

// SetObject stores an object-format endpoint's single record.
func (s *Server) SetObject(endpoint string, rec cms.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[endpoint] = stamp(rec.Clone(), nil)
}

// Count returns the number of records stored in endpoint.
func (s *Server) Count(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[endpoint]; ok {
		return len(c.order)
	}

	return 0
}

// Lookup returns a stored record.
func (s *Server) Lookup(endpoint, id string) (cms.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[endpoint]
	if !ok {
		return nil, false
	}

	rec, ok := c.records[id]
	if !ok {
		return nil, false
	}

	return rec.Clone(), true
}

// put must be called with mu held.
func (s *Server) put(endpoint, id string, body cms.Record) {
	c, ok := s.collections[endpoint]
	if !ok {
		c = &collection{records: make(map[string]cms.Record)}
		s.collections[endpoint] = c
	}

	prev, exists := c.records[id]
	if !exists {
		c.order = append(c.order, id)
	}

	rec := stamp(body.Clone(), prev)
	rec[cms.FieldID] = id
	c.records[id] = rec
}

// stamp fills the server-assigned dates. Caller-supplied dates are kept.
func stamp(rec, prev cms.Record) cms.Record {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	created := now
	if prev != nil {
		if v, ok := prev[cms.FieldCreatedAt].(string); ok {
			created = v
		}
	}

	defaults := map[string]string{
		cms.FieldCreatedAt:   created,
		cms.FieldUpdatedAt:   now,
		cms.FieldPublishedAt: created,
		cms.FieldRevisedAt:   now,
	}

	for k, v := range defaults {
		if _, ok := rec[k]; !ok {
			rec[k] = v
		}
	}

	return rec
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Header:   r.Header.Clone(),
			Body:     body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireReadKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(constants.HeaderAPIKey) != s.readKey {
			writeError(w, http.StatusUnauthorized, "X-API-KEY header is invalid.")

			return
		}

		if draft := r.Header.Get(constants.HeaderGlobalDraftKey); draft != "" && draft != s.globalDraftKey {
			writeError(w, http.StatusUnauthorized, "X-GLOBAL-DRAFT-KEY header is invalid.")

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireWriteKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(constants.HeaderWriteAPIKey) != s.writeKey {
			writeError(w, http.StatusUnauthorized, "X-WRITE-API-KEY header is invalid.")

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	endpoint := chi.URLParam(r, "endpoint")
	query := r.URL.Query()

	s.mu.Lock()
	defer s.mu.Unlock()

	if obj, ok := s.objects[endpoint]; ok {
		writeJSON(w, http.StatusOK, selectFields(obj, query.Get(cms.OptionFields)))

		return
	}

	limit, err := intParam(query.Get(cms.OptionLimit), defaultListLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid limit.")

		return
	}

	offset, err := intParam(query.Get(cms.OptionOffset), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid offset.")

		return
	}

	var matched []cms.Record

	if c, ok := s.collections[endpoint]; ok {
		ids := c.order
		if raw := query.Get(cms.OptionIDs); raw != "" {
			ids = strings.Split(raw, ",")
		}

		for _, id := range ids {
			if rec, ok := c.records[id]; ok {
				matched = append(matched, rec)
			}
		}
	}

	sortRecords(matched, query.Get(cms.OptionOrders))

	total := len(matched)
	start := min(offset, total)
	end := min(start+limit, total)

	contents := make([]cms.Record, 0, end-start)
	for _, rec := range matched[start:end] {
		contents = append(contents, selectFields(rec, query.Get(cms.OptionFields)))
	}

	writeJSON(w, http.StatusOK, cms.ListResult{
		Contents:   contents,
		TotalCount: total,
		Offset:     offset,
		Limit:      limit,
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	endpoint := chi.URLParam(r, "endpoint")
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[endpoint]
	if !ok {
		writeError(w, http.StatusNotFound, "Content is not found.")

		return
	}

	rec, ok := c.records[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Content is not found.")

		return
	}

	writeJSON(w, http.StatusOK, selectFields(rec, r.URL.Query().Get(cms.OptionFields)))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}

	id := uuid.New().String()

	s.mu.Lock()
	s.put(chi.URLParam(r, "endpoint"), id, body.Without(cms.FieldID))
	s.mu.Unlock()

	writeJSON(w, constants.StatusCreateOK, cms.WriteResponse{ID: id})
}

func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")

	// put replaces the whole record; only createdAt survives.
	s.mu.Lock()
	s.put(chi.URLParam(r, "endpoint"), id, body.Without(cms.FieldID))
	s.mu.Unlock()

	writeJSON(w, constants.StatusReplaceOK, cms.WriteResponse{ID: id})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}

	endpoint := chi.URLParam(r, "endpoint")
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.collections[endpoint]
	if !exists || c.records[id] == nil {
		writeError(w, http.StatusNotFound, "Content is not found.")

		return
	}

	merged := c.records[id].Clone()
	for k, v := range body.Without(cms.FieldID) {
		merged[k] = v
	}

	merged[cms.FieldUpdatedAt] = time.Now().UTC().Format(time.RFC3339Nano)
	merged[cms.FieldRevisedAt] = merged[cms.FieldUpdatedAt]
	c.records[id] = merged

	writeJSON(w, constants.StatusUpdateOK, cms.WriteResponse{ID: id})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	endpoint := chi.URLParam(r, "endpoint")
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[endpoint]
	if !ok || c.records[id] == nil {
		writeError(w, http.StatusNotFound, "Content is not found.")

		return
	}

	delete(c.records, id)

	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)

			break
		}
	}

	w.WriteHeader(constants.StatusDeleteOK)
}

func decodeBody(w http.ResponseWriter, r *http.Request) (cms.Record, bool) {
	var body cms.Record

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body == nil {
		writeError(w, http.StatusBadRequest, "Request body is invalid.")

		return nil, false
	}

	return body, true
}

func selectFields(rec cms.Record, fields string) cms.Record {
	if fields == "" {
		return rec.Clone()
	}

	out := make(cms.Record)

	for _, name := range strings.Split(fields, ",") {
		if v, ok := rec[name]; ok {
			out[name] = v
		}
	}

	return out
}

// sortRecords applies an orders value such as "-createdAt" or "title".
func sortRecords(records []cms.Record, orders string) {
	if orders == "" {
		return
	}

	field := strings.Split(orders, ",")[0]
	desc := strings.HasPrefix(field, "-")
	field = strings.TrimPrefix(field, "-")

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].String(field), records[j].String(field)
		if desc {
			return a > b
		}

		return a < b
	})
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, strconv.ErrSyntax
	}

	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
