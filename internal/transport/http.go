package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ganot/entreate/internal/mcp"
)

const maxBodySize = 4 << 20

// Handler dispatches tool calls. *mcp.Handler implements it.
type Handler interface {
	Handle(ctx context.Context, method string, params json.RawMessage) (any, error)
}

// Options configures the HTTP API.
type Options struct {
	// AuthRequired rejects requests that carry no drive token.
	AuthRequired bool
	Logger       *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	handler Handler
	logger  *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(handler Handler, opts Options) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)

	srv := &Server{handler: handler, logger: opts.Logger}

	r.Get("/health", srv.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(TokenMiddleware(opts.AuthRequired))

		r.Post("/rpc", srv.handleRPC)

		r.Route("/api", func(r chi.Router) {
			r.Get("/entries", srv.listEntries)
			r.Post("/entries", srv.createEntry)
			r.Get("/entries/{id}", srv.getEntryByID)
			r.Put("/entries/{id}", srv.saveEntryByID)
			r.Get("/entry/*", srv.getEntryByPath)
			r.Put("/entry/*", srv.saveEntryByPath)
			r.Get("/tags", srv.listTags)
			r.Post("/tags", srv.createTag)
			r.Post("/publish", srv.publish)
			r.Get("/activity", srv.activity)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		rpcErr, _ := ErrorFor(err)
		WriteError(w, nil, rpcErr)
		return
	}

	result, err := s.handler.Handle(r.Context(), req.Method, req.Params)
	if err != nil {
		rpcErr, coded := ErrorFor(err)
		if !coded {
			s.logError(r, err)
		}
		WriteError(w, req.ID, rpcErr)
		return
	}

	WriteResult(w, req.ID, result)
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := mcp.ListEntriesParams{Order: q.Get("order")}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, mcp.CodeInvalidInput, "limit must be an integer", "")
			return
		}
		params.Limit = n
	}
	s.call(w, r, "list_entries", params, http.StatusOK)
}

func (s *Server) createEntry(w http.ResponseWriter, r *http.Request) {
	s.call(w, r, "create_entry", nil, http.StatusCreated)
}

func (s *Server) getEntryByID(w http.ResponseWriter, r *http.Request) {
	id, ok := s.entryID(w, r)
	if !ok {
		return
	}
	s.call(w, r, "get_entry", mcp.GetEntryParams{EntryLocator: mcp.EntryLocator{ID: id}}, http.StatusOK)
}

func (s *Server) getEntryByPath(w http.ResponseWriter, r *http.Request) {
	s.call(w, r, "get_entry", mcp.GetEntryParams{EntryLocator: mcp.EntryLocator{Path: entryPath(r)}}, http.StatusOK)
}

func (s *Server) saveEntryByID(w http.ResponseWriter, r *http.Request) {
	id, ok := s.entryID(w, r)
	if !ok {
		return
	}
	s.saveEntry(w, r, mcp.EntryLocator{ID: id})
}

func (s *Server) saveEntryByPath(w http.ResponseWriter, r *http.Request) {
	s.saveEntry(w, r, mcp.EntryLocator{Path: entryPath(r)})
}

func (s *Server) saveEntry(w http.ResponseWriter, r *http.Request, loc mcp.EntryLocator) {
	var params mcp.SaveEntryParams
	if !decodeBody(w, r, &params) {
		return
	}
	params.EntryLocator = loc
	s.call(w, r, "save_entry", params, http.StatusOK)
}

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	s.call(w, r, "list_tags", nil, http.StatusOK)
}

func (s *Server) createTag(w http.ResponseWriter, r *http.Request) {
	var params mcp.CreateTagParams
	if !decodeBody(w, r, &params) {
		return
	}
	s.call(w, r, "create_tag", params, http.StatusCreated)
}

func (s *Server) publish(w http.ResponseWriter, r *http.Request) {
	s.call(w, r, "publish", nil, http.StatusOK)
}

func (s *Server) activity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := mcp.GetRecentActivityParams{
		EntryPath: q.Get("entry_path"),
		Type:      q.Get("type"),
	}
	for key, dst := range map[string]*int{"limit": &params.Limit, "offset": &params.Offset} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, mcp.CodeInvalidInput, key+" must be an integer", "")
			return
		}
		*dst = n
	}
	s.call(w, r, "get_recent_activity", params, http.StatusOK)
}

// call runs a tool through the handler and writes its result as JSON.
func (s *Server) call(w http.ResponseWriter, r *http.Request, method string, params any, status int) {
	var raw json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			s.logError(r, err)
			writeAPIError(w, http.StatusInternalServerError, "INTERNAL", "internal error", "")
			return
		}
		raw = data
	}

	result, err := s.handler.Handle(r.Context(), method, raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSONValue(w, status, result)
}

func (s *Server) entryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeAPIError(w, http.StatusBadRequest, mcp.CodeInvalidInput, "entry id must be a positive integer", "")
		return 0, false
	}
	return id, true
}

// entryPath returns the wildcard part of /api/entry/* as a directory path.
func entryPath(r *http.Request) string {
	p := strings.Trim(chi.URLParam(r, "*"), "/")
	if p == "" {
		return ""
	}
	return p + "/"
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		writeAPIError(w, http.StatusBadRequest, mcp.CodeInvalidInput, "invalid request body: "+err.Error(), "")
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, mcp.ErrUnknownMethod) {
		writeAPIError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), "")
		return
	}
	var apiErr *mcp.APIError
	if !errors.As(err, &apiErr) {
		s.logError(r, err)
		writeAPIError(w, http.StatusInternalServerError, "INTERNAL", "internal error", "")
		return
	}
	writeJSONValue(w, statusFor(apiErr.Code), apiErr)
}

func (s *Server) logError(r *http.Request, err error) {
	if s.logger == nil {
		return
	}
	id, _ := RequestIDFromContext(r.Context())
	s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "request_id", id, "error", err)
}

func statusFor(code string) int {
	switch code {
	case mcp.CodeAuthRequired:
		return http.StatusForbidden
	case mcp.CodeEntryNotFound:
		return http.StatusNotFound
	case mcp.CodeCollision, mcp.CodeExhausted, mcp.CodeTagExists:
		return http.StatusConflict
	case mcp.CodeInvalidInput, mcp.CodeUnsupportedLayout:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeAPIError(w http.ResponseWriter, status int, code, message, hint string) {
	writeJSONValue(w, status, &mcp.APIError{Code: code, Message: message, RecoveryHint: hint})
}

func writeJSONValue(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
