package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/simscope"
	"github.com/aretw0/simscope/internal/logging"
	"github.com/aretw0/simscope/pkg/domain"
	"github.com/aretw0/simscope/pkg/logcapture"
	"github.com/aretw0/simscope/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes an Inspector and its stepping Controller over HTTP.
type Server struct {
	Inspector  *simscope.Inspector
	Controller *runner.Controller
	Streams    *StreamManager
	Gatherer   prometheus.Gatherer

	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithController enables the /control endpoints.
func WithController(c *runner.Controller) Option {
	return func(s *Server) {
		s.Controller = c
	}
}

// WithStreams shares a StreamManager, typically one whose PublishHit is
// already registered as the inspector's OnBreakpoint hook.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		if sm != nil {
			s.Streams = sm
		}
	}
}

// WithLogger sets the logger for request failures and SSE events. A
// StreamManager created by NewHandler shares it.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGatherer serves g on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Gatherer = g
	}
}

// NewHandler creates a new HTTP handler for the inspector.
func NewHandler(insp *simscope.Inspector, opts ...Option) http.Handler {
	server := &Server{
		Inspector: insp,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}
	if server.Streams == nil {
		server.Streams = NewStreamManager(WithStreamLogger(server.logger))
	}

	r := chi.NewRouter()
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/entities", server.ListEntities)

	r.Route("/inspectors", func(r chi.Router) {
		r.Get("/", server.ListInspectors)
		r.Post("/{entity}", server.OpenInspector)
		r.Delete("/{entity}", server.CloseInspector)
	})
	r.Get("/state/{entity}", server.GetState)

	r.Route("/breakpoints", func(r chi.Router) {
		r.Get("/", server.ListBreakpoints)
		r.Post("/", server.ToggleBreakpoint)
		r.Put("/", server.SetBreakpointKind)
	})

	r.Route("/traces", func(r chi.Router) {
		r.Get("/", server.ListTraces)
		r.Post("/", server.AddTrace)
		r.Get("/{id}", server.GetTrace)
		r.Delete("/{id}", server.RemoveTrace)
	})

	r.Route("/logs", func(r chi.Router) {
		r.Get("/", server.ListLogEntities)
		r.Get("/{entity}", server.GetLogs)
		r.Get("/{entity}/download", server.DownloadLogs)
		r.Post("/{entity}/export", server.ExportLogs)
	})

	r.Get("/control", server.GetControl)
	r.Post("/control", server.PostControl)
	r.Get("/events", server.SubscribeEvents)

	if server.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(server.Gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// FieldRequest names one field of one entity.
type FieldRequest struct {
	Entity string `json:"entity"`
	Field  string `json:"field"`
	Kind   string `json:"kind,omitempty"`
}

// ControlRequest is the body of POST /control.
type ControlRequest struct {
	Command string `json:"command"`
	Count   int    `json:"count,omitempty"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	if err := s.Inspector.Degraded(); err != nil {
		resp["status"] = "degraded"
		resp["error"] = err.Error()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "simscope-http",
		"version": strings.TrimSpace(simscope.Version),
	})
}

// ListEntities handles the GET /entities request.
func (s *Server) ListEntities(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Inspector.Entities())
}

// ListInspectors handles the GET /inspectors request.
func (s *Server) ListInspectors(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Inspector.Inspected())
}

// OpenInspector handles the POST /inspectors/{entity} request.
func (s *Server) OpenInspector(w http.ResponseWriter, r *http.Request) {
	path, ok := entityParam(w, r)
	if !ok {
		return
	}
	if err := s.Inspector.Open(path); err != nil {
		s.writeError(w, "OpenInspector", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CloseInspector handles the DELETE /inspectors/{entity} request.
func (s *Server) CloseInspector(w http.ResponseWriter, r *http.Request) {
	path, ok := entityParam(w, r)
	if !ok {
		return
	}
	if !s.Inspector.Close(path) {
		http.Error(w, "inspector not open", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetState handles the GET /state/{entity} request. The optional field query
// parameter selects a sub-value; format=yaml renders the tree as YAML.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	path, ok := entityParam(w, r)
	if !ok {
		return
	}

	field := r.URL.Query().Get("field")
	v, found := s.Inspector.Field(path, field)
	if !found {
		http.Error(w, fmt.Sprintf("no value at %s %q", path, field), http.StatusNotFound)
		return
	}

	if r.URL.Query().Get("format") == "yaml" {
		out, err := v.YAML()
		if err != nil {
			http.Error(w, fmt.Sprintf("Render error: %v", err), http.StatusInternalServerError)
			s.logger.Error("GetState YAML render failed", "error", err)
			return
		}
		w.Header().Set("Content-Type", "text/yaml")
		w.Write([]byte(out))
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

// ListBreakpoints handles the GET /breakpoints request.
func (s *Server) ListBreakpoints(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Inspector.Breakpoints())
}

// ToggleBreakpoint handles the POST /breakpoints request.
func (s *Server) ToggleBreakpoint(w http.ResponseWriter, r *http.Request) {
	req, path, ok := s.decodeFieldRequest(w, r, "ToggleBreakpoint")
	if !ok {
		return
	}
	active, err := s.Inspector.ToggleBreakpoint(path, req.Field)
	if err != nil {
		s.writeError(w, "ToggleBreakpoint", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"active": active})
}

// SetBreakpointKind handles the PUT /breakpoints request.
func (s *Server) SetBreakpointKind(w http.ResponseWriter, r *http.Request) {
	req, path, ok := s.decodeFieldRequest(w, r, "SetBreakpointKind")
	if !ok {
		return
	}
	kind, err := domain.ParseBreakpointKind(req.Kind)
	if err != nil {
		s.writeError(w, "SetBreakpointKind", err)
		return
	}
	if err := s.Inspector.SetBreakpointKind(path, req.Field, kind); err != nil {
		s.writeError(w, "SetBreakpointKind", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTraces handles the GET /traces request.
func (s *Server) ListTraces(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Inspector.Traces())
}

// AddTrace handles the POST /traces request.
func (s *Server) AddTrace(w http.ResponseWriter, r *http.Request) {
	req, path, ok := s.decodeFieldRequest(w, r, "AddTrace")
	if !ok {
		return
	}
	id, err := s.Inspector.AddTrace(path, req.Field)
	if err != nil {
		s.writeError(w, "AddTrace", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

// GetTrace handles the GET /traces/{id} request.
func (s *Server) GetTrace(w http.ResponseWriter, r *http.Request) {
	id, ok := traceParam(w, r)
	if !ok {
		return
	}
	t, err := s.Inspector.Trace(id)
	if err != nil {
		s.writeError(w, "GetTrace", err)
		return
	}
	s.writeJSON(w, http.StatusOK, t)
}

// RemoveTrace handles the DELETE /traces/{id} request.
func (s *Server) RemoveTrace(w http.ResponseWriter, r *http.Request) {
	id, ok := traceParam(w, r)
	if !ok {
		return
	}
	if err := s.Inspector.RemoveTrace(id); err != nil {
		s.writeError(w, "RemoveTrace", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListLogEntities handles the GET /logs request.
func (s *Server) ListLogEntities(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Inspector.LogEntities())
}

// GetLogs handles the GET /logs/{entity} request, filtered by the q query
// parameter.
func (s *Server) GetLogs(w http.ResponseWriter, r *http.Request) {
	path, ok := entityParam(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, s.Inspector.Logs(path, r.URL.Query().Get("q")))
}

// DownloadLogs handles the GET /logs/{entity}/download request as JSON lines.
func (s *Server) DownloadLogs(w http.ResponseWriter, r *http.Request) {
	path, ok := entityParam(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.String()+".jsonl"))
	if err := logcapture.WriteJSONL(w, s.Inspector.Logs(path, r.URL.Query().Get("q"))); err != nil {
		s.logger.Error("DownloadLogs write failed", "entity", path, "error", err)
	}
}

// ExportLogs handles the POST /logs/{entity}/export request.
func (s *Server) ExportLogs(w http.ResponseWriter, r *http.Request) {
	path, ok := entityParam(w, r)
	if !ok {
		return
	}
	if err := s.Inspector.ExportLogs(r.Context(), path); err != nil {
		s.writeError(w, "ExportLogs", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetControl handles the GET /control request.
func (s *Server) GetControl(w http.ResponseWriter, r *http.Request) {
	if s.Controller == nil {
		http.Error(w, "stepping not available", http.StatusNotImplemented)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Controller.Status())
}

// PostControl handles the POST /control request. Commands are start, stop,
// step (count events, default one), per_tick (count) and halt/nohalt.
func (s *Server) PostControl(w http.ResponseWriter, r *http.Request) {
	if s.Controller == nil {
		http.Error(w, "stepping not available", http.StatusNotImplemented)
		return
	}
	var req ControlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("PostControl: Invalid request body", "error", err)
		return
	}

	switch req.Command {
	case "start":
		s.Controller.Start()
	case "stop":
		s.Controller.Stop()
	case "step":
		n := req.Count
		if n <= 0 {
			n = 1
		}
		s.Controller.Step(n)
	case "per_tick":
		if req.Count <= 0 {
			http.Error(w, "per_tick needs a positive count", http.StatusBadRequest)
			return
		}
		s.Controller.SetPerTick(req.Count)
	case "halt":
		s.Controller.SetHaltOnBreakpoint(true)
	case "nohalt":
		s.Controller.SetHaltOnBreakpoint(false)
	default:
		http.Error(w, fmt.Sprintf("unknown command %q", req.Command), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Controller.Status())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrEntityNotFound),
		errors.Is(err, domain.ErrBreakpointNotFound),
		errors.Is(err, domain.ErrTraceNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidEntityPath),
		errors.Is(err, domain.ErrUnknownBreakpointKind):
		status = http.StatusBadRequest
	case errors.Is(err, simscope.ErrNoExporter):
		status = http.StatusNotImplemented
	}
	if status == http.StatusInternalServerError {
		s.logger.Error(op+" failed", "error", err)
	} else {
		s.logger.Warn(op+" rejected", "error", err)
	}
	http.Error(w, err.Error(), status)
}

func entityParam(w http.ResponseWriter, r *http.Request) (domain.EntityPath, bool) {
	path, err := domain.ParseEntityPath(chi.URLParam(r, "entity"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return path, true
}

func traceParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid trace id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) decodeFieldRequest(w http.ResponseWriter, r *http.Request, op string) (FieldRequest, domain.EntityPath, bool) {
	var req FieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn(op+": Invalid request body", "error", err)
		return req, "", false
	}
	path, err := domain.ParseEntityPath(req.Entity)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return req, "", false
	}
	return req, path, true
}
