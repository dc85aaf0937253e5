package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/patchbay"
	"github.com/aretw0/patchbay/internal/logging"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 1 << 20

// Server exposes a patchbay Editor over JSON/HTTP.
type Server struct {
	Editor  *patchbay.Editor
	Streams *StreamManager
	Metrics *observability.Metrics
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithStreams shares a StreamManager with the editor's presenter and interaction observer.
func WithStreams(streams *StreamManager) Option {
	return func(s *Server) {
		s.Streams = streams
	}
}

// WithMetrics mounts the Prometheus handler on /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.Metrics = m
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the editor.
func NewHandler(editor *patchbay.Editor, opts ...Option) http.Handler {
	s := &Server{
		Editor: editor,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}

	r.Route("/graph", func(r chi.Router) {
		r.Get("/", s.GetGraph)
		r.Put("/", s.ReplaceGraph)
		r.Delete("/", s.ClearGraph)
	})
	r.Post("/messages", s.PostMessage)
	r.Route("/nodes", func(r chi.Router) {
		r.Post("/", s.AddNodes)
		r.Get("/{id}", s.GetNode)
		r.Patch("/{id}", s.PatchNode)
		r.Delete("/{id}", s.DeleteNode)
	})
	r.Route("/edges", func(r chi.Router) {
		r.Post("/", s.AddEdge)
		r.Delete("/{id}", s.DeleteEdge)
	})
	r.Post("/connections/validate", s.ValidateConnection)
	r.Get("/interaction", s.GetInteraction)
	r.Post("/interaction", s.PostInteraction)
	r.Route("/diagrams", func(r chi.Router) {
		r.Get("/", s.ListDiagrams)
		r.Put("/{id}", s.SaveDiagram)
		r.Delete("/{id}", s.DeleteDiagram)
		r.Post("/{id}/load", s.LoadDiagram)
	})
	r.Get("/events", s.SubscribeEvents)

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "patchbay-http",
		"version": strings.TrimSpace(patchbay.Version),
	})
}

// GetGraph handles the GET /graph request.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Editor.Store().Snapshot())
}

// ReplaceGraph handles the PUT /graph request. Diagrams breaking an invariant are refused.
func (s *Server) ReplaceGraph(w http.ResponseWriter, r *http.Request) {
	var snap domain.Snapshot
	if !s.decode(w, r, &snap) {
		return
	}
	if err := s.Editor.Store().Restore(&snap); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Editor.Store().Snapshot())
}

// ClearGraph handles the DELETE /graph request.
func (s *Server) ClearGraph(w http.ResponseWriter, r *http.Request) {
	s.Editor.Store().Clear()
	w.WriteHeader(http.StatusNoContent)
}

type addedResponse struct {
	Added []string `json:"added"`
}

// PostMessage handles the POST /messages request: one raw ingestion message.
func (s *Server) PostMessage(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	ids, err := s.Editor.Ingestion().Handle(raw)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addedResponse{Added: nonNil(ids)})
}

// AddNodes handles the POST /nodes request: one device record or a list of them.
func (s *Server) AddNodes(w http.ResponseWriter, r *http.Request) {
	var payload any
	if !s.decode(w, r, &payload) {
		return
	}
	ids := s.Editor.Ingestion().Ingest(payload)
	writeJSON(w, http.StatusCreated, addedResponse{Added: nonNil(ids)})
}

// GetNode handles the GET /nodes/{id} request.
func (s *Server) GetNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	node, ok := s.Editor.Store().Node(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("node %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, node)
}

type nodePatch struct {
	Label    *string          `json:"label"`
	Position *domain.Position `json:"position"`
}

// PatchNode handles the PATCH /nodes/{id} request. Only label and position are mutable.
func (s *Server) PatchNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch nodePatch
	if !s.decode(w, r, &patch) {
		return
	}
	if patch.Label != nil && *patch.Label == "" {
		writeError(w, http.StatusBadRequest, "label must not be empty")
		return
	}

	store := s.Editor.Store()
	if _, ok := store.Node(id); !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("node %q not found", id))
		return
	}
	if patch.Label != nil {
		store.RelabelNode(id, *patch.Label)
	}
	if patch.Position != nil {
		store.MoveNode(id, *patch.Position)
	}
	s.GetNode(w, r)
}

// DeleteNode handles the DELETE /nodes/{id} request, cascading to touching edges.
func (s *Server) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.Editor.Store().RemoveNode(id) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("node %q not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type rejectionResponse struct {
	Error string      `json:"error"`
	Rule  domain.Rule `json:"rule"`
}

// AddEdge handles the POST /edges request. A refused candidate answers 409 with the rule.
func (s *Server) AddEdge(w http.ResponseWriter, r *http.Request) {
	var c domain.Connection
	if !s.decode(w, r, &c) {
		return
	}
	edge, err := s.Editor.Store().AddEdge(c)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, edge)
}

// DeleteEdge handles the DELETE /edges/{id} request.
func (s *Server) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.Editor.Store().RemoveEdge(id) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("edge %q not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type validationResponse struct {
	Valid bool        `json:"valid"`
	Rule  domain.Rule `json:"rule,omitempty"`
}

// ValidateConnection handles the POST /connections/validate request.
// It answers 200 either way; the candidate is never committed.
func (s *Server) ValidateConnection(w http.ResponseWriter, r *http.Request) {
	var c domain.Connection
	if !s.decode(w, r, &c) {
		return
	}
	err := s.Editor.Store().Validate(c)
	writeJSON(w, http.StatusOK, validationResponse{Valid: err == nil, Rule: domain.RejectionRule(err)})
}

// ListDiagrams handles the GET /diagrams request.
func (s *Server) ListDiagrams(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Editor.ListDiagrams(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"diagrams": nonNil(ids)})
}

// SaveDiagram handles the PUT /diagrams/{id} request, storing the live diagram.
func (s *Server) SaveDiagram(w http.ResponseWriter, r *http.Request) {
	if err := s.Editor.SaveDiagram(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteDiagram handles the DELETE /diagrams/{id} request.
func (s *Server) DeleteDiagram(w http.ResponseWriter, r *http.Request) {
	if err := s.Editor.DeleteDiagram(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LoadDiagram handles the POST /diagrams/{id}/load request, replacing the live diagram.
func (s *Server) LoadDiagram(w http.ResponseWriter, r *http.Request) {
	if err := s.Editor.LoadDiagram(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Editor.Store().Snapshot())
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		return false
	}
	return true
}

// fail maps domain errors to status codes.
func (s *Server) fail(w http.ResponseWriter, err error) {
	var rej *domain.RejectionError
	switch {
	case errors.As(err, &rej):
		writeJSON(w, http.StatusConflict, rejectionResponse{Error: err.Error(), Rule: rej.Rule})
	case errors.Is(err, domain.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrDiagramNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvariantViolation):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrMalformedMessage):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, patchbay.ErrNoPersistence):
		writeError(w, http.StatusNotImplemented, err.Error())
	default:
		s.logger.Error("Request failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
