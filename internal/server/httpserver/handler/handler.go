package handler

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/yndnr/docmesh-go/internal/core/domain"
	"github.com/yndnr/docmesh-go/internal/core/service"
	"github.com/yndnr/docmesh-go/internal/telemetry/logger"
)

// APIPrefixes are the path prefixes the document routes are served under.
var APIPrefixes = []string{"", "/api"}

// Handler is the main HTTP handler that routes requests to appropriate handlers.
type Handler struct {
	docs   *service.DocumentService
	stats  Stats
	logger logger.Logger
	mux    *http.ServeMux

	draining atomic.Bool
}

// Stats reports live counts for the health endpoint.
type Stats interface {
	DocumentCount() int
	ConnectionCount() int
}

// New creates a new Handler.
func New(docs *service.DocumentService, stats Stats, l logger.Logger) *Handler {
	if l == nil {
		l = logger.Default()
	}
	h := &Handler{
		docs:   docs,
		stats:  stats,
		logger: l,
		mux:    http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// SetDraining marks the server as shutting down; /ready then reports 503.
func (h *Handler) SetDraining(v bool) {
	h.draining.Store(v)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	for _, p := range APIPrefixes {
		h.mux.HandleFunc("GET "+p+"/documents", h.handleListDocuments)
		h.mux.HandleFunc("POST "+p+"/documents", h.handleCreateDocument)
		h.mux.HandleFunc("GET "+p+"/documents/{id}", h.handleGetDocument)
		h.mux.HandleFunc("POST "+p+"/documents/{id}/join", h.handleJoinDocument)
		h.mux.HandleFunc("DELETE "+p+"/documents/{id}", h.handleDeleteDocument)
	}
}

// writeJSON writes data as a JSON response body.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// handleServiceError converts service errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if _, ok := domain.AsError(err); !ok {
		ctx := r.Context()
		if id := r.PathValue("id"); id != "" {
			ctx = logger.WithDocumentID(ctx, id)
		}
		h.logger.WithContext(ctx).Error("internal error", "path", r.URL.Path, "error", err)
	}
	WriteError(w, r, err)
}

// WriteError writes err as a {code, error} JSON body with the status of
// its kind. Errors without a code are reported as internal.
func WriteError(w http.ResponseWriter, _ *http.Request, err error) {
	e, ok := domain.AsError(err)
	if !ok {
		e = domain.ErrInternalServer
	}
	writeErrorBody(w, statusOf(e.Kind), e.Code, e.Text())
}

func writeErrorBody(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Code: code, Error: message})
}

func statusOf(k domain.Kind) int {
	switch k {
	case domain.KindInvalid:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnprocessable:
		return http.StatusUnprocessableEntity
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	case domain.KindUnavailable:
		return http.StatusServiceUnavailable
	case domain.KindCanceled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
