package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/yndnr/docmesh-go/internal/core/domain"
	"github.com/yndnr/docmesh-go/internal/core/service"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

// handleListDocuments handles GET /documents.
func (h *Handler) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docs.List(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	items := make([]DocumentListItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, summaryToListItem(d))
	}
	h.writeJSON(w, http.StatusOK, items)
}

// handleCreateDocument handles POST /documents.
func (h *Handler) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	public := req.IsPublic == nil || *req.IsPublic
	resp, err := h.docs.Create(r.Context(), &service.CreateDocumentRequest{
		Public:   public,
		Password: req.Password,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, CreateDocumentResponse{
		ID:       resp.ID,
		IsPublic: resp.Public,
	})
}

// handleGetDocument handles GET /documents/{id}.
func (h *Handler) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	sum, err := h.docs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summaryToResponse(sum))
}

// handleJoinDocument handles POST /documents/{id}/join.
func (h *Handler) handleJoinDocument(w http.ResponseWriter, r *http.Request) {
	var req JoinDocumentRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	resp, err := h.docs.Join(r.Context(), &service.JoinDocumentRequest{
		ID:       r.PathValue("id"),
		Password: req.Password,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	out := JoinDocumentResponse{Success: true, Ticket: resp.Ticket}
	if !resp.ExpiresAt.IsZero() {
		out.ExpiresAt = resp.ExpiresAt.UnixMilli()
	}
	h.writeJSON(w, http.StatusOK, out)
}

// handleDeleteDocument handles DELETE /documents/{id}.
func (h *Handler) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.docs.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeBody decodes an optional JSON body into v. An empty body leaves v
// unchanged. It writes a 400 response and returns false on failure.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	WriteError(w, r, domain.ErrBadRequest.WithDetail("invalid request body"))
	return false
}
