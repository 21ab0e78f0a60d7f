package handler

import "github.com/yndnr/docmesh-go/internal/core/domain"

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// DocumentListItem is one entry of GET /documents.
type DocumentListItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	UserCount   int    `json:"userCount"`
	LastUpdated int64  `json:"lastUpdated"` // Unix milliseconds
}

// CreateDocumentRequest is the request body for POST /documents.
// An absent isPublic means public.
type CreateDocumentRequest struct {
	IsPublic *bool  `json:"isPublic,omitempty"`
	Password string `json:"password,omitempty"`
}

// CreateDocumentResponse is the response body for POST /documents.
type CreateDocumentResponse struct {
	ID       string `json:"id"`
	IsPublic bool   `json:"isPublic"`
}

// JoinDocumentRequest is the request body for POST /documents/{id}/join.
type JoinDocumentRequest struct {
	Password string `json:"password,omitempty"`
}

// JoinDocumentResponse is the response body of a granted join.
type JoinDocumentResponse struct {
	Success   bool   `json:"success"`
	Ticket    string `json:"ticket,omitempty"`
	ExpiresAt int64  `json:"expiresAt,omitempty"` // Unix milliseconds
}

// DocumentResponse is the response body for GET /documents/{id}.
type DocumentResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	IsPublic    bool   `json:"isPublic"`
	UserCount   int    `json:"userCount"`
	LastUpdated int64  `json:"lastUpdated"`
}

// HealthResponse is the response body for GET /health and GET /ready.
type HealthResponse struct {
	Status      string `json:"status"`
	Time        string `json:"time"`
	Documents   int    `json:"documents"`
	Connections int    `json:"connections"`
}

func summaryToListItem(s domain.DocumentSummary) DocumentListItem {
	return DocumentListItem{
		ID:          s.ID,
		Title:       s.Title,
		UserCount:   s.UserCount,
		LastUpdated: s.LastActivity.UnixMilli(),
	}
}

func summaryToResponse(s *domain.DocumentSummary) DocumentResponse {
	return DocumentResponse{
		ID:          s.ID,
		Title:       s.Title,
		IsPublic:    s.Visibility == domain.VisibilityPublic,
		UserCount:   s.UserCount,
		LastUpdated: s.LastActivity.UnixMilli(),
	}
}
