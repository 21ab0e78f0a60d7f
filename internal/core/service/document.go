package service

import (
	"context"
	"errors"
	"time"

	"github.com/yndnr/docmesh-go/internal/core/domain"
	"github.com/yndnr/docmesh-go/pkg/passwd"
)

// DocumentService implements the document operations exposed over HTTP.
type DocumentService struct {
	registry *Registry
	gate     *Gate
	cost     int
}

// NewDocumentService creates a DocumentService. cost is the bcrypt cost
// for private document passwords.
func NewDocumentService(registry *Registry, gate *Gate, cost int) *DocumentService {
	return &DocumentService{
		registry: registry,
		gate:     gate,
		cost:     cost,
	}
}

// CreateDocumentRequest contains parameters for document creation.
type CreateDocumentRequest struct {
	Public   bool
	Password string // required when Public is false
}

// CreateDocumentResponse contains the result of document creation.
type CreateDocumentResponse struct {
	ID     string
	Public bool
}

// Create starts a session for a newly generated document id.
func (s *DocumentService) Create(ctx context.Context, req *CreateDocumentRequest) (*CreateDocumentResponse, error) {
	// 1. Build the access policy; hashing happens before the registry is touched
	access := domain.PublicAccess()
	if !req.Public {
		if err := domain.ValidatePassword(req.Password); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hash, err := passwd.Hash(req.Password, s.cost)
		if err != nil {
			return nil, domain.ErrInternalServer.Wrap(err)
		}
		access = domain.PrivateAccess(hash)
	}

	// 2. Register; a uuid collision is retried once
	id := domain.NewDocumentID()
	sess, err := s.registry.Create(id, access)
	if errors.Is(err, domain.ErrDocumentConflict) {
		sess, err = s.registry.Create(domain.NewDocumentID(), access)
	}
	if err != nil {
		return nil, err
	}

	return &CreateDocumentResponse{
		ID:     sess.ID(),
		Public: sess.IsPublic(),
	}, nil
}

// List returns the public documents, most recently active first.
func (s *DocumentService) List(ctx context.Context) ([]domain.DocumentSummary, error) {
	return s.registry.ListPublic(), nil
}

// Get returns the summary of one document, public or private.
func (s *DocumentService) Get(ctx context.Context, id string) (*domain.DocumentSummary, error) {
	if err := domain.ValidateDocumentID(id); err != nil {
		return nil, err
	}
	sess, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	sum := sess.Summary()
	return &sum, nil
}

// JoinDocumentRequest contains parameters for joining a document.
type JoinDocumentRequest struct {
	ID       string
	Password string
}

// JoinDocumentResponse contains the result of a granted join.
type JoinDocumentResponse struct {
	Ticket    string    // empty for public documents
	ExpiresAt time.Time // zero when Ticket is empty
}

// Join runs the access gate for a document.
func (s *DocumentService) Join(ctx context.Context, req *JoinDocumentRequest) (*JoinDocumentResponse, error) {
	if err := domain.ValidateDocumentID(req.ID); err != nil {
		return nil, err
	}
	grant, err := s.gate.Authorize(ctx, req.ID, req.Password)
	if err != nil {
		return nil, err
	}
	return &JoinDocumentResponse{
		Ticket:    grant.Ticket,
		ExpiresAt: grant.ExpiresAt,
	}, nil
}

// Delete removes a document and disconnects its clients. Deleting an
// unknown id succeeds.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if err := domain.ValidateDocumentID(id); err != nil {
		return err
	}
	s.registry.Delete(id)
	return nil
}
