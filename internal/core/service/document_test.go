package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/yndnr/docmesh-go/internal/core/domain"
	"github.com/yndnr/docmesh-go/pkg/passwd"
)

func newTestDocumentService(t *testing.T) (*DocumentService, *Registry) {
	t.Helper()
	clock := newFakeClock()
	reg, gate := newTestGate(t, clock, true)
	return NewDocumentService(reg, gate, bcrypt.MinCost), reg
}

func TestDocumentService_CreatePublic(t *testing.T) {
	svc, reg := newTestDocumentService(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, &CreateDocumentRequest{Public: true})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !resp.Public {
		t.Error("resp.Public = false, want true")
	}
	if len(resp.ID) != 36 {
		t.Errorf("resp.ID = %q, want a uuid", resp.ID)
	}
	if _, err := reg.Get(resp.ID); err != nil {
		t.Errorf("created document not registered: %v", err)
	}
}

func TestDocumentService_CreatePrivate(t *testing.T) {
	svc, reg := newTestDocumentService(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, &CreateDocumentRequest{Password: "secret"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if resp.Public {
		t.Error("resp.Public = true, want false")
	}
	s, _ := reg.Get(resp.ID)
	hash := s.Access().PasswordHash
	if strings.Contains(string(hash), "secret") {
		t.Error("password stored in plaintext")
	}
	if !passwd.Verify(hash, "secret") {
		t.Error("stored hash does not verify")
	}

	if _, err := svc.Create(ctx, &CreateDocumentRequest{}); !errors.Is(err, domain.ErrDocumentValidation) {
		t.Errorf("Create() without password error = %v, want ErrDocumentValidation", err)
	}
}

func TestDocumentService_JoinAndList(t *testing.T) {
	svc, _ := newTestDocumentService(t)
	ctx := context.Background()

	pub, _ := svc.Create(ctx, &CreateDocumentRequest{Public: true})
	priv, _ := svc.Create(ctx, &CreateDocumentRequest{Password: "secret"})

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 || list[0].ID != pub.ID {
		t.Errorf("List() = %+v, want only %s", list, pub.ID)
	}

	if _, err := svc.Join(ctx, &JoinDocumentRequest{ID: priv.ID, Password: "wrong"}); !domain.IsDenied(err) {
		t.Errorf("Join(wrong) error = %v, want denied", err)
	}
	joined, err := svc.Join(ctx, &JoinDocumentRequest{ID: priv.ID, Password: "secret"})
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	if joined.Ticket == "" {
		t.Error("private join should return a ticket")
	}

	detail, err := svc.Get(ctx, priv.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if detail.Visibility != domain.VisibilityPrivate {
		t.Errorf("detail.Visibility = %s, want private", detail.Visibility)
	}
}

func TestDocumentService_Delete(t *testing.T) {
	svc, _ := newTestDocumentService(t)
	ctx := context.Background()

	doc, _ := svc.Create(ctx, &CreateDocumentRequest{Public: true})
	if err := svc.Delete(ctx, doc.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := svc.Delete(ctx, doc.ID); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
	if _, err := svc.Get(ctx, doc.ID); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrDocumentNotFound", err)
	}
	if err := svc.Delete(ctx, ""); !errors.Is(err, domain.ErrMissingArgument) {
		t.Errorf("Delete(\"\") error = %v, want ErrMissingArgument", err)
	}
}
