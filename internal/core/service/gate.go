package service

import (
	"context"
	"time"

	"github.com/yndnr/docmesh-go/internal/core/domain"
	"github.com/yndnr/docmesh-go/internal/telemetry/logger"
	"github.com/yndnr/docmesh-go/internal/telemetry/metric"
	"github.com/yndnr/docmesh-go/pkg/cmap"
	"github.com/yndnr/docmesh-go/pkg/passwd"
)

// Join results, used as metric labels.
const (
	JoinGranted  = "granted"
	JoinDenied   = "denied"
	JoinNotFound = "not_found"
	JoinCanceled = "canceled"
)

// GateConfig configures a Gate.
type GateConfig struct {
	// RequireTickets makes Admit demand a ticket for private documents.
	RequireTickets bool
	// TicketTTL is how long an issued ticket stays valid.
	TicketTTL time.Duration
	Now       func() time.Time
	Logger    logger.Logger
	Metrics   *metric.Registry
}

// DefaultGateConfig returns the default gate configuration.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		RequireTickets: true,
		TicketTTL:      5 * time.Minute,
	}
}

// Grant is the outcome of a successful Authorize.
type Grant struct {
	DocumentID string
	Public     bool
	// Ticket is set for private documents when tickets are required.
	Ticket    string
	ExpiresAt time.Time
}

// Gate decides who may join a document.
type Gate struct {
	registry *Registry
	tickets  *cmap.Map[string, *domain.JoinTicket]
	cfg      GateConfig
	logger   logger.Logger
}

// NewGate creates a gate over registry. Tickets of a deleted document are
// revoked with it.
func NewGate(registry *Registry, cfg GateConfig) *Gate {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.TicketTTL <= 0 {
		cfg.TicketTTL = DefaultGateConfig().TicketTTL
	}
	l := cfg.Logger
	if l == nil {
		l = logger.Default()
	}
	g := &Gate{
		registry: registry,
		tickets:  cmap.New[string, *domain.JoinTicket](),
		cfg:      cfg,
		logger:   l,
	}
	registry.OnDelete(g.revokeDocument)
	return g
}

// Authorize checks password against the document's access policy.
//
// Public documents are granted for any password. Private documents are
// granted only when password matches; an empty password yields
// ErrPasswordRequired and a mismatch ErrPasswordInvalid. The bcrypt
// comparison runs without holding any registry or session lock.
func (g *Gate) Authorize(ctx context.Context, id, password string) (*Grant, error) {
	s, err := g.registry.Get(id)
	if err != nil {
		g.cfg.Metrics.RecordJoin(JoinNotFound)
		return nil, err
	}

	access := s.Access()
	if access.IsPublic() {
		s.Touch()
		g.cfg.Metrics.RecordJoin(JoinGranted)
		return &Grant{DocumentID: id, Public: true}, nil
	}

	if password == "" {
		g.cfg.Metrics.RecordJoin(JoinDenied)
		return nil, domain.ErrPasswordRequired
	}
	if err := ctx.Err(); err != nil {
		g.cfg.Metrics.RecordJoin(JoinCanceled)
		return nil, domain.ErrRequestCanceled.Wrap(err)
	}
	if !passwd.Verify(access.PasswordHash, password) {
		g.cfg.Metrics.RecordJoin(JoinDenied)
		g.logger.Info("join denied", "document_id", id)
		return nil, domain.ErrPasswordInvalid
	}

	s.Touch()
	g.cfg.Metrics.RecordJoin(JoinGranted)
	grant := &Grant{DocumentID: id}
	if !g.cfg.RequireTickets {
		return grant, nil
	}

	plaintext, ticket, err := domain.GenerateTicket(id, g.cfg.TicketTTL, g.cfg.Now())
	if err != nil {
		return nil, err
	}
	g.tickets.Set(ticket.Hash, ticket)
	grant.Ticket = plaintext
	grant.ExpiresAt = ticket.ExpiresAt
	g.logger.Debug("join ticket issued",
		"document_id", id,
		"ticket", domain.MaskTicket(plaintext),
	)
	return grant, nil
}

// Admit returns the session a synchronizing connection may attach to.
// Private documents need a live ticket for that document when tickets
// are required. A ticket may be reused until it expires so that clients
// can reconnect.
func (g *Gate) Admit(id, ticket string) (*Session, error) {
	s, err := g.registry.Get(id)
	if err != nil {
		return nil, err
	}
	if s.IsPublic() || !g.cfg.RequireTickets {
		return s, nil
	}

	if !domain.ValidateTicketFormat(ticket) {
		return nil, domain.ErrTicketInvalid
	}
	t, ok := g.tickets.Get(domain.HashTicket(ticket))
	if !ok || t.DocumentID != id {
		return nil, domain.ErrTicketInvalid
	}
	if t.Expired(g.cfg.Now()) {
		g.tickets.Delete(t.Hash)
		return nil, domain.ErrTicketInvalid.WithDetail("expired")
	}
	return s, nil
}

// PurgeExpired drops tickets expired at now and returns how many.
func (g *Gate) PurgeExpired(now time.Time) int {
	return len(g.tickets.TakeFunc(func(_ string, t *domain.JoinTicket) bool {
		return t.Expired(now)
	}))
}

// TicketCount returns the number of stored tickets.
func (g *Gate) TicketCount() int {
	return g.tickets.Len()
}

func (g *Gate) revokeDocument(id string) {
	g.tickets.TakeFunc(func(_ string, t *domain.JoinTicket) bool {
		return t.DocumentID == id
	})
}
