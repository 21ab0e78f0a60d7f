package service

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/docmesh-go/internal/core/domain"
	"github.com/yndnr/docmesh-go/internal/core/replica"
	"github.com/yndnr/docmesh-go/internal/telemetry/logger"
	"github.com/yndnr/docmesh-go/internal/telemetry/metric"
	"github.com/yndnr/docmesh-go/pkg/cmap"
)

// Deletion reasons, used as metric labels.
const (
	ReasonExplicit = "explicit"
	ReasonIdle     = "idle"
	ReasonShutdown = "shutdown"
)

// Registry maps document ids to live sessions.
type Registry struct {
	sessions *cmap.Map[string, *Session]
	engine   replica.Engine
	now      func() time.Time
	logger   logger.Logger
	metrics  *metric.Registry
	closed   atomic.Bool

	hooksMu  sync.RWMutex
	onDelete []func(id string)
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithClock sets the time source.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

// WithMetrics sets the metrics registry.
func WithMetrics(m *metric.Registry) RegistryOption {
	return func(r *Registry) { r.metrics = m }
}

// NewRegistry creates an empty registry whose documents are created by engine.
func NewRegistry(engine replica.Engine, opts ...RegistryOption) *Registry {
	r := &Registry{
		sessions: cmap.New[string, *Session](),
		engine:   engine,
		now:      time.Now,
		logger:   logger.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OnDelete registers fn to run after a session is removed and closed.
func (r *Registry) OnDelete(fn func(id string)) {
	r.hooksMu.Lock()
	r.onDelete = append(r.onDelete, fn)
	r.hooksMu.Unlock()
}

// Create starts a session for id. Exactly one of several concurrent
// creations with the same id succeeds; the others get ErrDocumentConflict.
func (r *Registry) Create(id string, access domain.Access) (*Session, error) {
	if err := domain.ValidateDocumentID(id); err != nil {
		return nil, err
	}
	if err := access.Validate(); err != nil {
		return nil, err
	}
	if r.closed.Load() {
		return nil, domain.ErrServiceUnavailable
	}
	if r.sessions.Has(id) {
		return nil, domain.ErrDocumentConflict.WithDetail(id)
	}

	doc, err := r.engine.New()
	if err != nil {
		return nil, domain.ErrInternalServer.Wrap(err)
	}
	s := newSession(id, access, doc, r.now, r.logger, r.metrics)

	if !r.sessions.Insert(id, s) {
		s.close()
		return nil, domain.ErrDocumentConflict.WithDetail(id)
	}
	// Close may have drained the map between the check above and Insert.
	if r.closed.Load() {
		if _, ok := r.sessions.TakeIf(id, func(v *Session) bool { return v == s }); ok {
			s.close()
		}
		return nil, domain.ErrServiceUnavailable
	}

	r.metrics.IncDocumentCreated()
	r.logger.Info("document created",
		"document_id", id,
		"visibility", access.Visibility.String(),
		"engine", r.engine.Name(),
	)
	return s, nil
}

// Get returns the session for id.
func (r *Registry) Get(id string) (*Session, error) {
	s, ok := r.sessions.Get(id)
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return s, nil
}

// ListPublic returns a snapshot of public sessions, most recently active
// first; ties are ordered by id.
func (r *Registry) ListPublic() []domain.DocumentSummary {
	var out []domain.DocumentSummary
	for _, s := range r.sessions.All() {
		if s.IsPublic() {
			out = append(out, s.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastActivity.Equal(out[j].LastActivity) {
			return out[i].LastActivity.After(out[j].LastActivity)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Delete removes and closes the session for id. It reports whether a
// session was removed; deleting an absent id is not an error.
func (r *Registry) Delete(id string) bool {
	s, ok := r.sessions.Take(id)
	if !ok {
		return false
	}
	r.finish(s, ReasonExplicit)
	return true
}

// DeleteIdle removes every session idle for longer than threshold at now
// and returns their ids.
func (r *Registry) DeleteIdle(now time.Time, threshold time.Duration) []string {
	var removed []*Session
	for _, id := range r.sessions.Keys() {
		s, ok := r.sessions.TakeIf(id, func(s *Session) bool {
			return s.idleFor(now) > threshold
		})
		if ok {
			removed = append(removed, s)
		}
	}

	ids := make([]string, 0, len(removed))
	for _, s := range removed {
		r.finish(s, ReasonIdle)
		ids = append(ids, s.ID())
	}
	return ids
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	return r.sessions.Len()
}

// DocumentCount implements metric.StatsSource.
func (r *Registry) DocumentCount() int {
	return r.sessions.Len()
}

// ConnectionCount implements metric.StatsSource.
func (r *Registry) ConnectionCount() int {
	var n int
	for _, s := range r.sessions.All() {
		n += s.UserCount()
	}
	return n
}

// Close rejects further creations and closes every session.
func (r *Registry) Close() {
	r.closed.Store(true)
	for _, s := range r.sessions.Drain() {
		r.finish(s, ReasonShutdown)
	}
}

func (r *Registry) finish(s *Session, reason string) {
	users := s.UserCount()
	s.close()

	r.hooksMu.RLock()
	hooks := r.onDelete
	r.hooksMu.RUnlock()
	for _, fn := range hooks {
		fn(s.ID())
	}

	r.metrics.RecordDocumentDeleted(reason)
	r.logger.Info("document deleted",
		"document_id", s.ID(),
		"reason", reason,
		"connections", users,
	)
}
