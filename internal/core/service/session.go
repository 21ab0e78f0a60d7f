package service

import (
	"sync"
	"time"

	"github.com/yndnr/docmesh-go/internal/core/domain"
	"github.com/yndnr/docmesh-go/internal/core/replica"
	"github.com/yndnr/docmesh-go/internal/protocol"
	"github.com/yndnr/docmesh-go/internal/telemetry/logger"
	"github.com/yndnr/docmesh-go/internal/telemetry/metric"
)

// Peer is a connection attached to a session.
type Peer interface {
	// ID returns the connection id, used as the merge origin.
	ID() string

	// Send queues an encoded frame without blocking. It returns false
	// if the peer cannot accept it.
	Send(frame []byte) bool

	// Close closes the underlying transport. It must be idempotent.
	Close()
}

// Session is one live document: its replicated state, access policy and
// attached connections.
type Session struct {
	id      string
	access  domain.Access
	doc     replica.Doc
	created time.Time

	now     func() time.Time
	logger  logger.Logger
	metrics *metric.Registry

	mergeMu sync.Mutex
	closed  bool // guarded by mergeMu

	mu           sync.RWMutex
	title        string
	lastActivity time.Time
	conns        map[string]Peer
	detached     bool

	pumpDone chan struct{}
}

func newSession(id string, access domain.Access, doc replica.Doc, now func() time.Time, l logger.Logger, m *metric.Registry) *Session {
	t := now()
	s := &Session{
		id:           id,
		access:       access,
		doc:          doc,
		created:      t,
		now:          now,
		logger:       l.With("document_id", id),
		metrics:      m,
		lastActivity: t,
		conns:        make(map[string]Peer),
		pumpDone:     make(chan struct{}),
	}
	if title, ok := doc.Meta(replica.TitleKey); ok {
		s.title = domain.NormalizeTitle(title)
	}
	go s.pump()
	return s
}

// ID returns the document id.
func (s *Session) ID() string { return s.id }

// Access returns the immutable access policy.
func (s *Session) Access() domain.Access { return s.access }

// IsPublic reports whether the document is public.
func (s *Session) IsPublic() bool { return s.access.IsPublic() }

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time { return s.created }

// Title returns the title last mirrored from document metadata.
func (s *Session) Title() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.title
}

// LastActivity returns the time of the last accepted mutation or join.
func (s *Session) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

// UserCount returns the number of attached connections.
func (s *Session) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

// Summary returns the listing view of the session.
func (s *Session) Summary() domain.DocumentSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.DocumentSummary{
		ID:           s.id,
		Title:        s.title,
		Visibility:   s.access.Visibility,
		UserCount:    len(s.conns),
		LastActivity: s.lastActivity,
	}
}

// Touch bumps the activity time. It never moves backwards.
func (s *Session) Touch() {
	t := s.now()
	s.mu.Lock()
	s.touchLocked(t)
	s.mu.Unlock()
}

func (s *Session) touchLocked(t time.Time) {
	if t.After(s.lastActivity) {
		s.lastActivity = t
	}
}

func (s *Session) idleFor(now time.Time) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return now.Sub(s.lastActivity)
}

// Attach adds p to the connection set. It fails once the session is closed.
func (s *Session) Attach(p Peer) error {
	t := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detached {
		return domain.ErrDocumentClosed
	}
	s.conns[p.ID()] = p
	s.touchLocked(t)
	return nil
}

// Detach removes the connection with id. Unknown ids are ignored.
func (s *Session) Detach(id string) {
	s.mu.Lock()
	delete(s.conns, id)
	s.mu.Unlock()
}

// StateVector returns the document's state vector.
func (s *Session) StateVector() []byte {
	return s.doc.StateVector()
}

// Diff returns what a holder of stateVector is missing.
func (s *Session) Diff(stateVector []byte) ([]byte, error) {
	d, err := s.doc.Diff(stateVector)
	if err != nil {
		return nil, domain.ErrMergeFailure.WithDetail("diff").Wrap(err)
	}
	return d, nil
}

// Apply merges update on behalf of origin. Merges are serialized with
// each other and with Close.
func (s *Session) Apply(update []byte, origin string) error {
	s.mergeMu.Lock()
	defer s.mergeMu.Unlock()
	if s.closed {
		return domain.ErrDocumentClosed
	}
	if err := s.doc.Apply(update, replica.Origin(origin)); err != nil {
		return domain.ErrMergeFailure.Wrap(err)
	}
	return nil
}

// Broadcast queues frame to every attached connection except exclude and
// returns how many accepted it. Connections that cannot accept are
// detached and closed; they resynchronize when they reconnect.
func (s *Session) Broadcast(frame []byte, exclude string) int {
	var sent int
	var slow []Peer

	s.mu.RLock()
	for id, p := range s.conns {
		if id == exclude {
			continue
		}
		if p.Send(frame) {
			sent++
		} else {
			slow = append(slow, p)
		}
	}
	s.mu.RUnlock()

	for _, p := range slow {
		s.Detach(p.ID())
		p.Close()
		s.metrics.IncConnectionKicked()
		s.logger.Warn("closing slow connection", "connection_id", p.ID())
	}
	return sent
}

// pump turns engine notifications into broadcasts until the document's
// event channel is closed.
func (s *Session) pump() {
	defer close(s.pumpDone)
	for ev := range s.doc.Events() {
		switch ev.Kind {
		case replica.EventUpdate:
			s.Touch()
			frame := protocol.EncodeSync(protocol.SyncUpdate, ev.Update)
			n := s.Broadcast(frame, string(ev.Origin))
			s.metrics.AddBroadcast(protocol.ChannelSync.String(), n)
		case replica.EventMeta:
			if ev.Key != replica.TitleKey {
				continue
			}
			t := s.now()
			s.mu.Lock()
			s.title = domain.NormalizeTitle(ev.Value)
			s.touchLocked(t)
			s.mu.Unlock()
			s.logger.Debug("title changed", "title", ev.Value)
		}
	}
}

// close releases the document, waits for in-flight broadcasts and then
// closes every connection. Only the first call has an effect.
func (s *Session) close() {
	s.mergeMu.Lock()
	if s.closed {
		s.mergeMu.Unlock()
		return
	}
	s.closed = true
	if err := s.doc.Close(); err != nil {
		s.logger.Warn("closing document failed", "error", err)
	}
	s.mergeMu.Unlock()

	<-s.pumpDone

	s.mu.Lock()
	peers := s.conns
	s.conns = make(map[string]Peer)
	s.detached = true
	s.mu.Unlock()

	for _, p := range peers {
		p.Close()
	}
}
