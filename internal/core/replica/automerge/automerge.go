// Package automerge adapts automerge-go documents to the replica contract.
//
// Updates are encoded change sets (automerge.SaveChanges) and the state
// vector is the concatenation of the document's 32-byte change hashes
// (its heads). The title is read from the root map key "title", which
// may hold either a plain string or a text object.
package automerge

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	am "github.com/automerge/automerge-go"

	"github.com/yndnr/docmesh-go/internal/core/replica"
)

// Name is the engine name used in configuration.
const Name = "automerge"

const hashLen = len(am.ChangeHash{})

// ErrClosed is returned by Apply after Close.
var ErrClosed = errors.New("automerge: document closed")

func init() {
	replica.Register(Engine())
}

// Engine returns the automerge engine.
func Engine() replica.Engine {
	return replica.EngineFunc{
		EngineName: Name,
		NewFunc:    func() (replica.Doc, error) { return New(), nil },
	}
}

// Doc wraps an automerge document.
type Doc struct {
	mu     sync.Mutex
	doc    *am.Doc
	title  string
	events chan replica.Event
	closed bool
}

var _ replica.Doc = (*Doc)(nil)

// New creates an empty document.
func New() *Doc {
	return &Doc{
		doc:    am.New(),
		events: make(chan replica.Event, replica.DefaultEventBuffer),
	}
}

// StateVector implements replica.Doc.
func (d *Doc) StateVector() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return encodeHeads(d.doc.Heads())
}

// Diff implements replica.Doc. Heads this document has never seen are
// answered with the full change set.
func (d *Doc) Diff(stateVector []byte) ([]byte, error) {
	heads, err := decodeHeads(stateVector)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	changes, err := d.doc.Changes(heads...)
	if err != nil {
		if changes, err = d.doc.Changes(); err != nil {
			return nil, fmt.Errorf("automerge: list changes: %w", err)
		}
	}
	return am.SaveChanges(changes), nil
}

// Apply implements replica.Doc.
func (d *Doc) Apply(update []byte, origin replica.Origin) error {
	changes, err := am.LoadChanges(update)
	if err != nil {
		return fmt.Errorf("automerge: load changes: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}

	before := encodeHeads(d.doc.Heads())
	if err := d.doc.Apply(changes...); err != nil {
		return fmt.Errorf("automerge: apply: %w", err)
	}
	if bytes.Equal(before, encodeHeads(d.doc.Heads())) {
		return nil
	}

	d.events <- replica.Event{
		Kind:   replica.EventUpdate,
		Origin: origin,
		Update: append([]byte(nil), update...),
	}
	if title, ok := d.readTitle(); ok && title != d.title {
		d.title = title
		d.events <- replica.Event{
			Kind:   replica.EventMeta,
			Origin: origin,
			Key:    replica.TitleKey,
			Value:  title,
		}
	}
	return nil
}

// Meta implements replica.Doc. Only string and text values are exposed.
func (d *Doc) Meta(key string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return readString(d.doc, key)
}

func (d *Doc) readTitle() (string, bool) {
	return readString(d.doc, replica.TitleKey)
}

func readString(doc *am.Doc, key string) (string, bool) {
	v, err := doc.Path(key).Get()
	if err != nil || v == nil {
		return "", false
	}
	switch v.Kind() {
	case am.KindStr:
		return v.Str(), true
	case am.KindText:
		s, err := v.Text().Get()
		if err != nil {
			return "", false
		}
		return s, true
	default:
		return "", false
	}
}

// Events implements replica.Doc.
func (d *Doc) Events() <-chan replica.Event {
	return d.events
}

// Close implements replica.Doc. It is idempotent.
func (d *Doc) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	close(d.events)
	return nil
}

func encodeHeads(heads []am.ChangeHash) []byte {
	out := make([]byte, 0, len(heads)*hashLen)
	for _, h := range heads {
		out = append(out, h[:]...)
	}
	return out
}

func decodeHeads(b []byte) ([]am.ChangeHash, error) {
	if len(b)%hashLen != 0 {
		return nil, fmt.Errorf("automerge: state vector length %d is not a multiple of %d", len(b), hashLen)
	}
	heads := make([]am.ChangeHash, len(b)/hashLen)
	for i := range heads {
		copy(heads[i][:], b[i*hashLen:])
	}
	return heads, nil
}
