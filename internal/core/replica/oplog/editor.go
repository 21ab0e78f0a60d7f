package oplog

import "sync"

// Editor produces updates on behalf of one client. It is what a peer
// library would do locally before sending an update frame.
type Editor struct {
	mu      sync.Mutex
	client  uint64
	seq     uint64
	lamport uint64
}

// NewEditor creates an editor for client. Client ids must be unique
// among the peers of a document.
func NewEditor(client uint64) *Editor {
	return &Editor{client: client}
}

// Observe advances the editor's Lamport clock past everything in doc so
// that its next write wins over what it has seen.
func (e *Editor) Observe(doc *Doc) {
	l := doc.Lamport()
	e.mu.Lock()
	if l > e.lamport {
		e.lamport = l
	}
	e.mu.Unlock()
}

// Insert returns an update appending a content block.
func (e *Editor) Insert(block []byte) []byte {
	return EncodeUpdate([]Op{e.next(OpContent, "", block)})
}

// Set returns an update writing a metadata register.
func (e *Editor) Set(key, value string) []byte {
	return EncodeUpdate([]Op{e.next(OpMeta, key, []byte(value))})
}

func (e *Editor) next(kind OpKind, key string, value []byte) Op {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq++
	e.lamport++
	return Op{
		Client:  e.client,
		Seq:     e.seq,
		Lamport: e.lamport,
		Kind:    kind,
		Key:     key,
		Value:   append([]byte(nil), value...),
	}
}
