// Package oplog is a pure Go replicated document engine.
//
// A document is a grow-only set of operations identified by
// (client, seq). Content operations are opaque blocks ordered by their
// Lamport timestamp; metadata operations are last-writer-wins registers.
// Merging is a set union, which makes it commutative, associative and
// idempotent.
package oplog

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/yndnr/docmesh-go/internal/core/replica"
)

// Name is the engine name used in configuration.
const Name = "oplog"

// ErrClosed is returned by Apply after Close.
var ErrClosed = errors.New("oplog: document closed")

func init() {
	replica.Register(Engine())
}

// Engine returns the oplog engine.
func Engine() replica.Engine {
	return replica.EngineFunc{
		EngineName: Name,
		NewFunc:    func() (replica.Doc, error) { return New(), nil },
	}
}

// Doc is an in-memory operation log.
type Doc struct {
	mu      sync.Mutex
	ops     map[opID]Op
	clocks  map[uint64]uint64 // highest contiguous seq per client
	lamport uint64
	meta    map[string]Op
	events  chan replica.Event
	closed  bool
}

var _ replica.Doc = (*Doc)(nil)

// New creates an empty document.
func New() *Doc {
	return &Doc{
		ops:    make(map[opID]Op),
		clocks: make(map[uint64]uint64),
		meta:   make(map[string]Op),
		events: make(chan replica.Event, replica.DefaultEventBuffer),
	}
}

// StateVector implements replica.Doc.
func (d *Doc) StateVector() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return encodeStateVector(d.clocks)
}

// Diff implements replica.Doc.
func (d *Doc) Diff(stateVector []byte) ([]byte, error) {
	sv, err := decodeStateVector(stateVector)
	if err != nil {
		return nil, fmt.Errorf("oplog: decode state vector: %w", err)
	}

	d.mu.Lock()
	missing := make([]Op, 0)
	for id, o := range d.ops {
		if id.seq > sv[id.client] {
			missing = append(missing, o)
		}
	}
	d.mu.Unlock()

	sort.Slice(missing, func(i, j int) bool {
		if missing[i].Client != missing[j].Client {
			return missing[i].Client < missing[j].Client
		}
		return missing[i].Seq < missing[j].Seq
	})
	return EncodeUpdate(missing), nil
}

// Apply implements replica.Doc. The content notification carries update
// exactly as received.
func (d *Doc) Apply(update []byte, origin replica.Origin) error {
	ops, err := DecodeUpdate(update)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}

	added := 0
	var changedKeys []string
	for _, o := range ops {
		if _, seen := d.ops[o.id()]; seen {
			continue
		}
		d.ops[o.id()] = o
		added++
		if o.Lamport > d.lamport {
			d.lamport = o.Lamport
		}
		d.advanceClock(o.Client)

		if o.Kind == OpMeta {
			cur, ok := d.meta[o.Key]
			if !ok || o.after(cur) {
				d.meta[o.Key] = o
				if !ok || string(cur.Value) != string(o.Value) {
					changedKeys = appendUnique(changedKeys, o.Key)
				}
			}
		}
	}
	if added == 0 {
		return nil
	}

	d.events <- replica.Event{
		Kind:   replica.EventUpdate,
		Origin: origin,
		Update: append([]byte(nil), update...),
	}
	for _, k := range changedKeys {
		d.events <- replica.Event{
			Kind:   replica.EventMeta,
			Origin: origin,
			Key:    k,
			Value:  string(d.meta[k].Value),
		}
	}
	return nil
}

func (d *Doc) advanceClock(client uint64) {
	next := d.clocks[client] + 1
	for {
		if _, ok := d.ops[opID{client, next}]; !ok {
			break
		}
		d.clocks[client] = next
		next++
	}
}

// Meta implements replica.Doc.
func (d *Doc) Meta(key string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	o, ok := d.meta[key]
	if !ok {
		return "", false
	}
	return string(o.Value), true
}

// Content returns the content blocks in their converged order.
func (d *Doc) Content() [][]byte {
	d.mu.Lock()
	blocks := make([]Op, 0, len(d.ops))
	for _, o := range d.ops {
		if o.Kind == OpContent {
			blocks = append(blocks, o)
		}
	}
	d.mu.Unlock()

	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].Lamport != blocks[j].Lamport {
			return blocks[i].Lamport < blocks[j].Lamport
		}
		if blocks[i].Client != blocks[j].Client {
			return blocks[i].Client < blocks[j].Client
		}
		return blocks[i].Seq < blocks[j].Seq
	})
	out := make([][]byte, len(blocks))
	for i, o := range blocks {
		out[i] = o.Value
	}
	return out
}

// Lamport returns the highest Lamport timestamp merged so far.
func (d *Doc) Lamport() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lamport
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

func appendUnique(keys []string, k string) []string {
	for _, existing := range keys {
		if existing == k {
			return keys
		}
	}
	return append(keys, k)
}
