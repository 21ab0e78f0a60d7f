// Package replica defines the contract between the session layer and a
// conflict-free replicated document engine.
//
// An engine owns the merge algorithm; the session layer only moves opaque
// byte strings between peers and reacts to the notifications an engine
// emits after a merge. Engines must make Apply commutative, associative
// and idempotent so that peers converge regardless of delivery order.
package replica

import (
	"fmt"
	"sort"
	"sync"
)

// TitleKey is the metadata key mirrored into document listings.
const TitleKey = "title"

// DefaultEventBuffer is the notification channel capacity engines use.
const DefaultEventBuffer = 64

// Origin tags a merge with the identity of whoever supplied the update.
// The session layer uses connection ids; the empty origin means local.
type Origin string

// EventKind distinguishes notifications.
type EventKind int

const (
	// EventUpdate reports that a merge changed the content. Update holds
	// a diff that brings a peer without the change up to date.
	EventUpdate EventKind = iota + 1

	// EventMeta reports that a metadata key changed value.
	EventMeta
)

// Event is a notification emitted after a state-changing merge.
type Event struct {
	Kind   EventKind
	Origin Origin
	Update []byte
	Key    string
	Value  string
}

// Doc is a replicated document handle. All methods are safe for
// concurrent use; Apply calls are serialized internally.
type Doc interface {
	// StateVector summarizes what the document holds.
	StateVector() []byte

	// Diff returns the update a holder of stateVector is missing.
	// A nil or empty state vector yields the full document.
	Diff(stateVector []byte) ([]byte, error)

	// Apply merges update. Merging something already known emits nothing.
	Apply(update []byte, origin Origin) error

	// Meta returns the current value of a metadata key.
	Meta(key string) (string, bool)

	// Events delivers notifications in merge order. The channel is closed
	// by Close after every pending notification has been delivered.
	Events() <-chan Event

	// Close releases the document. Further Apply calls fail.
	Close() error
}

// Engine creates empty documents.
type Engine interface {
	Name() string
	New() (Doc, error)
}

// EngineFunc adapts a constructor into an Engine.
type EngineFunc struct {
	EngineName string
	NewFunc    func() (Doc, error)
}

// Name returns the engine name.
func (f EngineFunc) Name() string { return f.EngineName }

// New creates a document.
func (f EngineFunc) New() (Doc, error) { return f.NewFunc() }

var (
	enginesMu sync.RWMutex
	engines   = make(map[string]Engine)
)

// Register makes an engine selectable by name. Engine packages call it
// from init; registering a name twice panics.
func Register(e Engine) {
	enginesMu.Lock()
	defer enginesMu.Unlock()
	if _, dup := engines[e.Name()]; dup {
		panic("replica: Register called twice for engine " + e.Name())
	}
	engines[e.Name()] = e
}

// Lookup returns the engine registered under name.
func Lookup(name string) (Engine, error) {
	enginesMu.RLock()
	defer enginesMu.RUnlock()
	e, ok := engines[name]
	if !ok {
		return nil, fmt.Errorf("replica: unknown engine %q (registered: %v)", name, namesLocked())
	}
	return e, nil
}

// Engines returns the sorted names of registered engines.
func Engines() []string {
	enginesMu.RLock()
	defer enginesMu.RUnlock()
	return namesLocked()
}

func namesLocked() []string {
	names := make([]string, 0, len(engines))
	for n := range engines {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
