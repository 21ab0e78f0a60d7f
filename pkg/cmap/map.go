package cmap

import (
	"crypto/rand"
	"encoding/binary"
	"iter"
	"sync"

	"github.com/spaolacci/murmur3"
)

// DefaultShards is the shard count used by New.
const DefaultShards = 32

// Map is a string-keyed map split into independently locked shards.
// The zero value is not usable; call New or NewSharded.
type Map[K ~string, V any] struct {
	buckets []bucket[K, V]
	mask    uint32
	seed    uint32
}

type bucket[K ~string, V any] struct {
	sync.RWMutex
	m map[K]V
}

// New returns a map with DefaultShards shards.
func New[K ~string, V any]() *Map[K, V] {
	return NewSharded[K, V](DefaultShards)
}

// NewSharded returns a map with n shards, rounded up to a power of two.
func NewSharded[K ~string, V any](n int) *Map[K, V] {
	size := 1
	for size < n {
		size <<= 1
	}
	m := &Map[K, V]{
		buckets: make([]bucket[K, V], size),
		mask:    uint32(size - 1),
		seed:    seed(),
	}
	for i := range m.buckets {
		m.buckets[i].m = make(map[K]V)
	}
	return m
}

// seed randomizes shard placement per map so keys chosen by clients
// cannot be aimed at a single shard.
func seed() uint32 {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return binary.BigEndian.Uint32(b[:])
}

// bucketFor hashes key with the streaming murmur3 digest. Its block loop
// indexes within the key; Sum32WithSeed in murmur3 v1.1.0 forms a pointer
// one past the key when the length is a multiple of four, which the race
// detector's checkptr mode aborts on.
func (m *Map[K, V]) bucketFor(key K) *bucket[K, V] {
	h := murmur3.New32WithSeed(m.seed)
	_, _ = h.Write([]byte(key))
	return &m.buckets[h.Sum32()&m.mask]
}

// Get returns the value stored under key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	b := m.bucketFor(key)
	b.RLock()
	v, ok := b.m[key]
	b.RUnlock()
	return v, ok
}

// Has reports whether key is present.
func (m *Map[K, V]) Has(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// Set stores value under key, replacing any previous value.
func (m *Map[K, V]) Set(key K, value V) {
	b := m.bucketFor(key)
	b.Lock()
	b.m[key] = value
	b.Unlock()
}

// Insert stores value only if key is absent and reports whether it did.
func (m *Map[K, V]) Insert(key K, value V) bool {
	b := m.bucketFor(key)
	b.Lock()
	defer b.Unlock()
	if _, exists := b.m[key]; exists {
		return false
	}
	b.m[key] = value
	return true
}

// Delete removes key.
func (m *Map[K, V]) Delete(key K) {
	b := m.bucketFor(key)
	b.Lock()
	delete(b.m, key)
	b.Unlock()
}

// Take removes key and returns the value it held.
func (m *Map[K, V]) Take(key K) (V, bool) {
	return m.TakeIf(key, func(V) bool { return true })
}

// TakeIf removes key only when keep reports true for its value. keep
// runs under the shard lock and must not use the map.
func (m *Map[K, V]) TakeIf(key K, keep func(V) bool) (V, bool) {
	b := m.bucketFor(key)
	b.Lock()
	defer b.Unlock()
	v, ok := b.m[key]
	if !ok || !keep(v) {
		var zero V
		return zero, false
	}
	delete(b.m, key)
	return v, true
}

// TakeFunc removes every entry matching match and returns the removed
// values. match runs under a shard lock and must not use the map.
func (m *Map[K, V]) TakeFunc(match func(K, V) bool) []V {
	var out []V
	for i := range m.buckets {
		b := &m.buckets[i]
		b.Lock()
		for k, v := range b.m {
			if match(k, v) {
				delete(b.m, k)
				out = append(out, v)
			}
		}
		b.Unlock()
	}
	return out
}

// Drain empties the map and returns what it held.
func (m *Map[K, V]) Drain() []V {
	return m.TakeFunc(func(K, V) bool { return true })
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	n := 0
	for i := range m.buckets {
		b := &m.buckets[i]
		b.RLock()
		n += len(b.m)
		b.RUnlock()
	}
	return n
}

// Keys returns a snapshot of the keys in no particular order.
func (m *Map[K, V]) Keys() []K {
	keys := make([]K, 0, m.Len())
	for k := range m.All() {
		keys = append(keys, k)
	}
	return keys
}

// All yields every entry. Each shard is copied before its entries are
// yielded, so the loop body may use the map. Entries changed during the
// loop may or may not be seen.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		type entry struct {
			k K
			v V
		}
		var batch []entry
		for i := range m.buckets {
			b := &m.buckets[i]
			b.RLock()
			batch = batch[:0]
			for k, v := range b.m {
				batch = append(batch, entry{k, v})
			}
			b.RUnlock()
			for _, e := range batch {
				if !yield(e.k, e.v) {
					return
				}
			}
		}
	}
}
