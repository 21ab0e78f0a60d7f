// Package cmap is a sharded concurrent map keyed by strings.
//
// The session registry and the join-ticket store both sit on it. Keys are
// spread over shards with seeded murmur3. Insert, TakeIf and TakeFunc
// decide and mutate under a single shard lock, which lets callers
// implement check-then-remove without a global lock:
//
//	if !m.Insert(id, s) {
//		return ErrConflict
//	}
//	s, ok := m.TakeIf(id, func(s *Session) bool { return s.Idle() })
package cmap
