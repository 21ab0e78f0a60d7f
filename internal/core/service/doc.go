// Package service provides the document session services for DocMesh.
//
// This package contains:
//
//   - Session: one live replicated document, its connections and its
//     notification pump
//   - Registry: id to Session map on a sharded concurrent map
//   - Gate: password checks and join tickets for private documents
//   - Reaper: periodic eviction of idle sessions
//   - DocumentService: request/response operations used by the HTTP layer
//
// Locking: merges and teardown of a session share Session.mergeMu; the
// connection set, title and activity time share Session.mu. Registry
// shard locks may be held while reading Session.mu, never the reverse.
// No lock is shared between two sessions.
package service
