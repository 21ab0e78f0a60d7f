// Package main provides the entry point for docmesh-server.
//
// The server keeps ephemeral collaborative documents in memory and
// relays synchronization traffic between the clients editing them:
//
//   - REST API for creating, listing, joining and deleting documents
//   - WebSocket relay at /ws/{id}
//   - Prometheus metrics at /metrics
//
// Usage:
//
//	docmesh-server [flags]
//	docmesh-server -config /path/to/config.yaml
//
// Documents live only as long as the process and are evicted after
// reaper.idle without activity.
package main
