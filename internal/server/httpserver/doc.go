// Package httpserver provides the HTTP/HTTPS server for DocMesh.
//
// This package implements the external API using stdlib net/http routing:
//
//   - Document endpoints: /documents, /documents/{id}, /documents/{id}/join
//     (also served under /api)
//   - Synchronization: /ws/{id} (WebSocket upgrade, see package relay)
//   - Health endpoints: /health, /ready, /metrics
//
// Features:
//
//   - Optional TLS
//   - Middleware chain: Recover, RequestID, Audit, CORS, RateLimit
//   - Graceful shutdown
package httpserver
