// Package handler provides HTTP request handlers for DocMesh.
//
// This package contains handlers for the REST endpoints:
//
//   - documents.go: document listing, creation, detail, join and deletion
//   - health.go: health and readiness checks
//
// All handlers follow a consistent pattern:
//
//   - Parse and validate request
//   - Call domain service
//   - Format and return response
//   - Handle errors with appropriate HTTP status codes
//
// Response bodies are plain JSON objects; errors carry {code, error}.
package handler
