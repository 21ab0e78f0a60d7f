// Package domain defines the core domain models for DocMesh.
//
// Domain models are pure value objects without any IO dependencies
// or framework coupling. This package contains:
//
//   - Access: the immutable visibility and password policy of a document
//   - DocumentSummary: the listing view of a live session
//   - JoinTicket: short-lived proof of a granted join
//   - Errors: Domain-specific error definitions
package domain
