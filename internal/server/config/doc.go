// Package config provides server configuration for DocMesh.
//
// This package defines the server configuration structure and validation:
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Business validation (address format, value ranges)
//   - sanitize.go: Log sanitization (hide sensitive values)
//
// Configuration is loaded via internal/infra/confloader and supports
// multiple sources: files, environment variables, and flags. Keys never
// contain underscores so that DOCMESH_RELAY_MAXFRAME maps to relay.maxframe.
package config
