// Package logger provides structured logging for DocMesh.
//
//   - logger.go: Logger interface, slog backend, global level
//   - zap.go: zap backend sharing the same level and redaction rules
//   - context.go: request, document and connection ids carried in a context
//   - redact.go: Sensitive data redaction (passwords, tickets, bcrypt hashes)
//
// Output goes to stderr or, when Config.File is set, to a file rotated
// by lumberjack.
package logger
