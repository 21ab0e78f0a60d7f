package logger

import (
	"log/slog"
	"strings"
)

// Redacted replaces values that must never reach a log.
const Redacted = "***REDACTED***"

// secretShape describes a secret recognisable from its value alone.
type secretShape struct {
	prefix string
	// keep is how many characters of each end survive masking; zero
	// hides everything after the prefix.
	keep int
}

var secretShapes = []secretShape{
	{prefix: "dmjt_", keep: 3}, // join ticket
	{prefix: "$2a$"},           // bcrypt
	{prefix: "$2b$"},
	{prefix: "$2y$"},
}

// sensitiveKeys are attribute name fragments whose values are hidden.
var sensitiveKeys = []string{
	"password",
	"passwd",
	"secret",
	"ticket",
	"token",
	"authorization",
	"cookie",
}

// redactSensitive is the slog ReplaceAttr hook shared by both backends.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		s := a.Value.String()
		if masked, ok := maskShape(s); ok {
			return slog.String(a.Key, masked)
		}
		if s != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, Redacted)
		}
	case slog.KindGroup:
		group := a.Value.Group()
		out := make([]slog.Attr, len(group))
		for i, g := range group {
			out[i] = redactSensitive(g)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

func maskShape(s string) (string, bool) {
	for _, shape := range secretShapes {
		if !strings.HasPrefix(s, shape.prefix) {
			continue
		}
		body := s[len(shape.prefix):]
		if shape.keep == 0 || len(body) <= 2*shape.keep {
			return shape.prefix + "***", true
		}
		return shape.prefix + body[:shape.keep] + "..." + body[len(body)-shape.keep:], true
	}
	return "", false
}

// Redact masks s if it looks like a secret and returns it unchanged
// otherwise.
func Redact(s string) string {
	if masked, ok := maskShape(s); ok {
		return masked
	}
	return s
}

// IsSensitiveKey reports whether an attribute named key has its value hidden.
func IsSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, frag := range sensitiveKeys {
		if strings.Contains(key, frag) {
			return true
		}
	}
	return false
}
