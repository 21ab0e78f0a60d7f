package logger

import (
	"context"
	"io"
	"log/slog"
)

type slogLogger struct {
	l   *slog.Logger
	ctx context.Context
}

func newSlogLogger(w io.Writer, text, addSource bool) *slogLogger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: addSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return redactSensitive(a)
		},
	}
	var h slog.Handler = slog.NewJSONHandler(w, opts)
	if text {
		h = slog.NewTextHandler(w, opts)
	}
	return &slogLogger{l: slog.New(h), ctx: context.Background()}
}

func (s *slogLogger) Debug(msg string, args ...any) { s.l.DebugContext(s.ctx, msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.InfoContext(s.ctx, msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.WarnContext(s.ctx, msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.ErrorContext(s.ctx, msg, args...) }

func (s *slogLogger) With(args ...any) Logger {
	return &slogLogger{l: s.l.With(args...), ctx: s.ctx}
}

// WithContext binds ctx and attaches the request, document and
// connection ids it carries.
func (s *slogLogger) WithContext(ctx context.Context) Logger {
	next := s.l
	if args := contextArgs(ctx); len(args) > 0 {
		next = next.With(args...)
	}
	return &slogLogger{l: next, ctx: ctx}
}
