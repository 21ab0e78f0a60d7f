package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger is the zap backend. It follows the same global level as the
// slog backend so SetLevel applies to both.
type zapLogger struct {
	sugar *zap.SugaredLogger
	ctx   context.Context
}

func newZapLogger(cfg Config, output io.Writer) Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "source",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "text", "console":
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	enabler := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= toZapLevel(level.Level())
	})

	opts := []zap.Option{zap.AddCallerSkip(1)}
	if cfg.AddSource {
		opts = append(opts, zap.AddCaller())
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(output), enabler)
	return &zapLogger{
		sugar: zap.New(core, opts...).Sugar(),
		ctx:   context.Background(),
	}
}

func toZapLevel(l slog.Level) zapcore.Level {
	switch {
	case l <= slog.LevelDebug:
		return zapcore.DebugLevel
	case l <= slog.LevelInfo:
		return zapcore.InfoLevel
	case l <= slog.LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

func (l *zapLogger) Debug(msg string, args ...any) {
	l.sugar.Debugw(msg, redactArgs(args)...)
}

func (l *zapLogger) Info(msg string, args ...any) {
	l.sugar.Infow(msg, redactArgs(args)...)
}

func (l *zapLogger) Warn(msg string, args ...any) {
	l.sugar.Warnw(msg, redactArgs(args)...)
}

func (l *zapLogger) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, redactArgs(args)...)
}

func (l *zapLogger) With(args ...any) Logger {
	return &zapLogger{
		sugar: l.sugar.With(redactArgs(args)...),
		ctx:   l.ctx,
	}
}

func (l *zapLogger) WithContext(ctx context.Context) Logger {
	sugar := l.sugar
	if args := contextArgs(ctx); len(args) > 0 {
		sugar = sugar.With(args...)
	}
	return &zapLogger{sugar: sugar, ctx: ctx}
}

// redactArgs applies the slog redaction rules to alternating key/value
// pairs so both backends mask the same attributes.
func redactArgs(args []any) []any {
	out := make([]any, len(args))
	copy(out, args)
	for i := 0; i+1 < len(out); i += 2 {
		key, ok := out[i].(string)
		if !ok {
			continue
		}
		if s, ok := out[i+1].(string); ok {
			out[i+1] = redactSensitive(slog.String(key, s)).Value.String()
		}
	}
	return out
}
