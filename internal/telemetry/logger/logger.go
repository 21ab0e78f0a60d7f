package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the logging interface used across DocMesh. Arguments are
// alternating keys and values, as in log/slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
}

// Config selects a backend and a destination.
type Config struct {
	Level   string // debug, info, warn or error
	Format  string // json, or text (alias console)
	Backend string // slog or zap

	// Output receives entries unless File is set. Defaults to stderr.
	Output io.Writer

	// File enables a size-rotated log file.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	AddSource bool
}

// DefaultConfig is JSON at info level through slog on stderr.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "json",
		Backend:    "slog",
		Output:     os.Stderr,
		MaxSizeMB:  100,
		MaxBackups: 3,
		MaxAgeDays: 7,
	}
}

func (cfg Config) sink() io.Writer {
	switch {
	case cfg.File != "":
		return &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			LocalTime:  true,
		}
	case cfg.Output != nil:
		return cfg.Output
	default:
		return os.Stderr
	}
}

func (cfg Config) text() (bool, error) {
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		return false, nil
	case "text", "console":
		return true, nil
	default:
		return false, fmt.Errorf("logger: unknown format %q", cfg.Format)
	}
}

// level is shared by every logger in the process so that SetLevel takes
// effect everywhere at once.
var level = new(slog.LevelVar)

// New builds a logger and sets the process-wide level to cfg.Level.
func New(cfg Config) (Logger, error) {
	text, err := cfg.text()
	if err != nil {
		return nil, err
	}
	level.Set(parseLevel(cfg.Level))

	switch strings.ToLower(cfg.Backend) {
	case "", "slog":
		return newSlogLogger(cfg.sink(), text, cfg.AddSource), nil
	case "zap":
		return newZapLogger(cfg, cfg.sink()), nil
	default:
		return nil, fmt.Errorf("logger: unknown backend %q", cfg.Backend)
	}
}

// SetLevel changes the level of every logger. Unknown names mean info.
func SetLevel(name string) {
	level.Set(parseLevel(name))
}

// GetLevel returns the current level name.
func GetLevel() string {
	return strings.ToLower(level.Level().String())
}

func parseLevel(name string) slog.Level {
	if strings.EqualFold(name, "warning") {
		return slog.LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return l
}

type box struct{ Logger }

var std atomic.Pointer[box]

func init() {
	l, _ := New(DefaultConfig())
	std.Store(&box{l})
}

// SetDefault replaces the process logger. nil is ignored.
func SetDefault(l Logger) {
	if l != nil {
		std.Store(&box{l})
	}
}

// Default returns the process logger.
func Default() Logger {
	return std.Load().Logger
}

// Nop returns a logger that writes nowhere.
func Nop() Logger {
	return &slogLogger{l: slog.New(slog.DiscardHandler), ctx: context.Background()}
}
