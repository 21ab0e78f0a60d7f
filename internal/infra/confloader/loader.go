package confloader

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the prefix of environment overrides.
const DefaultEnvPrefix = "DOCMESH_"

// Loader merges a YAML file, environment variables and explicit
// overrides into a koanf-tagged struct.
type Loader struct {
	envPrefix string
	filePath  string
	overrides []map[string]any

	mu   sync.Mutex
	keys []string
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvPrefix changes the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) { l.envPrefix = prefix }
}

// WithConfigFile reads path on every Load.
func WithConfigFile(path string) Option {
	return func(l *Loader) { l.filePath = path }
}

// WithOverrides layers values above the file and the environment. Keys
// are dotted paths such as "server.http.addr".
func WithOverrides(values map[string]any) Option {
	return func(l *Loader) {
		if len(values) > 0 {
			l.overrides = append(l.overrides, values)
		}
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FilePath returns the configuration file, or "" if none was given.
func (l *Loader) FilePath() string {
	return l.filePath
}

// Load reads every source from scratch and unmarshals the result into
// target. Fields of target that no source mentions keep their value, so
// callers pass a struct pre-filled with defaults. Precedence, lowest
// first: target, file, environment, overrides.
//
// Load may be called again after the file changes. A failed Load leaves
// target partially written; callers decode into a fresh value.
func (l *Loader) Load(target any) error {
	k := koanf.New(".")

	if l.filePath != "" {
		if err := k.Load(file.Provider(l.filePath), yaml.Parser()); err != nil {
			return fmt.Errorf("load config file %s: %w", l.filePath, err)
		}
	}
	if err := k.Load(env.Provider(l.envPrefix, ".", l.envKey), nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	for _, m := range l.overrides {
		if err := k.Load(staticProvider(maps.Unflatten(m, ".")), nil); err != nil {
			return fmt.Errorf("load overrides: %w", err)
		}
	}

	if err := k.Unmarshal("", target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	l.mu.Lock()
	l.keys = k.Keys()
	l.mu.Unlock()
	return nil
}

// Keys returns the keys set by the last successful Load.
func (l *Loader) Keys() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.keys...)
}

// envKey maps DOCMESH_SERVER_HTTP_ADDR to server.http.addr. Config keys
// therefore never contain underscores.
func (l *Loader) envKey(name string) string {
	name = strings.TrimPrefix(name, l.envPrefix)
	return strings.ReplaceAll(strings.ToLower(name), "_", ".")
}

// staticProvider serves an in-memory map to koanf.
type staticProvider map[string]any

func (p staticProvider) Read() (map[string]any, error) { return p, nil }

func (p staticProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("confloader: static provider has no byte form")
}
