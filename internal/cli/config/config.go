package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultServer is the address of a locally started docmesh-server.
const DefaultServer = "http://localhost:4000"

// CLIConfig is the persisted configuration of docmesh-cli.
type CLIConfig struct {
	DefaultServer string `yaml:"default_server"`
	DefaultOutput string `yaml:"default_output"` // table, json, yaml
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		DefaultServer: DefaultServer,
		DefaultOutput: "table",
	}
}

// Keys lists the settable configuration keys.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var setters = map[string]func(*CLIConfig, string) error{
	"default_server": func(c *CLIConfig, v string) error {
		if v == "" {
			return errors.New("default_server must not be empty")
		}
		c.DefaultServer = v
		return nil
	},
	"default_output": func(c *CLIConfig, v string) error {
		switch v {
		case "table", "json", "yaml":
			c.DefaultOutput = v
			return nil
		}
		return fmt.Errorf("default_output must be table, json or yaml, got %q", v)
	},
}

// Set assigns value to key.
func (c *CLIConfig) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown key %q (known: %v)", key, Keys())
	}
	return set(c, value)
}

// DefaultConfigPath returns ~/.docmesh/cli.yaml.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".docmesh", "cli.yaml")
}

// Load reads the configuration at path. A missing file yields Default.
// Keys absent from the file keep their default values.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path with owner-only permissions, creating the
// directory if needed.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
