package confloader

import (
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"testing"
	"time"
)

type sample struct {
	Server struct {
		HTTP struct {
			Addr    string   `koanf:"addr"`
			Origins []string `koanf:"origins"`
		} `koanf:"http"`
	} `koanf:"server"`
	Reaper struct {
		Idle     time.Duration `koanf:"idle"`
		Interval time.Duration `koanf:"interval"`
	} `koanf:"reaper"`
	Tickets bool `koanf:"tickets"`
}

func defaults() *sample {
	s := &sample{}
	s.Server.HTTP.Addr = ":4000"
	s.Reaper.Idle = time.Hour
	s.Reaper.Interval = time.Minute
	return s
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docmesh.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoad_NoSources(t *testing.T) {
	got := defaults()
	if err := NewLoader().Load(got); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, defaults()) {
		t.Errorf("Load() changed defaults: %+v", got)
	}
}

func TestLoad_Precedence(t *testing.T) {
	path := writeFile(t, `
server:
  http:
    addr: ":5000"
    origins: ["https://a.example"]
reaper:
  idle: 30m
`)

	tests := []struct {
		name      string
		env       map[string]string
		overrides map[string]any
		wantAddr  string
		wantIdle  time.Duration
	}{
		{
			name:     "file over defaults",
			wantAddr: ":5000",
			wantIdle: 30 * time.Minute,
		},
		{
			name:     "env over file",
			env:      map[string]string{"DOCMESH_SERVER_HTTP_ADDR": ":6000", "DOCMESH_REAPER_IDLE": "5m"},
			wantAddr: ":6000",
			wantIdle: 5 * time.Minute,
		},
		{
			name:      "overrides over env",
			env:       map[string]string{"DOCMESH_SERVER_HTTP_ADDR": ":6000"},
			overrides: map[string]any{"server.http.addr": ":7000"},
			wantAddr:  ":7000",
			wantIdle:  30 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			got := defaults()
			l := NewLoader(WithConfigFile(path), WithOverrides(tt.overrides))
			if err := l.Load(got); err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got.Server.HTTP.Addr != tt.wantAddr {
				t.Errorf("addr = %q, want %q", got.Server.HTTP.Addr, tt.wantAddr)
			}
			if got.Reaper.Idle != tt.wantIdle {
				t.Errorf("idle = %v, want %v", got.Reaper.Idle, tt.wantIdle)
			}
			if got.Reaper.Interval != time.Minute {
				t.Errorf("interval = %v, want default", got.Reaper.Interval)
			}
			if !slices.Equal(got.Server.HTTP.Origins, []string{"https://a.example"}) {
				t.Errorf("origins = %v", got.Server.HTTP.Origins)
			}
		})
	}
}

func TestLoad_EnvPrefix(t *testing.T) {
	t.Setenv("OTHER_TICKETS", "true")
	t.Setenv("DOCMESH_TICKETS", "false")

	got := defaults()
	if err := NewLoader(WithEnvPrefix("OTHER_")).Load(got); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !got.Tickets {
		t.Error("tickets not read from OTHER_ prefix")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(t.TempDir(), "absent.yaml")},
		{"bad yaml", writeFile(t, "server: [unterminated\n")},
		{"bad duration", writeFile(t, "reaper:\n  idle: soon\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewLoader(WithConfigFile(tt.path)).Load(defaults()); err == nil {
				t.Error("Load() error = nil")
			}
		})
	}
}

func TestLoad_Reread(t *testing.T) {
	path := writeFile(t, "reaper:\n  idle: 10m\n")
	l := NewLoader(WithConfigFile(path))

	first := defaults()
	if err := l.Load(first); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !slices.Contains(l.Keys(), "reaper.idle") {
		t.Errorf("Keys() = %v, want reaper.idle", l.Keys())
	}

	if err := os.WriteFile(path, []byte("reaper:\n  interval: 5s\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	second := defaults()
	if err := l.Load(second); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if second.Reaper.Idle != time.Hour {
		t.Errorf("idle = %v, removed key should fall back to default", second.Reaper.Idle)
	}
	if second.Reaper.Interval != 5*time.Second {
		t.Errorf("interval = %v, want 5s", second.Reaper.Interval)
	}
	if slices.Contains(l.Keys(), "reaper.idle") {
		t.Errorf("Keys() = %v, still lists removed key", l.Keys())
	}
}

func TestFilePath(t *testing.T) {
	if got := NewLoader().FilePath(); got != "" {
		t.Errorf("FilePath() = %q, want empty", got)
	}
	if got := NewLoader(WithConfigFile("/etc/docmesh.yaml")).FilePath(); got != "/etc/docmesh.yaml" {
		t.Errorf("FilePath() = %q", got)
	}
}
