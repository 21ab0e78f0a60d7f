package command

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"
)

// mockServer is a test HTTP server with per-pattern handlers.
type mockServer struct {
	*httptest.Server
	mux *http.ServeMux
}

func newMockServer(t *testing.T) *mockServer {
	t.Helper()
	m := &mockServer{mux: http.NewServeMux()}
	m.Server = httptest.NewServer(m.mux)
	t.Cleanup(m.Close)
	return m
}

func (m *mockServer) handle(pattern string, handler http.HandlerFunc) {
	m.mux.HandleFunc(pattern, handler)
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResponse(w http.ResponseWriter, status int, code, message string) {
	jsonResponse(w, status, map[string]string{"code": code, "error": message})
}

// runCLI runs the application with an isolated config file and returns
// everything written to stdout.
func runCLI(t *testing.T, server string, args ...string) (string, error) {
	t.Helper()
	return runCLIWithConfig(t, filepath.Join(t.TempDir(), "cli.yaml"), server, args...)
}

func runCLIWithConfig(t *testing.T, cfgPath, server string, args ...string) (string, error) {
	t.Helper()
	app := App()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = io.Discard
	app.ExitErrHandler = func(*cli.Context, error) {}

	full := []string{"docmesh-cli", "--config", cfgPath}
	if server != "" {
		full = append(full, "--server", server)
	}
	full = append(full, args...)
	err := app.Run(full)
	return out.String(), err
}
