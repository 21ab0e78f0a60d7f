package httpserver

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/yndnr/docmesh-go/internal/telemetry/logger"
)

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	logger     logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithTLS serves HTTPS with cfg. The configuration must supply
// certificates, normally through GetCertificate.
func WithTLS(cfg *tls.Config) Option {
	return func(s *Server) { s.httpServer.TLSConfig = cfg }
}

// WithLogger sets the logger for server errors.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a new HTTP server.
func New(addr string, handler http.Handler, opts ...Option) *Server {
	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		handler: handler,
		logger:  logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.httpServer.RegisterOnShutdown(func() {
		s.logger.Debug("http server shutting down", "addr", addr)
	})
	return s
}

// TLS reports whether the server serves HTTPS.
func (s *Server) TLS() bool {
	return s.httpServer.TLSConfig != nil
}

// ListenAndServe listens on the configured address and serves until
// Shutdown. It returns nil after a graceful shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("http server listening", "addr", ln.Addr().String(), "tls", s.TLS())

	var err error
	if s.TLS() {
		err = s.httpServer.ServeTLS(ln, "", "")
	} else {
		err = s.httpServer.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server. Hijacked WebSocket
// connections are not tracked here; the registry closes them.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
