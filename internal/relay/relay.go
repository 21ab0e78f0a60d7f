package relay

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yndnr/docmesh-go/internal/core/domain"
	"github.com/yndnr/docmesh-go/internal/core/service"
	"github.com/yndnr/docmesh-go/internal/telemetry/logger"
	"github.com/yndnr/docmesh-go/internal/telemetry/metric"
)

// Config tunes connections.
type Config struct {
	// QueueSize is the number of outbound frames buffered per connection.
	QueueSize int
	// Rate limits inbound frames per second per connection; 0 disables.
	Rate  float64
	Burst int
	// MaxFrame is the largest accepted inbound message in bytes.
	MaxFrame int64
	// PingInterval is the keepalive period; the pong deadline is twice this.
	PingInterval time.Duration
	// Origins lists allowed browser origins; empty or "*" allows any.
	Origins []string
}

// DefaultConfig returns the default relay configuration.
func DefaultConfig() Config {
	return Config{
		QueueSize:    256,
		Burst:        64,
		MaxFrame:     8 << 20,
		PingInterval: 30 * time.Second,
		Origins:      []string{"*"},
	}
}

// Admitter resolves the session a connection may attach to.
type Admitter interface {
	Admit(id, ticket string) (*service.Session, error)
}

// RejectFunc writes the HTTP response for a refused upgrade.
type RejectFunc func(w http.ResponseWriter, r *http.Request, err error)

// Relay upgrades HTTP requests on /ws/{id} to synchronizing connections.
type Relay struct {
	admit    Admitter
	cfg      Config
	upgrader websocket.Upgrader
	reject   RejectFunc
	logger   logger.Logger
	metrics  *metric.Registry
	wg       sync.WaitGroup
}

// Option configures a Relay.
type Option func(*Relay)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Relay) { r.logger = l }
}

// WithMetrics sets the metrics registry.
func WithMetrics(m *metric.Registry) Option {
	return func(r *Relay) { r.metrics = m }
}

// WithReject sets how refused upgrades are answered.
func WithReject(fn RejectFunc) Option {
	return func(r *Relay) { r.reject = fn }
}

// New creates a Relay.
func New(admit Admitter, cfg Config, opts ...Option) *Relay {
	def := DefaultConfig()
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.MaxFrame <= 0 {
		cfg.MaxFrame = def.MaxFrame
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = def.PingInterval
	}
	if cfg.Rate > 0 && cfg.Burst < 1 {
		cfg.Burst = 1
	}

	r := &Relay{
		admit:  admit,
		cfg:    cfg,
		logger: logger.Default(),
		reject: func(w http.ResponseWriter, _ *http.Request, err error) {
			status := http.StatusUnauthorized
			if errors.Is(err, domain.ErrDocumentNotFound) {
				status = http.StatusNotFound
			}
			http.Error(w, err.Error(), status)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(cfg.Origins),
	}
	return r
}

// ServeHTTP implements http.Handler. The document id is read from the
// {id} path value. Unknown documents and missing tickets are refused
// before the upgrade.
func (rl *Relay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := domain.ValidateDocumentID(id); err != nil {
		rl.reject(w, r, err)
		return
	}
	session, err := rl.admit.Admit(id, r.URL.Query().Get("ticket"))
	if err != nil {
		rl.reject(w, r, err)
		return
	}

	connID, err := domain.GenerateConnectionID()
	if err != nil {
		rl.reject(w, r, err)
		return
	}

	ws, err := rl.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the response.
		rl.logger.WithContext(r.Context()).Debug("websocket upgrade failed", "document_id", id, "error", err)
		return
	}

	// The request context ends with the handshake; the connection logs
	// under a detached one carrying the same ids.
	logCtx := logger.WithRequestID(context.Background(), logger.RequestIDFromContext(r.Context()))
	logCtx = logger.WithConnectionID(logger.WithDocumentID(logCtx, id), connID)

	c := newConn(connID, ws, session, rl.cfg, rl.logger.WithContext(logCtx), rl.metrics)
	if err := session.Attach(c); err != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "document closed")
		ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		ws.Close()
		return
	}
	rl.metrics.IncConnectionOpened()
	c.logger.Debug("connection opened")

	rl.wg.Add(2)
	go func() {
		defer rl.wg.Done()
		c.writePump()
	}()
	go func() {
		defer rl.wg.Done()
		c.readPump(rl.cfg.MaxFrame)
	}()
}

// Wait blocks until every connection's goroutines have exited.
func (rl *Relay) Wait() {
	rl.wg.Wait()
}

func originChecker(origins []string) func(*http.Request) bool {
	allowAll := len(origins) == 0
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		if allowAll {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := allowed[origin]; ok {
			return true
		}
		// Same-origin requests are always accepted.
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}
