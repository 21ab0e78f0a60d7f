package httpserver

import (
	"net/http"

	"github.com/yndnr/docmesh-go/internal/core/service"
	"github.com/yndnr/docmesh-go/internal/server/httpserver/handler"
	"github.com/yndnr/docmesh-go/internal/telemetry/logger"
	"github.com/yndnr/docmesh-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Documents handles the REST document operations.
	Documents *service.DocumentService

	// Stats feeds the health endpoints.
	Stats handler.Stats

	// Relay serves GET /ws/{id}.
	Relay http.Handler

	// Metrics records request metrics and serves /metrics. Nil disables both.
	Metrics *metric.Registry

	Logger logger.Logger

	// CORSAllowedOrigins is the list of allowed CORS origins (empty = allow all).
	CORSAllowedOrigins []string

	// RateLimit is the per-IP request rate in requests/second; 0 disables.
	RateLimit float64
	RateBurst int
}

// Router is the top-level HTTP handler.
type Router struct {
	mux     *http.ServeMux
	handler *handler.Handler
}

// ServeHTTP implements http.Handler.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mux.ServeHTTP(w, r)
}

// SetDraining flips the readiness endpoint to 503.
func (rt *Router) SetDraining(v bool) {
	rt.handler.SetDraining(v)
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) *Router {
	l := cfg.Logger
	if l == nil {
		l = logger.Default()
	}
	h := handler.New(cfg.Documents, cfg.Stats, l)

	// Order: Recover -> RequestID -> Audit -> CORS -> RateLimit -> Handler
	base := []Middleware{
		Recover(l),
		RequestID(),
		Audit(l, cfg.Metrics),
	}
	api := append(append([]Middleware{}, base...), CORS(cfg.CORSAllowedOrigins))
	if cfg.RateLimit > 0 {
		api = append(api, RateLimit(NewRateLimiter(cfg.RateLimit, cfg.RateBurst)))
	}

	mux := http.NewServeMux()

	health := Chain(h, Recover(l), RequestID())
	mux.Handle("GET /health", health)
	mux.Handle("GET /ready", health)

	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", Chain(cfg.Metrics.Handler(), Recover(l)))
	}

	apiHandler := Chain(h, api...)
	for _, p := range handler.APIPrefixes {
		mux.Handle(p+"/documents", apiHandler)
		mux.Handle(p+"/documents/", apiHandler)
	}

	if cfg.Relay != nil {
		// Origins for the upgrade are checked by the relay itself.
		mux.Handle("GET /ws/{id}", Chain(cfg.Relay, base...))
	}

	return &Router{mux: mux, handler: h}
}
