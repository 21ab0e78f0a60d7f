package httpserver

import (
	"net"
	"net/http"
	"strings"

	"github.com/felixge/httpsnoop"

	"github.com/yndnr/docmesh-go/internal/core/domain"
	"github.com/yndnr/docmesh-go/internal/server/httpserver/handler"
	"github.com/yndnr/docmesh-go/internal/telemetry/logger"
	"github.com/yndnr/docmesh-go/internal/telemetry/metric"
	"github.com/yndnr/docmesh-go/pkg/token"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain wraps h so that middlewares[0] sees the request first.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// RequestID propagates the caller's X-Request-ID, or mints one, and puts
// it on the request context for logging.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(HeaderRequestID)
			if id == "" {
				id = newRequestID()
			}
			w.Header().Set(HeaderRequestID, id)
			next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
		})
	}
}

func newRequestID() string {
	id, err := token.New("req-", 12)
	if err != nil {
		return "req-unknown"
	}
	return id
}

// Audit logs each completed request and records request metrics. m may
// be nil. The wrapped writer keeps http.Hijacker, so a WebSocket upgrade
// is logged once its handshake completes.
func Audit(l logger.Logger, m *metric.Registry) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := httpsnoop.CaptureMetrics(next, w, r)

			if m != nil {
				m.RecordRequest(r.Method, res.Code)
				m.ObserveRequestDuration(r.Method, res.Duration.Seconds())
			}

			log := l.WithContext(r.Context())
			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", res.Code,
				"bytes", res.Written,
				"duration_ms", res.Duration.Milliseconds(),
				"client_ip", clientIP(r),
			}
			switch {
			case res.Code >= http.StatusInternalServerError:
				log.Error("request failed", args...)
			case res.Code >= http.StatusBadRequest:
				log.Warn("request rejected", args...)
			default:
				log.Debug("request served", args...)
			}
		})
	}
}

// Recover turns a handler panic into a 500 response. http.ErrAbortHandler
// is re-raised so net/http can abort the connection quietly.
func Recover(l logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}
				l.WithContext(r.Context()).Error("handler panic", "panic", v, "path", r.URL.Path)
				handler.WriteError(w, r, domain.ErrInternalServer)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// CORS answers preflight requests and echoes allowed origins. An empty
// list or a "*" entry allows any origin.
func CORS(allowedOrigins []string) Middleware {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || allowed[origin]) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, "+HeaderRequestID)
				h.Set("Access-Control-Max-Age", "86400")
				h.Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then
// the peer address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
