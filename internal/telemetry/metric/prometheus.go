package metric

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docmesh"

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	DocumentsCreated prometheus.Counter
	DocumentsDeleted *prometheus.CounterVec
	JoinAttempts     *prometheus.CounterVec

	ConnectionsOpened prometheus.Counter
	FramesReceived    *prometheus.CounterVec
	FramesDropped     *prometheus.CounterVec
	FramesBroadcast   *prometheus.CounterVec
	ConnectionsKicked prometheus.Counter

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	sourceOnce sync.Once
}

// NewRegistry creates a registry with Go runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
		DocumentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_created_total",
			Help:      "Documents created.",
		}),
		DocumentsDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_deleted_total",
			Help:      "Document sessions torn down, by reason.",
		}, []string{"reason"}),
		JoinAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "join_attempts_total",
			Help:      "Access gate decisions, by result.",
		}, []string{"result"}),
		ConnectionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_opened_total",
			Help:      "Synchronizing connections accepted.",
		}),
		FramesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_received_total",
			Help:      "Inbound frames decoded, by channel.",
		}, []string{"channel"}),
		FramesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_dropped_total",
			Help:      "Inbound frames discarded, by reason.",
		}, []string{"reason"}),
		FramesBroadcast: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_broadcast_total",
			Help:      "Outbound frames queued to peers, by channel.",
		}, []string{"channel"}),
		ConnectionsKicked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_kicked_total",
			Help:      "Connections closed because their send queue was full.",
		}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method and status.",
		}, []string{"method", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	reg.MustRegister(
		r.DocumentsCreated,
		r.DocumentsDeleted,
		r.JoinAttempts,
		r.ConnectionsOpened,
		r.FramesReceived,
		r.FramesDropped,
		r.FramesBroadcast,
		r.ConnectionsKicked,
		r.RequestsTotal,
		r.RequestDuration,
	)
	return r
}

var (
	globalOnce     sync.Once
	globalRegistry *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// Handler returns the /metrics handler of the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// Handler returns an HTTP handler exposing r.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// SetSource registers a collector reading live gauges from src.
// Only the first call has an effect.
func (r *Registry) SetSource(src StatsSource) {
	if r == nil || src == nil {
		return
	}
	r.sourceOnce.Do(func() {
		r.registry.MustRegister(NewCollector(src))
	})
}

// IncDocumentCreated counts a created document.
func (r *Registry) IncDocumentCreated() {
	if r == nil {
		return
	}
	r.DocumentsCreated.Inc()
}

// RecordDocumentDeleted counts a torn-down session (explicit, idle, shutdown).
func (r *Registry) RecordDocumentDeleted(reason string) {
	if r == nil {
		return
	}
	r.DocumentsDeleted.WithLabelValues(reason).Inc()
}

// RecordJoin counts an access gate decision (granted, denied, not_found,
// canceled).
func (r *Registry) RecordJoin(result string) {
	if r == nil {
		return
	}
	r.JoinAttempts.WithLabelValues(result).Inc()
}

// IncConnectionOpened counts an accepted connection.
func (r *Registry) IncConnectionOpened() {
	if r == nil {
		return
	}
	r.ConnectionsOpened.Inc()
}

// RecordFrame counts an inbound frame on channel.
func (r *Registry) RecordFrame(channel string) {
	if r == nil {
		return
	}
	r.FramesReceived.WithLabelValues(channel).Inc()
}

// RecordFrameDropped counts a discarded inbound frame.
func (r *Registry) RecordFrameDropped(reason string) {
	if r == nil {
		return
	}
	r.FramesDropped.WithLabelValues(reason).Inc()
}

// AddBroadcast counts n frames queued to peers on channel.
func (r *Registry) AddBroadcast(channel string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.FramesBroadcast.WithLabelValues(channel).Add(float64(n))
}

// IncConnectionKicked counts a slow consumer disconnect.
func (r *Registry) IncConnectionKicked() {
	if r == nil {
		return
	}
	r.ConnectionsKicked.Inc()
}

// RecordRequest counts an HTTP request.
func (r *Registry) RecordRequest(method string, status int) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// ObserveRequestDuration records HTTP request latency in seconds.
func (r *Registry) ObserveRequestDuration(method string, seconds float64) {
	if r == nil {
		return
	}
	r.RequestDuration.WithLabelValues(method).Observe(seconds)
}
