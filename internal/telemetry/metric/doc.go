// Package metric provides Prometheus metrics for DocMesh.
//
//   - prometheus.go: registry of counters and histograms plus the /metrics handler
//   - collector.go: a pull collector reading live document and connection counts
//
// Metrics are exposed at /metrics in Prometheus text format. All
// recording methods accept a nil *Registry and do nothing.
package metric
