package metric

import "github.com/prometheus/client_golang/prometheus"

// StatsSource reports live counts at scrape time.
type StatsSource interface {
	DocumentCount() int
	ConnectionCount() int
}

// Collector exposes StatsSource values as gauges. Reading them at scrape
// time keeps the gauges exact without inc/dec bookkeeping on every path.
type Collector struct {
	source      StatsSource
	documents   *prometheus.Desc
	connections *prometheus.Desc
}

// NewCollector creates a collector over src.
func NewCollector(src StatsSource) *Collector {
	return &Collector{
		source: src,
		documents: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "documents_active"),
			"Live document sessions.", nil, nil),
		connections: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "connections_active"),
			"Open synchronizing connections.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.documents
	ch <- c.connections
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.documents, prometheus.GaugeValue, float64(c.source.DocumentCount()))
	ch <- prometheus.MustNewConstMetric(c.connections, prometheus.GaugeValue, float64(c.source.ConnectionCount()))
}
