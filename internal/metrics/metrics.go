// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "bank"

// Registry bundles the collectors of one process.
type Registry struct {
	reg *prometheus.Registry

	RateRefreshes      *prometheus.CounterVec
	RateRefreshLastOK  prometheus.Gauge
	BootstrapInserts   *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
	HTTPRequestSeconds *prometheus.HistogramVec
}

// New creates and registers all collectors on a fresh registry.
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		RateRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_refreshes_total",
			Help:      "Exchange-rate refresh runs by result.",
		}, []string{"result"}),
		RateRefreshLastOK: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rate_refresh_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful exchange-rate refresh.",
		}),
		BootstrapInserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bootstrap_inserts_total",
			Help:      "Rows written by the bootstrap sequence by entity, rolled-back writes included.",
		}, []string{"entity"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		HTTPRequestSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	r.reg.MustRegister(
		r.RateRefreshes,
		r.RateRefreshLastOK,
		r.BootstrapInserts,
		r.HTTPRequests,
		r.HTTPRequestSeconds,
		collectors.NewGoCollector(),
	)
	return r
}

// Gatherer exposes the registry to promhttp.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
