// Package metrics owns the Prometheus registry served on /metrics and the
// collectors the rest of the service reports into.
//
//	r.Use(metrics.Middleware())
//	r.Get("/metrics", "metrics", metrics.Handler())
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cafe"

// Registry is what /metrics exposes. Packages that define their own
// collectors register them through Factory so they land here too.
var Registry = prometheus.NewRegistry()

// Factory creates collectors already registered on Registry.
var Factory = promauto.With(Registry)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// NewCounter registers a counter vector under namespace_name.
func NewCounter(ns, name, help string, labels []string) *prometheus.CounterVec {
	return Factory.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: name, Help: help}, labels)
}

func NewHistogram(ns, name, help string, buckets []float64, labels []string) *prometheus.HistogramVec {
	return Factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns, Name: name, Help: help, Buckets: buckets,
	}, labels)
}

func NewGauge(ns, name, help string, labels []string) *prometheus.GaugeVec {
	return Factory.NewGaugeVec(prometheus.GaugeOpts{Namespace: ns, Name: name, Help: help}, labels)
}

// Handler serves Registry in text or OpenMetrics format.
func Handler() http.HandlerFunc {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		Registry:          Registry,
	}).ServeHTTP
}
