// internal/metrics/collector.go
// Package metrics exposes Prometheus counters for function dispatch.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests and multiple servers do not
// collide on the global one.
type Collector struct {
	registry *prometheus.Registry
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New registers the dispatch metrics plus the Go runtime collectors.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fncall",
			Name:      "function_calls_total",
			Help:      "Function dispatch requests by function name and HTTP status.",
		}, []string{"function", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fncall",
			Name:      "function_duration_seconds",
			Help:      "Time spent serving function dispatch requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"function"}),
	}
	c.registry.MustRegister(
		c.calls,
		c.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Observe records one dispatch. function should already be reduced to a
// bounded set of label values.
func (c *Collector) Observe(function string, status int, elapsed time.Duration) {
	c.calls.WithLabelValues(function, strconv.Itoa(status)).Inc()
	c.duration.WithLabelValues(function).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
