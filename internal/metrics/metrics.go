// Package metrics exposes Prometheus metrics for the HTTP API and the
// storage layer. Metrics live in their own registry rather than the global
// default, so tests can build as many collectors as they like.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "students_api"

// Collector implements storage.FallbackObserver and the HTTP middleware
// counters.
type Collector struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	readFallbacks *prometheus.CounterVec
	backendUp     *prometheus.GaugeVec

	registry *prometheus.Registry
}

// New creates a Collector with its own registry, including the standard
// Go runtime and process collectors.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
	}

	c.requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	c.duration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	c.readFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_read_fallbacks_total",
			Help:      "Reads answered from sample data after a backend error",
		},
		[]string{"operation"},
	)

	c.backendUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "storage_backend_connected",
			Help:      "1 if the named backend was connected at startup",
		},
		[]string{"backend"},
	)

	c.registry.MustRegister(
		c.requests,
		c.duration,
		c.readFallbacks,
		c.backendUp,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// ObserveRequest records one finished HTTP request.
func (c *Collector) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveReadFallback counts a read served from sample data.
func (c *Collector) ObserveReadFallback(operation string) {
	c.readFallbacks.WithLabelValues(operation).Inc()
}

// SetBackend records which backend the process is running on.
func (c *Collector) SetBackend(backend string, connected bool) {
	v := 0.0
	if connected {
		v = 1
	}
	c.backendUp.WithLabelValues(backend).Set(v)
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
