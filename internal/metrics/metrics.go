// Package metrics collects and exposes Prometheus metrics for the dashboard.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records dashboard metrics on a Prometheus registry.
type Collector struct {
	actions      *prometheus.CounterVec
	logins       *prometheus.CounterVec
	cacheEvents  *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "acme_invoice_actions_total",
			Help: "Invoice actions by action and outcome.",
		}, []string{"action", "outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "acme_login_attempts_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "acme_page_cache_events_total",
			Help: "Page cache hits, misses and invalidations.",
		}, []string{"event"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "acme_http_requests_total",
			Help: "HTTP responses by method and status code.",
		}, []string{"method", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "acme_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}

	reg.MustRegister(c.actions, c.logins, c.cacheEvents, c.httpRequests, c.httpLatency)
	return c
}

// RecordAction counts one invoice action. outcome is "success",
// "validation_error" or "persistence_error".
func (c *Collector) RecordAction(action, outcome string) {
	c.actions.WithLabelValues(action, outcome).Inc()
}

// RecordLogin counts one login attempt. result is "success",
// "invalid_credentials", "rate_limited" or "error".
func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

func (c *Collector) RecordCacheHit() {
	c.cacheEvents.WithLabelValues("hit").Inc()
}

func (c *Collector) RecordCacheMiss() {
	c.cacheEvents.WithLabelValues("miss").Inc()
}

func (c *Collector) RecordCacheInvalidation() {
	c.cacheEvents.WithLabelValues("invalidation").Inc()
}

// ObserveRequest records the status and latency of one HTTP request.
func (c *Collector) ObserveRequest(method string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method).Observe(d.Seconds())
}

// Handler returns the Prometheus scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
