// Package metrics collects and exposes Prometheus metrics for the server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records request and authentication outcomes.
type Collector struct {
	requests     *prometheus.CounterVec
	authOutcomes *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubhouse_http_requests_total",
			Help: "HTTP requests by route class and status code.",
		}, []string{"class", "status"}),
		authOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clubhouse_auth_outcomes_total",
			Help: "Authentication outcomes by principal class and result.",
		}, []string{"principal", "outcome"}),
	}
	reg.MustRegister(c.requests, c.authOutcomes)
	return c
}

// RecordRequest counts a completed request.
func (c *Collector) RecordRequest(class, status string) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(class, status).Inc()
}

// RecordAuth counts an authentication outcome ("ok", "unauthenticated",
// "forbidden", "error") for a principal class ("staff", "parent", "member").
func (c *Collector) RecordAuth(principal, outcome string) {
	if c == nil {
		return
	}
	c.authOutcomes.WithLabelValues(principal, outcome).Inc()
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
