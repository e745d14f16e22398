// Package metrics exposes Prometheus instrumentation for the redirect
// router: request counts by outcome, per-rule hits, and request duration.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all router Prometheus metrics.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RuleHitsTotal   *prometheus.CounterVec
	RequestDuration prometheus.Histogram
}

// Outcome label values for RequestsTotal.
const (
	OutcomeRedirect = "redirect"
	OutcomeFallback = "fallback"
)

// New creates and registers all router metrics.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "redirect_router_requests_total",
				Help: "Total number of dispatched requests by outcome.",
			},
			[]string{"outcome"},
		),
		RuleHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "redirect_router_rule_hits_total",
				Help: "Total number of matches per routing rule.",
			},
			[]string{"rule"},
		),
		RequestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "redirect_router_request_duration_seconds",
				Help:    "Dispatch duration in seconds.",
				Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025},
			},
		),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RuleHitsTotal,
		m.RequestDuration,
	)

	return m
}

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
