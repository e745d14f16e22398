// Package handlers contains the HTTP boundary of the redirect router: the
// dispatcher that classifies a request, routes it through the rule engine,
// and writes either the redirect or the configured fallback response.
package handlers

import (
	"net/http"
	"time"

	"redirect-router/internal/classifier"
	"redirect-router/internal/common/logging"
	"redirect-router/internal/metrics"
	"redirect-router/internal/routing"
)

// countryHeaders lists edge-supplied geography headers in precedence order.
// The first non-empty header wins.
var countryHeaders = []string{
	"CF-IPCountry",
	"CloudFront-Viewer-Country",
	"X-Geo-Country",
	"X-Country-Code",
}

// Dispatcher maps one HTTP request to one response: classification, a single
// rule lookup, and a single URL build. It holds only immutable collaborators
// and is safe for concurrent use.
type Dispatcher struct {
	engine     *routing.Engine
	classifier *classifier.Classifier
	metrics    *metrics.Metrics
	log        logging.Logger
}

// NewDispatcher creates a dispatcher over an immutable rule engine.
func NewDispatcher(engine *routing.Engine, cls *classifier.Classifier, m *metrics.Metrics, log logging.Logger) *Dispatcher {
	if log == nil {
		log = logging.GetGlobalLogger()
	}
	return &Dispatcher{
		engine:     engine,
		classifier: cls,
		metrics:    m,
		log:        log,
	}
}

// HandleRequest dispatches a single request. Every inbound method is treated
// identically; method filtering is a caller-side concern.
func (d *Dispatcher) HandleRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		d.metrics.RequestDuration.Observe(time.Since(start).Seconds())
	}()

	result := d.classifier.Classify(r.UserAgent())
	ctx := routing.Context(r.URL.Path, countryFromRequest(r), result)
	decision := d.engine.Route(ctx, r.URL)

	if decision.Redirect {
		d.metrics.RequestsTotal.WithLabelValues(metrics.OutcomeRedirect).Inc()
		if decision.RuleID != "" {
			d.metrics.RuleHitsTotal.WithLabelValues(decision.RuleID).Inc()
		}
		d.log.Debug("redirecting request",
			logging.String("rule", decision.RuleID),
			logging.String("path", ctx.Path),
			logging.String("country", ctx.Country),
			logging.String("device", string(ctx.Device)),
			logging.Bool("bot", ctx.Bot),
			logging.String("location", decision.Location),
		)
		w.Header().Set("Location", decision.Location)
		w.WriteHeader(decision.Status)
		return
	}

	d.metrics.RequestsTotal.WithLabelValues(metrics.OutcomeFallback).Inc()
	for key, value := range decision.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(decision.Status)
	if decision.Body != "" {
		_, _ = w.Write([]byte(decision.Body))
	}
}

// HealthCheck reports process liveness.
func (d *Dispatcher) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// countryFromRequest extracts the requester country from edge metadata
// headers. Returns "" when no edge layer supplied one; normalization happens
// in the classifier.
func countryFromRequest(r *http.Request) string {
	for _, header := range countryHeaders {
		if value := r.Header.Get(header); value != "" {
			return value
		}
	}
	return ""
}
