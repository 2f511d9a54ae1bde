// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every collector the API records into.
type Metrics struct {
	HTTPRequests       *prometheus.CounterVec   // labels: method, route, status
	HTTPDuration       *prometheus.HistogramVec // labels: method, route
	ProviderFailures   *prometheus.CounterVec   // labels: provider, operation
	QuotePlaceholders  prometheus.Counter
	AnalyticsComputed  *prometheus.CounterVec // labels: kind, outcome
	SessionsPurged     prometheus.Counter
	IngestedBars       *prometheus.CounterVec // labels: source
	SentimentFallbacks prometheus.Counter

	registry *prometheus.Registry
}

// New creates the collectors and registers them on a fresh registry together with
// the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watchlist_http_requests_total",
			Help: "HTTP requests served, by route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "watchlist_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ProviderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watchlist_provider_failures_total",
			Help: "Failed calls to market data and AI providers",
		}, []string{"provider", "operation"}),
		QuotePlaceholders: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "watchlist_quote_placeholders_total",
			Help: "Quotes replaced by placeholders after a failed fetch",
		}),
		AnalyticsComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watchlist_analytics_computed_total",
			Help: "Insight and risk computations",
		}, []string{"kind", "outcome"}),
		SessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "watchlist_sessions_purged_total",
			Help: "Expired sessions removed by the cleanup job",
		}),
		IngestedBars: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watchlist_ingested_bars_total",
			Help: "Daily bars upserted into the series store",
		}, []string{"source"}),
		SentimentFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "watchlist_sentiment_fallbacks_total",
			Help: "Sentiment requests answered by the neutral fallback",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.ProviderFailures,
		m.QuotePlaceholders,
		m.AnalyticsComputed,
		m.SessionsPurged,
		m.IngestedBars,
		m.SentimentFallbacks,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ProviderFailed records a failed upstream call. Safe on a nil receiver so
// components can be built without metrics in tests and CLIs.
func (m *Metrics) ProviderFailed(provider, operation string) {
	if m == nil {
		return
	}
	m.ProviderFailures.WithLabelValues(provider, operation).Inc()
}

// PlaceholderUsed records a quote substituted by a placeholder.
func (m *Metrics) PlaceholderUsed() {
	if m == nil {
		return
	}
	m.QuotePlaceholders.Inc()
}

// Computed records an analytics computation outcome ("ok", "insufficient_data").
func (m *Metrics) Computed(kind, outcome string) {
	if m == nil {
		return
	}
	m.AnalyticsComputed.WithLabelValues(kind, outcome).Inc()
}

// Purged records sessions removed by the cleanup job.
func (m *Metrics) Purged(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.SessionsPurged.Add(float64(n))
}

// Ingested records bars written by an import or live ingest.
func (m *Metrics) Ingested(source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.IngestedBars.WithLabelValues(source).Add(float64(n))
}

// SentimentFellBack records a neutral fallback answer.
func (m *Metrics) SentimentFellBack() {
	if m == nil {
		return
	}
	m.SentimentFallbacks.Inc()
}
