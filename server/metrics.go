package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
)

// Query outcomes as reported by chatbot_queries_total.
const (
	OutcomeSynthesized = "synthesized"
	OutcomeFallback    = "fallback"
	OutcomeNoInfo      = "no_info"
)

// Metrics holds the collectors of the HTTP surface on their own registry.
type Metrics struct {
	registry *prometheus.Registry
	queries  *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics registers the query collectors and the Go runtime collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatbot_queries_total",
			Help: "Answered questions by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chatbot_query_duration_seconds",
			Help:    "Time spent resolving a question.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(
		m.queries,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	for _, outcome := range []string{OutcomeSynthesized, OutcomeFallback, OutcomeNoInfo} {
		m.queries.WithLabelValues(outcome)
	}
	return m
}

// Observe records one answered question.
func (m *Metrics) Observe(result model.QueryResult, took time.Duration) {
	m.queries.WithLabelValues(Outcome(result)).Inc()
	m.duration.Observe(took.Seconds())
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Outcome classifies a result for the queries counter.
func Outcome(result model.QueryResult) string {
	switch {
	case !result.HasSource():
		return OutcomeNoInfo
	case result.UsedFallback:
		return OutcomeFallback
	default:
		return OutcomeSynthesized
	}
}
