// Package telemetry exposes Prometheus counters for the recommendation
// pipeline and the /metrics handler to scrape them.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	recommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_recommendations_total",
			Help: "Recommendations produced, labeled by final action",
		},
		[]string{"symbol", "action"},
	)

	modelFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_model_failures_total",
			Help: "Ensemble sub-models that failed training and were excluded",
		},
		[]string{"model"},
	)

	fallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_fallbacks_total",
			Help: "Degradations to a linear fallback, labeled by component",
		},
		[]string{"component"},
	)

	pipelineErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_pipeline_errors_total",
			Help: "Pipeline runs that surfaced an error, labeled by stage",
		},
		[]string{"stage"},
	)

	cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_cache_hits_total",
			Help: "Cache hits by data kind",
		},
		[]string{"kind"},
	)

	cacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_cache_misses_total",
			Help: "Cache misses by data kind",
		},
		[]string{"kind"},
	)
)

// RecordRecommendation counts a completed recommendation.
func RecordRecommendation(symbol, action string) {
	recommendationsTotal.WithLabelValues(symbol, action).Inc()
}

// RecordModelFailure counts an excluded ensemble sub-model.
func RecordModelFailure(model string) {
	modelFailuresTotal.WithLabelValues(model).Inc()
}

// RecordFallback counts a degradation to a linear fallback.
func RecordFallback(component string) {
	fallbacksTotal.WithLabelValues(component).Inc()
}

// RecordPipelineError counts a surfaced pipeline error.
func RecordPipelineError(stage string) {
	pipelineErrorsTotal.WithLabelValues(stage).Inc()
}

// RecordCacheHit counts a fresh-entry hit for a cache kind.
func RecordCacheHit(kind string) {
	cacheHits.WithLabelValues(kind).Inc()
}

// RecordCacheMiss counts a stale or absent lookup for a cache kind.
func RecordCacheMiss(kind string) {
	cacheMisses.WithLabelValues(kind).Inc()
}

// Handler returns the scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
