package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prediction outcomes
const (
	OutcomeSuccess         = "success"
	OutcomeUnknownCategory = "unknown_category"
	OutcomeShapeMismatch   = "shape_mismatch"
	OutcomeModelError      = "model_error"
)

// Translation sources
const (
	TranslationTable    = "table"
	TranslationRemote   = "remote"
	TranslationFallback = "fallback"
)

var (
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fasal_predictions_total",
			Help: "Total number of model predictions by model and outcome",
		},
		[]string{"model", "outcome"},
	)

	PredictionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fasal_prediction_duration_seconds",
			Help:    "Duration of model calls in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
		[]string{"model"},
	)

	TranslationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fasal_translations_total",
			Help: "Localized strings by the source that produced them",
		},
		[]string{"source"},
	)

	TranslationBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fasal_translation_breaker_state",
			Help: "Remote translator circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	HistoryWriteErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fasal_history_write_errors_total",
			Help: "Prediction history records that could not be written",
		},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fasal_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fasal_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordPrediction records one model call
func RecordPrediction(model, outcome string, duration time.Duration) {
	PredictionsTotal.WithLabelValues(model, outcome).Inc()
	if outcome == OutcomeSuccess {
		PredictionDuration.WithLabelValues(model).Observe(duration.Seconds())
	}
}

// RecordTranslation counts a localized string by source
func RecordTranslation(source string) {
	TranslationsTotal.WithLabelValues(source).Inc()
}

// RecordAPIRequest records one HTTP request
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
