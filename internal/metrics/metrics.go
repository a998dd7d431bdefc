// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Mastery Metrics
	MasteryUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studypath_mastery_updates_total",
			Help: "Total number of mastery rows written",
		},
		[]string{"kind"}, // "insert", "update"
	)

	MasteryScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "studypath_mastery_score",
			Help:    "Distribution of mastery scores after an update",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	// Quiz Metrics
	QuizGenerations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studypath_quiz_generations_total",
			Help: "Total number of quiz generation requests",
		},
		[]string{"status"}, // "ok", "no_passages", "llm_unavailable", "malformed"
	)

	QuizAnswers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studypath_quiz_answers_total",
			Help: "Total number of graded quiz answers",
		},
		[]string{"result"}, // "correct", "incorrect", "skipped"
	)

	// Recommendation Cache Metrics
	RecommendationCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studypath_recommendation_cache_hits_total",
			Help: "Total number of recommendation cache hits",
		},
	)

	RecommendationCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studypath_recommendation_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
	)

	// LLM Metrics
	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studypath_llm_requests_total",
			Help: "Total number of LLM requests",
		},
		[]string{"provider", "purpose", "status"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studypath_llm_request_duration_seconds",
			Help:    "Duration of LLM requests in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"provider", "purpose"},
	)

	LLMTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studypath_llm_tokens_total",
			Help: "Total number of LLM tokens consumed",
		},
		[]string{"provider", "direction"}, // "input", "output"
	)

	LLMRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studypath_llm_retries_total",
			Help: "Total number of retried LLM calls by failure reason",
		},
		[]string{"provider", "reason"},
	)

	// Retrieval Metrics
	RetrievalSearches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studypath_retrieval_searches_total",
			Help: "Total number of passage searches",
		},
		[]string{"backend", "status"},
	)

	RetrievalDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studypath_retrieval_duration_seconds",
			Help:    "Duration of passage searches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "studypath_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studypath_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studypath_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordAPIRequest records a finished API request.
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordLLMRequest records one LLM call.
func RecordLLMRequest(provider, purpose string, success bool, duration time.Duration, inputTokens, outputTokens int) {
	status := "success"
	if !success {
		status = "error"
	}
	LLMRequests.WithLabelValues(provider, purpose, status).Inc()
	LLMRequestDuration.WithLabelValues(provider, purpose).Observe(duration.Seconds())
	if inputTokens > 0 {
		LLMTokens.WithLabelValues(provider, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		LLMTokens.WithLabelValues(provider, "output").Add(float64(outputTokens))
	}
}

// RecordRetrieval records one passage search.
func RecordRetrieval(backend string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	RetrievalSearches.WithLabelValues(backend, status).Inc()
	RetrievalDuration.WithLabelValues(backend).Observe(duration.Seconds())
}
