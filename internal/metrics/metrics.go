package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "advisor_http_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Activity attempts
	AttemptsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_attempts_recorded_total",
			Help: "Activity attempts stored, by elective and whether the row was new or a retry",
		},
		[]string{"elective", "outcome"}, // "created", "updated"
	)

	PerformanceScores = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "advisor_performance_score",
			Help:    "Performance score of recorded attempts",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"elective"},
	)

	// Recommendations
	RecommendationsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_recommendations_generated_total",
			Help: "Recommendations generated, by recommended elective and mode",
		},
		[]string{"elective", "mode"}, // mode: "blended", "survey_only"
	)

	RecommendationConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "advisor_recommendation_confidence",
			Help:    "Confidence of generated recommendations",
			Buckets: prometheus.LinearBuckets(50, 5, 11),
		},
	)

	// Population cache
	PopulationCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "advisor_population_cache_hits_total",
			Help: "Peer population lookups served from Redis",
		},
	)

	PopulationCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "advisor_population_cache_misses_total",
			Help: "Peer population lookups that fell through to the database",
		},
	)

	// WebSocket
	StreamClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "advisor_stream_clients",
			Help: "Connected recommendation stream clients",
		},
	)
)

// RecordAttempt counts a stored attempt and observes its performance score.
func RecordAttempt(elective string, created bool, score float64) {
	outcome := "updated"
	if created {
		outcome = "created"
	}
	AttemptsRecorded.WithLabelValues(elective, outcome).Inc()
	PerformanceScores.WithLabelValues(elective).Observe(score)
}

// RecordRecommendation counts a generated recommendation.
func RecordRecommendation(elective, mode string, confidence float64) {
	RecommendationsGenerated.WithLabelValues(elective, mode).Inc()
	RecommendationConfidence.Observe(confidence)
}
