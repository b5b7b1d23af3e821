package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce           sync.Once
	apiRequestsTotal       *prometheus.CounterVec
	apiLatencySeconds      *prometheus.HistogramVec
	apiErrorsTotal         *prometheus.CounterVec
	generationsTotal       *prometheus.CounterVec
	sanitizerFallbackTotal *prometheus.CounterVec
	gradingsTotal          *prometheus.CounterVec
	gradingScores          prometheus.Histogram
	feedbackFallbackTotal  prometheus.Counter
	eventsPublishedTotal   *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API and the assignment pipeline.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served, by caller role.",
		}, []string{"method", "route", "status", "role"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 15.0, 30.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		generationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assignment_generations_total",
			Help: "Assignment generation attempts by outcome.",
		}, []string{"outcome", "purpose"})

		sanitizerFallbackTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "model_output_fallbacks_total",
			Help: "Model responses that could not be parsed and fell back to an empty result.",
		}, []string{"kind"})

		gradingsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assignment_gradings_total",
			Help: "Completed assignment gradings.",
		}, []string{"purpose"})

		gradingScores = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "assignment_score_percent",
			Help:    "Distribution of assignment scores.",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		})

		feedbackFallbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "assignment_feedback_fallbacks_total",
			Help: "Gradings whose suggestion fell back to the default text.",
		})

		eventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assignment_events_published_total",
			Help: "Domain events published to the message brokers.",
		}, []string{"type"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			generationsTotal,
			sanitizerFallbackTotal,
			gradingsTotal,
			gradingScores,
			feedbackFallbackTotal,
			eventsPublishedTotal,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// Generations counts generation attempts labelled by outcome and purpose.
func Generations() *prometheus.CounterVec {
	RegisterMetrics()
	return generationsTotal
}

// SanitizerFallbacks counts unparseable model responses labelled by kind.
func SanitizerFallbacks() *prometheus.CounterVec {
	RegisterMetrics()
	return sanitizerFallbackTotal
}

// Gradings counts completed gradings by assignment purpose.
func Gradings() *prometheus.CounterVec {
	RegisterMetrics()
	return gradingsTotal
}

// GradingScores observes final scores.
func GradingScores() prometheus.Histogram {
	RegisterMetrics()
	return gradingScores
}

// FeedbackFallbacks counts suggestions that used the default text.
func FeedbackFallbacks() prometheus.Counter {
	RegisterMetrics()
	return feedbackFallbackTotal
}

// EventsPublished counts published domain events by type.
func EventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsPublishedTotal
}

// MetricsHandler serves the Prometheus scrape endpoint.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.Handler())
}
