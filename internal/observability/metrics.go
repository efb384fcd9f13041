package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce               sync.Once
	httpRequestsTotal          *prometheus.CounterVec
	httpLatencySeconds         *prometheus.HistogramVec
	httpErrorsTotal            *prometheus.CounterVec
	submissionsReceivedTotal   *prometheus.CounterVec
	submissionsGradedTotal     prometheus.Counter
	quizAnswersScoredTotal     *prometheus.CounterVec
	notificationsPublishedTotal *prometheus.CounterVec
	sseClientsActive           prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classwork_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "classwork_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classwork_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		submissionsReceivedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classwork_submissions_received_total",
			Help: "Total number of submissions handed in, by assignment type.",
		}, []string{"assignment_type"})

		submissionsGradedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "classwork_submissions_graded_total",
			Help: "Total number of grading events recorded.",
		})

		quizAnswersScoredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classwork_quiz_answers_scored_total",
			Help: "Total number of auto-scored quiz answers, by question type.",
		}, []string{"question_type"})

		notificationsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classwork_notifications_published_total",
			Help: "Total number of notifications published, by type.",
		}, []string{"type"})

		sseClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "classwork_sse_clients_active",
			Help: "Number of currently connected SSE notification clients.",
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			submissionsReceivedTotal,
			submissionsGradedTotal,
			quizAnswersScoredTotal,
			notificationsPublishedTotal,
			sseClientsActive,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// SubmissionsReceivedTotal exposes the counter for received submissions.
func SubmissionsReceivedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsReceivedTotal
}

// SubmissionsGradedTotal exposes the counter for grading events.
func SubmissionsGradedTotal() prometheus.Counter {
	RegisterMetrics()
	return submissionsGradedTotal
}

// QuizAnswersScoredTotal exposes the counter for auto-scored answers.
func QuizAnswersScoredTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return quizAnswersScoredTotal
}

// NotificationsPublishedTotal exposes the counter for published notifications.
func NotificationsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsPublishedTotal
}

// SSEClientsActive exposes the gauge tracking connected SSE clients.
func SSEClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return sseClientsActive
}
