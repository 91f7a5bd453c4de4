package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query latency in seconds.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation", "table"},
	)

	enrollmentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jobhive_enrollments_total",
			Help: "Total number of course enrollments created.",
		},
	)

	quizAttemptsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobhive_quiz_attempts_completed_total",
			Help: "Total number of finalized quiz attempts, partitioned by outcome.",
		},
		[]string{"outcome"},
	)
)

// Middleware collects request count and latency metrics for every route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		httpRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		httpRequestDuration.WithLabelValues(c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}

// RecordDBQuery records a database query observation. Called by the gorm logger.
func RecordDBQuery(operation, table string, elapsed time.Duration) {
	dbQueryDuration.WithLabelValues(operation, table).Observe(elapsed.Seconds())
}

// RecordEnrollment counts a newly created enrollment.
func RecordEnrollment() {
	enrollmentsTotal.Inc()
}

// RecordQuizCompletion counts a finalized quiz attempt.
func RecordQuizCompletion(passed bool) {
	outcome := "failed"
	if passed {
		outcome = "passed"
	}
	quizAttemptsCompleted.WithLabelValues(outcome).Inc()
}
