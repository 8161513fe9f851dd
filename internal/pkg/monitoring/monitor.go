package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels of AnswersRecorded
const (
	OutcomeRecorded        = "recorded"
	OutcomeDuplicate       = "duplicate"
	OutcomeNotInExam       = "not_in_exam"
	OutcomeStudentNotFound = "student_not_found"
	OutcomeExamNotFound    = "exam_not_found"
	OutcomeError           = "error"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	ExamsComposed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "exams_composed_total",
			Help: "Total number of composed exams",
		},
	)

	AnswersRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "answers_recorded_total",
			Help: "Answer submissions by outcome",
		},
		[]string{"outcome"},
	)

	ExamResultsComputed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "exam_results_computed_total",
			Help: "Total number of exam result computations",
		},
	)

	ExamCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exam_cache_lookups_total",
			Help: "Exam presentation cache lookups by result",
		},
		[]string{"result"},
	)
)

var initOnce sync.Once

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			ExamsComposed,
			AnswersRecorded,
			ExamResultsComputed,
			ExamCacheLookups,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
