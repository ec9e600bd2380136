// Package metrics provides Prometheus instrumentation for the fraud pipeline.
package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bibbank/fraudwatch/internal/domain/model"
)

var (
	// TransactionsScored counts scored records by outcome.
	TransactionsScored = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraudwatch",
			Name:      "transactions_scored_total",
			Help:      "Total records scored by outcome.",
		},
		[]string{"outcome"}, // "flagged", "clean", "failed"
	)

	// BatchesTotal counts batches by result.
	BatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraudwatch",
			Name:      "batches_total",
			Help:      "Total batches processed by result.",
		},
		[]string{"result"}, // "stored", "error"
	)

	// BatchDuration observes end-to-end batch latency.
	BatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fraudwatch",
		Name:      "batch_duration_seconds",
		Help:      "Time to score and store one batch in seconds.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraudwatch",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fraudwatch",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

func init() {
	prometheus.MustRegister(
		TransactionsScored,
		BatchesTotal,
		BatchDuration,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}

// Recorder implements port.BatchRecorder on the package collectors.
type Recorder struct{}

// NewRecorder creates a Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordBatch records one batch outcome and its per-record counts.
func (r *Recorder) RecordBatch(result model.BatchResult, duration time.Duration, err error) {
	BatchDuration.Observe(duration.Seconds())
	if err != nil {
		BatchesTotal.WithLabelValues("error").Inc()
	} else {
		BatchesTotal.WithLabelValues("stored").Inc()
	}

	flagged := result.FraudulentCount()
	clean := result.TotalTransactions - flagged - result.FailedCount
	TransactionsScored.WithLabelValues("flagged").Add(float64(flagged))
	TransactionsScored.WithLabelValues("failed").Add(float64(result.FailedCount))
	if clean > 0 {
		TransactionsScored.WithLabelValues("clean").Add(float64(clean))
	}
}

// Middleware returns a gin middleware that records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		))

		c.Next()

		timer.ObserveDuration()
		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			statusBucket(c.Writer.Status()),
		).Inc()
	}
}

// statusBucket groups HTTP status codes into buckets (2xx, 3xx, 4xx, 5xx).
func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
