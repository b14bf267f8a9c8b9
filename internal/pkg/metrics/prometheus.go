package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "upscaler"

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// Upscale gateway metrics
	upscalesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "upscales_total",
			Help:      "Total number of upscale requests by outcome",
		},
		[]string{"outcome", "source"},
	)

	upscaleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "upscale_duration_seconds",
			Help:      "Duration of the upstream upscale call in seconds",
			Buckets:   []float64{.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)

	upscaleOutputBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "output_bytes",
			Help:      "Size of upscaled images in bytes",
			Buckets:   prometheus.ExponentialBuckets(64<<10, 2, 10),
		},
	)

	upstreamErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "upstream_errors_total",
			Help:      "Upstream API failures by status code",
		},
		[]string{"status"},
	)

	// Ledger metrics
	creditDeductionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "deductions_total",
			Help:      "Credit deduction attempts by result",
		},
		[]string{"result"},
	)

	creditsDeducted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "credits_deducted_total",
			Help:      "Total number of credits deducted",
		},
	)

	// Image record metrics
	imagesSavedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "images",
			Name:      "saved_total",
			Help:      "Total number of saved image records by storage backend",
		},
		[]string{"storage"},
	)

	// Profile gauges, refreshed by the stats job
	profilesTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "profile",
			Name:      "total_count",
			Help:      "Number of profiles by plan",
		},
		[]string{"plan"},
	)

	creditsOutstanding = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "profile",
			Name:      "credits_outstanding",
			Help:      "Sum of credit balances over non-premium profiles",
		},
	)

	imageRecordsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "images",
			Name:      "total_count",
			Help:      "Number of stored image records",
		},
	)

	// Database metrics
	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation", "table"},
	)
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns a middleware that records Prometheus metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()

		// Route pattern keeps label cardinality bounded
		routePattern := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			routePattern = rctx.RoutePattern()
		}

		status := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, routePattern, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, routePattern, status).Observe(duration)
	})
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordUpscale records a finished gateway request. source is "data" or
// "remote"; outcome is "success" or a short failure reason.
func RecordUpscale(outcome, source string) {
	upscalesTotal.WithLabelValues(outcome, source).Inc()
}

// RecordUpstreamCall records the duration and output size of a successful
// upstream call
func RecordUpstreamCall(duration time.Duration, outputBytes int) {
	upscaleDuration.Observe(duration.Seconds())
	upscaleOutputBytes.Observe(float64(outputBytes))
}

// RecordUpstreamError records a non-2xx upstream answer
func RecordUpstreamError(status int) {
	upstreamErrorsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}

// RecordDeduction records a ledger call. result is one of charged, premium,
// insufficient, not_found or error.
func RecordDeduction(result string, amount int64) {
	creditDeductionsTotal.WithLabelValues(result).Inc()
	if result == "charged" {
		creditsDeducted.Add(float64(amount))
	}
}

// RecordImageSaved records a stored image record
func RecordImageSaved(storage string) {
	imagesSavedTotal.WithLabelValues(storage).Inc()
}

// SetProfileCounts sets the profile gauges
func SetProfileCounts(free, premium float64, outstanding float64) {
	profilesTotal.WithLabelValues("free").Set(free)
	profilesTotal.WithLabelValues("premium").Set(premium)
	creditsOutstanding.Set(outstanding)
}

// SetImageRecords sets the gauge for stored image records
func SetImageRecords(count float64) {
	imageRecordsTotal.Set(count)
}

// RecordDBQuery records a database query duration
func RecordDBQuery(operation, table string, duration time.Duration) {
	dbQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}
