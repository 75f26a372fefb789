package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"educhain/internal/domain"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000},
		},
		[]string{"method", "endpoint"},
	)

	httpResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000},
		},
		[]string{"method", "endpoint"},
	)

	// Database metrics
	dbConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	dbConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	dbQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	// Business metrics
	inquirySubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inquiry_submissions_total",
			Help: "Total number of stored inquiry submissions",
		},
		[]string{"type"}, // donor, employer, youth, other
	)

	inquiryFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inquiry_failures_total",
			Help: "Total number of rejected inquiry submissions",
		},
		[]string{"reason"}, // validation, constraint, storage
	)

	donationAttemptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "donation_attempts_total",
			Help: "Total number of donation initiation attempts",
		},
	)
)

// UnmatchedRoute labels requests for paths outside the route set.
const UnmatchedRoute = "unmatched"

// PrometheusMiddleware records request metrics labelled by route. Only the
// given routes become label values; every other path is counted as
// UnmatchedRoute.
func PrometheusMiddleware(routes ...string) func(http.Handler) http.Handler {
	known := make(map[string]struct{}, len(routes))
	for _, route := range routes {
		known[route] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			endpoint := UnmatchedRoute
			if _, ok := known[r.URL.Path]; ok {
				endpoint = r.URL.Path
			}
			method := methodLabel(r.Method)

			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			if r.ContentLength > 0 {
				httpRequestSize.WithLabelValues(method, endpoint).Observe(float64(r.ContentLength))
			}

			next.ServeHTTP(wrapped, r)

			status := strconv.Itoa(wrapped.statusCode)
			httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
			httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(time.Since(start).Seconds())
			httpResponseSize.WithLabelValues(method, endpoint).Observe(float64(wrapped.size))
		})
	}
}

// methodLabel folds non-standard verbs into "OTHER".
func methodLabel(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions:
		return method
	}
	return "OTHER"
}

// responseWriter wraps http.ResponseWriter to capture status code and response size
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// RecordInquirySubmission records a stored inquiry. Types outside the form's
// options are counted as "other".
func RecordInquirySubmission(inquiryType string) {
	inquirySubmissionsTotal.WithLabelValues(InquiryTypeLabel(inquiryType)).Inc()
}

// InquiryTypeLabel maps a submitted type onto the bounded label set.
func InquiryTypeLabel(inquiryType string) string {
	switch inquiryType {
	case domain.InquiryTypeDonor, domain.InquiryTypeEmployer, domain.InquiryTypeYouth:
		return inquiryType
	}
	return domain.InquiryTypeOther
}

// RecordInquiryFailure records a rejected inquiry
func RecordInquiryFailure(reason string) {
	inquiryFailuresTotal.WithLabelValues(reason).Inc()
}

// RecordDonationAttempt records a call to the donation endpoint
func RecordDonationAttempt() {
	donationAttemptsTotal.Inc()
}

// RecordDBQuery records a database query
func RecordDBQuery(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	dbQueriesTotal.WithLabelValues(operation, status).Inc()
	dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnections updates database connection metrics
func UpdateDBConnections(active, idle int) {
	dbConnectionsActive.Set(float64(active))
	dbConnectionsIdle.Set(float64(idle))
}
