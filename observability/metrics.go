package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Valuation metrics
	ValuationRequestsTotal *prometheus.CounterVec
	ValuationDuration      *prometheus.HistogramVec
	ValuationErrorsTotal   *prometheus.CounterVec
	ARVValues              *prometheus.HistogramVec
	CompScores             prometheus.Histogram
	CompsFilteredTotal     *prometheus.CounterVec
	RepairEstimates        *prometheus.HistogramVec
	DealMargins            prometheus.Histogram

	// External API metrics
	ExternalAPIRequestsTotal *prometheus.CounterVec
	ExternalAPIErrorsTotal   *prometheus.CounterVec
	ExternalAPIDuration      *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryTotal    *prometheus.CounterVec
	DBErrorsTotal   *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// defaultBuckets are the default histogram buckets for duration metrics (in seconds)
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// scoreBuckets are histogram buckets for [0,1] score metrics
var scoreBuckets = []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1}

// dollarBuckets are histogram buckets for dollar-valued metrics
var dollarBuckets = prometheus.ExponentialBuckets(10_000, 2, 8)

// marginBuckets are histogram buckets for projected deal margins
var marginBuckets = []float64{-0.25, 0, 0.1, 0.2, 0.25, 0.3, 0.35, 0.5, 0.75, 1}

// globalMetrics is the global metrics instance
var globalMetrics *Metrics

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	m := &Metrics{
		ValuationRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "comp_machine",
				Subsystem: "valuation",
				Name:      "requests_total",
				Help:      "Total number of valuation requests",
			},
			[]string{"zip_code"},
		),
		ValuationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "comp_machine",
				Subsystem: "valuation",
				Name:      "duration_seconds",
				Help:      "Duration of valuation pipeline runs in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"status"},
		),
		ValuationErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "comp_machine",
				Subsystem: "valuation",
				Name:      "errors_total",
				Help:      "Total number of valuation errors",
			},
			[]string{"error_type"},
		),
		ARVValues: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "comp_machine",
				Subsystem: "valuation",
				Name:      "arv_dollars",
				Help:      "Distribution of estimated after-repair values",
				Buckets:   dollarBuckets,
			},
			[]string{"market_condition"},
		),
		CompScores: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "comp_machine",
				Subsystem: "valuation",
				Name:      "comp_score",
				Help:      "Distribution of composite comp scores",
				Buckets:   scoreBuckets,
			},
		),
		CompsFilteredTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "comp_machine",
				Subsystem: "valuation",
				Name:      "comps_filtered_total",
				Help:      "Comps accepted or rejected by the admissibility filter",
			},
			[]string{"verdict"},
		),
		RepairEstimates: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "comp_machine",
				Subsystem: "valuation",
				Name:      "repair_estimate_dollars",
				Help:      "Distribution of repair cost estimates",
				Buckets:   dollarBuckets,
			},
			[]string{"method"},
		),
		DealMargins: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "comp_machine",
				Subsystem: "deal",
				Name:      "projected_margin",
				Help:      "Distribution of projected deal margins",
				Buckets:   marginBuckets,
			},
		),

		ExternalAPIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "comp_machine",
				Subsystem: "external_api",
				Name:      "requests_total",
				Help:      "Total number of external API requests",
			},
			[]string{"service", "operation"},
		),
		ExternalAPIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "comp_machine",
				Subsystem: "external_api",
				Name:      "errors_total",
				Help:      "Total number of external API errors",
			},
			[]string{"service", "operation", "error_type"},
		),
		ExternalAPIDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "comp_machine",
				Subsystem: "external_api",
				Name:      "duration_seconds",
				Help:      "Duration of external API calls in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"service", "operation"},
		),

		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "comp_machine",
				Subsystem: "database",
				Name:      "query_duration_seconds",
				Help:      "Duration of database queries in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"operation", "table"},
		),
		DBQueryTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "comp_machine",
				Subsystem: "database",
				Name:      "queries_total",
				Help:      "Total number of database queries",
			},
			[]string{"operation", "table"},
		),
		DBErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "comp_machine",
				Subsystem: "database",
				Name:      "errors_total",
				Help:      "Total number of database errors",
			},
			[]string{"operation", "table"},
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "comp_machine",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "comp_machine",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "comp_machine",
				Subsystem: "http",
				Name:      "response_size_bytes",
				Help:      "Size of HTTP responses in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),

		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "comp_machine",
				Subsystem: "circuit_breaker",
				Name:      "state",
				Help:      "Current state of circuit breakers (0=closed, 1=half-open, 2=open)",
			},
			[]string{"service"},
		),
		CircuitBreakerTrips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "comp_machine",
				Subsystem: "circuit_breaker",
				Name:      "trips_total",
				Help:      "Total number of circuit breaker trips",
			},
			[]string{"service"},
		),
	}

	return m
}

// InitMetrics initializes the global metrics instance
func InitMetrics() *Metrics {
	globalMetrics = NewMetrics(nil)
	return globalMetrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	if globalMetrics == nil {
		return InitMetrics()
	}
	return globalMetrics
}

// RecordValuationRequest records a valuation request
func (m *Metrics) RecordValuationRequest(zipCode string) {
	m.ValuationRequestsTotal.WithLabelValues(zipCode).Inc()
}

// RecordValuationError records a valuation error
func (m *Metrics) RecordValuationError(errorType string) {
	m.ValuationErrorsTotal.WithLabelValues(errorType).Inc()
}

// RecordARV records an estimated after-repair value
func (m *Metrics) RecordARV(marketCondition string, value float64) {
	if marketCondition == "" {
		marketCondition = "unknown"
	}
	m.ARVValues.WithLabelValues(marketCondition).Observe(value)
}

// RecordCompScore records a composite comp score
func (m *Metrics) RecordCompScore(score float64) {
	m.CompScores.Observe(score)
}

// RecordCompFiltered records a filter verdict for one comp
func (m *Metrics) RecordCompFiltered(admitted bool) {
	verdict := "rejected"
	if admitted {
		verdict = "admitted"
	}
	m.CompsFilteredTotal.WithLabelValues(verdict).Inc()
}

// RecordRepairEstimate records a repair estimate
func (m *Metrics) RecordRepairEstimate(method string, estimate float64) {
	m.RepairEstimates.WithLabelValues(method).Observe(estimate)
}

// RecordDealMargin records a projected deal margin
func (m *Metrics) RecordDealMargin(margin float64) {
	m.DealMargins.Observe(margin)
}

// RecordExternalAPIRequest records an external API request
func (m *Metrics) RecordExternalAPIRequest(service, operation string) {
	m.ExternalAPIRequestsTotal.WithLabelValues(service, operation).Inc()
}

// RecordExternalAPIError records an external API error
func (m *Metrics) RecordExternalAPIError(service, operation, errorType string) {
	m.ExternalAPIErrorsTotal.WithLabelValues(service, operation, errorType).Inc()
}

// RecordExternalAPIDuration records the duration of an external API call
func (m *Metrics) RecordExternalAPIDuration(service, operation string, duration time.Duration) {
	m.ExternalAPIDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordDBQuery records a database query
func (m *Metrics) RecordDBQuery(operation, table string, duration time.Duration) {
	m.DBQueryTotal.WithLabelValues(operation, table).Inc()
	m.DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordDBError records a database error
func (m *Metrics) RecordDBError(operation, table string) {
	m.DBErrorsTotal.WithLabelValues(operation, table).Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration, responseSize int) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// SetCircuitBreakerState sets the current state of a circuit breaker
func (m *Metrics) SetCircuitBreakerState(service string, state int) {
	m.CircuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(service string) {
	m.CircuitBreakerTrips.WithLabelValues(service).Inc()
}

// Timer is a helper for timing operations
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// NewTimer creates a new timer
func (m *Metrics) NewTimer() *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: m,
	}
}

// ObserveValuation records the valuation duration and status
func (t *Timer) ObserveValuation(status string) {
	t.metrics.ValuationDuration.WithLabelValues(status).Observe(time.Since(t.start).Seconds())
}

// ObserveExternalAPI records the external API duration
func (t *Timer) ObserveExternalAPI(service, operation string) {
	t.metrics.RecordExternalAPIDuration(service, operation, time.Since(t.start))
}

// ObserveDB records the database query duration
func (t *Timer) ObserveDB(operation, table string) {
	t.metrics.RecordDBQuery(operation, table, time.Since(t.start))
}

// Duration returns the elapsed time
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
