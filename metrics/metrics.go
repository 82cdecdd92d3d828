// Package metrics provides Prometheus metrics for the quotation API.
// It tracks HTTP request performance:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//
// plus business counters for committed configurations, stored quotations,
// empty guideline resolutions and OTP traffic.
//
// All metrics are automatically registered with the Prometheus default registry
// during package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (IPs seen in last ~5 minutes)",
		},
	)

	ConfigurationsCommitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "configurations_committed_total",
			Help: "Sample configurations committed to a cart",
		},
	)

	QuotationsStored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quotations_stored_total",
			Help: "Quotation lines persisted to the database",
		},
	)

	ResolverNoMatch = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "guideline_resolver_no_match_total",
			Help: "Guideline resolutions that produced an empty set",
		},
	)

	OTPSendTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "otp_send_total",
			Help: "One-time-password codes issued",
		},
	)

	OTPVerifyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_verify_total",
			Help: "One-time-password verification attempts",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(ConfigurationsCommitted)
	prometheus.MustRegister(QuotationsStored)
	prometheus.MustRegister(ResolverNoMatch)
	prometheus.MustRegister(OTPSendTotal)
	prometheus.MustRegister(OTPVerifyTotal)
}
