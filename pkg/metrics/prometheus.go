package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	evaluations *prometheus.CounterVec
	fetchErrors *prometheus.CounterVec
	lastNAV     prometheus.Gauge
	latency     *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		evaluations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskpulse_evaluations_total",
				Help: "Total number of portfolio evaluations",
			},
			[]string{"degraded"},
		),
		fetchErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskpulse_fetch_errors_total",
				Help: "Total number of market data fetch errors",
			},
			[]string{"provider"},
		),
		lastNAV: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "riskpulse_portfolio_nav_usd",
				Help: "Last computed portfolio NAV in USD",
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "riskpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordEvaluation records a completed portfolio evaluation.
func (r *Recorder) RecordEvaluation(degraded bool) {
	label := "false"
	if degraded {
		label = "true"
	}
	r.evaluations.WithLabelValues(label).Inc()
}

// RecordFetchError records a provider fetch error.
func (r *Recorder) RecordFetchError(provider string) {
	r.fetchErrors.WithLabelValues(provider).Inc()
}

// RecordNAV records the last computed portfolio NAV.
func (r *Recorder) RecordNAV(nav float64) {
	r.lastNAV.Set(nav)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
