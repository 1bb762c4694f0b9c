package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	computations    *prometheus.CounterVec
	classifications *prometheus.CounterVec
	notComputable   *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	latency         *prometheus.HistogramVec
}

// New creates a recorder registered with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		computations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bodymetrics_computations_total",
				Help: "Total number of metric computations by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		classifications: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bodymetrics_classifications_total",
				Help: "Total number of classified results by metric and band",
			},
			[]string{"metric", "label"},
		),
		notComputable: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bodymetrics_not_computable_total",
				Help: "Total number of results without a real value",
			},
			[]string{"metric"},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bodymetrics_cache_lookups_total",
				Help: "Result cache lookups by outcome",
			},
			[]string{"result"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bodymetrics_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bodymetrics_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordComputation counts one Compute call.
func (r *Recorder) RecordComputation(mode, outcome string) {
	r.computations.WithLabelValues(mode, outcome).Inc()
}

// RecordClassification counts one classified result.
func (r *Recorder) RecordClassification(metric, label string) {
	r.classifications.WithLabelValues(metric, label).Inc()
}

// RecordNotComputable counts one not-applicable result.
func (r *Recorder) RecordNotComputable(metric string) {
	r.notComputable.WithLabelValues(metric).Inc()
}

// RecordCache counts a cache hit or miss.
func (r *Recorder) RecordCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
