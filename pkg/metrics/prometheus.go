package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"VolEdge/internal/domain/repository"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	evaluations   *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	upstreamCalls *prometheus.CounterVec
	upstreamCost  *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// New creates a recorder registered against reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Recorder{
		evaluations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voledge_evaluations_total",
				Help: "Completed evaluations by final recommendation",
			},
			[]string{"recommendation"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voledge_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voledge_cache_lookups_total",
				Help: "Result cache lookups by data kind and outcome",
			},
			[]string{"kind", "result"},
		),
		upstreamCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voledge_upstream_calls_total",
				Help: "Successful upstream calls recorded against the budget",
			},
			[]string{"provider"},
		),
		upstreamCost: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voledge_upstream_cost_total",
				Help: "Cost of recorded upstream calls",
			},
			[]string{"provider"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "voledge_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordEvaluation(recommendation string) {
	r.evaluations.WithLabelValues(recommendation).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordCacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(kind, result).Inc()
}

func (r *Recorder) RecordUpstreamCall(provider string, cost float64) {
	r.upstreamCalls.WithLabelValues(provider).Inc()
	if cost > 0 {
		r.upstreamCost.WithLabelValues(provider).Add(cost)
	}
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

var _ repository.Metrics = (*Recorder)(nil)
