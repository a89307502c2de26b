package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "voledge",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of engine API endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	APIErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "voledge",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by API endpoint and error kind",
		},
		[]string{"endpoint", "kind"},
	)

	BatchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "voledge",
			Subsystem: "api",
			Name:      "batch_size",
			Help:      "Tickers per batch request",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 200},
		},
	)
)

// Register adds the API collectors to reg once per process.
func Register(reg prometheus.Registerer) {
	once.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		reg.MustRegister(APILatency, APIErrors, BatchSize)
	})
}
