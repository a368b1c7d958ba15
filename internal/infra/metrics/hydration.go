package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		hydrationTotal,
		hydrationChars,
	)
}

var (
	hydrationTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hydration_builds_total",
			Help: "Knowledge compilation builds.",
		},
	)

	hydrationChars = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hydration_compilation_chars",
			Help:    "Size of built knowledge compilations in characters.",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		},
	)
)

func ObserveHydration(chars int) {
	hydrationTotal.Inc()
	hydrationChars.Observe(float64(chars))
}
