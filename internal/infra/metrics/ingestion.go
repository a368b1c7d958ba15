package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		ingestJobsTotal,
		ingestSkippedTotal,
		extractionDuration,
	)
}

var (
	ingestJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_jobs_total",
			Help: "Ingestion jobs by terminal status.",
		},
		[]string{"status"}, // 'completed', 'failed'
	)

	ingestSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_sessions_skipped_total",
			Help: "Sessions skipped for not meeting the minimum input threshold.",
		},
	)

	extractionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "extraction_duration_seconds",
			Help:    "Wall-clock duration of graph extraction calls.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)
)

func IncIngestJob(status string) {
	ingestJobsTotal.WithLabelValues(status).Inc()
}

func IncIngestSkipped() {
	ingestSkippedTotal.Inc()
}

func ObserveExtractionDuration(d time.Duration) {
	extractionDuration.Observe(d.Seconds())
}
