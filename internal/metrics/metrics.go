package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Submission metrics
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_submissions_total",
			Help: "Total number of webhook submissions received",
		},
		[]string{"status"},
	)

	SubmissionBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_submission_bytes_total",
			Help: "Total bytes of submission payload data received",
		},
	)

	// Persistence metrics
	InsertDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_insert_duration_seconds",
			Help:    "Duration of data-store insert operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"table"},
	)

	InsertErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_insert_errors_total",
			Help: "Total number of data-store insert errors",
		},
		[]string{"table"},
	)

	// Asset mirror metrics
	AssetsMirroredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_assets_mirrored_total",
			Help: "Total number of assets copied into object storage",
		},
		[]string{"category"},
	)

	AssetErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_asset_errors_total",
			Help: "Total number of asset fetch or upload failures",
		},
		[]string{"category"},
	)

	// Rate limiting metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"source"},
	)
)
