package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PullsTotal counts pull requests by outcome
	PullsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crawl",
			Subsystem: "coordinator",
			Name:      "pulls_total",
			Help:      "Total number of pull requests",
		},
		[]string{"status"},
	)

	// JobsLeasedTotal counts jobs handed out to bots
	JobsLeasedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "crawl",
			Subsystem: "coordinator",
			Name:      "jobs_leased_total",
			Help:      "Total number of jobs leased to bots",
		},
	)

	// JobsSkippedTotal counts lease attempts lost to another bot
	JobsSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "crawl",
			Subsystem: "coordinator",
			Name:      "jobs_skipped_total",
			Help:      "Total number of pull candidates already leased elsewhere",
		},
	)

	// SubmitsTotal counts submits by resulting job status
	SubmitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crawl",
			Subsystem: "coordinator",
			Name:      "submits_total",
			Help:      "Total number of submits by resulting job status",
		},
		[]string{"status"},
	)

	// JobsMaterializedTotal counts jobs created by the scheduler
	JobsMaterializedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "crawl",
			Subsystem: "scheduler",
			Name:      "jobs_materialized_total",
			Help:      "Total number of jobs created from due policies",
		},
	)

	// LeasesSweptTotal counts expired leases recovered by the sweeper
	LeasesSweptTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "crawl",
			Subsystem: "scheduler",
			Name:      "leases_swept_total",
			Help:      "Total number of expired leases returned to the pool",
		},
	)

	// AutoRecordTotal counts auto-record items by outcome
	AutoRecordTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crawl",
			Subsystem: "auto_record",
			Name:      "items_total",
			Help:      "Total number of auto-record items by outcome",
		},
		[]string{"outcome"},
	)

	// QueueDepth tracks the auto-record pipeline collection sizes
	QueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "crawl",
			Subsystem: "auto_record",
			Name:      "queue_depth",
			Help:      "Current size of the auto-record collections",
		},
		[]string{"collection"},
	)

	// CacheLookupsTotal counts read-through cache lookups
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crawl",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Total number of read-through cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	// HTTPRequestDuration tracks API latency
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "crawl",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path", "status"},
	)
)
