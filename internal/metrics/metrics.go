// Package metrics exposes the gateway's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts handled requests by route and response status.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cyberpunkpath_requests_total",
		Help: "Total HTTP requests handled, by route and status code.",
	}, []string{"route", "status"})

	// CacheOutcomes counts response-cache lookups by outcome.
	CacheOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cyberpunkpath_cache_outcomes_total",
		Help: "Response cache lookups, by outcome (hit, miss, bypass).",
	}, []string{"outcome"})

	// ProcessorQueueDepth tracks how many transforms are waiting on the
	// processor's concurrency gate right now.
	ProcessorQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cyberpunkpath_processor_queue_depth",
		Help: "Number of transform requests currently waiting for a processor slot.",
	})

	// JobDuration observes how long a full transform (cache miss path)
	// takes end to end, in seconds.
	JobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cyberpunkpath_job_duration_seconds",
		Help:    "Wall-clock duration of a processed (non-cached) request.",
		Buckets: prometheus.DefBuckets,
	})
)
