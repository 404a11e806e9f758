// Package metrics exposes Prometheus instrumentation for job execution and
// schema discovery.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// JobsCompleted counts jobs reaching a terminal state, labeled by config
	// type and final status.
	JobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "config_api_jobs_completed_total",
			Help: "Total of jobs that reached a terminal state",
		},
		[]string{"config_type", "status"},
	)

	// JobsRunning tracks the number of jobs currently executing.
	JobsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "config_api_jobs_running",
			Help: "Number of jobs currently running",
		},
	)

	// DiscoveryRequests counts schema discovery requests, labeled by outcome
	// (succeeded, failed, cached).
	DiscoveryRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "config_api_schema_discovery_requests_total",
			Help: "Total of schema discovery requests",
		},
		[]string{"result"},
	)
)
