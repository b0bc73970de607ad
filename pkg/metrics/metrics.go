// Package metrics provides Prometheus instrumentation for papertrail components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for papertrail components.
type Registry struct {
	// Streaming Engine Metrics
	TasksStarted     *prometheus.CounterVec
	TasksCompleted   *prometheus.CounterVec
	TasksFailed      *prometheus.CounterVec
	TasksTimedOut    *prometheus.CounterVec
	FollowUpsDropped *prometheus.CounterVec
	ActiveTasks      *prometheus.GaugeVec
	PendingTasks     *prometheus.GaugeVec
	ValuesPublished  *prometheus.CounterVec
	TaskDuration     *prometheus.HistogramVec

	// Cache Metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
	CacheErrors *prometheus.CounterVec

	// Source Metrics
	SourceRequests        *prometheus.CounterVec
	SourceErrors          *prometheus.CounterVec
	SourceRequestDuration *prometheus.HistogramVec

	// HTTP / SSE Metrics
	SSEEventsSent   *prometheus.CounterVec
	SSEStreamsOpen  *prometheus.GaugeVec
	RequestDuration *prometheus.HistogramVec
}

// DefaultRegistry is the default metrics registry used by papertrail components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		TasksStarted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "papertrail",
				Subsystem: "streaming",
				Name:      "tasks_started_total",
				Help:      "Total number of streaming tasks started",
			},
			[]string{"pool_name"},
		),

		TasksCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "papertrail",
				Subsystem: "streaming",
				Name:      "tasks_completed_total",
				Help:      "Total number of streaming tasks completed successfully",
			},
			[]string{"pool_name"},
		),

		TasksFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "papertrail",
				Subsystem: "streaming",
				Name:      "tasks_failed_total",
				Help:      "Total number of streaming tasks that failed",
			},
			[]string{"pool_name"},
		),

		TasksTimedOut: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "papertrail",
				Subsystem: "streaming",
				Name:      "tasks_timed_out_total",
				Help:      "Total number of streaming tasks that exceeded their timeout",
			},
			[]string{"pool_name"},
		),

		FollowUpsDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "papertrail",
				Subsystem: "streaming",
				Name:      "follow_ups_dropped_total",
				Help:      "Total number of follow-up tasks dropped at the global cap",
			},
			[]string{"pool_name"},
		),

		ActiveTasks: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "papertrail",
				Subsystem: "streaming",
				Name:      "active_tasks",
				Help:      "Number of tasks currently running in the pool",
			},
			[]string{"pool_name"},
		),

		PendingTasks: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "papertrail",
				Subsystem: "streaming",
				Name:      "pending_tasks",
				Help:      "Number of tasks queued waiting for a free slot",
			},
			[]string{"pool_name"},
		),

		ValuesPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "papertrail",
				Subsystem: "streaming",
				Name:      "values_published_total",
				Help:      "Total number of publishable values yielded to consumers",
			},
			[]string{"pool_name"},
		),

		TaskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "papertrail",
				Subsystem: "streaming",
				Name:      "task_duration_seconds",
				Help:      "Time from task start to resolution",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"pool_name"},
		),

		CacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "papertrail",
				Subsystem: "cache",
				Name:      "hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"scope"},
		),

		CacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "papertrail",
				Subsystem: "cache",
				Name:      "misses_total",
				Help:      "Total number of cache misses",
			},
			[]string{"scope"},
		),

		CacheErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "papertrail",
				Subsystem: "cache",
				Name:      "errors_total",
				Help:      "Total number of cache store errors",
			},
			[]string{"scope"},
		),

		SourceRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "papertrail",
				Subsystem: "source",
				Name:      "requests_total",
				Help:      "Total number of upstream source requests",
			},
			[]string{"source", "operation"},
		),

		SourceErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "papertrail",
				Subsystem: "source",
				Name:      "errors_total",
				Help:      "Total number of upstream source request errors",
			},
			[]string{"source", "operation"},
		),

		SourceRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "papertrail",
				Subsystem: "source",
				Name:      "request_duration_seconds",
				Help:      "Upstream source request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source", "operation"},
		),

		SSEEventsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "papertrail",
				Subsystem: "http",
				Name:      "sse_events_sent_total",
				Help:      "Total number of server-sent event frames written",
			},
			[]string{"event"},
		),

		SSEStreamsOpen: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "papertrail",
				Subsystem: "http",
				Name:      "sse_streams_open",
				Help:      "Number of currently open SSE streams",
			},
			[]string{"endpoint"},
		),

		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "papertrail",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),
	}
}
