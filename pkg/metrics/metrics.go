package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Key-value store metrics
	StoreOperations *prometheus.CounterVec
	StoreLatency    *prometheus.HistogramVec
	StoreBytes      *prometheus.CounterVec

	// Collection metrics, refreshed on every full-collection write
	CollectionSize *prometheus.GaugeVec

	// Change events published by the repository layer
	ChangeEvents *prometheus.CounterVec

	// HTTP metrics
	RequestDuration *prometheus.HistogramVec
	RequestTotal    *prometheus.CounterVec

	// Snapshot worker metrics
	SnapshotsWritten prometheus.Counter
	SnapshotsFailed  prometheus.Counter
}

// NewMetrics creates and registers all application metrics on reg.
// A nil registerer uses the prometheus default registry.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		StoreOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kv",
			Name:      "operations_total",
			Help:      "Total number of key-value store operations",
		}, []string{"backend", "operation", "status"}),
		StoreLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "kv",
			Name:      "operation_duration_seconds",
			Help:      "Duration of key-value store operations",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"backend", "operation"}),
		StoreBytes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kv",
			Name:      "bytes_total",
			Help:      "Bytes read from and written to the key-value store",
		}, []string{"backend", "direction"}),

		CollectionSize: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "collection_size",
			Help:      "Number of records in each persisted collection",
		}, []string{"collection"}),

		ChangeEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "repository",
			Name:      "change_events_total",
			Help:      "Total number of change events published",
		}, []string{"collection", "op"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		RequestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),

		SnapshotsWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "snapshots_written_total",
			Help:      "Total number of monthly stats snapshots written",
		}),
		SnapshotsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "snapshots_failed_total",
			Help:      "Total number of monthly stats snapshots that failed",
		}),
	}
}

// New creates metrics on a private registry. Handy for tests and tools that
// never expose a /metrics endpoint.
func New(namespace string) *Metrics {
	return NewMetrics(prometheus.NewRegistry(), namespace)
}
