package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Scheduler metrics
	TasksQueued  prometheus.Gauge
	TaskDuration *prometheus.HistogramVec
	TaskErrors   *prometheus.CounterVec

	// Resolver metrics
	ResolveHits   prometheus.Counter
	ResolveMisses prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "storagebridge_http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storagebridge_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),

		TasksQueued: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "storagebridge_scheduler_tasks_queued",
			Help: "Tasks waiting on or running in the storage worker",
		}),
		TaskDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storagebridge_scheduler_task_duration_seconds",
			Help:    "Storage task execution time",
			Buckets: []float64{.005, .05, .25, 1, 5, 30},
		}, []string{"task"}),
		TaskErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "storagebridge_scheduler_task_errors_total",
			Help: "Failed storage tasks",
		}, []string{"task"}),

		ResolveHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storagebridge_resolver_hits_total",
			Help: "Path resolutions that found a covering grant",
		}),
		ResolveMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storagebridge_resolver_misses_total",
			Help: "Path resolutions with no covering grant",
		}),

		WSConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "storagebridge_ws_connections",
			Help: "Open event stream connections",
		}),
	}
}

// ResolveHit implements the resolver's stats sink.
func (m *Metrics) ResolveHit() {
	m.ResolveHits.Inc()
}

// ResolveMiss implements the resolver's stats sink.
func (m *Metrics) ResolveMiss() {
	m.ResolveMisses.Inc()
}

// TaskQueued implements the scheduler's stats sink.
func (m *Metrics) TaskQueued() {
	m.TasksQueued.Inc()
}

// TaskDone implements the scheduler's stats sink.
func (m *Metrics) TaskDone(name string, d time.Duration, err error) {
	m.TasksQueued.Dec()
	m.TaskDuration.WithLabelValues(name).Observe(d.Seconds())
	if err != nil {
		m.TaskErrors.WithLabelValues(name).Inc()
	}
}
