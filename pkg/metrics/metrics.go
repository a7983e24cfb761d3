// Package metrics exposes the Prometheus counters and histograms the
// core emits: CAS operation counts and latency, tree
// node I/O, branch publish outcomes, and sync push/pull traffic.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CAS metrics
	CASOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialog_cas_operations_total",
			Help: "Total number of CAS backend operations by op, catalog, and result",
		},
		[]string{"op", "catalog", "result"},
	)

	CASOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dialog_cas_operation_duration_seconds",
			Help:    "CAS backend operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op", "catalog"},
	)

	// Prolly tree metrics
	TreeNodesRead = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialog_tree_nodes_read_total",
			Help: "Total number of tree nodes read from the CAS, by kind",
		},
		[]string{"kind"},
	)

	TreeNodesWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialog_tree_nodes_written_total",
			Help: "Total number of tree nodes written to the CAS, by kind",
		},
		[]string{"kind"},
	)

	// Branch metrics
	BranchPublishTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialog_branch_publish_total",
			Help: "Total number of branch cell publish attempts by branch and result",
		},
		[]string{"branch", "result"},
	)

	BranchCommitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dialog_branch_commit_duration_seconds",
			Help:    "Time taken to commit instructions to a branch, in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"branch"},
	)

	// Sync metrics
	SyncNovelNodesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialog_sync_novel_nodes_total",
			Help: "Total number of novel tree nodes transferred by sync, by direction",
		},
		[]string{"direction"},
	)

	SyncConflictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialog_sync_conflicts_total",
			Help: "Total number of branch cell publish conflicts observed during sync",
		},
		[]string{"branch"},
	)

	SyncDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dialog_sync_duration_seconds",
			Help:    "Push/pull duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"direction"},
	)

	// Router metrics
	RouterInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialog_router_invocations_total",
			Help: "Total number of capability invocations routed, by effect and result",
		},
		[]string{"effect", "result"},
	)
)

func init() {
	prometheus.MustRegister(CASOperationsTotal)
	prometheus.MustRegister(CASOperationDuration)
	prometheus.MustRegister(TreeNodesRead)
	prometheus.MustRegister(TreeNodesWritten)
	prometheus.MustRegister(BranchPublishTotal)
	prometheus.MustRegister(BranchCommitDuration)
	prometheus.MustRegister(SyncNovelNodesTotal)
	prometheus.MustRegister(SyncConflictsTotal)
	prometheus.MustRegister(SyncDuration)
	prometheus.MustRegister(RouterInvocationsTotal)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
