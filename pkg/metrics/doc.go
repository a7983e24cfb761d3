/*
Package metrics provides Prometheus metrics collection and exposition for dialog.

The metrics package defines and registers all dialog metrics using the Prometheus
client library, providing observability into CAS throughput, tree node I/O,
branch publish outcomes, and sync traffic. Metrics are exposed via an HTTP
endpoint for scraping by Prometheus servers.

# Architecture

dialog's metrics system follows Prometheus best practices: every metric is
registered once at package init and updated inline by the component that
owns the event, rather than sampled by a separate poller.

	┌──────────────────── METRICS SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │          Prometheus Registry                │          │
	│  │  - Global DefaultRegistry                   │          │
	│  │  - MustRegister at package init             │          │
	│  │  - Automatic Go runtime metrics             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │              Metric Types                   │          │
	│  │                                              │          │
	│  │  Counter: Monotonic increases (CAS ops)     │          │
	│  │  Histogram: Distributions (latency)         │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Metric Categories                 │          │
	│  │                                              │          │
	│  │  CAS: Operation counts, durations           │          │
	│  │  Tree: Nodes read/written by kind           │          │
	│  │  Branch: Publish outcomes, commit latency   │          │
	│  │  Sync: Novel nodes, conflicts, duration     │          │
	│  │  Router: Capability invocations             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │          HTTP Metrics Endpoint              │          │
	│  │  - Path: /metrics                           │          │
	│  │  - Format: Prometheus text exposition       │          │
	│  │  - Handler: promhttp.Handler()              │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Core Components

Metric Registry:
  - Global Prometheus DefaultRegistry
  - All metrics registered at package init
  - Thread-safe for concurrent updates

Counter Metrics:
  - Monotonically increasing value
  - Examples: dialog_cas_operations_total, dialog_sync_novel_nodes_total
  - Operations: Inc, Add (cannot decrease)

Histogram Metrics:
  - Distribution of observed values
  - Examples: dialog_cas_operation_duration_seconds, dialog_sync_duration_seconds
  - Includes: sum, count, buckets

Timer Helper:
  - Convenience wrapper for timing operations
  - Start timer, observe duration to histogram
  - Supports label values for histogram vectors

Health Checker:
  - Tracks per-component health (storage, router) for /health, /ready, /live
  - See health.go for registration and handler details

# Metrics Catalog

CAS Metrics:

dialog_cas_operations_total{op, catalog, result}:
  - Type: Counter
  - Description: Total CAS backend operations by op (get/put/cas), catalog, and result
  - Example: dialog_cas_operations_total{op="put",catalog="index",result="ok"} 42

dialog_cas_operation_duration_seconds{op, catalog}:
  - Type: Histogram
  - Description: CAS backend operation duration in seconds

Tree Metrics:

dialog_tree_nodes_read_total{kind}:
  - Type: Counter
  - Description: Total tree nodes read from the CAS, by kind (branch/segment)

dialog_tree_nodes_written_total{kind}:
  - Type: Counter
  - Description: Total tree nodes written to the CAS, by kind

Branch Metrics:

dialog_branch_publish_total{branch, result}:
  - Type: Counter
  - Description: Total branch cell publish attempts by branch and result (ok/conflict)

dialog_branch_commit_duration_seconds{branch}:
  - Type: Histogram
  - Description: Time taken to commit instructions to a branch

Sync Metrics:

dialog_sync_novel_nodes_total{direction}:
  - Type: Counter
  - Description: Total novel tree nodes transferred by sync, by direction (push/pull)

dialog_sync_conflicts_total{branch}:
  - Type: Counter
  - Description: Total branch cell publish conflicts observed during sync

dialog_sync_duration_seconds{direction}:
  - Type: Histogram
  - Description: Push/pull duration in seconds

Router Metrics:

dialog_router_invocations_total{effect, result}:
  - Type: Counter
  - Description: Total capability invocations routed, by effect and result

# Usage

Updating Counter Metrics:

	import "github.com/dialogdb/dialog/pkg/metrics"

	metrics.CASOperationsTotal.WithLabelValues("put", "index", "ok").Inc()
	metrics.SyncConflictsTotal.WithLabelValues("main").Inc()

Recording Histogram Observations:

	timer := metrics.NewTimer()
	// ... perform operation ...
	timer.ObserveDurationVec(metrics.CASOperationDuration, "get", "index")

Exposing the Metrics Endpoint:

	http.Handle("/metrics", metrics.Handler())
	http.ListenAndServe(":9090", nil)

# Integration Points

This package integrates with:

  - pkg/cas: Instruments Get/Put operations and durations
  - pkg/prolly: not instrumented; the dialog_tree_nodes_* counters are
    registered but no package updates them
  - pkg/branch: Tracks publish outcomes and commit latency
  - pkg/sync: Tracks novel node transfer, conflicts, and push/pull duration
  - pkg/router: Counts invocations by effect and result
  - Prometheus: Scrapes /metrics endpoint

# Design Patterns

Package Init Registration:
  - All metrics registered in init() function
  - MustRegister panics on duplicate registration

Label Discipline:
  - Use WithLabelValues for cardinality-bounded labels
  - Avoid high-cardinality labels (hashes, entity IDs)
  - Keep label count low (< 5 per metric)

Timer Pattern:
  - Create timer at operation start
  - Defer or explicitly call ObserveDuration/ObserveDurationVec

Inline Updates, No Poller:
  - Every metric above is updated inline by the component that owns
    the event (a CAS Get, a branch publish, a sync round)
  - There is no separate polling collector: dialog has no cluster-wide
    node/task/service inventory to sample on a ticker, unlike systems
    that run a background collector goroutine

# Monitoring

Prometheus Queries (PromQL):

CAS Performance:
  - Request rate: rate(dialog_cas_operations_total[1m])
  - Error rate: rate(dialog_cas_operations_total{result="error"}[1m])
  - p95 latency: histogram_quantile(0.95, dialog_cas_operation_duration_seconds_bucket)

Sync Health:
  - Conflict rate: rate(dialog_sync_conflicts_total[5m])
  - Push/pull duration: histogram_quantile(0.95, dialog_sync_duration_seconds_bucket)

# See Also

  - Prometheus documentation: https://prometheus.io/docs/
  - Prometheus client library: https://github.com/prometheus/client_golang
*/
package metrics
