// Package metrics defines and registers the custom Prometheus metrics for the
// marketplace backend. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Cascade metrics ───────────────────────────────────────────────────────────

// CascadeEventsProcessedTotal counts cascade events that completed processing.
// Labels:
//   - kind: "user-deleted" or "product-deleted"
//   - group: the consumer group that processed the event
var CascadeEventsProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cascade_events_processed_total",
		Help:      "Total number of cascade events successfully processed.",
	},
	[]string{"kind", "group"},
)

// CascadeEventsErrorsTotal counts cascade events whose local processing failed
// and was nacked for redelivery.
var CascadeEventsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cascade_events_errors_total",
		Help:      "Total number of cascade events that failed processing and were nacked.",
	},
	[]string{"kind", "group"},
)

// CascadeEmitFailuresTotal counts downstream emits that failed after the local
// delete had already committed. These events are the known consistency gap:
// nothing redelivers them.
var CascadeEmitFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cascade_emit_failures_total",
		Help:      "Total number of downstream cascade emits that failed after a committed local delete.",
	},
	[]string{"kind"},
)

// CascadeDedupTotal counts dedup marker decisions.
// Label:
//   - result: "hit" (duplicate, skipped) or "miss" (new event, processed)
var CascadeDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cascade_dedup_total",
		Help:      "Total number of cascade dedup checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// CascadeProcessingDuration measures end-to-end handling of one cascade event.
var CascadeProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cascade_processing_duration_seconds",
		Help:      "Duration of cascade event processing from dequeue to completion.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"kind"},
)

// RelayQueueDepth tracks events enqueued on the relay but not yet handed to a
// consumer handler, per topic.
var RelayQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "relay_queue_depth",
		Help:      "Number of cascade events enqueued and awaiting processing, per topic.",
	},
	[]string{"topic"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthFailuresTotal counts rejected bearer tokens.
// Label:
//   - reason: "expired", "invalid", or "missing"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of rejected authentication attempts, by reason.",
	},
	[]string{"reason"},
)
