// Package metrics defines and registers all custom Prometheus metrics for the
// marketplace service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry through promauto
// when the package is initialised.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Unit of work metrics ─────────────────────────────────────────────────────

// UnitOfWorkTotal counts finished unit-of-work scopes.
// Labels:
//   - driver: storage driver ("mongo" or "memory")
//   - result: "committed", "conflict" (optimistic version check lost) or "rolled_back"
var UnitOfWorkTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unit_of_work_total",
		Help:      "Total number of unit-of-work scopes, by storage driver and outcome.",
	},
	[]string{"driver", "result"},
)

// PermissionDenialsTotal counts requests rejected because a visa denied them.
// Label:
//   - method: HTTP method of the rejected request
var PermissionDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "permission_denials_total",
		Help:      "Total number of requests rejected by a visa.",
	},
	[]string{"method"},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// EventsDispatchedTotal counts successful handler invocations.
// Labels:
//   - event_type: e.g. "listing.ListingPublished"
//   - handler: registered handler name
var EventsDispatchedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dispatched_total",
		Help:      "Total number of events successfully handled, by event type and handler.",
	},
	[]string{"event_type", "handler"},
)

// EventsFailedTotal counts handler invocations that still failed after every retry.
var EventsFailedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_failed_total",
		Help:      "Total number of events whose handler failed after all attempts.",
	},
	[]string{"event_type", "handler"},
)

// EventsDedupTotal counts deduplication decisions.
// Label:
//   - result: "hit" (already handled, skipped) or "miss" (handler runs)
var EventsDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dedup_total",
		Help:      "Total number of deduplication checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// EventsQueueDepth tracks the current number of events waiting in each worker queue.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// EventHandlerDuration measures one handler invocation including retries.
var EventHandlerDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "event_handler_duration_seconds",
		Help:      "Duration of event handling from dequeue to completion.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"handler"},
)

// ── Integration metrics ───────────────────────────────────────────────────────

// IntegrationEventsForwardedTotal counts integration events published to Kafka.
// Label:
//   - result: "ok" or "error"
var IntegrationEventsForwardedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "integration_events_forwarded_total",
		Help:      "Total number of integration events forwarded to the message broker.",
	},
	[]string{"result"},
)
