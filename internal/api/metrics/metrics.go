// Package metrics defines the custom Prometheus metrics of the StaFull auth
// gateway. Metric names, labels and help strings live here and nowhere else.
//
// Metrics register with the default registry at package init through promauto;
// /metrics serves that registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stafull"

// ── Auth gateway ──────────────────────────────────────────────────────────────

// AuthOperationsTotal counts auth calls made on behalf of a session.
// Labels:
//   - operation: login, register, verify_email, resend_verification,
//     request_reset, reset_password, accept_terms
//   - outcome: ok, validation, rejected, network, busy, error
var AuthOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_operations_total",
		Help:      "Total number of auth operations, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// DecisionsTotal counts routing decisions by resulting session state.
var DecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_decisions_total",
		Help:      "Total number of auth state decisions, by state.",
	},
	[]string{"state"},
)

// UpstreamRequestDuration measures calls to the external auth API.
// Label:
//   - operation: the auth client method
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "auth_upstream_request_duration_seconds",
		Help:      "Duration of requests to the external auth API.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// ── Driver portal ─────────────────────────────────────────────────────────────

// ModeTransitionsTotal counts driver mode changes.
var ModeTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "driver_mode_transitions_total",
		Help:      "Total number of driver mode transitions, by from/to mode.",
	},
	[]string{"from", "to"},
)

// DeliveriesCompletedTotal counts completed deliveries.
var DeliveriesCompletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "driver_deliveries_completed_total",
		Help:      "Total number of deliveries completed with a full checklist.",
	},
)

// TelemetryQueueDepth tracks samples waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index
var TelemetryQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "driver_telemetry_queue_depth",
		Help:      "Current number of telemetry samples pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// TelemetryErrorsTotal counts telemetry samples the workers failed to apply.
var TelemetryErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "driver_telemetry_errors_total",
		Help:      "Total number of telemetry samples that failed processing.",
	},
	[]string{"reason"},
)
