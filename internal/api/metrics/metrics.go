// Package metrics defines the custom Prometheus metrics of the movie rental
// API. Metric names, labels and help strings live here and nowhere else.
//
// Metrics are registered with the default registry on package init through
// promauto; HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "movie_rental"

// ── Rental metrics ────────────────────────────────────────────────────────────

// RentalsCreatedTotal counts rentals opened successfully.
var RentalsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rentals_created_total",
		Help:      "Total number of rentals created.",
	},
)

// RentalsReturnedTotal counts rentals moved to the returned state.
var RentalsReturnedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rentals_returned_total",
		Help:      "Total number of rentals returned.",
	},
)

// RentalPayment observes the fee charged on return.
var RentalPayment = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rental_payment",
		Help:      "Fee charged when a rental is returned.",
		Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34, 55},
	},
)

// RentalConflictsTotal counts rejected rental state changes.
// Label:
//   - reason: "already_rented", "already_returned" or "invalid_transition"
var RentalConflictsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rental_conflicts_total",
		Help:      "Total number of rental operations rejected by the rental state rules.",
	},
	[]string{"reason"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthFailuresTotal counts requests rejected for authentication reasons.
// Label:
//   - reason: "invalid_credentials", "invalid_token", "account" or "unauthenticated"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of authentication failures, by reason.",
	},
	[]string{"reason"},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// EventsPublishedTotal counts rental event delivery attempts.
// Labels:
//   - type: the event type (e.g. "rental.created")
//   - result: "ok", "error" or "dropped"
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of rental events handed to the publisher, by type and result.",
	},
	[]string{"type", "result"},
)

// EventsQueueDepth tracks the events waiting in each dispatcher worker channel.
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

// EventPublishDuration measures a single publish call.
var EventPublishDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "event_publish_duration_seconds",
		Help:      "Duration of publishing one rental event.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"type"},
)
