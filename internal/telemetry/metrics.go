// Package telemetry exposes Prometheus metrics for business-level
// observability of the order lifecycle.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus collectors for the order funnel.
type BusinessMetrics struct {
	// Cart
	CartItemsAdded *prometheus.CounterVec
	CartCleared    prometheus.Counter

	// Checkout
	QuotesIssued   prometheus.Counter
	IntentsCreated *prometheus.CounterVec

	// Orders
	OrdersCreated     prometheus.Counter
	OrderValue        prometheus.Histogram
	OrderItemCount    prometheus.Histogram
	StatusTransitions *prometheus.CounterVec

	// Returns
	ReturnsRequested prometheus.Counter
	ReturnsResolved  *prometheus.CounterVec

	// Payment gateway health
	GatewayErrors *prometheus.CounterVec
}

// NewBusinessMetrics creates and registers the business metric collectors on
// the given registerer; pass nil for the default registry.
func NewBusinessMetrics(reg prometheus.Registerer) *BusinessMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &BusinessMetrics{
		CartItemsAdded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bazaar",
			Name:      "cart_items_added_total",
			Help:      "Cart line additions, by result",
		}, []string{"result"}),
		CartCleared: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bazaar",
			Name:      "cart_cleared_total",
			Help:      "Carts emptied, by buyers or by order creation",
		}),
		QuotesIssued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bazaar",
			Name:      "checkout_quotes_total",
			Help:      "Checkout quotes issued",
		}),
		IntentsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bazaar",
			Name:      "payment_intents_total",
			Help:      "Payment intents created, by result",
		}, []string{"result"}),
		OrdersCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bazaar",
			Name:      "orders_created_total",
			Help:      "Orders persisted (idempotent replays excluded)",
		}),
		OrderValue: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bazaar",
			Name:      "order_value_paise",
			Help:      "Order totals in paise",
			Buckets:   prometheus.ExponentialBuckets(10000, 4, 8),
		}),
		OrderItemCount: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bazaar",
			Name:      "order_item_count",
			Help:      "Line items per order",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		}),
		StatusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bazaar",
			Name:      "order_status_transitions_total",
			Help:      "Order status transitions, by target status and result",
		}, []string{"to", "result"}),
		ReturnsRequested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bazaar",
			Name:      "returns_requested_total",
			Help:      "Return requests opened",
		}),
		ReturnsResolved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bazaar",
			Name:      "returns_resolved_total",
			Help:      "Return requests settled, by decision",
		}, []string{"decision"}),
		GatewayErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bazaar",
			Name:      "payment_gateway_errors_total",
			Help:      "Payment provider failures, by operation",
		}, []string{"op"}),
	}
}
