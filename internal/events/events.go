// Package events publishes order lifecycle events for downstream consumers
// (notification and analytics services). Delivery is fire-and-forget: a
// publish failure is logged by the caller, never surfaced to the buyer.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Subjects for order lifecycle events.
const (
	SubjectOrderCreated    = "order.created"
	SubjectStatusChanged   = "order.status_changed"
	SubjectReturnRequested = "order.return_requested"
	SubjectReturnResolved  = "order.return_resolved"
)

// Publisher emits order lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, subject string, event any) error
	Close()
}

// OrderCreated is emitted once per order, after the order is persisted.
type OrderCreated struct {
	OrderID     uuid.UUID   `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	BuyerID     uuid.UUID   `json:"buyer_id"`
	SellerIDs   []uuid.UUID `json:"seller_ids"`
	TotalPrice  int64       `json:"total_price"`
	CreatedAt   time.Time   `json:"created_at"`
}

// StatusChanged is emitted on every successful status transition.
type StatusChanged struct {
	OrderID   uuid.UUID `json:"order_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ActorID   uuid.UUID `json:"actor_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReturnRequested is emitted when a buyer opens a return on a line item.
type ReturnRequested struct {
	OrderID     uuid.UUID `json:"order_id"`
	LineItemID  uuid.UUID `json:"line_item_id"`
	SellerID    uuid.UUID `json:"seller_id"`
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

// ReturnResolved is emitted when a seller or admin resolves a return.
type ReturnResolved struct {
	OrderID    uuid.UUID `json:"order_id"`
	LineItemID uuid.UUID `json:"line_item_id"`
	Decision   string    `json:"decision"`
	ActorID    uuid.UUID `json:"actor_id"`
	ResolvedAt time.Time `json:"resolved_at"`
}
