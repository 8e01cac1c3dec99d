package service

import (
	"context"
	"time"

	"github.com/bazaarlabs/bazaar/internal/domain"
	"github.com/google/uuid"
)

// CartRepository persists per-buyer cart lines. Implemented by
// postgres.CartStore.
type CartRepository interface {
	// Get returns the buyer's cart; an empty cart when no lines exist.
	Get(ctx context.Context, buyerID uuid.UUID) (*domain.Cart, error)

	// SetLine inserts or overwrites one line at the given quantity.
	SetLine(ctx context.Context, buyerID, productID uuid.UUID, qty int32) error

	// DeleteLine removes one line; removing an absent line is not an error.
	DeleteLine(ctx context.Context, buyerID, productID uuid.UUID) error

	// Clear removes all of the buyer's lines.
	Clear(ctx context.Context, buyerID uuid.UUID) error

	// ReplaceWithLine atomically replaces the whole cart with a single line.
	ReplaceWithLine(ctx context.Context, buyerID, productID uuid.UUID, qty int32) error
}

// OrderRepository persists the order aggregate. Implemented by
// postgres.OrderStore. All conditional writes are atomic at the database;
// callers rely on that for their concurrency guarantees.
type OrderRepository interface {
	// Create persists the order, decrements stock, and returns
	// created=false with the existing order when one already exists for the
	// same provider payment id.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, bool, error)

	Get(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	GetByProviderPaymentID(ctx context.Context, providerID string) (*domain.Order, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*domain.Order, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*domain.Order, error)

	// AdvanceStatus compare-and-sets the order status and appends a
	// tracking event. Returns domain.ErrConcurrentStatusChange when the
	// head status is no longer `from`.
	AdvanceStatus(ctx context.Context, orderID uuid.UUID, from, to domain.OrderStatus, at time.Time) error

	// RequestReturn opens a return on a line item, conditional on its
	// return status still being none.
	RequestReturn(ctx context.Context, orderID, itemID uuid.UUID, reason string, at time.Time) error

	// ResolveReturn settles a return, conditional on its return status
	// still being requested.
	ResolveReturn(ctx context.Context, orderID, itemID uuid.UUID, decision domain.ReturnDecision) error
}
