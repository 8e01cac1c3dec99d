package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/bazaarlabs/bazaar/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

// OrderStore persists the Order aggregate. Orders are never deleted; after
// creation only the status column (with its tracking history) and per-item
// return fields are writable, each behind a conditional UPDATE.
type OrderStore struct {
	pool *pgxpool.Pool
}

// NewOrderStore creates a PostgreSQL-backed order store.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// Create persists the order, its frozen items, and its seed tracking event,
// and decrements product stock, all in one transaction.
//
// Idempotency: the unique index on provider_payment_id makes two concurrent
// creates for the same payment race at the database, not in application
// code. The loser's insert fails with a unique violation and the existing
// order is returned with created=false.
//
// A conditional stock decrement (WHERE stock >= qty) failing for any line
// aborts the transaction with ErrPriceOrStockChanged.
func (s *OrderStore) Create(ctx context.Context, order *domain.Order) (*domain.Order, bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, false, domain.Internal(err, "order.create", "failed to begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, item := range order.Items {
		const decrement = `
			UPDATE products
			SET stock = stock - $2, updated_at = now()
			WHERE id = $1 AND stock >= $2`

		tag, err := tx.Exec(ctx, decrement, pgUUID(item.ProductID), item.Qty)
		if err != nil {
			return nil, false, domain.Internal(err, "order.create", "failed to decrement stock")
		}
		if tag.RowsAffected() == 0 {
			return nil, false, domain.ErrPriceOrStockChanged
		}
	}

	const insertOrder = `
		INSERT INTO orders (
			id, order_number, buyer_id,
			shipping_address, shipping_city, shipping_postal_code, shipping_country,
			payment_method, provider_payment_id, payment_status, payer_email,
			items_price, shipping_price, tax_price, total_price,
			is_paid, paid_at, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	_, err = tx.Exec(ctx, insertOrder,
		pgUUID(order.ID), order.OrderNumber, pgUUID(order.BuyerID),
		order.ShippingAddress.Address, order.ShippingAddress.City,
		order.ShippingAddress.PostalCode, order.ShippingAddress.Country,
		order.PaymentMethod, order.Payment.ProviderID, order.Payment.Status, order.Payment.PayerEmail,
		order.ItemsPrice, order.ShippingPrice, order.TaxPrice, order.TotalPrice,
		order.IsPaid, order.PaidAt, string(order.Status()), order.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			// Lost the idempotency race (or a webhook retry): the order
			// for this payment already exists.
			existing, getErr := s.GetByProviderPaymentID(ctx, order.Payment.ProviderID)
			if getErr != nil {
				return nil, false, getErr
			}
			return existing, false, nil
		}
		return nil, false, domain.Internal(err, "order.create", "failed to insert order")
	}

	const insertItem = `
		INSERT INTO order_items (
			id, order_id, product_id, seller_id, name, image, unit_price, qty, return_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	for _, item := range order.Items {
		_, err = tx.Exec(ctx, insertItem,
			pgUUID(item.ID), pgUUID(order.ID), pgUUID(item.ProductID), pgUUID(item.SellerID),
			item.Name, item.Image, item.UnitPrice, item.Qty, string(item.ReturnStatus),
		)
		if err != nil {
			return nil, false, domain.Internal(err, "order.create", "failed to insert order item")
		}
	}

	const insertTracking = `
		INSERT INTO order_tracking_events (order_id, status, updated_at)
		VALUES ($1, $2, $3)`

	for i := len(order.Tracking) - 1; i >= 0; i-- {
		event := order.Tracking[i]
		if _, err := tx.Exec(ctx, insertTracking, pgUUID(order.ID), string(event.Status), event.UpdatedAt); err != nil {
			return nil, false, domain.Internal(err, "order.create", "failed to insert tracking event")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, domain.Internal(err, "order.create", "failed to commit order")
	}

	return order, true, nil
}

// Get loads an order with its items and tracking history.
func (s *OrderStore) Get(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return s.getOrder(ctx, `WHERE id = $1`, pgUUID(orderID))
}

// GetByProviderPaymentID loads an order by its payment idempotency key.
// Returns domain.ErrOrderNotFound when no order exists for the payment.
func (s *OrderStore) GetByProviderPaymentID(ctx context.Context, providerID string) (*domain.Order, error) {
	return s.getOrder(ctx, `WHERE provider_payment_id = $1`, providerID)
}

// ListByBuyer returns the buyer's orders, newest first.
func (s *OrderStore) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*domain.Order, error) {
	return s.listOrders(ctx, `
		SELECT id FROM orders
		WHERE buyer_id = $1
		ORDER BY created_at DESC`, pgUUID(buyerID))
}

// ListBySeller returns every order containing at least one of the seller's
// line items, newest first.
func (s *OrderStore) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*domain.Order, error) {
	return s.listOrders(ctx, `
		SELECT id FROM orders o
		WHERE EXISTS (
			SELECT 1 FROM order_items oi
			WHERE oi.order_id = o.id AND oi.seller_id = $1
		)
		ORDER BY created_at DESC`, pgUUID(sellerID))
}

// AdvanceStatus performs the compare-and-set status transition: the UPDATE
// only matches if the head status is still the one the caller saw. Zero rows
// with an existing order means somebody advanced the order first, surfaced
// as ErrConcurrentStatusChange so the caller can re-fetch and retry.
func (s *OrderStore) AdvanceStatus(ctx context.Context, orderID uuid.UUID, from, to domain.OrderStatus, at time.Time) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Internal(err, "order.advance", "failed to begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const cas = `UPDATE orders SET status = $3 WHERE id = $1 AND status = $2`

	tag, err := tx.Exec(ctx, cas, pgUUID(orderID), string(from), string(to))
	if err != nil {
		return domain.Internal(err, "order.advance", "failed to update order status")
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, pgUUID(orderID)).Scan(&exists); err != nil {
			return domain.Internal(err, "order.advance", "failed to check order existence")
		}
		if !exists {
			return domain.ErrOrderNotFound
		}
		return domain.ErrConcurrentStatusChange
	}

	const insertEvent = `
		INSERT INTO order_tracking_events (order_id, status, updated_at)
		VALUES ($1, $2, $3)`

	if _, err := tx.Exec(ctx, insertEvent, pgUUID(orderID), string(to), at); err != nil {
		return domain.Internal(err, "order.advance", "failed to append tracking event")
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Internal(err, "order.advance", "failed to commit status change")
	}
	return nil
}

// RequestReturn opens a return on a line item. The return_status = 'none'
// condition makes the precondition and the write one atomic statement; zero
// rows means the item was already actioned.
func (s *OrderStore) RequestReturn(ctx context.Context, orderID, itemID uuid.UUID, reason string, at time.Time) error {
	const q = `
		UPDATE order_items
		SET return_status = $3, return_reason = $4, return_requested_at = $5
		WHERE id = $1 AND order_id = $2 AND return_status = $6`

	tag, err := s.pool.Exec(ctx, q,
		pgUUID(itemID), pgUUID(orderID),
		string(domain.ReturnRequested), reason, at, string(domain.ReturnNone),
	)
	if err != nil {
		return domain.Internal(err, "return.request", "failed to update return status")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReturnAlreadyActioned
	}
	return nil
}

// ResolveReturn settles a requested return. Conditional on the current
// return_status being 'requested', so an admin and the owning seller racing
// to resolve cannot both win.
func (s *OrderStore) ResolveReturn(ctx context.Context, orderID, itemID uuid.UUID, decision domain.ReturnDecision) error {
	const q = `
		UPDATE order_items
		SET return_status = $3
		WHERE id = $1 AND order_id = $2 AND return_status = $4`

	tag, err := s.pool.Exec(ctx, q,
		pgUUID(itemID), pgUUID(orderID),
		string(decision), string(domain.ReturnRequested),
	)
	if err != nil {
		return domain.Internal(err, "return.resolve", "failed to update return status")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidReturnState
	}
	return nil
}

// getOrder loads one order row matching the WHERE clause, plus children.
func (s *OrderStore) getOrder(ctx context.Context, where string, arg any) (*domain.Order, error) {
	q := `
		SELECT id, order_number, buyer_id,
			shipping_address, shipping_city, shipping_postal_code, shipping_country,
			payment_method, provider_payment_id, payment_status, payer_email,
			items_price, shipping_price, tax_price, total_price,
			is_paid, paid_at, created_at
		FROM orders ` + where

	var (
		order       domain.Order
		id, buyerID pgtype.UUID
		paidAt      pgtype.Timestamptz
		createdAt   pgtype.Timestamptz
	)
	err := s.pool.QueryRow(ctx, q, arg).Scan(
		&id, &order.OrderNumber, &buyerID,
		&order.ShippingAddress.Address, &order.ShippingAddress.City,
		&order.ShippingAddress.PostalCode, &order.ShippingAddress.Country,
		&order.PaymentMethod, &order.Payment.ProviderID, &order.Payment.Status, &order.Payment.PayerEmail,
		&order.ItemsPrice, &order.ShippingPrice, &order.TaxPrice, &order.TotalPrice,
		&order.IsPaid, &paidAt, &createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.Internal(err, "order.get", "failed to load order")
	}

	order.ID = fromPGUUID(id)
	order.BuyerID = fromPGUUID(buyerID)
	order.CreatedAt = createdAt.Time
	if paidAt.Valid {
		t := paidAt.Time
		order.PaidAt = &t
	}

	if err := s.loadItems(ctx, &order); err != nil {
		return nil, err
	}
	if err := s.loadTracking(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// listOrders resolves ids with the given query, then loads each aggregate.
func (s *OrderStore) listOrders(ctx context.Context, q string, arg any) ([]*domain.Order, error) {
	rows, err := s.pool.Query(ctx, q, arg)
	if err != nil {
		return nil, domain.Internal(err, "order.list", "failed to list orders")
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, domain.Internal(err, "order.list", "failed to scan order id")
		}
		ids = append(ids, fromPGUUID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "order.list", "failed to read order ids")
	}

	orders := make([]*domain.Order, 0, len(ids))
	for _, id := range ids {
		order, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (s *OrderStore) loadItems(ctx context.Context, order *domain.Order) error {
	const q = `
		SELECT id, product_id, seller_id, name, image, unit_price, qty,
			return_status, return_reason, return_requested_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`

	rows, err := s.pool.Query(ctx, q, pgUUID(order.ID))
	if err != nil {
		return domain.Internal(err, "order.get", "failed to load order items")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item                    domain.OrderLineItem
			id, productID, sellerID pgtype.UUID
			returnStatus            string
			requestedAt             pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &productID, &sellerID, &item.Name, &item.Image,
			&item.UnitPrice, &item.Qty, &returnStatus, &item.ReturnReason, &requestedAt); err != nil {
			return domain.Internal(err, "order.get", "failed to scan order item")
		}
		item.ID = fromPGUUID(id)
		item.ProductID = fromPGUUID(productID)
		item.SellerID = fromPGUUID(sellerID)
		item.ReturnStatus = domain.ReturnStatus(returnStatus)
		if requestedAt.Valid {
			t := requestedAt.Time
			item.ReturnRequestedAt = &t
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

func (s *OrderStore) loadTracking(ctx context.Context, order *domain.Order) error {
	// Newest first: the head row is the current status.
	const q = `
		SELECT status, updated_at
		FROM order_tracking_events
		WHERE order_id = $1
		ORDER BY id DESC`

	rows, err := s.pool.Query(ctx, q, pgUUID(order.ID))
	if err != nil {
		return domain.Internal(err, "order.get", "failed to load tracking history")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status    string
			updatedAt pgtype.Timestamptz
		)
		if err := rows.Scan(&status, &updatedAt); err != nil {
			return domain.Internal(err, "order.get", "failed to scan tracking event")
		}
		order.Tracking = append(order.Tracking, domain.TrackingEvent{
			Status:    domain.OrderStatus(status),
			UpdatedAt: updatedAt.Time,
		})
	}
	return rows.Err()
}
