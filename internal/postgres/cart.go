package postgres

import (
	"context"
	"fmt"

	"github.com/bazaarlabs/bazaar/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CartStore persists per-buyer carts. A cart is just its lines: it comes
// into existence on first add and disappears when cleared, so there is no
// carts table to keep in sync.
type CartStore struct {
	pool *pgxpool.Pool
}

// NewCartStore creates a PostgreSQL-backed cart store.
func NewCartStore(pool *pgxpool.Pool) *CartStore {
	return &CartStore{pool: pool}
}

// Get loads the buyer's cart. An absent cart is returned as an empty one.
func (s *CartStore) Get(ctx context.Context, buyerID uuid.UUID) (*domain.Cart, error) {
	const q = `
		SELECT product_id, qty, added_at
		FROM cart_items
		WHERE buyer_id = $1
		ORDER BY added_at, product_id`

	rows, err := s.pool.Query(ctx, q, pgUUID(buyerID))
	if err != nil {
		return nil, domain.Internal(err, "cart.get", "failed to load cart")
	}
	defer rows.Close()

	cart := &domain.Cart{BuyerID: buyerID}
	for rows.Next() {
		var (
			productID pgtype.UUID
			qty       int32
			addedAt   pgtype.Timestamptz
		)
		if err := rows.Scan(&productID, &qty, &addedAt); err != nil {
			return nil, domain.Internal(err, "cart.get", "failed to scan cart line")
		}
		cart.Lines = append(cart.Lines, domain.CartLine{
			ProductID: fromPGUUID(productID),
			Qty:       qty,
			AddedAt:   addedAt.Time,
		})
		if addedAt.Time.After(cart.UpdatedAt) {
			cart.UpdatedAt = addedAt.Time
		}
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "cart.get", "failed to read cart lines")
	}

	return cart, nil
}

// SetLine inserts the line or overwrites its quantity if it already exists.
// The service layer computes the final quantity; the store just writes it.
func (s *CartStore) SetLine(ctx context.Context, buyerID, productID uuid.UUID, qty int32) error {
	const q = `
		INSERT INTO cart_items (buyer_id, product_id, qty)
		VALUES ($1, $2, $3)
		ON CONFLICT (buyer_id, product_id)
		DO UPDATE SET qty = EXCLUDED.qty`

	if _, err := s.pool.Exec(ctx, q, pgUUID(buyerID), pgUUID(productID), qty); err != nil {
		return domain.Internal(err, "cart.set_line", "failed to write cart line")
	}
	return nil
}

// DeleteLine removes the line. Removing an absent line is not an error.
func (s *CartStore) DeleteLine(ctx context.Context, buyerID, productID uuid.UUID) error {
	const q = `DELETE FROM cart_items WHERE buyer_id = $1 AND product_id = $2`

	if _, err := s.pool.Exec(ctx, q, pgUUID(buyerID), pgUUID(productID)); err != nil {
		return domain.Internal(err, "cart.delete_line", "failed to delete cart line")
	}
	return nil
}

// Clear removes every line from the buyer's cart.
func (s *CartStore) Clear(ctx context.Context, buyerID uuid.UUID) error {
	const q = `DELETE FROM cart_items WHERE buyer_id = $1`

	if _, err := s.pool.Exec(ctx, q, pgUUID(buyerID)); err != nil {
		return domain.Internal(err, "cart.clear", "failed to clear cart")
	}
	return nil
}

// ReplaceWithLine atomically replaces the cart's contents with a single
// line. Backs the "buy now" shortcut: clear-then-add in one transaction, so
// no interleaved request can observe a half-replaced cart.
func (s *CartStore) ReplaceWithLine(ctx context.Context, buyerID, productID uuid.UUID, qty int32) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Internal(err, "cart.replace", "failed to begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE buyer_id = $1`, pgUUID(buyerID)); err != nil {
		return domain.Internal(err, "cart.replace", "failed to clear cart")
	}

	const insert = `INSERT INTO cart_items (buyer_id, product_id, qty) VALUES ($1, $2, $3)`
	if _, err := tx.Exec(ctx, insert, pgUUID(buyerID), pgUUID(productID), qty); err != nil {
		return domain.Internal(err, "cart.replace", "failed to insert cart line")
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Internal(err, "cart.replace", fmt.Sprintf("failed to commit cart replace for buyer %s", buyerID))
	}
	return nil
}
