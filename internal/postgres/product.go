package postgres

import (
	"context"
	"errors"

	"github.com/bazaarlabs/bazaar/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductStore reads live catalog state. It is the narrow boundary to the
// catalog collaborator: current price, stock, and owning seller only.
type ProductStore struct {
	pool *pgxpool.Pool
}

// Compile-time check that ProductStore implements domain.Catalog.
var _ domain.Catalog = (*ProductStore)(nil)

// NewProductStore creates a PostgreSQL-backed catalog reader.
func NewProductStore(pool *pgxpool.Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

// GetLiveProduct returns the product's current price, stock, and seller.
func (s *ProductStore) GetLiveProduct(ctx context.Context, productID uuid.UUID) (*domain.LiveProduct, error) {
	const q = `
		SELECT id, seller_id, name, image, price, stock
		FROM products
		WHERE id = $1`

	var (
		p            domain.LiveProduct
		id, sellerID pgtype.UUID
	)
	err := s.pool.QueryRow(ctx, q, pgUUID(productID)).Scan(
		&id, &sellerID, &p.Name, &p.Image, &p.Price, &p.Stock,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, domain.Internal(err, "product.get_live", "failed to load product")
	}

	p.ID = fromPGUUID(id)
	p.SellerID = fromPGUUID(sellerID)
	return &p, nil
}
