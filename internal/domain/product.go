package domain

import (
	"context"

	"github.com/google/uuid"
)

// Product-related domain errors.
var (
	ErrProductNotFound = &Error{Code: ENOTFOUND, Message: "Product not found"}
)

// LiveProduct is the catalog collaborator's view of a product at this instant:
// the current price, stock, and owning seller. Catalog management (search,
// browsing, editing) lives outside this service; we only ever read.
type LiveProduct struct {
	ID       uuid.UUID
	SellerID uuid.UUID
	Name     string
	Image    string
	Price    int64 // unit price in minor currency units (paise)
	Stock    int32
}

// Catalog resolves live product state. Implementations read the shared
// catalog storage; tests substitute an in-memory fake.
type Catalog interface {
	// GetLiveProduct returns current price, stock, and seller for a product.
	// Returns ErrProductNotFound if the product does not exist.
	GetLiveProduct(ctx context.Context, productID uuid.UUID) (*LiveProduct, error)
}
