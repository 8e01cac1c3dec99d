package service

import (
	"context"
	"fmt"

	"github.com/bazaarlabs/bazaar/internal/domain"
	"github.com/google/uuid"
)

// CartService provides business logic for shopping cart operations. Every
// mutation re-validates against live stock so a stale product page cannot
// put more units in a cart than the seller has.
type CartService interface {
	GetCart(ctx context.Context, buyerID uuid.UUID) (*CartSummary, error)
	AddItem(ctx context.Context, buyerID, productID uuid.UUID, qty int32) (*CartSummary, error)
	UpdateQty(ctx context.Context, buyerID, productID uuid.UUID, qty int32) (*CartSummary, error)
	RemoveItem(ctx context.Context, buyerID, productID uuid.UUID) (*CartSummary, error)
	Clear(ctx context.Context, buyerID uuid.UUID) error

	// BuyNow replaces the whole cart with a single line in one atomic
	// write, so a concurrent add cannot land between clear and insert.
	BuyNow(ctx context.Context, buyerID, productID uuid.UUID, qty int32) (*CartSummary, error)
}

// CartSummary is the cart joined with live catalog data. Prices and stock
// are read at call time, never stored on the cart.
type CartSummary struct {
	BuyerID    uuid.UUID
	Items      []CartItem
	ItemsPrice int64
	ItemCount  int32
}

// CartItem is one cart line enriched with the product's live details.
type CartItem struct {
	ProductID    uuid.UUID
	SellerID     uuid.UUID
	Name         string
	Image        string
	UnitPrice    int64
	Qty          int32
	Stock        int32
	LineSubtotal int64
}

type cartService struct {
	carts   CartRepository
	catalog domain.Catalog
}

// NewCartService creates a new CartService instance.
func NewCartService(carts CartRepository, catalog domain.Catalog) CartService {
	return &cartService{carts: carts, catalog: catalog}
}

// GetCart returns the buyer's cart priced against the live catalog. Lines
// whose product has disappeared from the catalog are dropped from the view.
func (s *cartService) GetCart(ctx context.Context, buyerID uuid.UUID) (*CartSummary, error) {
	cart, err := s.carts.Get(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return s.summarize(ctx, cart)
}

// AddItem inserts or increments a cart line, clamped to live stock. Asking
// for more units than exist in one call is rejected with ErrOutOfStock;
// incrementing past stock across calls silently clamps instead, so a
// double-click does not error.
func (s *cartService) AddItem(ctx context.Context, buyerID, productID uuid.UUID, qty int32) (*CartSummary, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.catalog.GetLiveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if qty > product.Stock {
		return nil, ErrOutOfStock
	}

	cart, err := s.carts.Get(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	newQty := qty
	if line := cart.Line(productID); line != nil {
		newQty = line.Qty + qty
	}
	if newQty > product.Stock {
		newQty = product.Stock
	}

	if err := s.carts.SetLine(ctx, buyerID, productID, newQty); err != nil {
		return nil, fmt.Errorf("failed to set cart line: %w", err)
	}

	return s.GetCart(ctx, buyerID)
}

// UpdateQty sets a cart line to an exact quantity.
func (s *cartService) UpdateQty(ctx context.Context, buyerID, productID uuid.UUID, qty int32) (*CartSummary, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.catalog.GetLiveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if qty > product.Stock {
		return nil, ErrOutOfStock
	}

	if err := s.carts.SetLine(ctx, buyerID, productID, qty); err != nil {
		return nil, fmt.Errorf("failed to set cart line: %w", err)
	}

	return s.GetCart(ctx, buyerID)
}

// RemoveItem deletes a cart line. Removing an absent line is not an error.
func (s *cartService) RemoveItem(ctx context.Context, buyerID, productID uuid.UUID) (*CartSummary, error) {
	if err := s.carts.DeleteLine(ctx, buyerID, productID); err != nil {
		return nil, fmt.Errorf("failed to remove cart line: %w", err)
	}
	return s.GetCart(ctx, buyerID)
}

// Clear empties the buyer's cart.
func (s *cartService) Clear(ctx context.Context, buyerID uuid.UUID) error {
	if err := s.carts.Clear(ctx, buyerID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// BuyNow swaps the cart for a single line.
func (s *cartService) BuyNow(ctx context.Context, buyerID, productID uuid.UUID, qty int32) (*CartSummary, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.catalog.GetLiveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if qty > product.Stock {
		return nil, ErrOutOfStock
	}

	if err := s.carts.ReplaceWithLine(ctx, buyerID, productID, qty); err != nil {
		return nil, fmt.Errorf("failed to replace cart: %w", err)
	}

	return s.GetCart(ctx, buyerID)
}

// summarize joins cart lines with live catalog data and totals them.
func (s *cartService) summarize(ctx context.Context, cart *domain.Cart) (*CartSummary, error) {
	summary := &CartSummary{
		BuyerID: cart.BuyerID,
		Items:   make([]CartItem, 0, len(cart.Lines)),
	}

	for _, line := range cart.Lines {
		product, err := s.catalog.GetLiveProduct(ctx, line.ProductID)
		if err != nil {
			if domain.ErrorCode(err) == domain.ENOTFOUND {
				continue
			}
			return nil, err
		}

		subtotal := int64(line.Qty) * product.Price
		summary.Items = append(summary.Items, CartItem{
			ProductID:    product.ID,
			SellerID:     product.SellerID,
			Name:         product.Name,
			Image:        product.Image,
			UnitPrice:    product.Price,
			Qty:          line.Qty,
			Stock:        product.Stock,
			LineSubtotal: subtotal,
		})
		summary.ItemsPrice += subtotal
		summary.ItemCount += line.Qty
	}

	return summary, nil
}
