package service

import (
	"context"
	"testing"

	"github.com/bazaarlabs/bazaar/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_AddItem(t *testing.T) {
	buyerID := uuid.New()
	sellerID := uuid.New()
	product := domain.LiveProduct{
		ID:       uuid.New(),
		SellerID: sellerID,
		Name:     "Steel Water Bottle 1L",
		Price:    50000,
		Stock:    10,
	}

	t.Run("inserts a new line", func(t *testing.T) {
		svc := NewCartService(newMockCartRepo(), newMockCatalog(product))

		summary, err := svc.AddItem(context.Background(), buyerID, product.ID, 2)
		require.NoError(t, err)

		require.Len(t, summary.Items, 1)
		assert.Equal(t, int32(2), summary.Items[0].Qty)
		assert.Equal(t, int64(50000), summary.Items[0].UnitPrice)
		assert.Equal(t, int64(100000), summary.ItemsPrice)
	})

	t.Run("increments an existing line", func(t *testing.T) {
		svc := NewCartService(newMockCartRepo(), newMockCatalog(product))

		_, err := svc.AddItem(context.Background(), buyerID, product.ID, 2)
		require.NoError(t, err)
		summary, err := svc.AddItem(context.Background(), buyerID, product.ID, 3)
		require.NoError(t, err)

		require.Len(t, summary.Items, 1)
		assert.Equal(t, int32(5), summary.Items[0].Qty)
	})

	t.Run("clamps accumulated quantity to stock", func(t *testing.T) {
		svc := NewCartService(newMockCartRepo(), newMockCatalog(product))

		_, err := svc.AddItem(context.Background(), buyerID, product.ID, 8)
		require.NoError(t, err)
		summary, err := svc.AddItem(context.Background(), buyerID, product.ID, 8)
		require.NoError(t, err)

		assert.Equal(t, int32(10), summary.Items[0].Qty)
	})

	t.Run("rejects a single request above stock", func(t *testing.T) {
		svc := NewCartService(newMockCartRepo(), newMockCatalog(product))

		_, err := svc.AddItem(context.Background(), buyerID, product.ID, 11)
		assert.ErrorIs(t, err, ErrOutOfStock)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		svc := NewCartService(newMockCartRepo(), newMockCatalog(product))

		_, err := svc.AddItem(context.Background(), buyerID, product.ID, 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("rejects unknown product", func(t *testing.T) {
		svc := NewCartService(newMockCartRepo(), newMockCatalog(product))

		_, err := svc.AddItem(context.Background(), buyerID, uuid.New(), 1)
		assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
	})
}

func TestCartService_UpdateQty(t *testing.T) {
	buyerID := uuid.New()
	product := domain.LiveProduct{ID: uuid.New(), SellerID: uuid.New(), Name: "Jute Tote", Price: 25000, Stock: 5}

	catalog := newMockCatalog(product)
	svc := NewCartService(newMockCartRepo(), catalog)

	_, err := svc.AddItem(context.Background(), buyerID, product.ID, 1)
	require.NoError(t, err)

	summary, err := svc.UpdateQty(context.Background(), buyerID, product.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, int32(4), summary.Items[0].Qty)

	_, err = svc.UpdateQty(context.Background(), buyerID, product.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.UpdateQty(context.Background(), buyerID, product.ID, 6)
	assert.ErrorIs(t, err, ErrOutOfStock)
}

func TestCartService_RemoveItemIsIdempotent(t *testing.T) {
	buyerID := uuid.New()
	product := domain.LiveProduct{ID: uuid.New(), SellerID: uuid.New(), Name: "Clay Diya Set", Price: 15000, Stock: 50}

	svc := NewCartService(newMockCartRepo(), newMockCatalog(product))

	_, err := svc.AddItem(context.Background(), buyerID, product.ID, 2)
	require.NoError(t, err)

	summary, err := svc.RemoveItem(context.Background(), buyerID, product.ID)
	require.NoError(t, err)
	assert.Empty(t, summary.Items)

	// Removing the same line again must not error.
	summary, err = svc.RemoveItem(context.Background(), buyerID, product.ID)
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
}

func TestCartService_BuyNowReplacesCart(t *testing.T) {
	buyerID := uuid.New()
	old := domain.LiveProduct{ID: uuid.New(), SellerID: uuid.New(), Name: "Old Thing", Price: 10000, Stock: 9}
	wanted := domain.LiveProduct{ID: uuid.New(), SellerID: uuid.New(), Name: "Wanted Thing", Price: 30000, Stock: 3}

	svc := NewCartService(newMockCartRepo(), newMockCatalog(old, wanted))

	_, err := svc.AddItem(context.Background(), buyerID, old.ID, 2)
	require.NoError(t, err)

	summary, err := svc.BuyNow(context.Background(), buyerID, wanted.ID, 1)
	require.NoError(t, err)

	require.Len(t, summary.Items, 1)
	assert.Equal(t, wanted.ID, summary.Items[0].ProductID)
	assert.Equal(t, int32(1), summary.Items[0].Qty)

	_, err = svc.BuyNow(context.Background(), buyerID, wanted.ID, 4)
	assert.ErrorIs(t, err, ErrOutOfStock)
}

func TestCartService_DroppedProductOmittedFromSummary(t *testing.T) {
	buyerID := uuid.New()
	product := domain.LiveProduct{ID: uuid.New(), SellerID: uuid.New(), Name: "Discontinued", Price: 5000, Stock: 2}

	catalog := newMockCatalog(product)
	svc := NewCartService(newMockCartRepo(), catalog)

	_, err := svc.AddItem(context.Background(), buyerID, product.ID, 1)
	require.NoError(t, err)

	catalog.mu.Lock()
	delete(catalog.products, product.ID)
	catalog.mu.Unlock()

	summary, err := svc.GetCart(context.Background(), buyerID)
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
}
