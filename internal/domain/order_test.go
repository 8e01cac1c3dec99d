package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusShipped, StatusOutForDelivery, true},
		{StatusOutForDelivery, StatusDelivered, true},

		// No skipping forward.
		{StatusProcessing, StatusOutForDelivery, false},
		{StatusProcessing, StatusDelivered, false},
		{StatusShipped, StatusDelivered, false},

		// No moving backward.
		{StatusShipped, StatusProcessing, false},
		{StatusDelivered, StatusOutForDelivery, false},

		// Cancellation only from processing.
		{StatusShipped, StatusCancelled, false},
		{StatusOutForDelivery, StatusCancelled, false},
		{StatusDelivered, StatusCancelled, false},

		// Terminal states go nowhere.
		{StatusDelivered, StatusShipped, false},
		{StatusCancelled, StatusProcessing, false},
		{StatusCancelled, StatusShipped, false},
	}

	for _, tt := range tests {
		got := tt.from.CanTransition(tt.to)
		assert.Equalf(t, tt.allowed, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	assert.False(t, StatusProcessing.Terminal())
	assert.False(t, StatusShipped.Terminal())
	assert.False(t, StatusOutForDelivery.Terminal())
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestParseOrderStatus(t *testing.T) {
	s, ok := ParseOrderStatus("Shipped")
	assert.True(t, ok)
	assert.Equal(t, StatusShipped, s)

	s, ok = ParseOrderStatus("  out_for_delivery ")
	assert.True(t, ok)
	assert.Equal(t, StatusOutForDelivery, s)

	// Anything outside the closed set is rejected, never stored.
	_, ok = ParseOrderStatus("refunded")
	assert.False(t, ok)
	_, ok = ParseOrderStatus("")
	assert.False(t, ok)
}

func TestParseReturnDecision(t *testing.T) {
	d, ok := ParseReturnDecision("Approved")
	assert.True(t, ok)
	assert.Equal(t, DecisionApprove, d)

	_, ok = ParseReturnDecision("maybe")
	assert.False(t, ok)
}

func TestOrder_Status_HeadOfTracking(t *testing.T) {
	now := time.Now()
	o := &Order{
		Tracking: []TrackingEvent{
			{Status: StatusShipped, UpdatedAt: now},
			{Status: StatusProcessing, UpdatedAt: now.Add(-time.Hour)},
		},
	}
	assert.Equal(t, StatusShipped, o.Status())
}

func TestOrder_SellerAttribution(t *testing.T) {
	sellerA := uuid.New()
	sellerB := uuid.New()

	o := &Order{
		Items: []OrderLineItem{
			{ID: uuid.New(), SellerID: sellerA, Name: "Handloom Saree", UnitPrice: 150000, Qty: 1},
			{ID: uuid.New(), SellerID: sellerB, Name: "Brass Lamp", UnitPrice: 80000, Qty: 2},
			{ID: uuid.New(), SellerID: sellerA, Name: "Silk Scarf", UnitPrice: 40000, Qty: 3},
		},
	}

	itemsA := o.ItemsForSeller(sellerA)
	assert.Len(t, itemsA, 2)
	assert.Equal(t, int64(150000+3*40000), o.SellerSubtotal(sellerA))
	assert.Equal(t, int64(2*80000), o.SellerSubtotal(sellerB))
	assert.True(t, o.HasSeller(sellerB))
	assert.False(t, o.HasSeller(uuid.New()))

	// The projection is a copy; mutating it must not touch the order.
	itemsA[0].ReturnStatus = ReturnRequested
	assert.Equal(t, ReturnStatus(""), o.Items[0].ReturnStatus)

	assert.Empty(t, o.ItemsForSeller(uuid.New()))
	assert.Zero(t, o.SellerSubtotal(uuid.New()))
}

func TestOrder_CheckTotals(t *testing.T) {
	o := &Order{
		Items: []OrderLineItem{
			{UnitPrice: 50000, Qty: 2},
		},
		ShippingPrice: 5000,
		TaxPrice:      18000,
		TotalPrice:    123000,
	}
	assert.NoError(t, o.CheckTotals())

	// One minor unit of rounding slack is tolerated.
	o.TotalPrice = 123001
	assert.NoError(t, o.CheckTotals())

	o.TotalPrice = 123500
	assert.ErrorIs(t, o.CheckTotals(), ErrTotalMismatch)
}
