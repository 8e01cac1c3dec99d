package service

import (
	"context"
	"testing"

	"github.com/bazaarlabs/bazaar/internal/domain"
	"github.com/bazaarlabs/bazaar/internal/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReturnFixture(t *testing.T, status domain.OrderStatus) (*orderFixture, ReturnService, *domain.Order) {
	t.Helper()
	f := newOrderFixture(t)
	svc := NewReturnService(f.orders, f.publisher, testLogger())
	order := f.placeOrder(t, status)
	return f, svc, order
}

func TestReturnService_RequestReturn(t *testing.T) {
	f, svc, order := newReturnFixture(t, domain.StatusDelivered)
	itemID := order.Items[0].ID

	updated, err := svc.RequestReturn(context.Background(), f.buyer, order.ID, itemID, "damaged")
	require.NoError(t, err)

	item := updated.Item(itemID)
	require.NotNil(t, item)
	assert.Equal(t, domain.ReturnRequested, item.ReturnStatus)
	assert.Equal(t, "damaged", item.ReturnReason)
	require.NotNil(t, item.ReturnRequestedAt)

	assert.Contains(t, f.publisher.subjects(), events.SubjectReturnRequested)

	// A second request on the same line is already actioned.
	_, err = svc.RequestReturn(context.Background(), f.buyer, order.ID, itemID, "changed my mind")
	assert.ErrorIs(t, err, ErrReturnAlreadyActioned)
}

func TestReturnService_RequestReturnGatedOnDelivery(t *testing.T) {
	for _, status := range []domain.OrderStatus{
		domain.StatusProcessing,
		domain.StatusShipped,
		domain.StatusOutForDelivery,
		domain.StatusCancelled,
	} {
		t.Run(string(status), func(t *testing.T) {
			f, svc, order := newReturnFixture(t, status)

			_, err := svc.RequestReturn(context.Background(), f.buyer, order.ID, order.Items[0].ID, "damaged")
			assert.ErrorIs(t, err, ErrOrderNotDelivered)
		})
	}
}

func TestReturnService_RequestReturnValidation(t *testing.T) {
	f, svc, order := newReturnFixture(t, domain.StatusDelivered)
	itemID := order.Items[0].ID

	t.Run("reason required", func(t *testing.T) {
		_, err := svc.RequestReturn(context.Background(), f.buyer, order.ID, itemID, "   ")
		assert.ErrorIs(t, err, ErrReturnReasonRequired)
	})

	t.Run("only the buyer may request", func(t *testing.T) {
		_, err := svc.RequestReturn(context.Background(), f.seller, order.ID, itemID, "damaged")
		assert.ErrorIs(t, err, ErrUnauthorized)

		otherBuyer := domain.Actor{ID: uuid.New(), Role: domain.RoleBuyer}
		_, err = svc.RequestReturn(context.Background(), otherBuyer, order.ID, itemID, "damaged")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown line item", func(t *testing.T) {
		_, err := svc.RequestReturn(context.Background(), f.buyer, order.ID, uuid.New(), "damaged")
		assert.ErrorIs(t, err, ErrOrderItemNotFound)
	})
}

func TestReturnService_ResolveReturn(t *testing.T) {
	f, svc, order := newReturnFixture(t, domain.StatusDelivered)
	itemID := order.Items[0].ID

	_, err := svc.RequestReturn(context.Background(), f.buyer, order.ID, itemID, "damaged")
	require.NoError(t, err)

	updated, err := svc.ResolveReturn(context.Background(), f.admin, order.ID, itemID, domain.DecisionApprove)
	require.NoError(t, err)
	assert.Equal(t, domain.ReturnApproved, updated.Item(itemID).ReturnStatus)
	assert.Contains(t, f.publisher.subjects(), events.SubjectReturnResolved)

	// Resolving twice hits the requested-state precondition.
	_, err = svc.ResolveReturn(context.Background(), f.admin, order.ID, itemID, domain.DecisionReject)
	assert.ErrorIs(t, err, ErrInvalidReturnState)
}

func TestReturnService_ResolveReturnAuthorization(t *testing.T) {
	f, svc, order := newReturnFixture(t, domain.StatusDelivered)
	itemID := order.Items[0].ID

	_, err := svc.RequestReturn(context.Background(), f.buyer, order.ID, itemID, "damaged")
	require.NoError(t, err)

	// The buyer cannot resolve their own return, and neither can a
	// seller who does not own the line item.
	_, err = svc.ResolveReturn(context.Background(), f.buyer, order.ID, itemID, domain.DecisionApprove)
	assert.ErrorIs(t, err, ErrUnauthorized)

	stranger := domain.Actor{ID: uuid.New(), Role: domain.RoleSeller}
	_, err = svc.ResolveReturn(context.Background(), stranger, order.ID, itemID, domain.DecisionApprove)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// The owning seller can.
	updated, err := svc.ResolveReturn(context.Background(), f.seller, order.ID, itemID, domain.DecisionReject)
	require.NoError(t, err)
	assert.Equal(t, domain.ReturnRejected, updated.Item(itemID).ReturnStatus)
}

func TestReturnService_ResolveBeforeRequest(t *testing.T) {
	f, svc, order := newReturnFixture(t, domain.StatusDelivered)

	_, err := svc.ResolveReturn(context.Background(), f.admin, order.ID, order.Items[0].ID, domain.DecisionApprove)
	assert.ErrorIs(t, err, ErrInvalidReturnState)
}
