package service

import (
	"context"
	"strings"
	"time"

	"github.com/bazaarlabs/bazaar/internal/domain"
	"github.com/bazaarlabs/bazaar/internal/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReturnService drives the per-line-item return workflow:
// none → requested → approved | rejected.
type ReturnService interface {
	// RequestReturn opens a return on one line item. Only the order's
	// buyer may request, only after delivery, and only once per item.
	RequestReturn(ctx context.Context, actor domain.Actor, orderID, itemID uuid.UUID, reason string) (*domain.Order, error)

	// ResolveReturn settles a requested return. Only the seller owning
	// the line item or an admin may resolve.
	ResolveReturn(ctx context.Context, actor domain.Actor, orderID, itemID uuid.UUID, decision domain.ReturnDecision) (*domain.Order, error)
}

type returnService struct {
	orders OrderRepository
	events events.Publisher
	logger zerolog.Logger
}

// NewReturnService creates a new ReturnService instance.
func NewReturnService(orders OrderRepository, publisher events.Publisher, logger zerolog.Logger) ReturnService {
	return &returnService{orders: orders, events: publisher, logger: logger}
}

func (s *returnService) RequestReturn(ctx context.Context, actor domain.Actor, orderID, itemID uuid.UUID, reason string) (*domain.Order, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReturnReasonRequired
	}

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actor.ID != order.BuyerID || actor.Role != domain.RoleBuyer {
		return nil, ErrUnauthorized
	}
	if order.Status() != domain.StatusDelivered {
		return nil, ErrOrderNotDelivered
	}

	item := order.Item(itemID)
	if item == nil {
		return nil, ErrOrderItemNotFound
	}

	// The store re-checks return_status == none atomically with the
	// write; this early check just gives a cleaner error without a
	// round trip for the common case.
	if item.ReturnStatus != domain.ReturnNone {
		return nil, ErrReturnAlreadyActioned
	}

	now := time.Now().UTC()
	if err := s.orders.RequestReturn(ctx, orderID, itemID, reason, now); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.SubjectReturnRequested, events.ReturnRequested{
		OrderID:     orderID,
		LineItemID:  itemID,
		SellerID:    item.SellerID,
		Reason:      reason,
		RequestedAt: now,
	})

	return s.orders.Get(ctx, orderID)
}

func (s *returnService) ResolveReturn(ctx context.Context, actor domain.Actor, orderID, itemID uuid.UUID, decision domain.ReturnDecision) (*domain.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	item := order.Item(itemID)
	if item == nil {
		return nil, ErrOrderItemNotFound
	}
	if !actor.IsAdmin() && !(actor.Role == domain.RoleSeller && actor.ID == item.SellerID) {
		return nil, ErrUnauthorized
	}

	if err := s.orders.ResolveReturn(ctx, orderID, itemID, decision); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.SubjectReturnResolved, events.ReturnResolved{
		OrderID:    orderID,
		LineItemID: itemID,
		Decision:   string(decision),
		ActorID:    actor.ID,
		ResolvedAt: time.Now().UTC(),
	})

	return s.orders.Get(ctx, orderID)
}

func (s *returnService) publishEvent(ctx context.Context, subject string, event any) {
	// Event delivery is best effort; the database write already happened.
	if err := s.events.Publish(ctx, subject, event); err != nil {
		s.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}
