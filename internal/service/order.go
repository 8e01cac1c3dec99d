package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/bazaarlabs/bazaar/internal/domain"
	"github.com/bazaarlabs/bazaar/internal/events"
	"github.com/bazaarlabs/bazaar/internal/payment"
	"github.com/bazaarlabs/bazaar/internal/pricing"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderService turns a verified payment plus the buyer's cart into an
// immutable order, and drives the order's status lifecycle afterwards.
type OrderService interface {
	// CreateOrder verifies the payment confirmation, re-prices the cart
	// against the live catalog, and persists the order. Idempotent on the
	// provider payment id: a retried confirmation returns the existing
	// order instead of creating a duplicate.
	CreateOrder(ctx context.Context, actor domain.Actor, params CreateOrderParams) (*domain.Order, error)

	// GetOrder loads an order the actor is allowed to see: its buyer, a
	// seller with at least one line item in it, or an admin.
	GetOrder(ctx context.Context, actor domain.Actor, orderID uuid.UUID) (*domain.Order, error)

	// ListBuyerOrders returns the actor's own orders, newest first.
	ListBuyerOrders(ctx context.Context, actor domain.Actor) ([]*domain.Order, error)

	// AdvanceStatus moves the order along the fulfillment track. Only a
	// seller with an item in the order or an admin may advance; the write
	// is a compare-and-set against the status the actor last saw.
	AdvanceStatus(ctx context.Context, actor domain.Actor, orderID uuid.UUID, newStatus domain.OrderStatus) (*domain.Order, error)

	// SellerOrders returns the seller's orders projected down to their own
	// line items and subtotal. Admins may query any seller.
	SellerOrders(ctx context.Context, actor domain.Actor, sellerID uuid.UUID) ([]*SellerOrder, error)
}

// CreateOrderParams carries everything order creation needs beyond the cart,
// which is read server-side. No client-supplied totals are accepted.
type CreateOrderParams struct {
	ShippingAddress domain.ShippingAddress
	PaymentMethod   string
	Confirmation    payment.Confirmation
	PayerEmail      string
}

// SellerOrder is an order projected to one seller's view: only their line
// items, with the revenue attributable to them.
type SellerOrder struct {
	OrderID        uuid.UUID
	OrderNumber    string
	Status         domain.OrderStatus
	Items          []domain.OrderLineItem
	SellerSubtotal int64
	CreatedAt      time.Time
}

type orderService struct {
	orders   OrderRepository
	carts    CartRepository
	catalog  domain.Catalog
	pricer   pricing.Engine
	provider payment.Provider
	events   events.Publisher
	logger   zerolog.Logger
}

// NewOrderService creates a new OrderService instance.
func NewOrderService(
	orders OrderRepository,
	carts CartRepository,
	catalog domain.Catalog,
	pricer pricing.Engine,
	provider payment.Provider,
	publisher events.Publisher,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orders:   orders,
		carts:    carts,
		catalog:  catalog,
		pricer:   pricer,
		provider: provider,
		events:   publisher,
		logger:   logger,
	}
}

func (s *orderService) CreateOrder(ctx context.Context, actor domain.Actor, params CreateOrderParams) (*domain.Order, error) {
	verified, err := s.provider.VerifyConfirmation(ctx, params.Confirmation)
	if err != nil {
		return nil, fmt.Errorf("failed to verify payment confirmation: %w", err)
	}
	if !verified {
		return nil, ErrPaymentNotVerified
	}

	// Fast path for retried confirmations. The unique index on the
	// provider payment id still backs this up under a concurrent race.
	existing, err := s.orders.GetByProviderPaymentID(ctx, params.Confirmation.ProviderPaymentID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrOrderNotFound) {
		return nil, err
	}

	cart, err := s.carts.Get(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if cart.IsEmpty() {
		return nil, ErrCartEmpty
	}

	items, quoteLines, err := s.freezeItems(ctx, cart)
	if err != nil {
		return nil, err
	}

	quote, err := s.pricer.Quote(ctx, quoteLines, pricing.Destination{
		City:    params.ShippingAddress.City,
		Country: params.ShippingAddress.Country,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to price cart: %w", err)
	}

	// The amount the provider authorized is the amount the buyer saw at
	// checkout. If the recomputed total no longer matches it, prices or
	// stock moved under the buyer and they must re-quote.
	intent, err := s.provider.GetIntent(ctx, params.Confirmation.ProviderOrderID)
	if err != nil {
		if errors.Is(err, payment.ErrIntentNotFound) {
			return nil, ErrPaymentNotVerified
		}
		return nil, fmt.Errorf("failed to fetch payment intent: %w", err)
	}
	if intent.Amount != quote.TotalPrice {
		return nil, ErrPriceOrStockChanged
	}

	now := time.Now().UTC()
	number, err := generateOrderNumber(now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate order number: %w", err)
	}

	order := &domain.Order{
		ID:              uuid.New(),
		OrderNumber:     number,
		BuyerID:         actor.ID,
		Items:           items,
		ShippingAddress: params.ShippingAddress,
		PaymentMethod:   params.PaymentMethod,
		Payment: domain.PaymentResult{
			ProviderID: params.Confirmation.ProviderPaymentID,
			Status:     intent.Status,
			PayerEmail: params.PayerEmail,
		},
		ItemsPrice:    quote.ItemsPrice,
		ShippingPrice: quote.ShippingPrice,
		TaxPrice:      quote.TaxPrice,
		TotalPrice:    quote.TotalPrice,
		IsPaid:        true,
		PaidAt:        &now,
		Tracking: []domain.TrackingEvent{
			{Status: domain.StatusProcessing, UpdatedAt: now},
		},
		CreatedAt: now,
	}
	if err := order.CheckTotals(); err != nil {
		return nil, err
	}

	persisted, created, err := s.orders.Create(ctx, order)
	if err != nil {
		return nil, err
	}
	if !created {
		return persisted, nil
	}

	// The order is the source of truth from here on. A failed cart clear
	// is logged, never surfaced: the buyer has their order either way.
	if err := s.carts.Clear(ctx, actor.ID); err != nil {
		s.logger.Error().Err(err).
			Str("order_id", persisted.ID.String()).
			Str("buyer_id", actor.ID.String()).
			Msg("failed to clear cart after order creation")
	}

	s.publish(ctx, events.SubjectOrderCreated, events.OrderCreated{
		OrderID:     persisted.ID,
		OrderNumber: persisted.OrderNumber,
		BuyerID:     persisted.BuyerID,
		SellerIDs:   sellerIDs(persisted),
		TotalPrice:  persisted.TotalPrice,
		CreatedAt:   persisted.CreatedAt,
	})

	return persisted, nil
}

func (s *orderService) GetOrder(ctx context.Context, actor domain.Actor, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !canViewOrder(actor, order) {
		return nil, ErrUnauthorized
	}
	return order, nil
}

func (s *orderService) ListBuyerOrders(ctx context.Context, actor domain.Actor) ([]*domain.Order, error) {
	return s.orders.ListByBuyer(ctx, actor.ID)
}

func (s *orderService) AdvanceStatus(ctx context.Context, actor domain.Actor, orderID uuid.UUID, newStatus domain.OrderStatus) (*domain.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() && !(actor.Role == domain.RoleSeller && order.HasSeller(actor.ID)) {
		return nil, ErrUnauthorized
	}

	current := order.Status()
	if !current.CanTransition(newStatus) {
		return nil, ErrInvalidTransition
	}

	now := time.Now().UTC()
	if err := s.orders.AdvanceStatus(ctx, orderID, current, newStatus, now); err != nil {
		return nil, err
	}

	s.publish(ctx, events.SubjectStatusChanged, events.StatusChanged{
		OrderID:   orderID,
		From:      string(current),
		To:        string(newStatus),
		ActorID:   actor.ID,
		UpdatedAt: now,
	})

	return s.orders.Get(ctx, orderID)
}

func (s *orderService) SellerOrders(ctx context.Context, actor domain.Actor, sellerID uuid.UUID) ([]*SellerOrder, error) {
	if !actor.IsAdmin() {
		if actor.Role != domain.RoleSeller || actor.ID != sellerID {
			return nil, ErrUnauthorized
		}
	}

	orders, err := s.orders.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	views := make([]*SellerOrder, 0, len(orders))
	for _, order := range orders {
		views = append(views, &SellerOrder{
			OrderID:        order.ID,
			OrderNumber:    order.OrderNumber,
			Status:         order.Status(),
			Items:          order.ItemsForSeller(sellerID),
			SellerSubtotal: order.SellerSubtotal(sellerID),
			CreatedAt:      order.CreatedAt,
		})
	}
	return views, nil
}

// freezeItems copies each cart line's live product data by value. Later
// catalog edits never alter what the buyer bought.
func (s *orderService) freezeItems(ctx context.Context, cart *domain.Cart) ([]domain.OrderLineItem, []pricing.QuoteLine, error) {
	items := make([]domain.OrderLineItem, 0, len(cart.Lines))
	lines := make([]pricing.QuoteLine, 0, len(cart.Lines))

	for _, line := range cart.Lines {
		product, err := s.catalog.GetLiveProduct(ctx, line.ProductID)
		if err != nil {
			if domain.ErrorCode(err) == domain.ENOTFOUND {
				return nil, nil, ErrPriceOrStockChanged
			}
			return nil, nil, err
		}
		if line.Qty > product.Stock {
			return nil, nil, ErrPriceOrStockChanged
		}

		items = append(items, domain.OrderLineItem{
			ID:           uuid.New(),
			ProductID:    product.ID,
			SellerID:     product.SellerID,
			Name:         product.Name,
			Image:        product.Image,
			UnitPrice:    product.Price,
			Qty:          line.Qty,
			ReturnStatus: domain.ReturnNone,
		})
		lines = append(lines, pricing.QuoteLine{Qty: line.Qty, UnitPrice: product.Price})
	}
	return items, lines, nil
}

func (s *orderService) publish(ctx context.Context, subject string, event any) {
	if err := s.events.Publish(ctx, subject, event); err != nil {
		s.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}

func canViewOrder(actor domain.Actor, order *domain.Order) bool {
	if actor.IsAdmin() {
		return true
	}
	if actor.Role == domain.RoleBuyer && actor.ID == order.BuyerID {
		return true
	}
	return actor.Role == domain.RoleSeller && order.HasSeller(actor.ID)
}

func sellerIDs(order *domain.Order) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(order.Items))
	var ids []uuid.UUID
	for _, item := range order.Items {
		if _, ok := seen[item.SellerID]; ok {
			continue
		}
		seen[item.SellerID] = struct{}{}
		ids = append(ids, item.SellerID)
	}
	return ids
}

// generateOrderNumber builds the human-facing order id, e.g.
// ORD-20250115-4F7K. The suffix is random; the provider payment id, not the
// order number, is the uniqueness guarantee.
func generateOrderNumber(at time.Time) (string, error) {
	const alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	suffix := make([]byte, 4)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		suffix[i] = alphabet[n.Int64()]
	}
	return fmt.Sprintf("ORD-%s-%s", at.Format("20060102"), suffix), nil
}
