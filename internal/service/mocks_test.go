package service

import (
	"context"
	"sync"
	"time"

	"github.com/bazaarlabs/bazaar/internal/domain"
	"github.com/bazaarlabs/bazaar/internal/pricing"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// mockCatalog serves live products from a map.
type mockCatalog struct {
	mu       sync.Mutex
	products map[uuid.UUID]domain.LiveProduct
}

func newMockCatalog(products ...domain.LiveProduct) *mockCatalog {
	c := &mockCatalog{products: make(map[uuid.UUID]domain.LiveProduct)}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *mockCatalog) GetLiveProduct(ctx context.Context, productID uuid.UUID) (*domain.LiveProduct, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[productID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func (c *mockCatalog) setPrice(productID uuid.UUID, price int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.products[productID]
	p.Price = price
	c.products[productID] = p
}

func (c *mockCatalog) setStock(productID uuid.UUID, stock int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.products[productID]
	p.Stock = stock
	c.products[productID] = p
}

// mockCartRepo keeps cart lines in memory per buyer.
type mockCartRepo struct {
	mu    sync.Mutex
	lines map[uuid.UUID][]domain.CartLine

	clearErr error
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{lines: make(map[uuid.UUID][]domain.CartLine)}
}

func (r *mockCartRepo) Get(ctx context.Context, buyerID uuid.UUID) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart := &domain.Cart{BuyerID: buyerID}
	cart.Lines = append(cart.Lines, r.lines[buyerID]...)
	return cart, nil
}

func (r *mockCartRepo) SetLine(ctx context.Context, buyerID, productID uuid.UUID, qty int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, line := range r.lines[buyerID] {
		if line.ProductID == productID {
			r.lines[buyerID][i].Qty = qty
			return nil
		}
	}
	r.lines[buyerID] = append(r.lines[buyerID], domain.CartLine{
		ProductID: productID,
		Qty:       qty,
		AddedAt:   time.Now(),
	})
	return nil
}

func (r *mockCartRepo) DeleteLine(ctx context.Context, buyerID, productID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := r.lines[buyerID]
	for i, line := range lines {
		if line.ProductID == productID {
			r.lines[buyerID] = append(lines[:i], lines[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *mockCartRepo) Clear(ctx context.Context, buyerID uuid.UUID) error {
	if r.clearErr != nil {
		return r.clearErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lines, buyerID)
	return nil
}

func (r *mockCartRepo) ReplaceWithLine(ctx context.Context, buyerID, productID uuid.UUID, qty int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[buyerID] = []domain.CartLine{{ProductID: productID, Qty: qty, AddedAt: time.Now()}}
	return nil
}

// mockOrderRepo mirrors the conditional-write semantics of the real store:
// creation is unique per provider payment id, status changes compare-and-set
// against the head, and return transitions check the current state.
type mockOrderRepo struct {
	mu         sync.Mutex
	orders     map[uuid.UUID]*domain.Order
	byProvider map[string]uuid.UUID

	// catalog, when set, has its stock decremented on create the way the
	// real store decrements product rows.
	catalog *mockCatalog

	advanceErr error
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{
		orders:     make(map[uuid.UUID]*domain.Order),
		byProvider: make(map[string]uuid.UUID),
	}
}

func (r *mockOrderRepo) Create(ctx context.Context, order *domain.Order) (*domain.Order, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byProvider[order.Payment.ProviderID]; ok {
		return copyOrder(r.orders[id]), false, nil
	}

	if r.catalog != nil {
		r.catalog.mu.Lock()
		for _, item := range order.Items {
			p := r.catalog.products[item.ProductID]
			if p.Stock < item.Qty {
				r.catalog.mu.Unlock()
				return nil, false, domain.ErrPriceOrStockChanged
			}
		}
		for _, item := range order.Items {
			p := r.catalog.products[item.ProductID]
			p.Stock -= item.Qty
			r.catalog.products[item.ProductID] = p
		}
		r.catalog.mu.Unlock()
	}

	stored := copyOrder(order)
	r.orders[order.ID] = stored
	r.byProvider[order.Payment.ProviderID] = order.ID
	return copyOrder(stored), true, nil
}

func (r *mockOrderRepo) Get(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return copyOrder(order), nil
}

func (r *mockOrderRepo) GetByProviderPaymentID(ctx context.Context, providerID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byProvider[providerID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return copyOrder(r.orders[id]), nil
}

func (r *mockOrderRepo) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, order := range r.orders {
		if order.BuyerID == buyerID {
			out = append(out, copyOrder(order))
		}
	}
	return out, nil
}

func (r *mockOrderRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, order := range r.orders {
		if order.HasSeller(sellerID) {
			out = append(out, copyOrder(order))
		}
	}
	return out, nil
}

func (r *mockOrderRepo) AdvanceStatus(ctx context.Context, orderID uuid.UUID, from, to domain.OrderStatus, at time.Time) error {
	if r.advanceErr != nil {
		return r.advanceErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if order.Status() != from {
		return domain.ErrConcurrentStatusChange
	}
	order.Tracking = append([]domain.TrackingEvent{{Status: to, UpdatedAt: at}}, order.Tracking...)
	return nil
}

func (r *mockOrderRepo) RequestReturn(ctx context.Context, orderID, itemID uuid.UUID, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	item := order.Item(itemID)
	if item == nil || item.ReturnStatus != domain.ReturnNone {
		return domain.ErrReturnAlreadyActioned
	}
	item.ReturnStatus = domain.ReturnRequested
	item.ReturnReason = reason
	t := at
	item.ReturnRequestedAt = &t
	return nil
}

func (r *mockOrderRepo) ResolveReturn(ctx context.Context, orderID, itemID uuid.UUID, decision domain.ReturnDecision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	item := order.Item(itemID)
	if item == nil || item.ReturnStatus != domain.ReturnRequested {
		return domain.ErrInvalidReturnState
	}
	item.ReturnStatus = domain.ReturnStatus(decision)
	return nil
}

// setStatus force-sets an order's tracking head, bypassing transition rules.
func (r *mockOrderRepo) setStatus(orderID uuid.UUID, status domain.OrderStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order := r.orders[orderID]
	order.Tracking = append([]domain.TrackingEvent{{Status: status, UpdatedAt: time.Now()}}, order.Tracking...)
}

func copyOrder(o *domain.Order) *domain.Order {
	dup := *o
	dup.Items = append([]domain.OrderLineItem(nil), o.Items...)
	dup.Tracking = append([]domain.TrackingEvent(nil), o.Tracking...)
	return &dup
}

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

type capturedEvent struct {
	subject string
	event   any
}

func (p *capturePublisher) Publish(ctx context.Context, subject string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, capturedEvent{subject: subject, event: event})
	return nil
}

func (p *capturePublisher) Close() {}

func (p *capturePublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.subject)
	}
	return out
}

// testPricing returns a flat-rate engine with the rates used across these
// tests: 18% tax, ₹5000 free-shipping threshold, ₹50 Chennai rate, ₹100
// India rate, ₹200 default. Amounts in paise.
func testPricing() pricing.Engine {
	engine, err := pricing.NewFlatRateEngine(pricing.Config{
		TaxRate:               0.18,
		FreeShippingThreshold: 500000,
		CityRates:             map[string]int64{"chennai": 5000},
		CountryRates:          map[string]int64{"india": 10000},
		DefaultRate:           20000,
	})
	if err != nil {
		panic(err)
	}
	return engine
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
