package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Order-related domain errors.
var (
	ErrOrderNotFound          = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrOrderItemNotFound      = &Error{Code: ENOTFOUND, Message: "Order item not found"}
	ErrPriceOrStockChanged    = &Error{Code: ECONFLICT, Message: "Price or stock changed since quote; please re-quote"}
	ErrPaymentNotVerified     = &Error{Code: EPAYMENT, Message: "Payment confirmation could not be verified"}
	ErrUnauthorized           = &Error{Code: EFORBIDDEN, Message: "Actor is not permitted to perform this operation"}
	ErrInvalidTransition      = &Error{Code: EINVALID, Message: "Status transition not allowed from current status"}
	ErrConcurrentStatusChange = &Error{Code: ECONFLICT, Message: "Order status changed concurrently; re-fetch and retry"}
	ErrOrderNotDelivered      = &Error{Code: EINVALID, Message: "Returns are only accepted for delivered orders"}
	ErrReturnAlreadyActioned  = &Error{Code: ECONFLICT, Message: "A return was already requested for this item"}
	ErrInvalidReturnState     = &Error{Code: ECONFLICT, Message: "Return is not in a resolvable state"}
	ErrTotalMismatch          = &Error{Code: EINTERNAL, Message: "Order totals do not add up"}
)

// OrderStatus is the order-level fulfillment status. The set is closed: any
// string outside it is rejected at the boundary, never stored.
type OrderStatus string

const (
	StatusProcessing     OrderStatus = "processing"
	StatusShipped        OrderStatus = "shipped"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// statusTransitions is the explicit transition table: a single linear track
// processing → shipped → out_for_delivery → delivered, with cancellation
// reachable from processing only. No skips, no backward moves.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusProcessing:     {StatusShipped, StatusCancelled},
	StatusShipped:        {StatusOutForDelivery},
	StatusOutForDelivery: {StatusDelivered},
	StatusDelivered:      {},
	StatusCancelled:      {},
}

// ParseOrderStatus validates a status string against the closed set.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := statusTransitions[status]; !ok {
		return "", false
	}
	return status, true
}

// CanTransition reports whether to is reachable from from in one step.
func (from OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions exist from this status.
func (s OrderStatus) Terminal() bool {
	return len(statusTransitions[s]) == 0
}

// ReturnStatus is the per-line-item return state.
type ReturnStatus string

const (
	ReturnNone      ReturnStatus = "none"
	ReturnRequested ReturnStatus = "requested"
	ReturnApproved  ReturnStatus = "approved"
	ReturnRejected  ReturnStatus = "rejected"
)

// ReturnDecision is a seller or admin resolution of a requested return.
type ReturnDecision string

const (
	DecisionApprove ReturnDecision = "approved"
	DecisionReject  ReturnDecision = "rejected"
)

// ParseReturnDecision validates a decision string.
func ParseReturnDecision(s string) (ReturnDecision, bool) {
	switch ReturnDecision(strings.ToLower(strings.TrimSpace(s))) {
	case DecisionApprove:
		return DecisionApprove, true
	case DecisionReject:
		return DecisionReject, true
	}
	return "", false
}

// ShippingAddress is snapshotted into each order; it is never a reference to
// a mutable address-book row. Country and city are free text, lower-cased by
// the price engine for rate lookup.
type ShippingAddress struct {
	Address    string
	City       string
	PostalCode string
	Country    string
}

// PaymentResult records the verified provider-side payment for an order.
// ProviderID doubles as the idempotency key: at most one order per payment.
type PaymentResult struct {
	ProviderID string
	Status     string
	PayerEmail string
}

// OrderLineItem is a frozen copy of a product at purchase time. Name, image,
// unit price, and seller are copied by value; later catalog edits never alter
// what the buyer bought. Only the return fields mutate after creation.
type OrderLineItem struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	SellerID  uuid.UUID
	Name      string
	Image     string
	UnitPrice int64 // minor currency units (paise)
	Qty       int32

	ReturnStatus      ReturnStatus
	ReturnReason      string
	ReturnRequestedAt *time.Time
}

// Subtotal returns qty × unit price for the line.
func (li OrderLineItem) Subtotal() int64 {
	return int64(li.Qty) * li.UnitPrice
}

// TrackingEvent is one entry of the append-only status history.
type TrackingEvent struct {
	Status    OrderStatus
	UpdatedAt time.Time
}

// Order is the immutable audit record created from a verified payment and a
// cart snapshot. After creation only tracking history (append) and per-item
// return fields may change.
type Order struct {
	ID          uuid.UUID
	OrderNumber string
	BuyerID     uuid.UUID
	Items       []OrderLineItem

	ShippingAddress ShippingAddress
	PaymentMethod   string
	Payment         PaymentResult

	ItemsPrice    int64 // all prices in minor currency units (paise)
	ShippingPrice int64
	TaxPrice      int64
	TotalPrice    int64

	IsPaid bool
	PaidAt *time.Time

	// Tracking is newest-first; Tracking[0] is the current status.
	Tracking []TrackingEvent

	CreatedAt time.Time
}

// Status returns the current status, i.e. the head of the tracking history.
func (o *Order) Status() OrderStatus {
	if len(o.Tracking) == 0 {
		return StatusProcessing
	}
	return o.Tracking[0].Status
}

// Item returns the line item with the given id, or nil if absent.
func (o *Order) Item(itemID uuid.UUID) *OrderLineItem {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}

// HasSeller reports whether at least one line item belongs to the seller.
func (o *Order) HasSeller(sellerID uuid.UUID) bool {
	for i := range o.Items {
		if o.Items[i].SellerID == sellerID {
			return true
		}
	}
	return false
}

// ItemsForSeller filters the order's line items to those owned by sellerID.
// The slice holds copies; mutating it never touches the order.
func (o *Order) ItemsForSeller(sellerID uuid.UUID) []OrderLineItem {
	var items []OrderLineItem
	for i := range o.Items {
		if o.Items[i].SellerID == sellerID {
			items = append(items, o.Items[i])
		}
	}
	return items
}

// SellerSubtotal sums qty × unit price over the seller's line items.
func (o *Order) SellerSubtotal(sellerID uuid.UUID) int64 {
	var subtotal int64
	for i := range o.Items {
		if o.Items[i].SellerID == sellerID {
			subtotal += o.Items[i].Subtotal()
		}
	}
	return subtotal
}

// TotalToleranceMinorUnits is the rounding slack allowed when checking the
// price breakdown at creation time. Prices are integers, so a single minor
// unit covers any rounding of the tax percentage.
const TotalToleranceMinorUnits = 1

// CheckTotals verifies totalPrice == Σ(qty × unitPrice) + shipping + tax
// within the rounding tolerance. Called once at creation; never recomputed
// afterward.
func (o *Order) CheckTotals() error {
	var items int64
	for i := range o.Items {
		items += o.Items[i].Subtotal()
	}
	diff := o.TotalPrice - (items + o.ShippingPrice + o.TaxPrice)
	if diff < -TotalToleranceMinorUnits || diff > TotalToleranceMinorUnits {
		return ErrTotalMismatch
	}
	return nil
}
