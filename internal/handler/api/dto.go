package api

import (
	"time"

	"github.com/bazaarlabs/bazaar/internal/domain"
	"github.com/bazaarlabs/bazaar/internal/service"
	"github.com/google/uuid"
)

type addItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Qty       int32     `json:"qty" validate:"required"`
}

type updateQtyRequest struct {
	Qty int32 `json:"qty" validate:"required"`
}

type shippingAddressRequest struct {
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

func (r shippingAddressRequest) toDomain() domain.ShippingAddress {
	return domain.ShippingAddress{
		Address:    r.Address,
		City:       r.City,
		PostalCode: r.PostalCode,
		Country:    r.Country,
	}
}

type quoteRequest struct {
	ShippingAddress shippingAddressRequest `json:"shipping_address" validate:"required"`
}

type createOrderRequest struct {
	ShippingAddress   shippingAddressRequest `json:"shipping_address" validate:"required"`
	PaymentMethod     string                 `json:"payment_method" validate:"required,oneof=razorpay stripe mock"`
	ProviderPaymentID string                 `json:"provider_payment_id" validate:"required"`
	ProviderOrderID   string                 `json:"provider_order_id" validate:"required"`
	Signature         string                 `json:"signature"`
	PayerEmail        string                 `json:"payer_email" validate:"omitempty,email"`
}

type advanceStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type requestReturnRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type resolveReturnRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
}

type cartItemResponse struct {
	ProductID    uuid.UUID `json:"product_id"`
	SellerID     uuid.UUID `json:"seller_id"`
	Name         string    `json:"name"`
	Image        string    `json:"image,omitempty"`
	UnitPrice    int64     `json:"unit_price"`
	Qty          int32     `json:"qty"`
	Stock        int32     `json:"stock"`
	LineSubtotal int64     `json:"line_subtotal"`
}

type cartResponse struct {
	Items      []cartItemResponse `json:"items"`
	ItemsPrice int64              `json:"items_price"`
	ItemCount  int32              `json:"item_count"`
}

func toCartResponse(summary *service.CartSummary) cartResponse {
	items := make([]cartItemResponse, 0, len(summary.Items))
	for _, item := range summary.Items {
		items = append(items, cartItemResponse{
			ProductID:    item.ProductID,
			SellerID:     item.SellerID,
			Name:         item.Name,
			Image:        item.Image,
			UnitPrice:    item.UnitPrice,
			Qty:          item.Qty,
			Stock:        item.Stock,
			LineSubtotal: item.LineSubtotal,
		})
	}
	return cartResponse{
		Items:      items,
		ItemsPrice: summary.ItemsPrice,
		ItemCount:  summary.ItemCount,
	}
}

type quoteResponse struct {
	Items         []cartItemResponse `json:"items"`
	ItemsPrice    int64              `json:"items_price"`
	ShippingPrice int64              `json:"shipping_price"`
	TaxPrice      int64              `json:"tax_price"`
	TotalPrice    int64              `json:"total_price"`
}

func toQuoteResponse(quote *service.CheckoutQuote) quoteResponse {
	items := make([]cartItemResponse, 0, len(quote.Items))
	for _, item := range quote.Items {
		items = append(items, cartItemResponse{
			ProductID:    item.ProductID,
			SellerID:     item.SellerID,
			Name:         item.Name,
			Image:        item.Image,
			UnitPrice:    item.UnitPrice,
			Qty:          item.Qty,
			Stock:        item.Stock,
			LineSubtotal: item.LineSubtotal,
		})
	}
	return quoteResponse{
		Items:         items,
		ItemsPrice:    quote.ItemsPrice,
		ShippingPrice: quote.ShippingPrice,
		TaxPrice:      quote.TaxPrice,
		TotalPrice:    quote.TotalPrice,
	}
}

type intentResponse struct {
	ProviderOrderID string        `json:"provider_order_id"`
	Amount          int64         `json:"amount"`
	Currency        string        `json:"currency"`
	Quote           quoteResponse `json:"quote"`
}

type orderItemResponse struct {
	ID                uuid.UUID  `json:"id"`
	ProductID         uuid.UUID  `json:"product_id"`
	SellerID          uuid.UUID  `json:"seller_id"`
	Name              string     `json:"name"`
	Image             string     `json:"image,omitempty"`
	UnitPrice         int64      `json:"unit_price"`
	Qty               int32      `json:"qty"`
	ReturnStatus      string     `json:"return_status"`
	ReturnReason      string     `json:"return_reason,omitempty"`
	ReturnRequestedAt *time.Time `json:"return_requested_at,omitempty"`
}

type trackingEventResponse struct {
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

type orderResponse struct {
	ID              uuid.UUID               `json:"id"`
	OrderNumber     string                  `json:"order_number"`
	BuyerID         uuid.UUID               `json:"buyer_id"`
	Status          string                  `json:"status"`
	Items           []orderItemResponse     `json:"items"`
	ShippingAddress shippingAddressRequest  `json:"shipping_address"`
	PaymentMethod   string                  `json:"payment_method"`
	ItemsPrice      int64                   `json:"items_price"`
	ShippingPrice   int64                   `json:"shipping_price"`
	TaxPrice        int64                   `json:"tax_price"`
	TotalPrice      int64                   `json:"total_price"`
	IsPaid          bool                    `json:"is_paid"`
	PaidAt          *time.Time              `json:"paid_at,omitempty"`
	Tracking        []trackingEventResponse `json:"tracking"`
	CreatedAt       time.Time               `json:"created_at"`
}

func toOrderResponse(order *domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:                item.ID,
			ProductID:         item.ProductID,
			SellerID:          item.SellerID,
			Name:              item.Name,
			Image:             item.Image,
			UnitPrice:         item.UnitPrice,
			Qty:               item.Qty,
			ReturnStatus:      string(item.ReturnStatus),
			ReturnReason:      item.ReturnReason,
			ReturnRequestedAt: item.ReturnRequestedAt,
		})
	}

	tracking := make([]trackingEventResponse, 0, len(order.Tracking))
	for _, event := range order.Tracking {
		tracking = append(tracking, trackingEventResponse{
			Status:    string(event.Status),
			UpdatedAt: event.UpdatedAt,
		})
	}

	return orderResponse{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		BuyerID:     order.BuyerID,
		Status:      string(order.Status()),
		Items:       items,
		ShippingAddress: shippingAddressRequest{
			Address:    order.ShippingAddress.Address,
			City:       order.ShippingAddress.City,
			PostalCode: order.ShippingAddress.PostalCode,
			Country:    order.ShippingAddress.Country,
		},
		PaymentMethod: order.PaymentMethod,
		ItemsPrice:    order.ItemsPrice,
		ShippingPrice: order.ShippingPrice,
		TaxPrice:      order.TaxPrice,
		TotalPrice:    order.TotalPrice,
		IsPaid:        order.IsPaid,
		PaidAt:        order.PaidAt,
		Tracking:      tracking,
		CreatedAt:     order.CreatedAt,
	}
}

type sellerOrderResponse struct {
	OrderID        uuid.UUID           `json:"order_id"`
	OrderNumber    string              `json:"order_number"`
	Status         string              `json:"status"`
	Items          []orderItemResponse `json:"items"`
	SellerSubtotal int64               `json:"seller_subtotal"`
	CreatedAt      time.Time           `json:"created_at"`
}

func toSellerOrderResponse(view *service.SellerOrder) sellerOrderResponse {
	items := make([]orderItemResponse, 0, len(view.Items))
	for _, item := range view.Items {
		items = append(items, orderItemResponse{
			ID:                item.ID,
			ProductID:         item.ProductID,
			SellerID:          item.SellerID,
			Name:              item.Name,
			Image:             item.Image,
			UnitPrice:         item.UnitPrice,
			Qty:               item.Qty,
			ReturnStatus:      string(item.ReturnStatus),
			ReturnReason:      item.ReturnReason,
			ReturnRequestedAt: item.ReturnRequestedAt,
		})
	}
	return sellerOrderResponse{
		OrderID:        view.OrderID,
		OrderNumber:    view.OrderNumber,
		Status:         string(view.Status),
		Items:          items,
		SellerSubtotal: view.SellerSubtotal,
		CreatedAt:      view.CreatedAt,
	}
}
