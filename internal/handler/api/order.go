package api

import (
	"net/http"

	"github.com/bazaarlabs/bazaar/internal/domain"
	"github.com/bazaarlabs/bazaar/internal/handler"
	"github.com/bazaarlabs/bazaar/internal/payment"
	"github.com/bazaarlabs/bazaar/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CreateOrder turns a verified payment confirmation into an order. Replays
// of the same confirmation return the existing order unchanged.
func (h *Handler) CreateOrder(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}

	var req createOrderRequest
	if err := h.bind(c, &req); err != nil {
		return handler.WriteError(c, err)
	}

	order, err := h.orders.CreateOrder(c.Request().Context(), a, service.CreateOrderParams{
		ShippingAddress: req.ShippingAddress.toDomain(),
		PaymentMethod:   req.PaymentMethod,
		Confirmation: payment.Confirmation{
			ProviderPaymentID: req.ProviderPaymentID,
			ProviderOrderID:   req.ProviderOrderID,
			Signature:         req.Signature,
		},
		PayerEmail: req.PayerEmail,
	})
	if err != nil {
		return handler.WriteError(c, err)
	}

	if h.metrics != nil {
		h.metrics.OrdersCreated.Inc()
		h.metrics.OrderValue.Observe(float64(order.TotalPrice))
		h.metrics.OrderItemCount.Observe(float64(len(order.Items)))
	}

	return c.JSON(http.StatusCreated, toOrderResponse(order))
}

// ListOrders returns the actor's own orders.
func (h *Handler) ListOrders(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}

	orders, err := h.orders.ListBuyerOrders(c.Request().Context(), a)
	if err != nil {
		return handler.WriteError(c, err)
	}

	out := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, toOrderResponse(order))
	}
	return c.JSON(http.StatusOK, out)
}

// GetOrder returns one order, authorization enforced by the service.
func (h *Handler) GetOrder(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}

	orderID, err := uuid.Parse(c.Param("orderID"))
	if err != nil {
		return handler.WriteError(c, domain.Invalid("order.get", "invalid order id"))
	}

	order, err := h.orders.GetOrder(c.Request().Context(), a, orderID)
	if err != nil {
		return handler.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(order))
}

// AdvanceOrderStatus moves an order along the fulfillment track.
func (h *Handler) AdvanceOrderStatus(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}

	orderID, err := uuid.Parse(c.Param("orderID"))
	if err != nil {
		return handler.WriteError(c, domain.Invalid("order.advance", "invalid order id"))
	}

	var req advanceStatusRequest
	if err := h.bind(c, &req); err != nil {
		return handler.WriteError(c, err)
	}

	newStatus, ok := domain.ParseOrderStatus(req.Status)
	if !ok {
		return handler.WriteError(c, domain.Errorf(domain.EINVALID, "order.advance", "unknown status: %s", req.Status))
	}

	order, err := h.orders.AdvanceStatus(c.Request().Context(), a, orderID, newStatus)
	if err != nil {
		h.recordTransition(string(newStatus), "error")
		return handler.WriteError(c, err)
	}

	h.recordTransition(string(newStatus), "ok")
	return c.JSON(http.StatusOK, toOrderResponse(order))
}

// SellerOrders returns the seller-facing projection of orders containing
// the seller's line items.
func (h *Handler) SellerOrders(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}

	sellerID, err := uuid.Parse(c.Param("sellerID"))
	if err != nil {
		return handler.WriteError(c, domain.Invalid("order.seller_list", "invalid seller id"))
	}

	views, err := h.orders.SellerOrders(c.Request().Context(), a, sellerID)
	if err != nil {
		return handler.WriteError(c, err)
	}

	out := make([]sellerOrderResponse, 0, len(views))
	for _, view := range views {
		out = append(out, toSellerOrderResponse(view))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) recordTransition(to, result string) {
	if h.metrics != nil {
		h.metrics.StatusTransitions.WithLabelValues(to, result).Inc()
	}
}
