// Package api exposes the order lifecycle over REST. Authentication happens
// at the gateway; handlers only translate between HTTP and the services.
package api

import (
	"net/http"

	"github.com/bazaarlabs/bazaar/internal/domain"
	"github.com/bazaarlabs/bazaar/internal/middleware"
	"github.com/bazaarlabs/bazaar/internal/service"
	"github.com/bazaarlabs/bazaar/internal/telemetry"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Handler bundles the services behind the REST surface.
type Handler struct {
	carts    service.CartService
	checkout service.CheckoutService
	orders   service.OrderService
	returns  service.ReturnService
	metrics  *telemetry.BusinessMetrics
	validate *validator.Validate
}

// NewHandler creates the API handler. metrics may be nil in tests.
func NewHandler(
	carts service.CartService,
	checkout service.CheckoutService,
	orders service.OrderService,
	returns service.ReturnService,
	metrics *telemetry.BusinessMetrics,
) *Handler {
	return &Handler{
		carts:    carts,
		checkout: checkout,
		orders:   orders,
		returns:  returns,
		metrics:  metrics,
		validate: validator.New(),
	}
}

// RegisterRoutes mounts the API under the given group. The group is expected
// to carry the Actor middleware.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	cart := g.Group("/cart")
	cart.GET("", h.GetCart)
	cart.DELETE("", h.ClearCart)
	cart.POST("/items", h.AddCartItem)
	cart.PATCH("/items/:productID", h.UpdateCartItem)
	cart.DELETE("/items/:productID", h.RemoveCartItem)
	cart.POST("/buy-now", h.BuyNow)

	g.POST("/checkout/quote", h.QuoteCheckout)
	g.POST("/checkout/intent", h.CreatePaymentIntent)

	g.POST("/orders", h.CreateOrder)
	g.GET("/orders", h.ListOrders)
	g.GET("/orders/:orderID", h.GetOrder)
	g.POST("/orders/:orderID/status", h.AdvanceOrderStatus)
	g.POST("/orders/:orderID/items/:itemID/return", h.RequestReturn)
	g.POST("/orders/:orderID/items/:itemID/return/decision", h.ResolveReturn)

	g.GET("/sellers/:sellerID/orders", h.SellerOrders)
}

// actor pulls the authenticated actor off the request context.
func actor(c echo.Context) (domain.Actor, error) {
	a, ok := middleware.GetActor(c)
	if !ok {
		return domain.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing actor")
	}
	return a, nil
}

// bind decodes and validates a request body.
func (h *Handler) bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.Invalid("api.bind", "malformed request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return domain.Invalid("api.bind", err.Error())
	}
	return nil
}
