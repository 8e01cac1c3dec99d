package api

import (
	"net/http"

	"github.com/bazaarlabs/bazaar/internal/domain"
	"github.com/bazaarlabs/bazaar/internal/handler"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// GetCart returns the actor's cart priced against the live catalog.
func (h *Handler) GetCart(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}

	summary, err := h.carts.GetCart(c.Request().Context(), a.ID)
	if err != nil {
		return handler.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, toCartResponse(summary))
}

// AddCartItem inserts or increments a line, bounded by live stock.
func (h *Handler) AddCartItem(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}

	var req addItemRequest
	if err := h.bind(c, &req); err != nil {
		return handler.WriteError(c, err)
	}

	summary, err := h.carts.AddItem(c.Request().Context(), a.ID, req.ProductID, req.Qty)
	if err != nil {
		h.recordCartAdd("error")
		return handler.WriteError(c, err)
	}

	h.recordCartAdd("ok")
	return c.JSON(http.StatusOK, toCartResponse(summary))
}

// UpdateCartItem sets a line to an exact quantity.
func (h *Handler) UpdateCartItem(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}

	productID, err := uuid.Parse(c.Param("productID"))
	if err != nil {
		return handler.WriteError(c, domain.Invalid("cart.update", "invalid product id"))
	}

	var req updateQtyRequest
	if err := h.bind(c, &req); err != nil {
		return handler.WriteError(c, err)
	}

	summary, err := h.carts.UpdateQty(c.Request().Context(), a.ID, productID, req.Qty)
	if err != nil {
		return handler.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, toCartResponse(summary))
}

// RemoveCartItem deletes a line; deleting an absent line succeeds.
func (h *Handler) RemoveCartItem(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}

	productID, err := uuid.Parse(c.Param("productID"))
	if err != nil {
		return handler.WriteError(c, domain.Invalid("cart.remove", "invalid product id"))
	}

	summary, err := h.carts.RemoveItem(c.Request().Context(), a.ID, productID)
	if err != nil {
		return handler.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, toCartResponse(summary))
}

// ClearCart empties the actor's cart.
func (h *Handler) ClearCart(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}

	if err := h.carts.Clear(c.Request().Context(), a.ID); err != nil {
		return handler.WriteError(c, err)
	}
	if h.metrics != nil {
		h.metrics.CartCleared.Inc()
	}
	return c.NoContent(http.StatusNoContent)
}

// BuyNow replaces the cart with a single line.
func (h *Handler) BuyNow(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}

	var req addItemRequest
	if err := h.bind(c, &req); err != nil {
		return handler.WriteError(c, err)
	}

	summary, err := h.carts.BuyNow(c.Request().Context(), a.ID, req.ProductID, req.Qty)
	if err != nil {
		return handler.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, toCartResponse(summary))
}

func (h *Handler) recordCartAdd(result string) {
	if h.metrics != nil {
		h.metrics.CartItemsAdded.WithLabelValues(result).Inc()
	}
}
