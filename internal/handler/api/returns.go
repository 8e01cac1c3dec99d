package api

import (
	"net/http"

	"github.com/bazaarlabs/bazaar/internal/domain"
	"github.com/bazaarlabs/bazaar/internal/handler"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestReturn opens a return on one line item of a delivered order.
func (h *Handler) RequestReturn(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}

	orderID, itemID, err := returnTarget(c)
	if err != nil {
		return handler.WriteError(c, err)
	}

	var req requestReturnRequest
	if err := h.bind(c, &req); err != nil {
		return handler.WriteError(c, err)
	}

	order, err := h.returns.RequestReturn(c.Request().Context(), a, orderID, itemID, req.Reason)
	if err != nil {
		return handler.WriteError(c, err)
	}

	if h.metrics != nil {
		h.metrics.ReturnsRequested.Inc()
	}
	return c.JSON(http.StatusOK, toOrderResponse(order))
}

// ResolveReturn settles a requested return as approved or rejected.
func (h *Handler) ResolveReturn(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}

	orderID, itemID, err := returnTarget(c)
	if err != nil {
		return handler.WriteError(c, err)
	}

	var req resolveReturnRequest
	if err := h.bind(c, &req); err != nil {
		return handler.WriteError(c, err)
	}

	decision, ok := domain.ParseReturnDecision(req.Decision)
	if !ok {
		return handler.WriteError(c, domain.Errorf(domain.EINVALID, "return.resolve", "unknown decision: %s", req.Decision))
	}

	order, err := h.returns.ResolveReturn(c.Request().Context(), a, orderID, itemID, decision)
	if err != nil {
		return handler.WriteError(c, err)
	}

	if h.metrics != nil {
		h.metrics.ReturnsResolved.WithLabelValues(string(decision)).Inc()
	}
	return c.JSON(http.StatusOK, toOrderResponse(order))
}

func returnTarget(c echo.Context) (orderID, itemID uuid.UUID, err error) {
	orderID, err = uuid.Parse(c.Param("orderID"))
	if err != nil {
		return uuid.Nil, uuid.Nil, domain.Invalid("return", "invalid order id")
	}
	itemID, err = uuid.Parse(c.Param("itemID"))
	if err != nil {
		return uuid.Nil, uuid.Nil, domain.Invalid("return", "invalid item id")
	}
	return orderID, itemID, nil
}
