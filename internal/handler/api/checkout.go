package api

import (
	"errors"
	"net/http"

	"github.com/bazaarlabs/bazaar/internal/handler"
	"github.com/bazaarlabs/bazaar/internal/payment"
	"github.com/labstack/echo/v4"
)

// QuoteCheckout prices the actor's cart for a destination.
func (h *Handler) QuoteCheckout(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}

	var req quoteRequest
	if err := h.bind(c, &req); err != nil {
		return handler.WriteError(c, err)
	}

	quote, err := h.checkout.Quote(c.Request().Context(), a.ID, req.ShippingAddress.toDomain())
	if err != nil {
		return handler.WriteError(c, err)
	}

	if h.metrics != nil {
		h.metrics.QuotesIssued.Inc()
	}
	return c.JSON(http.StatusOK, toQuoteResponse(quote))
}

// CreatePaymentIntent quotes the cart and reserves the total with the
// payment provider.
func (h *Handler) CreatePaymentIntent(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}

	var req quoteRequest
	if err := h.bind(c, &req); err != nil {
		return handler.WriteError(c, err)
	}

	out, err := h.checkout.CreatePaymentIntent(c.Request().Context(), a.ID, req.ShippingAddress.toDomain())
	if err != nil {
		if h.metrics != nil {
			h.metrics.IntentsCreated.WithLabelValues("error").Inc()
			if errors.Is(err, payment.ErrGatewayUnavailable) {
				h.metrics.GatewayErrors.WithLabelValues("create_intent").Inc()
			}
		}
		return handler.WriteError(c, err)
	}

	if h.metrics != nil {
		h.metrics.IntentsCreated.WithLabelValues("ok").Inc()
	}
	return c.JSON(http.StatusOK, intentResponse{
		ProviderOrderID: out.Intent.ProviderOrderID,
		Amount:          out.Intent.Amount,
		Currency:        out.Intent.Currency,
		Quote:           toQuoteResponse(&out.Quote),
	})
}
