// Package handler holds transport-level helpers shared by the API handlers:
// mapping domain error codes onto HTTP statuses and rendering error bodies.
package handler

import (
	"errors"
	"net/http"

	"github.com/bazaarlabs/bazaar/internal/domain"
	"github.com/bazaarlabs/bazaar/internal/payment"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ErrorCodeToHTTPStatus maps a domain error code to an HTTP status code.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EPAYMENT:
		return http.StatusPaymentRequired
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.EUNAVAILABLE:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError renders err as JSON. Internal errors are logged with their full
// chain but only a generic message crosses the wire.
func WriteError(c echo.Context, err error) error {
	if errors.Is(err, payment.ErrGatewayUnavailable) {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Code:    domain.EUNAVAILABLE,
			Message: "Payment gateway unavailable; please retry",
		})
	}

	code := domain.ErrorCode(err)
	message := domain.ErrorMessage(err)

	if code == domain.EINTERNAL {
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("internal error")
	}

	return c.JSON(ErrorCodeToHTTPStatus(code), ErrorResponse{
		Code:    code,
		Message: message,
	})
}
