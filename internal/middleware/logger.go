package middleware

import (
	"time"

	"github.com/bazaarlabs/bazaar/internal/domain"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the request id; an inbound value from the load
// balancer is reused, otherwise one is generated.
const RequestIDHeader = "X-Request-ID"

// RequestLogger logs one line per request and threads a request-scoped
// logger through the context for handlers and services.
func RequestLogger(base zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			requestID := req.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Response().Header().Set(RequestIDHeader, requestID)

			logger := base.With().
				Str("request_id", requestID).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Logger()

			ctx := domain.NewContextWithRequestID(req.Context(), requestID)
			ctx = logger.WithContext(ctx)
			c.SetRequest(req.WithContext(ctx))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			event := logger.Info()
			if c.Response().Status >= 500 {
				event = logger.Error()
			}
			event.
				Int("status", c.Response().Status).
				Dur("duration", time.Since(start)).
				Int64("bytes_out", c.Response().Size).
				Msg("request")

			return err
		}
	}
}
