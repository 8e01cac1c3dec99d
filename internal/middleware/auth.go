// Package middleware provides the Echo middleware chain: actor resolution,
// request logging, and Prometheus instrumentation.
package middleware

import (
	"net/http"

	"github.com/bazaarlabs/bazaar/internal/domain"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// HeaderUserID and HeaderUserRole are set by the API gateway after it
	// authenticates the caller. This service trusts them; it never sees
	// credentials itself.
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// Actor resolves the authenticated actor from gateway headers and stores it
// on the request context. Requests without a valid identity are rejected.
func Actor() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := uuid.Parse(c.Request().Header.Get(HeaderUserID))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid user identity")
			}

			role, ok := domain.ParseRole(c.Request().Header.Get(HeaderUserRole))
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid user role")
			}

			actor := domain.Actor{ID: id, Role: role}
			ctx := domain.NewContextWithActor(c.Request().Context(), actor)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetActor retrieves the actor placed on the context by the Actor
// middleware.
func GetActor(c echo.Context) (domain.Actor, bool) {
	return domain.ActorFromContext(c.Request().Context())
}
