// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package httpapi

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clubpass/clubpass/internal/auth"
	"github.com/clubpass/clubpass/internal/observability"
)

const claimsKey = "clubpass.claims"

// bearerAuth validates the Authorization header and stores the access token
// claims in the echo context. Every failure gets the same 401 body.
func bearerAuth(issuer auth.AccessTokenIssuer) echo.MiddlewareFunc {
	unauthorized := ErrorResponse{Error: "UNAUTHORIZED", Message: "authentication required"}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			scheme, token, ok := strings.Cut(c.Request().Header.Get(echo.HeaderAuthorization), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				return c.JSON(http.StatusUnauthorized, unauthorized)
			}

			claims, err := issuer.ValidateAndDecode(strings.TrimSpace(token))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, unauthorized)
			}

			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// claimsFrom returns the claims stored by bearerAuth.
func claimsFrom(c echo.Context) (*auth.Claims, bool) {
	claims, ok := c.Get(claimsKey).(*auth.Claims)
	return claims, ok
}

// observe renders handler errors through the error handler so the final
// status is known, then records the request and logs it.
func observe(metrics *observability.Metrics, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			status := c.Response().Status
			if metrics != nil {
				metrics.RecordRequest(route, c.Request().Method, status)
			}
			logger.DebugContext(c.Request().Context(), "request handled",
				"method", c.Request().Method,
				"route", route,
				"status", status,
				"duration", time.Since(start),
			)
			return nil
		}
	}
}
