// Package middleware provides the request gates that protect authenticated
// routes: bearer-token authentication against the codec and the revocation
// deny-list, and the role checks layered on top of it.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sisclinica/identity-service/internal/auth"
)

// ClaimsKey is the context key under which Authenticate stores the decoded
// access-token claims.
const ClaimsKey = "claims"

// TokenKey is the context key holding the raw bearer token, so handlers
// such as logout can re-present the exact string that authenticated the
// request.
const TokenKey = "token"

// ClaimsFrom returns the authenticated claims stored by Authenticate, or
// nil when the route is not gated.
func ClaimsFrom(c echo.Context) *auth.Claims {
	claims, _ := c.Get(ClaimsKey).(*auth.Claims)
	return claims
}

// Authenticate validates the Authorization bearer token. The deny-list is
// consulted before any cryptographic check, so a revoked token is rejected
// even while its signature and expiry are still good. On success the claims
// and the raw token are stored in the request context.
func Authenticate(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			token := strings.TrimPrefix(header, "Bearer ")

			claims, err := svc.Authorize(token)
			if err != nil {
				if errors.Is(err, auth.ErrTokenRevoked) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token has been revoked"})
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			c.Set(ClaimsKey, claims)
			c.Set(TokenKey, token)
			return next(c)
		}
	}
}

// RequireSuperuser rejects authenticated callers whose claims do not carry
// the superuser flag.
func RequireSuperuser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFrom(c)
			if claims == nil || !claims.IsSuperuser {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "not enough permissions"})
			}
			return next(c)
		}
	}
}

// RequireRRHH rejects callers whose primary role is not RRHH. The check is
// strict equality on the primary-role claim: membership of RRHH in the
// secondary role-code set does not qualify.
func RequireRRHH() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFrom(c)
			if claims == nil || claims.Role != auth.RoleRRHH {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "only users with RRHH role can perform this action"})
			}
			return next(c)
		}
	}
}
