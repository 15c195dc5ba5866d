// Package router wires HTTP routes to their handlers and gates.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/sisclinica/identity-service/internal/handler"
	"github.com/sisclinica/identity-service/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check, used by load balancers and
// monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the auth endpoints. Login, refresh and validate
// are public; logout and /me run behind the bearer gate so only a live,
// unrevoked access token reaches them.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/validate", a.Validate)

	gated := e.Group("/v1/auth")
	gated.Use(middleware.Authenticate(a.Auth))
	gated.POST("/logout", a.Logout)
	gated.GET("/me", a.Me)
}

// RegisterUsers registers user administration endpoints. All of them sit
// behind the bearer gate plus the strict RRHH primary-role check.
func RegisterUsers(e *echo.Echo, a *handler.AuthHandler, u *handler.UserHandler) {
	g := e.Group("/v1/users")
	g.Use(middleware.Authenticate(a.Auth))
	g.Use(middleware.RequireRRHH())
	g.POST("", u.Register)
	g.GET("/:id/roles", u.GetUserRoles)
}
