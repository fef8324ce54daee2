package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/couvev/WashUp-Backend/internal/handler"    // import the handlers that implement business logic
	"github.com/couvev/WashUp-Backend/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check,
// used by load balancers and monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware. Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Operations that do not require an existing session: register,
	// login, refresh and logout all authenticate through the payload
	// itself (credentials or refresh token).
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	// Protected endpoints require a valid access token and a known role.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("ADMIN", "CUSTOMER"))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse endpoints. These
// return the car-wash directory and slot availability so guests can
// explore before registering. No JWT or role middleware applies; the
// optional cache middleware is attached by the caller at the Echo
// level.
func RegisterPublic(e *echo.Echo, w *handler.CarWashHandler, b *handler.BookingHandler) {
	// Directory browsing and name search.
	e.GET("/v1/carwashes", w.List)
	e.GET("/v1/carwashes/:id", w.Get)
	e.GET("/v1/search/carwashes", w.Search)
	// Availability for one car wash and date. Absent ledgers read as
	// empty availability.
	e.GET("/v1/carwashes/:id/slots", b.ListAvailable)
}
