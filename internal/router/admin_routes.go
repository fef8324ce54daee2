package router

import (
	"github.com/labstack/echo/v4"

	"github.com/couvev/WashUp-Backend/internal/handler"
	"github.com/couvev/WashUp-Backend/internal/middleware"
)

// RegisterAdmin registers the administrative endpoints under /v1. All
// of them require a valid JWT with the ADMIN role: registering a car
// wash, seeding its slot ledger (slots must be seeded before any
// booking against that car wash and date can succeed), and reviewing
// the registered accounts.
func RegisterAdmin(e *echo.Echo, w *handler.CarWashHandler, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	g.POST("/carwashes", w.Create)
	g.POST("/carwashes/:id/slots", w.SeedSlots)
	g.GET("/users", a.ListUsers)
}
