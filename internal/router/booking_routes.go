package router

import (
	"github.com/labstack/echo/v4"

	"github.com/couvev/WashUp-Backend/internal/handler"
	"github.com/couvev/WashUp-Backend/internal/middleware"
)

// RegisterBooking registers customer-scoped booking endpoints under
// /v1. All routes require a valid JWT and the CUSTOMER role. Customers
// can reserve a slot, cancel their booking and list their current
// bookings; availability listing is registered on the public router so
// guests can browse before signing up.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER"),
	)
	g.POST("/carwashes/:id/reserve", b.Reserve)
	g.DELETE("/bookings/:slot_id", b.Cancel)
	g.GET("/my-bookings", b.MyBookings)
}
