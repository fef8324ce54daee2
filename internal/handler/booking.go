package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/couvev/WashUp-Backend/internal/model"
	"github.com/couvev/WashUp-Backend/internal/repository"
	"github.com/couvev/WashUp-Backend/internal/service"
)

// BookingHandler exposes the slot booking flow over HTTP: listing a
// day's availability, reserving a slot, cancelling a booking and
// listing the caller's bookings. All orchestration lives in the booking
// service; this handler only parses input and maps the error taxonomy
// onto status codes. Reserve and cancel assume JWT authentication has
// already run.
type BookingHandler struct {
	Svc *service.BookingService
}

// NewBookingHandler constructs a BookingHandler around the booking
// service.
func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	if svc == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Svc: svc}
}

// slotResp is the wire shape of one slot. BookedBy and Service are
// omitted while the slot is available.
type slotResp struct {
	SlotID   uint64  `json:"slot_id"`
	Time     string  `json:"time"`
	Status   string  `json:"status"`
	BookedBy *uint64 `json:"booked_by,omitempty"`
	Service  *string `json:"service,omitempty"`
}

func toSlotResp(s *model.Slot) slotResp {
	return slotResp{SlotID: s.ID, Time: s.Time, Status: s.Status, BookedBy: s.BookedBy, Service: s.Service}
}

// ListAvailable handles GET /v1/carwashes/:id/slots?date=YYYY-MM-DD.
// It returns the free slots of one car wash for one date ordered by
// time. A date with no seeded ledger yields an empty list, not an
// error.
func (h *BookingHandler) ListAvailable(c echo.Context) error {
	washID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || washID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car wash id"})
	}
	date := strings.TrimSpace(c.QueryParam("date"))
	if date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is required"})
	}
	slots, err := h.Svc.ListAvailable(c.Request().Context(), washID, date)
	if err != nil {
		return storeUnavailable(c, err)
	}
	items := make([]slotResp, 0, len(slots))
	for i := range slots {
		items = append(items, toSlotResp(&slots[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"car_wash_id": washID,
		"date":        date,
		"items":       items,
	})
}

// Reserve handles POST /v1/carwashes/:id/reserve. The body carries the
// date, time and selected service; the requester is the authenticated
// user. Exactly one of N concurrent reservations of the same slot
// succeeds; the rest receive 409.
func (h *BookingHandler) Reserve(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	washID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || washID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car wash id"})
	}
	var body struct {
		Date    string `json:"date"`
		Time    string `json:"time"`
		Service string `json:"service"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Date = strings.TrimSpace(body.Date)
	body.Time = strings.TrimSpace(body.Time)
	body.Service = strings.TrimSpace(body.Service)
	if body.Date == "" || body.Time == "" || body.Service == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date/time/service required"})
	}

	slot, err := h.Svc.Reserve(c.Request().Context(), washID, body.Date, body.Time, userID, body.Service)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCarWashNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car wash not found"})
		case errors.Is(err, repository.ErrAccountNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "account not found"})
		case errors.Is(err, repository.ErrNoAvailabilityForDate):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no availability for date"})
		case errors.Is(err, repository.ErrSlotNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		case errors.Is(err, repository.ErrAlreadyBooked):
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot already booked"})
		}
		return storeUnavailable(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"car_wash_id": washID,
		"date":        slot.Date,
		"slot":        toSlotResp(slot),
	})
}

// Cancel handles DELETE /v1/bookings/:slot_id. The slot row id is the
// stable booking identity. Only the user who holds the booking may
// cancel it; anyone else receives 403. Cancelling a slot that is not
// booked returns 404 rather than pretending success.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	slotID, err := strconv.ParseUint(c.Param("slot_id"), 10, 64)
	if err != nil || slotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	if _, err := h.Svc.Cancel(c.Request().Context(), slotID, userID); err != nil {
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return storeUnavailable(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MyBookings handles GET /v1/my-bookings. It returns all slots
// currently booked by the authenticated user. When no bookings exist it
// returns an empty array.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Svc.MyBookings(c.Request().Context(), userID)
	if err != nil {
		return storeUnavailable(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
