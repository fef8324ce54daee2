package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/couvev/WashUp-Backend/internal/model"
	"github.com/couvev/WashUp-Backend/internal/repository"
)

// CarWashHandler serves the car-wash directory: public browsing and
// search plus the administrative onboarding endpoints (registering a
// car wash and seeding a day's slot ledger). Admin routes are guarded
// by JWT + role middleware; the handler itself only validates input.
type CarWashHandler struct {
	Washes *repository.CarWashRepo
	Slots  *repository.SlotRepo
}

// NewCarWashHandler constructs a CarWashHandler with the provided
// repositories. Both dependencies must be non-nil.
func NewCarWashHandler(washes *repository.CarWashRepo, slots *repository.SlotRepo) *CarWashHandler {
	if washes == nil || slots == nil {
		panic("nil repository passed to NewCarWashHandler")
	}
	return &CarWashHandler{Washes: washes, Slots: slots}
}

// carWashResp is the public projection of a car wash record.
type carWashResp struct {
	ID            uint64   `json:"id"`
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	Phone         string   `json:"phone"`
	AvgPriceCents uint32   `json:"avg_price_cents"`
	OpensAt       string   `json:"opens_at"`
	ClosesAt      string   `json:"closes_at"`
	Description   string   `json:"description"`
	Services      []string `json:"services"`
}

func toCarWashResp(w *model.CarWash) carWashResp {
	return carWashResp{
		ID:            w.ID,
		Name:          w.Name,
		Address:       w.Address,
		Phone:         w.Phone,
		AvgPriceCents: w.AvgPriceCents,
		OpensAt:       w.OpensAt,
		ClosesAt:      w.ClosesAt,
		Description:   w.Description,
		Services:      w.Services,
	}
}

// Create handles POST /v1/carwashes. It registers a new car wash from
// the administrative onboarding payload. Name and address are
// mandatory; the remaining attributes are optional descriptive data.
func (h *CarWashHandler) Create(c echo.Context) error {
	var body struct {
		Name          string   `json:"name"`
		Address       string   `json:"address"`
		Phone         string   `json:"phone"`
		AvgPriceCents uint32   `json:"avg_price_cents"`
		OpensAt       string   `json:"opens_at"`
		ClosesAt      string   `json:"closes_at"`
		Description   string   `json:"description"`
		Services      []string `json:"services"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Name = strings.TrimSpace(body.Name)
	body.Address = strings.TrimSpace(body.Address)
	if body.Name == "" || body.Address == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and address are required"})
	}
	w := &model.CarWash{
		Name:          body.Name,
		Address:       body.Address,
		Phone:         strings.TrimSpace(body.Phone),
		AvgPriceCents: body.AvgPriceCents,
		OpensAt:       strings.TrimSpace(body.OpensAt),
		ClosesAt:      strings.TrimSpace(body.ClosesAt),
		Description:   strings.TrimSpace(body.Description),
		Services:      body.Services,
	}
	if err := h.Washes.Create(c.Request().Context(), w); err != nil {
		if errors.Is(err, repository.ErrStoreUnavailable) {
			return storeUnavailable(c, err)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create car wash failed"})
	}
	return c.JSON(http.StatusCreated, toCarWashResp(w))
}

// SeedSlots handles POST /v1/carwashes/:id/slots. It initializes the
// slot ledger of one car wash for one date from a list of times. All
// seeded slots start out available. Seeding the same time twice is
// rejected as a conflict.
func (h *CarWashHandler) SeedSlots(c echo.Context) error {
	washID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || washID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car wash id"})
	}
	var body struct {
		Date  string   `json:"date"`
		Times []string `json:"times"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Date = strings.TrimSpace(body.Date)
	if body.Date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is required"})
	}
	// Deduplicate and drop blanks; the unique key would reject
	// duplicates anyway but a clean 400 beats a 409 from the store.
	seen := make(map[string]struct{}, len(body.Times))
	times := make([]string, 0, len(body.Times))
	for _, t := range body.Times {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "duplicate time: " + t})
		}
		seen[t] = struct{}{}
		times = append(times, t)
	}
	if len(times) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "times is required"})
	}

	ctx := c.Request().Context()
	ok, err := h.Washes.Exists(ctx, washID)
	if err != nil {
		return storeUnavailable(c, err)
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "car wash not found"})
	}
	if err := h.Slots.SeedDay(ctx, washID, body.Date, times); err != nil {
		if errors.Is(err, repository.ErrSlotExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot already exists for this date"})
		}
		return storeUnavailable(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"car_wash_id": washID,
		"date":        body.Date,
		"seeded":      len(times),
	})
}

// List handles GET /v1/carwashes and returns all registered car washes.
func (h *CarWashHandler) List(c echo.Context) error {
	washes, err := h.Washes.List(c.Request().Context())
	if err != nil {
		return storeUnavailable(c, err)
	}
	items := make([]carWashResp, 0, len(washes))
	for _, w := range washes {
		items = append(items, toCarWashResp(w))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/carwashes/:id.
func (h *CarWashHandler) Get(c echo.Context) error {
	washID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || washID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car wash id"})
	}
	w, err := h.Washes.GetByID(c.Request().Context(), washID)
	if err != nil {
		if errors.Is(err, repository.ErrCarWashNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car wash not found"})
		}
		return storeUnavailable(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toCarWashResp(w)})
}

// Search handles GET /v1/search/carwashes?q=term and returns car washes
// whose name matches the term.
func (h *CarWashHandler) Search(c echo.Context) error {
	washes, err := h.Washes.SearchByName(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return storeUnavailable(c, err)
	}
	items := make([]carWashResp, 0, len(washes))
	for _, w := range washes {
		items = append(items, toCarWashResp(w))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
