package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/couvev/WashUp-Backend/internal/repository"
)

// errNoUser is returned by getUserID when the context carries no usable
// user identity.
var errNoUser = errors.New("no user in context")

// getUserID extracts the authenticated user's ID from the Echo context.
// JWTAuth stores the raw "sub" claim, which the jwt library decodes as
// float64 for numeric claims; string subjects are parsed for
// completeness.
func getUserID(c echo.Context) (uint64, error) {
	switch v := c.Get("user_id").(type) {
	case float64:
		if v > 0 {
			return uint64(v), nil
		}
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil && n > 0 {
			return n, nil
		}
	}
	return 0, errNoUser
}

// storeUnavailable maps a repository failure to its HTTP response.
// Backing-store connectivity problems are the one condition logged as
// an operational alert; they surface as 503 so clients know the request
// is safe to retry. Anything else is an unexpected 500.
func storeUnavailable(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrStoreUnavailable) {
		log.Printf("handler: store unavailable: %v", err)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "store unavailable"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
