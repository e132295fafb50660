package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v5"

	"booking-system/internal/status"
)

const actorContextKey = "actor_id"

// RequireUser resolves the caller from the X-User-ID header set by the
// auth proxy in front of this service. Requests without it are
// rejected.
func RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := c.Request().Header.Get("X-User-ID")
		if raw == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}
		c.Set(actorContextKey, id)
		return next(c)
	}
}

// Actor returns the caller resolved by RequireUser.
func Actor(c echo.Context) int64 {
	id, _ := c.Get(actorContextKey).(int64)
	return id
}

// respondError maps domain errors onto HTTP statuses.
func respondError(c echo.Context, err error) error {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, status.ErrEventNotFound),
		errors.Is(err, status.ErrPaymentNotFound),
		errors.Is(err, status.ErrTicketNotFound),
		errors.Is(err, status.ErrUserNotFound):
		code = http.StatusNotFound
	case errors.Is(err, status.ErrNotOwner):
		code = http.StatusForbidden
	case errors.Is(err, status.ErrSoldOut),
		errors.Is(err, status.ErrEventNotAvailable),
		errors.Is(err, status.ErrDiscountInvalid),
		errors.Is(err, status.ErrDiscountExpired),
		errors.Is(err, status.ErrDiscountWrongGroup),
		errors.Is(err, status.ErrDiscountCapReached),
		errors.Is(err, status.ErrPaymentCancelled),
		errors.Is(err, status.ErrTicketNotPaid),
		errors.Is(err, status.ErrAlreadyCheckedIn):
		code = http.StatusBadRequest
	}
	return c.JSON(code, map[string]string{"error": err.Error()})
}
