package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"booking-system/internal/services"
	"booking-system/models"
)

type BookingHandler struct {
	bookings *services.BookingService
}

func NewBookingHandler(bookings *services.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

func (h *BookingHandler) BookTickets(c echo.Context) error {
	var req struct {
		EventID        int64  `json:"event_id"`
		Quantity       int    `json:"quantity"`
		DiscountCodeID *int64 `json:"discount_code_id"`
		Method         string `json:"method"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 || req.Quantity > services.MaxTicketsPerBooking {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ticket quantity"})
	}

	res, err := h.bookings.BookTickets(c.Request().Context(), services.BookRequest{
		EventID:        req.EventID,
		UserID:         Actor(c),
		Quantity:       req.Quantity,
		DiscountCodeID: req.DiscountCodeID,
		Method:         models.PaymentMethod(req.Method),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *BookingHandler) CheckIn(c echo.Context) error {
	uuid := c.PathParam("uuid")
	if uuid == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing ticket uuid"})
	}
	ticket, err := h.bookings.CheckIn(c.Request().Context(), uuid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Checked in",
		"ticket":  ticket,
	})
}
