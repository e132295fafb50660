package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"booking-system/internal/services"
	"booking-system/models"
)

type DiscountHandler struct {
	discounts *services.DiscountService
}

func NewDiscountHandler(discounts *services.DiscountService) *DiscountHandler {
	return &DiscountHandler{discounts: discounts}
}

func (h *DiscountHandler) CreateDiscount(c echo.Context) error {
	var code models.DiscountCode
	if err := c.Bind(&code); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	code.UsedCount = 0
	code.IsActive = true

	if err := h.discounts.Create(c.Request().Context(), &code); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, code)
}

// EligibleDiscounts lists the codes the caller's customer group can use
// right now.
func (h *DiscountHandler) EligibleDiscounts(c echo.Context) error {
	codes, err := h.discounts.Eligible(c.Request().Context(), Actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"discount_codes": codes})
}
