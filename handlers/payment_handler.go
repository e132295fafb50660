package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v5"

	"booking-system/internal/services"
	"booking-system/models"
	"booking-system/utils"
)

type PaymentHandler struct {
	payments *services.PaymentService
}

func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func (h *PaymentHandler) GetPayment(c echo.Context) error {
	id, err := strconv.ParseInt(c.PathParam("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid payment id"})
	}
	payment, tickets, err := h.payments.Get(c.Request().Context(), id, Actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"payment": payment,
		"tickets": tickets,
	})
}

func (h *PaymentHandler) ConfirmPayment(c echo.Context) error {
	id, err := strconv.ParseInt(c.PathParam("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid payment id"})
	}
	res, err := h.payments.Confirm(c.Request().Context(), id, Actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *PaymentHandler) PayUnpaidTickets(c echo.Context) error {
	var req struct {
		EventID        int64   `json:"event_id"`
		TicketIDs      []int64 `json:"ticket_ids"`
		DiscountCodeID *int64  `json:"discount_code_id"`
		Method         string  `json:"method"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if len(req.TicketIDs) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No tickets selected"})
	}

	res, err := h.payments.PayUnpaidTickets(c.Request().Context(), services.PayUnpaidRequest{
		EventID:        req.EventID,
		UserID:         Actor(c),
		TicketIDs:      req.TicketIDs,
		DiscountCodeID: req.DiscountCodeID,
		Method:         models.PaymentMethod(req.Method),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// SimulatePayment stands in for the gateway callback in development
// environments, settling a payment as if the provider had reported
// success.
func (h *PaymentHandler) SimulatePayment(c echo.Context) error {
	id, err := strconv.ParseInt(c.PathParam("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid payment id"})
	}
	ref, err := utils.GenerateCode(8)
	if err != nil {
		return respondError(c, err)
	}
	err = h.payments.ConfirmFromGateway(c.Request().Context(), models.GatewayNotification{
		PaymentID:     id,
		Status:        "success",
		TransactionID: "SIM-" + ref,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Payment settled"})
}
