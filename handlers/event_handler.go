package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v5"

	"booking-system/internal/services"
	"booking-system/models"
)

type EventHandler struct {
	events *services.EventService
}

func NewEventHandler(events *services.EventService) *EventHandler {
	return &EventHandler{events: events}
}

func (h *EventHandler) ListEvents(c echo.Context) error {
	onlyActive := c.QueryParam("all") == ""
	events, err := h.events.List(c.Request().Context(), onlyActive)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"events": events})
}

func (h *EventHandler) GetEvent(c echo.Context) error {
	id, err := strconv.ParseInt(c.PathParam("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid event id"})
	}
	event, err := h.events.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, event)
}

func (h *EventHandler) CreateEvent(c echo.Context) error {
	var event models.Event
	if err := c.Bind(&event); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	event.OrganizerID = Actor(c)
	event.IsActive = true
	event.SoldTickets = 0

	if err := h.events.Create(c.Request().Context(), &event); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, event)
}

func (h *EventHandler) GetAvailability(c echo.Context) error {
	id, err := strconv.ParseInt(c.PathParam("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid event id"})
	}
	av, err := h.events.Availability(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, av)
}
