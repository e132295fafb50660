package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"booking-system/internal/services"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Register(c echo.Context) error {
	var req services.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	user, err := h.users.Register(c.Request().Context(), req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Me(c echo.Context) error {
	user, err := h.users.Get(c.Request().Context(), Actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"user":           user,
		"customer_group": user.CustomerGroup(),
	})
}

func (h *UserHandler) ListNotifications(c echo.Context) error {
	unreadOnly := c.QueryParam("unread") == "true"
	notifications, err := h.users.Notifications(c.Request().Context(), Actor(c), unreadOnly)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"notifications": notifications})
}
