package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e := echo.New()
	return e.NewContext(req, rec), rec
}

func TestBookTickets_InvalidQuantity(t *testing.T) {
	// validation fails before the service is reached
	handler := &BookingHandler{bookings: nil}

	c, rec := newJSONContext(http.MethodPost, "/api/v1/bookings", `{"event_id":3,"quantity":-1}`)
	require.NoError(t, handler.BookTickets(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newJSONContext(http.MethodPost, "/api/v1/bookings", `{"event_id":3,"quantity":11}`)
	require.NoError(t, handler.BookTickets(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookTickets_MalformedBody(t *testing.T) {
	handler := &BookingHandler{bookings: nil}

	c, rec := newJSONContext(http.MethodPost, "/api/v1/bookings", `{"event_id":`)
	require.NoError(t, handler.BookTickets(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckIn_MissingUUID(t *testing.T) {
	handler := &BookingHandler{bookings: nil}

	c, rec := newJSONContext(http.MethodPost, "/api/v1/tickets//check-in", "")
	require.NoError(t, handler.CheckIn(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
