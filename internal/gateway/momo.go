package gateway

import (
	"context"
	"net/url"
	"strconv"

	"booking-system/models"
)

// MoMo builds checkout URLs for the MoMo wallet. The sandbox endpoint
// accepts the order reference and amount as plain query parameters.
type MoMo struct {
	baseURL string
}

func NewMoMo(baseURL string) *MoMo {
	return &MoMo{baseURL: baseURL}
}

func (m *MoMo) Method() models.PaymentMethod {
	return models.MethodMoMo
}

func (m *MoMo) PaymentURL(_ context.Context, req PaymentRequest) (string, error) {
	params := url.Values{}
	params.Set("orderId", strconv.FormatInt(req.PaymentID, 10))
	params.Set("amount", req.Amount.StringFixed(0))
	params.Set("orderInfo", req.OrderInfo)
	return m.baseURL + "?" + params.Encode(), nil
}
