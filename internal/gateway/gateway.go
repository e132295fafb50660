// Package gateway integrates the external payment providers: building
// the redirect URLs that send a user off to pay, and listening for the
// asynchronous settlement notifications that come back.
package gateway

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"booking-system/models"
)

// PaymentRequest carries what a provider needs to open a payment.
type PaymentRequest struct {
	PaymentID int64
	Amount    decimal.Decimal
	OrderInfo string
	ClientIP  string
}

// Provider builds the external checkout URL for one payment method.
type Provider interface {
	Method() models.PaymentMethod
	PaymentURL(ctx context.Context, req PaymentRequest) (string, error)
}

// Factory routes payments to the provider registered for their method.
type Factory struct {
	providers map[models.PaymentMethod]Provider
}

func NewFactory(providers ...Provider) *Factory {
	f := &Factory{providers: make(map[models.PaymentMethod]Provider, len(providers))}
	for _, p := range providers {
		f.providers[p.Method()] = p
	}
	return f
}

// PaymentURL builds the checkout URL for a pending payment. Cash
// payments settle at the venue and have no URL.
func (f *Factory) PaymentURL(ctx context.Context, method models.PaymentMethod, payment *models.Payment) (string, error) {
	if method == models.MethodCash {
		return "", nil
	}
	p, ok := f.providers[method]
	if !ok {
		return "", fmt.Errorf("no payment provider for method %q", method)
	}
	return p.PaymentURL(ctx, PaymentRequest{
		PaymentID: payment.ID,
		Amount:    payment.Amount,
		OrderInfo: fmt.Sprintf("Ticket payment #%d", payment.ID),
	})
}
