package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVNPay_PaymentURL(t *testing.T) {
	v := NewVNPay("TESTCODE", "secret-key", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html", "https://example.com/return")

	raw, err := v.PaymentURL(context.Background(), PaymentRequest{
		PaymentID: 55,
		Amount:    decimal.NewFromInt(150_000),
		OrderInfo: "Ticket payment #55",
	})
	require.NoError(t, err)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	params := parsed.Query()

	assert.Equal(t, "2.1.0", params.Get("vnp_Version"))
	assert.Equal(t, "pay", params.Get("vnp_Command"))
	assert.Equal(t, "TESTCODE", params.Get("vnp_TmnCode"))
	assert.Equal(t, "55", params.Get("vnp_TxnRef"))
	assert.Equal(t, "15000000", params.Get("vnp_Amount"), "two implied decimal places")
	assert.Equal(t, "VND", params.Get("vnp_CurrCode"))
	assert.NotEmpty(t, params.Get("vnp_SecureHash"))
}

func TestVNPay_SignatureCoversSortedQuery(t *testing.T) {
	v := NewVNPay("TESTCODE", "secret-key", "https://pay.example", "https://example.com/return")

	raw, err := v.PaymentURL(context.Background(), PaymentRequest{
		PaymentID: 55,
		Amount:    decimal.NewFromInt(150_000),
		OrderInfo: "Ticket payment #55",
	})
	require.NoError(t, err)

	query, hash, found := strings.Cut(raw[strings.Index(raw, "?")+1:], "&vnp_SecureHash=")
	require.True(t, found)

	mac := hmac.New(sha512.New, []byte("secret-key"))
	mac.Write([]byte(query))
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), hash)

	// the signed query must be in sorted parameter order
	keys := make([]string, 0)
	for _, pair := range strings.Split(query, "&") {
		key, _, _ := strings.Cut(pair, "=")
		keys = append(keys, key)
	}
	assert.IsIncreasing(t, keys)
}

func TestVNPayAmount(t *testing.T) {
	assert.Equal(t, "15000050", vnpayAmount(decimal.NewFromFloat(150_000.50)))
	assert.Equal(t, "100", vnpayAmount(decimal.NewFromInt(1)))
}
