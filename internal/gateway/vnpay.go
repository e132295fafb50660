package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"booking-system/models"
)

// VNPay builds signed checkout URLs for the VNPay gateway. The query is
// sorted, URL-encoded and signed with HMAC-SHA512 over the encoded
// string, which is what the gateway verifies on its side.
type VNPay struct {
	tmnCode    string
	hashSecret string
	baseURL    string
	returnURL  string
}

func NewVNPay(tmnCode, hashSecret, baseURL, returnURL string) *VNPay {
	return &VNPay{
		tmnCode:    tmnCode,
		hashSecret: hashSecret,
		baseURL:    baseURL,
		returnURL:  returnURL,
	}
}

func (v *VNPay) Method() models.PaymentMethod {
	return models.MethodVNPay
}

func (v *VNPay) PaymentURL(_ context.Context, req PaymentRequest) (string, error) {
	params := url.Values{}
	params.Set("vnp_Version", "2.1.0")
	params.Set("vnp_Command", "pay")
	params.Set("vnp_TmnCode", v.tmnCode)
	params.Set("vnp_Amount", vnpayAmount(req.Amount))
	params.Set("vnp_CurrCode", "VND")
	params.Set("vnp_TxnRef", strconv.FormatInt(req.PaymentID, 10))
	params.Set("vnp_OrderInfo", req.OrderInfo)
	params.Set("vnp_OrderType", "other")
	params.Set("vnp_Locale", "vn")
	params.Set("vnp_ReturnUrl", v.returnURL)
	params.Set("vnp_CreateDate", time.Now().Format("20060102150405"))
	if req.ClientIP != "" {
		params.Set("vnp_IpAddr", req.ClientIP)
	}

	// Encode sorts parameters alphabetically, which the signature
	// scheme requires.
	query := params.Encode()
	return v.baseURL + "?" + query + "&vnp_SecureHash=" + v.sign(query), nil
}

func (v *VNPay) sign(query string) string {
	mac := hmac.New(sha512.New, []byte(v.hashSecret))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

// vnpayAmount converts to the gateway's integer representation, which
// carries two implied decimal places.
func vnpayAmount(amount decimal.Decimal) string {
	return amount.Mul(decimal.NewFromInt(100)).Truncate(0).String()
}
