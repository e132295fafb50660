package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentCancelled PaymentStatus = "cancelled"
)

type PaymentMethod string

const (
	MethodVNPay PaymentMethod = "vnpay"
	MethodMoMo  PaymentMethod = "momo"
	MethodCash  PaymentMethod = "cash"
)

type Payment struct {
	ID             int64           `db:"id" json:"id"`
	UserID         int64           `db:"user_id" json:"user_id"`
	Amount         decimal.Decimal `db:"amount" json:"amount"`
	Method         PaymentMethod   `db:"method" json:"method"`
	Status         PaymentStatus   `db:"status" json:"status"`
	TransactionID  string          `db:"transaction_id" json:"transaction_id"`
	DiscountCodeID *int64          `db:"discount_code_id" json:"discount_code_id,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	ExpiresAt      time.Time       `db:"expires_at" json:"expires_at"`
	PaidAt         *time.Time      `db:"paid_at" json:"paid_at,omitempty"`
}

func (p Payment) TableName() string {
	return "payments"
}

// GatewayNotification is the payload reported asynchronously by the
// external payment provider when a transaction settles.
type GatewayNotification struct {
	PaymentID     int64  `json:"payment_id"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
}
