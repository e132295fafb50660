package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Ticket struct {
	ID           int64           `db:"id" json:"id"`
	EventID      int64           `db:"event_id" json:"event_id"`
	UserID       int64           `db:"user_id" json:"user_id"`
	PaymentID    *int64          `db:"payment_id" json:"payment_id,omitempty"`
	UUID         string          `db:"uuid" json:"uuid"`
	Price        decimal.Decimal `db:"price" json:"price"`
	IsPaid       bool            `db:"is_paid" json:"is_paid"`
	IsCheckedIn  bool            `db:"is_checked_in" json:"is_checked_in"`
	IsCancelled  bool            `db:"is_cancelled" json:"is_cancelled"`
	QRURL        string          `db:"qr_url" json:"qr_url,omitempty"`
	PurchaseDate time.Time       `db:"purchase_date" json:"purchase_date"`
	CheckInDate  *time.Time      `db:"check_in_date" json:"check_in_date,omitempty"`
}

func (t Ticket) TableName() string {
	return "tickets"
}

// CancelledTicket reports the event a cancelled ticket belonged to so
// the caller can release its reservation.
type CancelledTicket struct {
	EventID int64 `db:"event_id"`
}

// PaidTicket is the projection returned when a payment's tickets are
// flipped to paid: the ticket, its event and the event's listed price,
// which is what the holder's spend is credited with.
type PaidTicket struct {
	TicketID    int64           `db:"id"`
	EventID     int64           `db:"event_id"`
	TicketPrice decimal.Decimal `db:"ticket_price"`
}
