// Package services holds the booking use cases: ticket issuing, payment
// confirmation, discount eligibility and the background sweeps. Stores
// are consumed through narrow interfaces so the flows can be exercised
// in tests without a database.
package services

import (
	"context"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/shopspring/decimal"

	"booking-system/models"
)

// TxRunner executes a function inside one database transaction; the
// builder it passes is only valid for the duration of the call.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx dbx.Builder) error) error
}

type EventStore interface {
	Get(ctx context.Context, db dbx.Builder, id int64) (*models.Event, error)
	List(ctx context.Context, db dbx.Builder, onlyActive bool) ([]*models.Event, error)
	Create(ctx context.Context, db dbx.Builder, e *models.Event) error
	TryReserve(ctx context.Context, db dbx.Builder, eventID int64, qty int) error
	Release(ctx context.Context, db dbx.Builder, eventID int64, qty int) error
	StartingBetween(ctx context.Context, db dbx.Builder, from, to time.Time) ([]*models.Event, error)
}

type TicketStore interface {
	Create(ctx context.Context, db dbx.Builder, t *models.Ticket) error
	GetByUUID(ctx context.Context, db dbx.Builder, uuid string) (*models.Ticket, error)
	ListByPayment(ctx context.Context, db dbx.Builder, paymentID int64) ([]*models.Ticket, error)
	MarkPaidByPayment(ctx context.Context, db dbx.Builder, paymentID int64) ([]models.PaidTicket, error)
	ClaimForPayment(ctx context.Context, db dbx.Builder, userID, eventID int64, ticketIDs []int64, paymentID int64) (int64, error)
	CheckIn(ctx context.Context, db dbx.Builder, uuid string, now time.Time) (*models.Ticket, error)
	DetachByPayment(ctx context.Context, db dbx.Builder, paymentID int64) error
	CancelStale(ctx context.Context, db dbx.Builder, before time.Time) ([]models.CancelledTicket, error)
	SetQRURL(ctx context.Context, db dbx.Builder, ticketID int64, url string) error
	PaidHolders(ctx context.Context, db dbx.Builder, eventID int64) ([]int64, error)
}

type PaymentStore interface {
	Create(ctx context.Context, db dbx.Builder, p *models.Payment) error
	Get(ctx context.Context, db dbx.Builder, id int64) (*models.Payment, error)
	MarkCompleted(ctx context.Context, db dbx.Builder, id int64, now time.Time) (bool, error)
	SetTransactionID(ctx context.Context, db dbx.Builder, id int64, transactionID string) error
	MarkCancelled(ctx context.Context, db dbx.Builder, id int64) (bool, error)
	ListExpiredPending(ctx context.Context, db dbx.Builder, now time.Time, limit int) ([]*models.Payment, error)
}

type DiscountStore interface {
	Get(ctx context.Context, db dbx.Builder, id int64) (*models.DiscountCode, error)
	Create(ctx context.Context, db dbx.Builder, d *models.DiscountCode) error
	Consume(ctx context.Context, db dbx.Builder, id int64, n int) error
	ListEligible(ctx context.Context, db dbx.Builder, group models.CustomerGroup, now time.Time) ([]*models.DiscountCode, error)
}

type UserStore interface {
	Get(ctx context.Context, db dbx.Builder, id int64) (*models.User, error)
	Create(ctx context.Context, db dbx.Builder, u *models.User, password string) error
	AddSpent(ctx context.Context, db dbx.Builder, id int64, amount decimal.Decimal) error
}

type NotificationStore interface {
	Create(ctx context.Context, db dbx.Builder, n *models.Notification) error
	ListByUser(ctx context.Context, db dbx.Builder, userID int64, unreadOnly bool) ([]*models.Notification, error)
}

// Notifier fans a domain event out to the user's channels. Every method
// is best-effort: failures are logged by the implementation and never
// propagate into the calling flow.
type Notifier interface {
	BookingCreated(ctx context.Context, user *models.User, event *models.Event, payment *models.Payment, ticketCount int)
	PaymentConfirmed(ctx context.Context, user *models.User, event *models.Event, amount decimal.Decimal, ticketCount int)
	EventReminder(ctx context.Context, userID int64, event *models.Event)
}

// PaymentURLBuilder produces the external gateway redirect URL for a
// freshly created payment.
type PaymentURLBuilder interface {
	PaymentURL(ctx context.Context, method models.PaymentMethod, payment *models.Payment) (string, error)
}

// QRStorage is the external image/storage collaborator that renders and
// persists a ticket's QR artifact, returning a durable URL.
type QRStorage interface {
	StoreTicketQR(ctx context.Context, ticketUUID string) (string, error)
}
