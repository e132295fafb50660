package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pocketbase/dbx"

	"booking-system/internal/status"
	"booking-system/models"
)

type TicketStore struct{}

func (s *TicketStore) Create(ctx context.Context, db dbx.Builder, t *models.Ticket) error {
	err := db.NewQuery(`
		INSERT INTO tickets (event_id, user_id, payment_id, uuid, price, purchase_date)
		VALUES ({:event}, {:user}, {:payment}, {:uuid}, {:price}, {:purchased})
		RETURNING id`).
		Bind(dbx.Params{
			"event":     t.EventID,
			"user":      t.UserID,
			"payment":   t.PaymentID,
			"uuid":      t.UUID,
			"price":     t.Price,
			"purchased": t.PurchaseDate,
		}).
		WithContext(ctx).
		Row(&t.ID)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

func (s *TicketStore) GetByUUID(ctx context.Context, db dbx.Builder, uuid string) (*models.Ticket, error) {
	var t models.Ticket
	err := db.NewQuery(`SELECT * FROM tickets WHERE uuid = {:uuid}`).
		Bind(dbx.Params{"uuid": uuid}).
		WithContext(ctx).
		One(&t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, status.ErrTicketNotFound
		}
		return nil, fmt.Errorf("get ticket by uuid: %w", err)
	}
	return &t, nil
}

func (s *TicketStore) ListByPayment(ctx context.Context, db dbx.Builder, paymentID int64) ([]*models.Ticket, error) {
	var tickets []*models.Ticket
	err := db.NewQuery(`SELECT * FROM tickets WHERE payment_id = {:pid} ORDER BY id`).
		Bind(dbx.Params{"pid": paymentID}).
		WithContext(ctx).
		All(&tickets)
	if err != nil {
		return nil, fmt.Errorf("list tickets by payment: %w", err)
	}
	return tickets, nil
}

// MarkPaidByPayment flips every still-unpaid ticket of the payment to
// paid and reports each affected ticket together with its event's
// listed price. The is_paid guard makes retried confirmations a no-op
// here, which in turn guards the holder's spend counter against double
// increments.
func (s *TicketStore) MarkPaidByPayment(ctx context.Context, db dbx.Builder, paymentID int64) ([]models.PaidTicket, error) {
	var paid []models.PaidTicket
	err := db.NewQuery(`
		UPDATE tickets t
		   SET is_paid = TRUE
		  FROM events e
		 WHERE t.payment_id = {:pid}
		   AND t.is_paid = FALSE
		   AND t.is_cancelled = FALSE
		   AND e.id = t.event_id
		RETURNING t.id, t.event_id, e.ticket_price`).
		Bind(dbx.Params{"pid": paymentID}).
		WithContext(ctx).
		All(&paid)
	if err != nil {
		return nil, fmt.Errorf("mark tickets paid: %w", err)
	}
	return paid, nil
}

// ClaimForPayment attaches the given unpaid, unclaimed tickets of one
// user and event to a payment. Returns how many rows matched so the
// caller can reject requests naming foreign or already-claimed tickets.
func (s *TicketStore) ClaimForPayment(ctx context.Context, db dbx.Builder, userID, eventID int64, ticketIDs []int64, paymentID int64) (int64, error) {
	ids := make([]any, len(ticketIDs))
	for i, id := range ticketIDs {
		ids[i] = id
	}

	res, err := db.Update("tickets",
		dbx.Params{"payment_id": paymentID},
		dbx.And(
			dbx.In("id", ids...),
			dbx.HashExp{"user_id": userID, "event_id": eventID, "is_paid": false, "is_cancelled": false},
			dbx.NewExp("payment_id IS NULL"),
		)).
		WithContext(ctx).
		Execute()
	if err != nil {
		return 0, fmt.Errorf("claim tickets: %w", err)
	}
	return res.RowsAffected()
}

// CheckIn flips a paid ticket to checked-in exactly once. The ticket is
// addressed by its QR uuid; the conditional UPDATE enforces the
// paid-before-checked-in ordering. When no row matches, the ticket is
// re-read to return the precise refusal.
func (s *TicketStore) CheckIn(ctx context.Context, db dbx.Builder, uuid string, now time.Time) (*models.Ticket, error) {
	res, err := db.NewQuery(`
		UPDATE tickets
		   SET is_checked_in = TRUE, check_in_date = {:now}
		 WHERE uuid = {:uuid}
		   AND is_paid = TRUE
		   AND is_checked_in = FALSE
		   AND is_cancelled = FALSE`).
		Bind(dbx.Params{"uuid": uuid, "now": now}).
		WithContext(ctx).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("check in ticket: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("check in ticket: %w", err)
	}

	t, getErr := s.GetByUUID(ctx, db, uuid)
	if getErr != nil {
		return nil, getErr
	}
	if n == 1 {
		return t, nil
	}

	switch {
	case t.IsCancelled:
		return nil, status.ErrTicketNotFound
	case !t.IsPaid:
		return nil, status.ErrTicketNotPaid
	default:
		return nil, status.ErrAlreadyCheckedIn
	}
}

// DetachByPayment releases the link between an expired payment and its
// unpaid tickets so a later payment can claim them again.
func (s *TicketStore) DetachByPayment(ctx context.Context, db dbx.Builder, paymentID int64) error {
	_, err := db.NewQuery(`
		UPDATE tickets SET payment_id = NULL
		 WHERE payment_id = {:pid} AND is_paid = FALSE`).
		Bind(dbx.Params{"pid": paymentID}).
		WithContext(ctx).
		Execute()
	if err != nil {
		return fmt.Errorf("detach tickets: %w", err)
	}
	return nil
}

// CancelStale voids unpaid, unclaimed tickets older than the hold TTL
// and returns their events for inventory release.
func (s *TicketStore) CancelStale(ctx context.Context, db dbx.Builder, before time.Time) ([]models.CancelledTicket, error) {
	var cancelled []models.CancelledTicket
	err := db.NewQuery(`
		UPDATE tickets SET is_cancelled = TRUE
		 WHERE is_paid = FALSE
		   AND is_cancelled = FALSE
		   AND payment_id IS NULL
		   AND purchase_date < {:before}
		RETURNING event_id`).
		Bind(dbx.Params{"before": before}).
		WithContext(ctx).
		All(&cancelled)
	if err != nil {
		return nil, fmt.Errorf("cancel stale tickets: %w", err)
	}
	return cancelled, nil
}

func (s *TicketStore) SetQRURL(ctx context.Context, db dbx.Builder, ticketID int64, url string) error {
	_, err := db.NewQuery(`UPDATE tickets SET qr_url = {:url} WHERE id = {:id}`).
		Bind(dbx.Params{"id": ticketID, "url": url}).
		WithContext(ctx).
		Execute()
	if err != nil {
		return fmt.Errorf("set ticket qr url: %w", err)
	}
	return nil
}

// PaidHolders returns the distinct users holding paid tickets for an
// event; used by the reminder sweep.
func (s *TicketStore) PaidHolders(ctx context.Context, db dbx.Builder, eventID int64) ([]int64, error) {
	var holders []int64
	err := db.NewQuery(`
		SELECT DISTINCT user_id FROM tickets
		 WHERE event_id = {:event} AND is_paid = TRUE AND is_cancelled = FALSE`).
		Bind(dbx.Params{"event": eventID}).
		WithContext(ctx).
		Column(&holders)
	if err != nil {
		return nil, fmt.Errorf("paid holders: %w", err)
	}
	return holders, nil
}
