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

type PaymentStore struct{}

func (s *PaymentStore) Create(ctx context.Context, db dbx.Builder, p *models.Payment) error {
	err := db.NewQuery(`
		INSERT INTO payments
			(user_id, amount, method, status, transaction_id, discount_code_id, created_at, expires_at)
		VALUES
			({:user}, {:amount}, {:method}, {:status}, {:txid}, {:discount}, {:created}, {:expires})
		RETURNING id`).
		Bind(dbx.Params{
			"user":     p.UserID,
			"amount":   p.Amount,
			"method":   p.Method,
			"status":   p.Status,
			"txid":     p.TransactionID,
			"discount": p.DiscountCodeID,
			"created":  p.CreatedAt,
			"expires":  p.ExpiresAt,
		}).
		WithContext(ctx).
		Row(&p.ID)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (s *PaymentStore) Get(ctx context.Context, db dbx.Builder, id int64) (*models.Payment, error) {
	var p models.Payment
	err := db.NewQuery(`SELECT * FROM payments WHERE id = {:id}`).
		Bind(dbx.Params{"id": id}).
		WithContext(ctx).
		One(&p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, status.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &p, nil
}

// MarkCompleted performs the pending→completed transition as a
// check-and-set. It reports false when the payment was not pending, so
// racing duplicate confirmations converge on one effective transition.
func (s *PaymentStore) MarkCompleted(ctx context.Context, db dbx.Builder, id int64, now time.Time) (bool, error) {
	res, err := db.NewQuery(`
		UPDATE payments SET status = {:done}, paid_at = {:now}
		 WHERE id = {:id} AND status = {:pending}`).
		Bind(dbx.Params{
			"id":      id,
			"now":     now,
			"done":    models.PaymentCompleted,
			"pending": models.PaymentPending,
		}).
		WithContext(ctx).
		Execute()
	if err != nil {
		return false, fmt.Errorf("complete payment: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("complete payment: %w", err)
	}
	return n == 1, nil
}

// SetTransactionID records the gateway's transaction reference.
func (s *PaymentStore) SetTransactionID(ctx context.Context, db dbx.Builder, id int64, transactionID string) error {
	_, err := db.NewQuery(`UPDATE payments SET transaction_id = {:txn} WHERE id = {:id}`).
		Bind(dbx.Params{"id": id, "txn": transactionID}).
		WithContext(ctx).
		Execute()
	if err != nil {
		return fmt.Errorf("set transaction id: %w", err)
	}
	return nil
}

// MarkCancelled performs the pending→cancelled transition with the same
// check-and-set shape as MarkCompleted.
func (s *PaymentStore) MarkCancelled(ctx context.Context, db dbx.Builder, id int64) (bool, error) {
	res, err := db.NewQuery(`
		UPDATE payments SET status = {:cancelled}
		 WHERE id = {:id} AND status = {:pending}`).
		Bind(dbx.Params{
			"id":        id,
			"cancelled": models.PaymentCancelled,
			"pending":   models.PaymentPending,
		}).
		WithContext(ctx).
		Execute()
	if err != nil {
		return false, fmt.Errorf("cancel payment: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("cancel payment: %w", err)
	}
	return n == 1, nil
}

// ListExpiredPending returns pending payments whose window has passed,
// oldest first, bounded so one sweep cannot run unbounded.
func (s *PaymentStore) ListExpiredPending(ctx context.Context, db dbx.Builder, now time.Time, limit int) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := db.NewQuery(`
		SELECT * FROM payments
		 WHERE status = {:pending} AND expires_at < {:now}
		 ORDER BY expires_at ASC
		 LIMIT {:limit}`).
		Bind(dbx.Params{"pending": models.PaymentPending, "now": now, "limit": limit}).
		WithContext(ctx).
		All(&payments)
	if err != nil {
		return nil, fmt.Errorf("list expired payments: %w", err)
	}
	return payments, nil
}
