package services

import (
	"context"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/sirupsen/logrus"

	"booking-system/monitoring"
)

const expiredPaymentBatch = 100

// CleanupWorker sweeps the booking lifecycle on an interval: it cancels
// pending payments past their deadline, detaches their tickets so the
// holder can pay again later, and voids tickets that sat unpaid beyond
// the hold TTL, handing their seats back to the event.
type CleanupWorker struct {
	db       dbx.Builder
	txr      TxRunner
	events   EventStore
	tickets  TicketStore
	payments PaymentStore
	interval time.Duration
	holdTTL  time.Duration
	log      *logrus.Entry
}

func NewCleanupWorker(db dbx.Builder, txr TxRunner, events EventStore, tickets TicketStore, payments PaymentStore, interval, holdTTL time.Duration) *CleanupWorker {
	return &CleanupWorker{
		db:       db,
		txr:      txr,
		events:   events,
		tickets:  tickets,
		payments: payments,
		interval: interval,
		holdTTL:  holdTTL,
		log:      logrus.WithField("component", "cleanup_worker"),
	}
}

// Start blocks until ctx is cancelled.
func (w *CleanupWorker) Start(ctx context.Context) {
	w.log.WithField("interval", w.interval).Info("cleanup worker started")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("cleanup worker stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs one cleanup round. Exported so the schedule and the logic
// can be tested apart.
func (w *CleanupWorker) Sweep(ctx context.Context) {
	w.expirePayments(ctx)
	w.releaseStaleHolds(ctx)
}

func (w *CleanupWorker) expirePayments(ctx context.Context) {
	expired, err := w.payments.ListExpiredPending(ctx, w.db, time.Now(), expiredPaymentBatch)
	if err != nil {
		w.log.WithError(err).Error("list expired payments")
		return
	}

	for _, p := range expired {
		paymentID := p.ID
		err := w.txr.RunInTx(ctx, func(tx dbx.Builder) error {
			ok, err := w.payments.MarkCancelled(ctx, tx, paymentID)
			if err != nil {
				return err
			}
			if !ok {
				// settled or already cancelled since we listed it
				return nil
			}
			return w.tickets.DetachByPayment(ctx, tx, paymentID)
		})
		if err != nil {
			w.log.WithError(err).WithField("payment_id", paymentID).Error("expire payment")
			continue
		}
		monitoring.TrackPaymentExpired()
		w.log.WithField("payment_id", paymentID).Info("expired pending payment")
	}
}

func (w *CleanupWorker) releaseStaleHolds(ctx context.Context) {
	err := w.txr.RunInTx(ctx, func(tx dbx.Builder) error {
		cancelled, err := w.tickets.CancelStale(ctx, tx, time.Now().Add(-w.holdTTL))
		if err != nil {
			return err
		}
		perEvent := make(map[int64]int)
		for _, c := range cancelled {
			perEvent[c.EventID]++
		}
		for eventID, n := range perEvent {
			if err := w.events.Release(ctx, tx, eventID, n); err != nil {
				return err
			}
			w.log.WithFields(logrus.Fields{"event_id": eventID, "released": n}).
				Info("released stale ticket holds")
		}
		return nil
	})
	if err != nil {
		w.log.WithError(err).Error("release stale holds")
	}
}
