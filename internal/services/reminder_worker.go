package services

import (
	"context"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/sirupsen/logrus"
)

// reminderOffsets are how far ahead of an event's start the holders get
// pinged.
var reminderOffsets = []time.Duration{24 * time.Hour, 7 * 24 * time.Hour}

// ReminderWorker pings paid ticket holders ahead of their events.
type ReminderWorker struct {
	db       dbx.Builder
	events   EventStore
	tickets  TicketStore
	notifier Notifier
	interval time.Duration
	log      *logrus.Entry
}

func NewReminderWorker(db dbx.Builder, events EventStore, tickets TicketStore, notifier Notifier, interval time.Duration) *ReminderWorker {
	return &ReminderWorker{
		db:       db,
		events:   events,
		tickets:  tickets,
		notifier: notifier,
		interval: interval,
		log:      logrus.WithField("component", "reminder_worker"),
	}
}

func (w *ReminderWorker) Start(ctx context.Context) {
	w.log.WithField("interval", w.interval).Info("reminder worker started")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("reminder worker stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep notifies holders of events starting one interval-wide window
// after each reminder offset. An event falls into each window exactly
// once, so holders are not pinged twice for the same offset.
func (w *ReminderWorker) Sweep(ctx context.Context) {
	now := time.Now()
	for _, offset := range reminderOffsets {
		from := now.Add(offset)
		to := from.Add(w.interval)

		events, err := w.events.StartingBetween(ctx, w.db, from, to)
		if err != nil {
			w.log.WithError(err).Error("list upcoming events")
			continue
		}
		for _, event := range events {
			holders, err := w.tickets.PaidHolders(ctx, w.db, event.ID)
			if err != nil {
				w.log.WithError(err).WithField("event_id", event.ID).Error("list paid holders")
				continue
			}
			for _, userID := range holders {
				w.notifier.EventReminder(ctx, userID, event)
			}
			if len(holders) > 0 {
				w.log.WithFields(logrus.Fields{"event_id": event.ID, "holders": len(holders)}).
					Info("sent event reminders")
			}
		}
	}
}
