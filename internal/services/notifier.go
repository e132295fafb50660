package services

import (
	"context"
	"fmt"
	"time"

	"github.com/pocketbase/dbx"
	pubnub "github.com/pubnub/go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"booking-system/models"
	"booking-system/utils"
)

// JobPublisher queues a background job for an out-of-process worker.
type JobPublisher interface {
	Publish(ctx context.Context, message any) error
}

// RealtimePublisher pushes a message onto a realtime channel.
type RealtimePublisher interface {
	Publish(channel string, message map[string]any) error
}

// EmailJob is the payload consumed by the external mail worker.
type EmailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// DispatchNotifier records a notification row and then delivers it over
// the email queue and the user's realtime channel. Delivery runs behind
// a circuit breaker; a broken broker degrades to log lines.
type DispatchNotifier struct {
	db            dbx.Builder
	notifications NotificationStore
	users         UserStore
	jobs          JobPublisher
	realtime      RealtimePublisher
	breaker       *utils.CircuitBreaker
	log           *logrus.Entry
}

func NewDispatchNotifier(db dbx.Builder, notifications NotificationStore, users UserStore, jobs JobPublisher, realtime RealtimePublisher) *DispatchNotifier {
	return &DispatchNotifier{
		db:            db,
		notifications: notifications,
		users:         users,
		jobs:          jobs,
		realtime:      realtime,
		breaker:       utils.NewCircuitBreaker("notify"),
		log:           logrus.WithField("component", "notifier"),
	}
}

func (n *DispatchNotifier) BookingCreated(ctx context.Context, user *models.User, event *models.Event, payment *models.Payment, ticketCount int) {
	title := "Booking received"
	message := fmt.Sprintf("You reserved %d ticket(s) for %q. Complete payment #%d of %s before %s to keep them.",
		ticketCount, event.Title, payment.ID, payment.Amount.StringFixed(2), payment.ExpiresAt.Format("15:04 Jan 2"))
	n.dispatch(ctx, user, event.ID, models.NotificationBooking, title, message)
}

func (n *DispatchNotifier) PaymentConfirmed(ctx context.Context, user *models.User, event *models.Event, amount decimal.Decimal, ticketCount int) {
	title := "Payment confirmed"
	message := fmt.Sprintf("Payment of %s confirmed. Your %d ticket(s) for %q are ready.",
		amount.StringFixed(2), ticketCount, event.Title)
	n.dispatch(ctx, user, event.ID, models.NotificationPayment, title, message)
}

func (n *DispatchNotifier) EventReminder(ctx context.Context, userID int64, event *models.Event) {
	user, err := n.users.Get(ctx, n.db, userID)
	if err != nil {
		n.log.WithError(err).WithField("user_id", userID).Warn("load user for reminder")
		return
	}
	title := "Event reminder"
	message := fmt.Sprintf("%q starts %s at %s. See you there!",
		event.Title, event.StartTime.Format("Mon Jan 2 15:04"), event.Location)
	n.dispatch(ctx, user, event.ID, models.NotificationReminder, title, message)
}

func (n *DispatchNotifier) dispatch(ctx context.Context, user *models.User, eventID int64, typ models.NotificationType, title, message string) {
	row := &models.Notification{
		UserID:    user.ID,
		EventID:   &eventID,
		Type:      typ,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}
	if err := n.notifications.Create(ctx, n.db, row); err != nil {
		n.log.WithError(err).WithField("user_id", user.ID).Warn("persist notification")
	}

	if n.jobs != nil {
		err := n.breaker.Do(ctx, func(ctx context.Context) error {
			return n.jobs.Publish(ctx, EmailJob{To: user.Email, Subject: title, Body: message})
		})
		if err != nil {
			n.log.WithError(err).WithField("user_id", user.ID).Warn("queue email")
		}
	}

	if n.realtime != nil {
		err := n.breaker.Do(ctx, func(context.Context) error {
			return n.realtime.Publish(UserChannel(user.ID), map[string]any{
				"type":     string(typ),
				"event_id": eventID,
				"title":    title,
				"message":  message,
			})
		})
		if err != nil {
			n.log.WithError(err).WithField("user_id", user.ID).Warn("push realtime notification")
		}
	}
}

// UserChannel names the per-user realtime channel.
func UserChannel(userID int64) string {
	return fmt.Sprintf("user-%d", userID)
}

// PubNubRealtime adapts a PubNub client to RealtimePublisher.
type PubNubRealtime struct {
	pn *pubnub.PubNub
}

func NewPubNubRealtime(pn *pubnub.PubNub) *PubNubRealtime {
	return &PubNubRealtime{pn: pn}
}

func (p *PubNubRealtime) Publish(channel string, message map[string]any) error {
	_, st, err := p.pn.Publish().
		Channel(channel).
		Message(message).
		Execute()
	if err != nil {
		return err
	}
	if st.Error != nil {
		return fmt.Errorf("pubnub publish: status %d: %w", st.StatusCode, st.Error)
	}
	return nil
}
