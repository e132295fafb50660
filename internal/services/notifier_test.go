package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"booking-system/models"
)

type fakeJobQueue struct {
	jobs []any
	err  error
}

func (q *fakeJobQueue) Publish(_ context.Context, message any) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, message)
	return nil
}

type fakeRealtime struct {
	channels []string
	messages []map[string]any
}

func (r *fakeRealtime) Publish(channel string, message map[string]any) error {
	r.channels = append(r.channels, channel)
	r.messages = append(r.messages, message)
	return nil
}

func TestDispatchNotifier_BookingCreated(t *testing.T) {
	ctx := context.Background()
	notifications := &mockNotificationStore{}
	jobs := &fakeJobQueue{}
	realtime := &fakeRealtime{}
	n := NewDispatchNotifier(nil, notifications, &mockUserStore{}, jobs, realtime)

	var row *models.Notification
	notifications.On("Create", ctx, nil, mock.AnythingOfType("*models.Notification")).
		Run(func(args mock.Arguments) {
			row = args.Get(2).(*models.Notification)
		}).
		Return(nil)

	event := testEvent(100_000, 100, 10)
	payment := &models.Payment{
		ID:        55,
		Amount:    decimal.NewFromInt(200_000),
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}
	n.BookingCreated(ctx, testUser(), event, payment, 2)

	require.NotNil(t, row)
	require.NotNil(t, row.EventID)
	assert.Equal(t, event.ID, *row.EventID)
	assert.Equal(t, models.NotificationBooking, row.Type)
	assert.False(t, row.CreatedAt.IsZero())

	require.Len(t, jobs.jobs, 1)
	job := jobs.jobs[0].(EmailJob)
	assert.Equal(t, "alice@example.com", job.To)
	assert.NotEmpty(t, job.Body)

	require.Len(t, realtime.channels, 1)
	assert.Equal(t, "user-7", realtime.channels[0])
	assert.Equal(t, event.ID, realtime.messages[0]["event_id"])
}

func TestDispatchNotifier_DeliveryFailureStillPersists(t *testing.T) {
	ctx := context.Background()
	notifications := &mockNotificationStore{}
	jobs := &fakeJobQueue{err: errors.New("broker down")}
	realtime := &fakeRealtime{}
	n := NewDispatchNotifier(nil, notifications, &mockUserStore{}, jobs, realtime)

	notifications.On("Create", ctx, nil, mock.Anything).Return(nil)

	event := testEvent(100_000, 100, 10)
	n.PaymentConfirmed(ctx, testUser(), event, decimal.NewFromInt(100_000), 1)

	// the row and the realtime push survive a dead email queue
	notifications.AssertNumberOfCalls(t, "Create", 1)
	assert.Len(t, realtime.channels, 1)
}

func TestUserChannel(t *testing.T) {
	assert.Equal(t, "user-42", UserChannel(42))
}
