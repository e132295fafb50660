package services

import (
	"context"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"booking-system/models"
)

// fakeTxRunner runs the transaction body directly. A returned error
// stands in for a rollback.
type fakeTxRunner struct {
	runs int
}

func (f *fakeTxRunner) RunInTx(_ context.Context, fn func(tx dbx.Builder) error) error {
	f.runs++
	return fn(nil)
}

type mockEventStore struct{ mock.Mock }

func (m *mockEventStore) Get(ctx context.Context, db dbx.Builder, id int64) (*models.Event, error) {
	args := m.Called(ctx, db, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockEventStore) List(ctx context.Context, db dbx.Builder, onlyActive bool) ([]*models.Event, error) {
	args := m.Called(ctx, db, onlyActive)
	if v := args.Get(0); v != nil {
		return v.([]*models.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockEventStore) Create(ctx context.Context, db dbx.Builder, e *models.Event) error {
	return m.Called(ctx, db, e).Error(0)
}

func (m *mockEventStore) TryReserve(ctx context.Context, db dbx.Builder, eventID int64, qty int) error {
	return m.Called(ctx, db, eventID, qty).Error(0)
}

func (m *mockEventStore) Release(ctx context.Context, db dbx.Builder, eventID int64, qty int) error {
	return m.Called(ctx, db, eventID, qty).Error(0)
}

func (m *mockEventStore) StartingBetween(ctx context.Context, db dbx.Builder, from, to time.Time) ([]*models.Event, error) {
	args := m.Called(ctx, db, from, to)
	if v := args.Get(0); v != nil {
		return v.([]*models.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockTicketStore struct{ mock.Mock }

func (m *mockTicketStore) Create(ctx context.Context, db dbx.Builder, t *models.Ticket) error {
	return m.Called(ctx, db, t).Error(0)
}

func (m *mockTicketStore) GetByUUID(ctx context.Context, db dbx.Builder, uuid string) (*models.Ticket, error) {
	args := m.Called(ctx, db, uuid)
	if v := args.Get(0); v != nil {
		return v.(*models.Ticket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTicketStore) ListByPayment(ctx context.Context, db dbx.Builder, paymentID int64) ([]*models.Ticket, error) {
	args := m.Called(ctx, db, paymentID)
	if v := args.Get(0); v != nil {
		return v.([]*models.Ticket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTicketStore) MarkPaidByPayment(ctx context.Context, db dbx.Builder, paymentID int64) ([]models.PaidTicket, error) {
	args := m.Called(ctx, db, paymentID)
	if v := args.Get(0); v != nil {
		return v.([]models.PaidTicket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTicketStore) ClaimForPayment(ctx context.Context, db dbx.Builder, userID, eventID int64, ticketIDs []int64, paymentID int64) (int64, error) {
	args := m.Called(ctx, db, userID, eventID, ticketIDs, paymentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTicketStore) CheckIn(ctx context.Context, db dbx.Builder, uuid string, now time.Time) (*models.Ticket, error) {
	args := m.Called(ctx, db, uuid, now)
	if v := args.Get(0); v != nil {
		return v.(*models.Ticket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTicketStore) DetachByPayment(ctx context.Context, db dbx.Builder, paymentID int64) error {
	return m.Called(ctx, db, paymentID).Error(0)
}

func (m *mockTicketStore) CancelStale(ctx context.Context, db dbx.Builder, before time.Time) ([]models.CancelledTicket, error) {
	args := m.Called(ctx, db, before)
	if v := args.Get(0); v != nil {
		return v.([]models.CancelledTicket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTicketStore) SetQRURL(ctx context.Context, db dbx.Builder, ticketID int64, url string) error {
	return m.Called(ctx, db, ticketID, url).Error(0)
}

func (m *mockTicketStore) PaidHolders(ctx context.Context, db dbx.Builder, eventID int64) ([]int64, error) {
	args := m.Called(ctx, db, eventID)
	if v := args.Get(0); v != nil {
		return v.([]int64), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPaymentStore struct{ mock.Mock }

func (m *mockPaymentStore) Create(ctx context.Context, db dbx.Builder, p *models.Payment) error {
	return m.Called(ctx, db, p).Error(0)
}

func (m *mockPaymentStore) Get(ctx context.Context, db dbx.Builder, id int64) (*models.Payment, error) {
	args := m.Called(ctx, db, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPaymentStore) MarkCompleted(ctx context.Context, db dbx.Builder, id int64, now time.Time) (bool, error) {
	args := m.Called(ctx, db, id, now)
	return args.Bool(0), args.Error(1)
}

func (m *mockPaymentStore) SetTransactionID(ctx context.Context, db dbx.Builder, id int64, transactionID string) error {
	return m.Called(ctx, db, id, transactionID).Error(0)
}

func (m *mockPaymentStore) MarkCancelled(ctx context.Context, db dbx.Builder, id int64) (bool, error) {
	args := m.Called(ctx, db, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockPaymentStore) ListExpiredPending(ctx context.Context, db dbx.Builder, now time.Time, limit int) ([]*models.Payment, error) {
	args := m.Called(ctx, db, now, limit)
	if v := args.Get(0); v != nil {
		return v.([]*models.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockDiscountStore struct{ mock.Mock }

func (m *mockDiscountStore) Get(ctx context.Context, db dbx.Builder, id int64) (*models.DiscountCode, error) {
	args := m.Called(ctx, db, id)
	if v := args.Get(0); v != nil {
		return v.(*models.DiscountCode), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDiscountStore) Create(ctx context.Context, db dbx.Builder, d *models.DiscountCode) error {
	return m.Called(ctx, db, d).Error(0)
}

func (m *mockDiscountStore) Consume(ctx context.Context, db dbx.Builder, id int64, n int) error {
	return m.Called(ctx, db, id, n).Error(0)
}

func (m *mockDiscountStore) ListEligible(ctx context.Context, db dbx.Builder, group models.CustomerGroup, now time.Time) ([]*models.DiscountCode, error) {
	args := m.Called(ctx, db, group, now)
	if v := args.Get(0); v != nil {
		return v.([]*models.DiscountCode), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, db dbx.Builder, id int64) (*models.User, error) {
	args := m.Called(ctx, db, id)
	if v := args.Get(0); v != nil {
		return v.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) Create(ctx context.Context, db dbx.Builder, u *models.User, password string) error {
	return m.Called(ctx, db, u, password).Error(0)
}

func (m *mockUserStore) AddSpent(ctx context.Context, db dbx.Builder, id int64, amount decimal.Decimal) error {
	return m.Called(ctx, db, id, amount).Error(0)
}

type mockNotificationStore struct{ mock.Mock }

func (m *mockNotificationStore) Create(ctx context.Context, db dbx.Builder, n *models.Notification) error {
	return m.Called(ctx, db, n).Error(0)
}

func (m *mockNotificationStore) ListByUser(ctx context.Context, db dbx.Builder, userID int64, unreadOnly bool) ([]*models.Notification, error) {
	args := m.Called(ctx, db, userID, unreadOnly)
	if v := args.Get(0); v != nil {
		return v.([]*models.Notification), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) BookingCreated(ctx context.Context, user *models.User, event *models.Event, payment *models.Payment, ticketCount int) {
	m.Called(ctx, user, event, payment, ticketCount)
}

func (m *mockNotifier) PaymentConfirmed(ctx context.Context, user *models.User, event *models.Event, amount decimal.Decimal, ticketCount int) {
	m.Called(ctx, user, event, amount, ticketCount)
}

func (m *mockNotifier) EventReminder(ctx context.Context, userID int64, event *models.Event) {
	m.Called(ctx, userID, event)
}

type mockURLBuilder struct{ mock.Mock }

func (m *mockURLBuilder) PaymentURL(ctx context.Context, method models.PaymentMethod, payment *models.Payment) (string, error) {
	args := m.Called(ctx, method, payment)
	return args.String(0), args.Error(1)
}

type mockQRStorage struct{ mock.Mock }

func (m *mockQRStorage) StoreTicketQR(ctx context.Context, ticketUUID string) (string, error) {
	args := m.Called(ctx, ticketUUID)
	return args.String(0), args.Error(1)
}
