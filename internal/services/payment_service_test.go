package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"booking-system/internal/status"
	"booking-system/models"
)

type paymentFixture struct {
	svc      *PaymentService
	txr      *fakeTxRunner
	events   *mockEventStore
	tickets  *mockTicketStore
	payments *mockPaymentStore
	users    *mockUserStore
	notifier *mockNotifier
	qr       *mockQRStorage
}

func setupPaymentService() *paymentFixture {
	f := &paymentFixture{
		txr:      &fakeTxRunner{},
		events:   &mockEventStore{},
		tickets:  &mockTicketStore{},
		payments: &mockPaymentStore{},
		users:    &mockUserStore{},
		notifier: &mockNotifier{},
		qr:       &mockQRStorage{},
	}
	f.svc = NewPaymentService(nil, f.txr, f.events, f.tickets, f.payments,
		&mockDiscountStore{}, f.users, f.notifier, nil, f.qr, 15*time.Minute)
	return f
}

func pendingPayment(amount int64) *models.Payment {
	return &models.Payment{
		ID:     55,
		UserID: 7,
		Amount: decimal.NewFromInt(amount),
		Status: models.PaymentPending,
	}
}

func TestConfirm_Success(t *testing.T) {
	f := setupPaymentService()
	ctx := context.Background()

	paid := []models.PaidTicket{
		{TicketID: 1, EventID: 3, TicketPrice: decimal.NewFromInt(75_000)},
		{TicketID: 2, EventID: 3, TicketPrice: decimal.NewFromInt(75_000)},
	}

	f.payments.On("Get", ctx, nil, int64(55)).Return(pendingPayment(150_000), nil)
	f.payments.On("MarkCompleted", ctx, nil, int64(55), mock.AnythingOfType("time.Time")).Return(true, nil)
	f.tickets.On("MarkPaidByPayment", ctx, nil, int64(55)).Return(paid, nil)
	f.users.On("AddSpent", ctx, nil, int64(7), mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.NewFromInt(150_000))
	})).Return(nil)

	f.users.On("Get", ctx, nil, int64(7)).Return(testUser(), nil)
	f.events.On("Get", ctx, nil, int64(3)).Return(testEvent(75_000, 100, 10), nil)
	f.notifier.On("PaymentConfirmed", ctx, mock.Anything, mock.Anything, mock.Anything, 2).Return()
	f.tickets.On("ListByPayment", ctx, nil, int64(55)).Return([]*models.Ticket{
		{ID: 1, UUID: "u-1"},
		{ID: 2, UUID: "u-2"},
	}, nil)
	f.qr.On("StoreTicketQR", ctx, "u-1").Return("https://qr/u-1.png", nil)
	f.qr.On("StoreTicketQR", ctx, "u-2").Return("https://qr/u-2.png", nil)
	f.tickets.On("SetQRURL", ctx, nil, int64(1), "https://qr/u-1.png").Return(nil)
	f.tickets.On("SetQRURL", ctx, nil, int64(2), "https://qr/u-2.png").Return(nil)

	res, err := f.svc.Confirm(ctx, 55, 7)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentCompleted, res.Status)
	assert.False(t, res.AlreadyProcessed)
	assert.Equal(t, 2, res.TicketsPaid)

	f.users.AssertCalled(t, "AddSpent", ctx, nil, int64(7), mock.Anything)
	f.notifier.AssertNumberOfCalls(t, "PaymentConfirmed", 1)
}

func TestConfirm_Idempotent(t *testing.T) {
	f := setupPaymentService()
	ctx := context.Background()

	done := pendingPayment(150_000)
	done.Status = models.PaymentCompleted

	f.payments.On("Get", ctx, nil, int64(55)).Return(done, nil)

	res, err := f.svc.Confirm(ctx, 55, 7)
	require.NoError(t, err)

	assert.True(t, res.AlreadyProcessed)
	assert.Equal(t, models.PaymentCompleted, res.Status)

	f.payments.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.users.AssertNotCalled(t, "AddSpent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.notifier.AssertNotCalled(t, "PaymentConfirmed", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirm_NotOwner(t *testing.T) {
	f := setupPaymentService()
	ctx := context.Background()

	f.payments.On("Get", ctx, nil, int64(55)).Return(pendingPayment(150_000), nil)

	_, err := f.svc.Confirm(ctx, 55, 8)
	assert.ErrorIs(t, err, status.ErrNotOwner)
}

func TestConfirm_Cancelled(t *testing.T) {
	f := setupPaymentService()
	ctx := context.Background()

	cancelled := pendingPayment(150_000)
	cancelled.Status = models.PaymentCancelled

	f.payments.On("Get", ctx, nil, int64(55)).Return(cancelled, nil)

	_, err := f.svc.Confirm(ctx, 55, 7)
	assert.ErrorIs(t, err, status.ErrPaymentCancelled)
}

func TestConfirm_NotFound(t *testing.T) {
	f := setupPaymentService()
	ctx := context.Background()

	f.payments.On("Get", ctx, nil, int64(55)).Return(nil, status.ErrPaymentNotFound)

	_, err := f.svc.Confirm(ctx, 55, 7)
	assert.ErrorIs(t, err, status.ErrPaymentNotFound)
}

func TestConfirm_LostRace(t *testing.T) {
	f := setupPaymentService()
	ctx := context.Background()

	done := pendingPayment(150_000)
	done.Status = models.PaymentCompleted

	// pending on the first read, completed by someone else inside the tx
	f.payments.On("Get", ctx, nil, int64(55)).Return(pendingPayment(150_000), nil).Once()
	f.payments.On("MarkCompleted", ctx, nil, int64(55), mock.AnythingOfType("time.Time")).Return(false, nil)
	f.payments.On("Get", ctx, nil, int64(55)).Return(done, nil)

	res, err := f.svc.Confirm(ctx, 55, 7)
	require.NoError(t, err)

	assert.True(t, res.AlreadyProcessed)
	f.tickets.AssertNotCalled(t, "MarkPaidByPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirm_NotifiesEachEventOnce(t *testing.T) {
	f := setupPaymentService()
	ctx := context.Background()

	paid := []models.PaidTicket{
		{TicketID: 1, EventID: 3, TicketPrice: decimal.NewFromInt(50_000)},
		{TicketID: 2, EventID: 3, TicketPrice: decimal.NewFromInt(50_000)},
		{TicketID: 3, EventID: 4, TicketPrice: decimal.NewFromInt(90_000)},
	}

	f.payments.On("Get", ctx, nil, int64(55)).Return(pendingPayment(190_000), nil)
	f.payments.On("MarkCompleted", ctx, nil, int64(55), mock.Anything).Return(true, nil)
	f.tickets.On("MarkPaidByPayment", ctx, nil, int64(55)).Return(paid, nil)
	f.users.On("AddSpent", ctx, nil, int64(7), mock.Anything).Return(nil)

	f.users.On("Get", ctx, nil, int64(7)).Return(testUser(), nil)
	eventA := testEvent(50_000, 100, 10)
	eventB := testEvent(90_000, 100, 10)
	eventB.ID = 4
	f.events.On("Get", ctx, nil, int64(3)).Return(eventA, nil)
	f.events.On("Get", ctx, nil, int64(4)).Return(eventB, nil)
	f.notifier.On("PaymentConfirmed", ctx, mock.Anything, eventA, mock.Anything, 2).Return()
	f.notifier.On("PaymentConfirmed", ctx, mock.Anything, eventB, mock.Anything, 1).Return()
	f.tickets.On("ListByPayment", ctx, nil, int64(55)).Return([]*models.Ticket{}, nil)

	_, err := f.svc.Confirm(ctx, 55, 7)
	require.NoError(t, err)

	f.notifier.AssertNumberOfCalls(t, "PaymentConfirmed", 2)
}

func TestConfirm_QRFailureTolerated(t *testing.T) {
	f := setupPaymentService()
	ctx := context.Background()

	paid := []models.PaidTicket{
		{TicketID: 1, EventID: 3, TicketPrice: decimal.NewFromInt(75_000)},
	}

	f.payments.On("Get", ctx, nil, int64(55)).Return(pendingPayment(75_000), nil)
	f.payments.On("MarkCompleted", ctx, nil, int64(55), mock.Anything).Return(true, nil)
	f.tickets.On("MarkPaidByPayment", ctx, nil, int64(55)).Return(paid, nil)
	f.users.On("AddSpent", ctx, nil, int64(7), mock.Anything).Return(nil)

	f.users.On("Get", ctx, nil, int64(7)).Return(testUser(), nil)
	f.events.On("Get", ctx, nil, int64(3)).Return(testEvent(75_000, 100, 10), nil)
	f.notifier.On("PaymentConfirmed", ctx, mock.Anything, mock.Anything, mock.Anything, 1).Return()
	f.tickets.On("ListByPayment", ctx, nil, int64(55)).Return([]*models.Ticket{
		{ID: 1, UUID: "u-1"},
	}, nil)
	f.qr.On("StoreTicketQR", ctx, "u-1").Return("", assert.AnError)

	res, err := f.svc.Confirm(ctx, 55, 7)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, res.Status)

	f.tickets.AssertNotCalled(t, "SetQRURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmFromGateway(t *testing.T) {
	f := setupPaymentService()
	ctx := context.Background()

	// the first read resolves the owner, the second is the confirm path
	f.payments.On("Get", ctx, nil, int64(55)).Return(pendingPayment(75_000), nil)
	f.payments.On("SetTransactionID", ctx, nil, int64(55), "txn-1").Return(nil)
	f.payments.On("MarkCompleted", ctx, nil, int64(55), mock.Anything).Return(true, nil)
	f.tickets.On("MarkPaidByPayment", ctx, nil, int64(55)).Return([]models.PaidTicket{}, nil)
	f.users.On("Get", ctx, nil, int64(7)).Return(testUser(), nil)
	f.tickets.On("ListByPayment", ctx, nil, int64(55)).Return([]*models.Ticket{}, nil)

	err := f.svc.ConfirmFromGateway(ctx, models.GatewayNotification{
		PaymentID:     55,
		Status:        "success",
		TransactionID: "txn-1",
	})
	require.NoError(t, err)

	f.payments.AssertCalled(t, "SetTransactionID", ctx, nil, int64(55), "txn-1")
	f.payments.AssertCalled(t, "MarkCompleted", ctx, nil, int64(55), mock.Anything)
}

func TestPayUnpaidTickets_ClaimMismatch(t *testing.T) {
	f := setupPaymentService()
	ctx := context.Background()

	f.users.On("Get", ctx, nil, int64(7)).Return(testUser(), nil)
	f.events.On("Get", ctx, nil, int64(3)).Return(testEvent(100_000, 100, 10), nil)
	f.payments.On("Create", ctx, nil, mock.Anything).Return(nil)
	// one of the requested tickets belongs to someone else
	f.tickets.On("ClaimForPayment", ctx, nil, int64(7), int64(3), []int64{1, 2}, mock.Anything).
		Return(int64(1), nil)

	_, err := f.svc.PayUnpaidTickets(ctx, PayUnpaidRequest{
		EventID: 3, UserID: 7, TicketIDs: []int64{1, 2},
	})
	assert.ErrorIs(t, err, status.ErrTicketNotFound)
}

func TestPayUnpaidTickets_Success(t *testing.T) {
	f := setupPaymentService()
	ctx := context.Background()

	f.users.On("Get", ctx, nil, int64(7)).Return(testUser(), nil)
	f.events.On("Get", ctx, nil, int64(3)).Return(testEvent(100_000, 100, 10), nil)
	f.payments.On("Create", ctx, nil, mock.AnythingOfType("*models.Payment")).
		Run(func(args mock.Arguments) {
			args.Get(2).(*models.Payment).ID = 56
		}).
		Return(nil)
	f.tickets.On("ClaimForPayment", ctx, nil, int64(7), int64(3), []int64{1, 2}, int64(56)).
		Return(int64(2), nil)
	f.tickets.On("ListByPayment", ctx, nil, int64(56)).Return([]*models.Ticket{
		{ID: 1}, {ID: 2},
	}, nil)

	res, err := f.svc.PayUnpaidTickets(ctx, PayUnpaidRequest{
		EventID: 3, UserID: 7, TicketIDs: []int64{1, 2}, Method: models.MethodCash,
	})
	require.NoError(t, err)

	assert.True(t, res.FinalAmount.Equal(decimal.NewFromInt(200_000)))
	assert.Len(t, res.Tickets, 2)
	assert.NotEmpty(t, res.Payment.TransactionID)
	assert.False(t, res.Payment.CreatedAt.IsZero())
}
