package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pocketbase/dbx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"booking-system/internal/status"
	"booking-system/models"
	"booking-system/monitoring"
)

const MaxTicketsPerBooking = 10

type BookingService struct {
	db         dbx.Builder
	txr        TxRunner
	events     EventStore
	tickets    TicketStore
	payments   PaymentStore
	discounts  DiscountStore
	users      UserStore
	notifier   Notifier
	gateways   PaymentURLBuilder
	cache      *AvailabilityCache
	paymentTTL time.Duration
	log        *logrus.Entry
}

func NewBookingService(
	db dbx.Builder,
	txr TxRunner,
	events EventStore,
	tickets TicketStore,
	payments PaymentStore,
	discounts DiscountStore,
	users UserStore,
	notifier Notifier,
	gateways PaymentURLBuilder,
	cache *AvailabilityCache,
	paymentTTL time.Duration,
) *BookingService {
	return &BookingService{
		db:         db,
		txr:        txr,
		events:     events,
		tickets:    tickets,
		payments:   payments,
		discounts:  discounts,
		users:      users,
		notifier:   notifier,
		gateways:   gateways,
		cache:      cache,
		paymentTTL: paymentTTL,
		log:        logrus.WithField("component", "booking_service"),
	}
}

type BookRequest struct {
	EventID        int64
	UserID         int64
	Quantity       int
	DiscountCodeID *int64
	Method         models.PaymentMethod
}

type BookingResult struct {
	Tickets     []*models.Ticket     `json:"tickets"`
	Payment     *models.Payment      `json:"payment"`
	FinalAmount decimal.Decimal      `json:"final_amount"`
	PaymentURL  string               `json:"payment_url,omitempty"`
	Discount    *models.DiscountCode `json:"discount,omitempty"`
}

// BookTickets issues req.Quantity tickets for one event together with a
// pending payment, all inside a single transaction. Seat inventory and
// the discount usage cap are claimed with conditional updates, so two
// racing bookings can never both take the last seat.
func (s *BookingService) BookTickets(ctx context.Context, req BookRequest) (*BookingResult, error) {
	if req.Quantity < 1 || req.Quantity > MaxTicketsPerBooking {
		return nil, fmt.Errorf("quantity must be between 1 and %d", MaxTicketsPerBooking)
	}
	if req.Method == "" {
		req.Method = models.MethodVNPay
	}

	user, err := s.users.Get(ctx, s.db, req.UserID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	res := &BookingResult{}

	err = s.txr.RunInTx(ctx, func(tx dbx.Builder) error {
		event, err := s.events.Get(ctx, tx, req.EventID)
		if err != nil {
			return err
		}
		if !event.Bookable(now) {
			return status.ErrEventNotAvailable
		}

		if err := s.events.TryReserve(ctx, tx, event.ID, req.Quantity); err != nil {
			return err
		}

		amount := event.TicketPrice.Mul(decimal.NewFromInt(int64(req.Quantity)))
		if req.DiscountCodeID != nil {
			discount, err := s.discounts.Get(ctx, tx, *req.DiscountCodeID)
			if err != nil {
				return err
			}
			if err := validateDiscount(discount, event.ID, user.CustomerGroup(), now); err != nil {
				return err
			}
			if err := s.discounts.Consume(ctx, tx, discount.ID, 1); err != nil {
				return err
			}
			amount = applyDiscount(amount, discount.DiscountPercent)
			res.Discount = discount
		}

		payment := &models.Payment{
			UserID:        user.ID,
			Amount:        amount,
			Status:        models.PaymentPending,
			Method:        req.Method,
			TransactionID: uuid.NewString(),
			CreatedAt:     now,
			ExpiresAt:     now.Add(s.paymentTTL),
		}
		if req.DiscountCodeID != nil {
			payment.DiscountCodeID = req.DiscountCodeID
		}
		if err := s.payments.Create(ctx, tx, payment); err != nil {
			return err
		}

		tickets := make([]*models.Ticket, 0, req.Quantity)
		for i := 0; i < req.Quantity; i++ {
			t := &models.Ticket{
				EventID:      event.ID,
				UserID:       user.ID,
				PaymentID:    &payment.ID,
				UUID:         uuid.NewString(),
				Price:        event.TicketPrice,
				PurchaseDate: now,
			}
			if err := s.tickets.Create(ctx, tx, t); err != nil {
				return err
			}
			tickets = append(tickets, t)
		}

		res.Tickets = tickets
		res.Payment = payment
		res.FinalAmount = amount
		return nil
	})
	if err != nil {
		monitoring.TrackBooking(bookingOutcome(err))
		return nil, err
	}
	monitoring.TrackBooking("success")

	s.afterBooking(ctx, user, req.EventID, res)
	return res, nil
}

// afterBooking runs the best-effort side effects of a committed booking:
// gateway URL, cache invalidation and notifications. None of them can
// fail the booking itself.
func (s *BookingService) afterBooking(ctx context.Context, user *models.User, eventID int64, res *BookingResult) {
	if s.gateways != nil {
		url, err := s.gateways.PaymentURL(ctx, res.Payment.Method, res.Payment)
		if err != nil {
			s.log.WithError(err).WithField("payment_id", res.Payment.ID).Warn("build payment url")
		} else {
			res.PaymentURL = url
		}
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, eventID)
	}

	if s.notifier != nil {
		event, err := s.events.Get(ctx, s.db, eventID)
		if err != nil {
			s.log.WithError(err).WithField("event_id", eventID).Warn("load event for notification")
			return
		}
		go s.notifier.BookingCreated(context.WithoutCancel(ctx), user, event, res.Payment, len(res.Tickets))
	}
}

// CheckIn marks a paid ticket as used at the venue gate.
func (s *BookingService) CheckIn(ctx context.Context, ticketUUID string) (*models.Ticket, error) {
	t, err := s.tickets.CheckIn(ctx, s.db, ticketUUID, time.Now())
	if err != nil {
		return nil, err
	}
	monitoring.TrackCheckIn()
	return t, nil
}

func validateDiscount(d *models.DiscountCode, eventID int64, group models.CustomerGroup, now time.Time) error {
	if !d.IsActive {
		return status.ErrDiscountInvalid
	}
	if !d.WithinWindow(now) {
		return status.ErrDiscountExpired
	}
	if !d.AppliesTo(eventID, group) {
		if d.EventID != nil && *d.EventID != eventID {
			return status.ErrDiscountInvalid
		}
		return status.ErrDiscountWrongGroup
	}
	if !d.HasCapRoom() {
		return status.ErrDiscountCapReached
	}
	return nil
}

func applyDiscount(amount decimal.Decimal, percentage int) decimal.Decimal {
	if percentage <= 0 {
		return amount
	}
	if percentage >= 100 {
		return decimal.Zero
	}
	factor := decimal.NewFromInt(int64(100 - percentage)).Div(decimal.NewFromInt(100))
	return amount.Mul(factor)
}

func bookingOutcome(err error) string {
	switch {
	case errors.Is(err, status.ErrSoldOut):
		return "sold_out"
	case errors.Is(err, status.ErrEventNotAvailable):
		return "not_available"
	case errors.Is(err, status.ErrDiscountInvalid),
		errors.Is(err, status.ErrDiscountExpired),
		errors.Is(err, status.ErrDiscountWrongGroup),
		errors.Is(err, status.ErrDiscountCapReached):
		return "discount_rejected"
	default:
		return "error"
	}
}
