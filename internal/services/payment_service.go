package services

import (
	"context"
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

type PaymentService struct {
	db         dbx.Builder
	txr        TxRunner
	events     EventStore
	tickets    TicketStore
	payments   PaymentStore
	discounts  DiscountStore
	users      UserStore
	notifier   Notifier
	gateways   PaymentURLBuilder
	qr         QRStorage
	paymentTTL time.Duration
	log        *logrus.Entry
}

func NewPaymentService(
	db dbx.Builder,
	txr TxRunner,
	events EventStore,
	tickets TicketStore,
	payments PaymentStore,
	discounts DiscountStore,
	users UserStore,
	notifier Notifier,
	gateways PaymentURLBuilder,
	qr QRStorage,
	paymentTTL time.Duration,
) *PaymentService {
	return &PaymentService{
		db:         db,
		txr:        txr,
		events:     events,
		tickets:    tickets,
		payments:   payments,
		discounts:  discounts,
		users:      users,
		notifier:   notifier,
		gateways:   gateways,
		qr:         qr,
		paymentTTL: paymentTTL,
		log:        logrus.WithField("component", "payment_service"),
	}
}

type ConfirmResult struct {
	PaymentID        int64                `json:"payment_id"`
	Status           models.PaymentStatus `json:"status"`
	AlreadyProcessed bool                 `json:"already_processed"`
	TicketsPaid      int                  `json:"tickets_paid"`
}

// Confirm settles a pending payment on behalf of its owner. The status
// flip, the ticket updates and the spend credit commit atomically; a
// repeat call for an already completed payment reports success without
// re-running any side effect.
func (s *PaymentService) Confirm(ctx context.Context, paymentID, actorID int64) (*ConfirmResult, error) {
	payment, err := s.payments.Get(ctx, s.db, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status == models.PaymentCompleted {
		return &ConfirmResult{PaymentID: paymentID, Status: models.PaymentCompleted, AlreadyProcessed: true}, nil
	}
	if payment.UserID != actorID {
		return nil, status.ErrNotOwner
	}
	if payment.Status == models.PaymentCancelled {
		return nil, status.ErrPaymentCancelled
	}

	var (
		paid  []models.PaidTicket
		raced bool
	)
	err = s.txr.RunInTx(ctx, func(tx dbx.Builder) error {
		ok, err := s.payments.MarkCompleted(ctx, tx, paymentID, time.Now())
		if err != nil {
			return err
		}
		if !ok {
			current, err := s.payments.Get(ctx, tx, paymentID)
			if err != nil {
				return err
			}
			if current.Status == models.PaymentCompleted {
				raced = true
				return nil
			}
			return status.ErrPaymentCancelled
		}

		paid, err = s.tickets.MarkPaidByPayment(ctx, tx, paymentID)
		if err != nil {
			return err
		}

		spend := decimal.Zero
		for _, t := range paid {
			spend = spend.Add(t.TicketPrice)
		}
		if spend.IsPositive() {
			if err := s.users.AddSpent(ctx, tx, payment.UserID, spend); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if raced {
		return &ConfirmResult{PaymentID: paymentID, Status: models.PaymentCompleted, AlreadyProcessed: true}, nil
	}

	monitoring.TrackPaymentConfirmed(payment.Amount)
	s.afterConfirm(ctx, payment, paid)

	return &ConfirmResult{
		PaymentID:   paymentID,
		Status:      models.PaymentCompleted,
		TicketsPaid: len(paid),
	}, nil
}

// afterConfirm delivers the post-settlement side effects: one
// notification per distinct event covered by the payment, then the QR
// artifact for each ticket. All of it is best-effort.
func (s *PaymentService) afterConfirm(ctx context.Context, payment *models.Payment, paid []models.PaidTicket) {
	user, err := s.users.Get(ctx, s.db, payment.UserID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", payment.UserID).Warn("load user after confirm")
		return
	}

	perEvent := make(map[int64]int)
	order := make([]int64, 0, 1)
	for _, t := range paid {
		if _, seen := perEvent[t.EventID]; !seen {
			order = append(order, t.EventID)
		}
		perEvent[t.EventID]++
	}
	for _, eventID := range order {
		event, err := s.events.Get(ctx, s.db, eventID)
		if err != nil {
			s.log.WithError(err).WithField("event_id", eventID).Warn("load event after confirm")
			continue
		}
		s.notifier.PaymentConfirmed(ctx, user, event, payment.Amount, perEvent[eventID])
	}

	s.attachQRCodes(ctx, payment.ID)
}

func (s *PaymentService) attachQRCodes(ctx context.Context, paymentID int64) {
	if s.qr == nil {
		return
	}
	tickets, err := s.tickets.ListByPayment(ctx, s.db, paymentID)
	if err != nil {
		s.log.WithError(err).WithField("payment_id", paymentID).Warn("list tickets for qr")
		return
	}
	for _, t := range tickets {
		if t.QRURL != "" {
			continue
		}
		url, err := s.qr.StoreTicketQR(ctx, t.UUID)
		if err != nil {
			s.log.WithError(err).WithField("ticket_uuid", t.UUID).Warn("store ticket qr")
			continue
		}
		if err := s.tickets.SetQRURL(ctx, s.db, t.ID, url); err != nil {
			s.log.WithError(err).WithField("ticket_id", t.ID).Warn("persist qr url")
		}
	}
}

// ConfirmFromGateway settles a payment on the strength of a provider
// notification. The provider vouches for the payer, so the confirmation
// runs as the payment's owner.
func (s *PaymentService) ConfirmFromGateway(ctx context.Context, n models.GatewayNotification) error {
	payment, err := s.payments.Get(ctx, s.db, n.PaymentID)
	if err != nil {
		return err
	}
	if n.TransactionID != "" {
		if err := s.payments.SetTransactionID(ctx, s.db, payment.ID, n.TransactionID); err != nil {
			s.log.WithError(err).WithField("payment_id", payment.ID).Warn("record transaction id")
		}
	}
	_, err = s.Confirm(ctx, payment.ID, payment.UserID)
	return err
}

// Get returns a payment together with its tickets, restricted to the
// payment's owner.
func (s *PaymentService) Get(ctx context.Context, paymentID, actorID int64) (*models.Payment, []*models.Ticket, error) {
	payment, err := s.payments.Get(ctx, s.db, paymentID)
	if err != nil {
		return nil, nil, err
	}
	if payment.UserID != actorID {
		return nil, nil, status.ErrNotOwner
	}
	tickets, err := s.tickets.ListByPayment(ctx, s.db, paymentID)
	if err != nil {
		return nil, nil, err
	}
	return payment, tickets, nil
}

type PayUnpaidRequest struct {
	EventID        int64
	UserID         int64
	TicketIDs      []int64
	DiscountCodeID *int64
	Method         models.PaymentMethod
}

// PayUnpaidTickets opens a fresh pending payment over tickets the user
// already holds but never paid for, typically after their original
// payment expired. The tickets keep their reserved seats, so no
// inventory is touched here.
func (s *PaymentService) PayUnpaidTickets(ctx context.Context, req PayUnpaidRequest) (*BookingResult, error) {
	if len(req.TicketIDs) == 0 {
		return nil, fmt.Errorf("no tickets selected")
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

		amount := event.TicketPrice.Mul(decimal.NewFromInt(int64(len(req.TicketIDs))))
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
			UserID:         user.ID,
			Amount:         amount,
			Status:         models.PaymentPending,
			Method:         req.Method,
			TransactionID:  uuid.NewString(),
			DiscountCodeID: req.DiscountCodeID,
			CreatedAt:      now,
			ExpiresAt:      now.Add(s.paymentTTL),
		}
		if err := s.payments.Create(ctx, tx, payment); err != nil {
			return err
		}

		claimed, err := s.tickets.ClaimForPayment(ctx, tx, user.ID, event.ID, req.TicketIDs, payment.ID)
		if err != nil {
			return err
		}
		if claimed != int64(len(req.TicketIDs)) {
			return status.ErrTicketNotFound
		}

		res.Payment = payment
		res.FinalAmount = amount
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.gateways != nil {
		url, err := s.gateways.PaymentURL(ctx, res.Payment.Method, res.Payment)
		if err != nil {
			s.log.WithError(err).WithField("payment_id", res.Payment.ID).Warn("build payment url")
		} else {
			res.PaymentURL = url
		}
	}

	tickets, err := s.tickets.ListByPayment(ctx, s.db, res.Payment.ID)
	if err == nil {
		res.Tickets = tickets
	}
	return res, nil
}
