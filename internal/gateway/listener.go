package gateway

import (
	"context"
	"encoding/json"

	pubnub "github.com/pubnub/go"
	"github.com/sirupsen/logrus"

	"booking-system/models"
)

// Confirmer settles a payment reported by a provider notification.
type Confirmer interface {
	ConfirmFromGateway(ctx context.Context, n models.GatewayNotification) error
}

// Listener subscribes to the provider notification channel and turns
// settlement messages into payment confirmations.
type Listener struct {
	pn        *pubnub.PubNub
	channel   string
	confirmer Confirmer
	log       *logrus.Entry
}

func NewListener(pn *pubnub.PubNub, channel string, confirmer Confirmer) *Listener {
	return &Listener{
		pn:        pn,
		channel:   channel,
		confirmer: confirmer,
		log:       logrus.WithField("component", "gateway_listener"),
	}
}

// Start blocks until ctx is cancelled.
func (l *Listener) Start(ctx context.Context) {
	listener := pubnub.NewListener()
	l.pn.AddListener(listener)
	l.pn.Subscribe().
		Channels([]string{l.channel}).
		Execute()
	l.log.WithField("channel", l.channel).Info("listening for gateway notifications")

	for {
		select {
		case <-ctx.Done():
			l.pn.UnsubscribeAll()
			l.log.Info("gateway listener stopped")
			return
		case message := <-listener.Message:
			go l.handle(ctx, message)
		}
	}
}

func (l *Listener) handle(ctx context.Context, message *pubnub.PNMessage) {
	data, ok := message.Message.(map[string]interface{})
	if !ok {
		return
	}

	raw, _ := json.Marshal(data)
	var n models.GatewayNotification
	if err := json.Unmarshal(raw, &n); err != nil {
		l.log.WithError(err).Warn("parse gateway notification")
		return
	}

	if n.Status != "success" {
		l.log.WithFields(logrus.Fields{"payment_id": n.PaymentID, "status": n.Status}).
			Info("ignoring gateway notification")
		return
	}

	if err := l.confirmer.ConfirmFromGateway(ctx, n); err != nil {
		l.log.WithError(err).WithField("payment_id", n.PaymentID).Error("confirm from gateway")
	}
}
