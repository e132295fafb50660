package utils

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

// RabbitPublisher is a thin fire-and-forget publisher for background
// jobs (email delivery, reminder fanout). Consumers live outside this
// service.
type RabbitPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	retries int
}

func NewRabbitPublisher(url, queueName string, retries int) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	q, err := channel.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %q: %w", queueName, err)
	}

	log.WithField("queue", queueName).Info("connected to rabbitmq")
	return &RabbitPublisher{conn: conn, channel: channel, queue: q, retries: retries}, nil
}

func (r *RabbitPublisher) Publish(ctx context.Context, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
		lastErr = r.channel.PublishWithContext(
			ctx,
			"", // default exchange
			r.queue.Name,
			false, // mandatory
			false, // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Body:         body,
			},
		)
		if lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("publish to %q: %w", r.queue.Name, lastErr)
}

func (r *RabbitPublisher) Close() error {
	if err := r.channel.Close(); err != nil {
		return err
	}
	return r.conn.Close()
}
