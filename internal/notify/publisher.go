// Package notify implements the Notifier used by the account lifecycle.
// Messages are handed to RabbitMQ and delivered asynchronously by the
// consumer in internal/queue; a broker outage therefore never blocks or
// fails a registration or an admin decision.
package notify

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/wqam/backend/internal/queue"
)

// QueuePublisher publishes AccountNotification events to the durable
// account.notifications queue. Errors are logged and returned so callers can
// ignore failures without interrupting the main request flow.
type QueuePublisher struct {
	url    string
	logger *zap.Logger
}

func NewQueuePublisher(logger *zap.Logger) *QueuePublisher {
	return &QueuePublisher{url: queue.BrokerURL(), logger: logger}
}

// Notify implements service.Notifier. Messages are marked persistent so they
// survive a broker restart.
func (p *QueuePublisher) Notify(ctx context.Context, address, subject, body string) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.Warn("rabbitmq dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Warn("rabbitmq channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		queue.NotificationQueueName, // name
		true,                        // durable
		false,                       // autoDelete
		false,                       // exclusive
		false,                       // noWait
		nil,                         // args
	); err != nil {
		p.logger.Warn("rabbitmq queue declare failed", zap.Error(err))
		return err
	}

	payload, err := json.Marshal(queue.AccountNotification{
		Email:    address,
		Subject:  subject,
		Body:     body,
		QueuedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         payload,
	}

	if err := ch.PublishWithContext(ctx,
		"",                          // default exchange
		queue.NotificationQueueName, // routing key = queue name
		false,                       // mandatory
		false,                       // immediate
		pub,
	); err != nil {
		p.logger.Warn("rabbitmq publish failed", zap.Error(err))
		return err
	}
	return nil
}
