package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/smtp"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// StartNotificationConsumer connects to RabbitMQ, declares the durable
// account.notifications queue, and consumes messages forever. Each message
// is delivered by SMTP when SMTP_HOST/SMTP_USER/SMTP_PASS are configured;
// otherwise the would-be mail is logged and the message acknowledged, so a
// development setup works without a mail server. The function runs a
// reconnect loop with exponential backoff and never returns under normal
// operation; failed messages are rejected without requeue to avoid tight
// redelivery loops.
func StartNotificationConsumer(logger *zap.Logger) {
	url := BrokerURL()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			logger.Warn("notification consumer: dial failed, retrying",
				zap.Error(err), zap.Duration("backoff", backoff))
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, logger); err != nil {
			logger.Warn("notification consumer: consume loop ended, reconnecting", zap.Error(err))
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, logger *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logger.Warn("notification consumer: set QoS failed", zap.Error(err))
	}

	if _, err := ch.QueueDeclare(NotificationQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(NotificationQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, logger); err != nil {
			logger.Warn("notification consumer: handle message failed", zap.Error(err))
			_ = d.Nack(false, false) // reject, do not requeue
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, logger *zap.Logger) error {
	var ev AccountNotification
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return sendMail(ev, logger)
}

// sendMail pushes the notification over SMTP. Without SMTP configuration the
// mail is logged instead of sent.
func sendMail(ev AccountNotification, logger *zap.Logger) error {
	host := os.Getenv("SMTP_HOST")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	if host == "" || user == "" || pass == "" {
		logger.Info("smtp not configured, skipping email send",
			zap.String("to", ev.Email), zap.String("subject", ev.Subject))
		return nil
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	from := os.Getenv("FROM_EMAIL")
	if from == "" {
		from = "noreply@example.com"
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		from, ev.Email, ev.Subject, ev.Body)
	auth := smtp.PlainAuth("", user, pass, host)
	if err := smtp.SendMail(host+":"+port, auth, from, []string{ev.Email}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	logger.Info("notification email sent",
		zap.String("to", ev.Email), zap.String("subject", ev.Subject))
	return nil
}
