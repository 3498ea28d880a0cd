package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// NotificationEventPublisher defines the interface for publishing notification events.
type NotificationEventPublisher interface {
	PublishNotificationEvent(ctx context.Context, payload NotificationEventPayload) error
}

// rabbitMQPublisher implements NotificationEventPublisher for RabbitMQ.
type rabbitMQPublisher struct {
	channel   *amqp.Channel
	queueName string
	logger    *zap.Logger
}

// NewRabbitMQNotificationEventPublisher creates a new instance of NotificationEventPublisher.
// Паблишер объявляет очередь сам, чтобы не зависеть от порядка запуска
// с консьюмером. Параметры очереди должны совпадать с консьюмером.
func NewRabbitMQNotificationEventPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (NotificationEventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("notification event publisher: failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName,          // name
		true,               // durable
		false,              // delete when unused
		false,              // exclusive
		false,              // no-wait
		QueueDeclareArgs(), // DLX, должно совпадать с консьюмером
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("notification event publisher: failed to declare queue '%s': %w", queueName, err)
	}

	log := logger.Named("NotificationEventPublisher")
	log.Info("Queue declared", zap.String("queue", queueName))
	return &rabbitMQPublisher{channel: ch, queueName: queueName, logger: log}, nil
}

// PublishNotificationEvent publishes a notification event.
func (p *rabbitMQPublisher) PublishNotificationEvent(ctx context.Context, payload NotificationEventPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("Failed to marshal notification event",
			zap.String("eventID", payload.EventID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to marshal notification event %s: %w", payload.EventID, err)
	}

	if err := p.publishMessage(ctx, body); err != nil {
		p.logger.Error("Failed to publish notification event",
			zap.String("eventID", payload.EventID.String()),
			zap.String("recipientID", payload.RecipientID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to publish notification event %s: %w", payload.EventID, err)
	}
	return nil
}

// publishMessage is a helper method for publishing a message.
func (p *rabbitMQPublisher) publishMessage(ctx context.Context, body []byte) error {
	if p.channel == nil {
		return errors.New("rabbitmq channel is not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var err error
	// Попытка публикации с retry до 3 раз
	for attempt := 1; attempt <= 3; attempt++ {
		err = p.channel.PublishWithContext(ctx,
			"",          // exchange (используем default)
			p.queueName, // routing key (имя очереди)
			false,       // mandatory
			false,       // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Body:         body,
				Timestamp:    time.Now(),
				AppId:        "bergerie-server",
			},
		)
		if err == nil {
			p.logger.Debug("Message published",
				zap.String("queue", p.queueName),
				zap.Int("attempt", attempt))
			return nil
		}
		p.logger.Warn("Publish attempt failed",
			zap.String("queue", p.queueName),
			zap.Int("attempt", attempt),
			zap.Error(err))
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
	return fmt.Errorf("failed to publish to queue %s after retries: %w", p.queueName, err)
}
