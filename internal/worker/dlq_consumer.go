package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"bergerie-server/internal/messaging"
)

const (
	consumerTag    = "notification-dlq-consumer"
	reconnectDelay = 5 * time.Second
)

// DLQConsumer слушает dead letter queue событий уведомлений и делает
// последнюю попытку записать уведомление напрямую в БД, минуя основную
// очередь. Запись делегируется тому же процессору, что и у основного
// консьюмера, чтобы fan-out для new_post работал одинаково на обоих путях.
type DLQConsumer struct {
	conn         *amqp.Connection
	logger       *zap.Logger
	processor    *messaging.Processor
	shutdownChan chan struct{}
}

// NewDLQConsumer создает новый экземпляр DLQConsumer.
func NewDLQConsumer(conn *amqp.Connection, processor *messaging.Processor, logger *zap.Logger) *DLQConsumer {
	return &DLQConsumer{
		conn:         conn,
		logger:       logger.Named("DLQConsumer"),
		processor:    processor,
		shutdownChan: make(chan struct{}),
	}
}

// StartConsuming запускает цикл прослушивания DLQ.
func (c *DLQConsumer) StartConsuming() {
	go func() {
		for {
			select {
			case <-c.shutdownChan:
				c.logger.Info("Stopping DLQ consumer")
				return
			default:
				if err := c.consumeMessages(); err != nil {
					c.logger.Error("DLQ consumer loop error, reconnecting",
						zap.Duration("delay", reconnectDelay),
						zap.Error(err))
					time.Sleep(reconnectDelay)
				}
			}
		}
	}()
	c.logger.Info("DLQ consumer started")
}

// Stop останавливает DLQ consumer.
func (c *DLQConsumer) Stop() {
	close(c.shutdownChan)
}

func (c *DLQConsumer) consumeMessages() error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	// Объявляем DLX, DLQ и binding; основная очередь ссылается на этот
	// exchange через x-dead-letter-exchange.
	if err := ch.ExchangeDeclare(messaging.NotificationEventsDLX, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLX '%s': %w", messaging.NotificationEventsDLX, err)
	}
	if _, err := ch.QueueDeclare(messaging.NotificationEventsDLQ, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ '%s': %w", messaging.NotificationEventsDLQ, err)
	}
	if err := ch.QueueBind(messaging.NotificationEventsDLQ, messaging.NotificationEventsDLQRoutingKey, messaging.NotificationEventsDLX, false, nil); err != nil {
		return fmt.Errorf("failed to bind DLQ: %w", err)
	}

	msgs, err := ch.Consume(
		messaging.NotificationEventsDLQ, // queue
		consumerTag,                     // consumer
		false,                           // auto-ack
		false,                           // exclusive
		false,                           // no-local
		false,                           // no-wait
		nil,                             // args
	)
	if err != nil {
		return fmt.Errorf("failed to register DLQ consumer: %w", err)
	}

	c.logger.Info("Waiting for messages in DLQ", zap.String("queue", messaging.NotificationEventsDLQ))

	for {
		select {
		case <-c.shutdownChan:
			return nil
		case d, ok := <-msgs:
			if !ok {
				c.logger.Warn("DLQ message channel closed")
				return fmt.Errorf("dlq message channel closed")
			}
			c.handleMessage(d)
		}
	}
}

func (c *DLQConsumer) handleMessage(d amqp.Delivery) {
	log := c.logger.With(zap.Uint64("deliveryTag", d.DeliveryTag))
	log.Info("Message received from DLQ")

	var payload messaging.NotificationEventPayload
	if err := json.Unmarshal(d.Body, &payload); err != nil {
		log.Error("Failed to unmarshal DLQ message, dropping", zap.Error(err))
		// Сообщение некорректно, повторять бессмысленно
		if ackErr := d.Ack(false); ackErr != nil {
			log.Error("Failed to ack malformed DLQ message", zap.Error(ackErr))
		}
		return
	}

	log = log.With(
		zap.String("eventID", payload.EventID.String()),
		zap.String("recipientID", payload.RecipientID.String()))

	if reason := deathReason(d); reason != "" {
		log.Info("Processing dead-lettered notification event", zap.String("reason", reason))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.processor.Persist(ctx, payload); err != nil {
		log.Error("Failed to persist dead-lettered notification", zap.Error(err))
		// requeue=false, чтобы не блокировать остальные сообщения
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.Error("Failed to nack DLQ message after persistence error", zap.Error(nackErr))
		}
		return
	}

	log.Info("Dead-lettered notification persisted")
	if err := d.Ack(false); err != nil {
		log.Error("Failed to ack DLQ message after processing", zap.Error(err))
	}
}

// deathReason достает причину из заголовка x-death, если он есть.
func deathReason(d amqp.Delivery) string {
	xDeath, ok := d.Headers["x-death"].([]interface{})
	if !ok || len(xDeath) == 0 {
		return ""
	}
	deathInfo, ok := xDeath[0].(amqp.Table)
	if !ok {
		return ""
	}
	reason, _ := deathInfo["reason"].(string)
	return reason
}
