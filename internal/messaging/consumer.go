package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"bergerie-server/internal/interfaces"
	"bergerie-server/internal/models"
)

// Consumer читает события взаимодействий из очереди и передает их процессору.
type Consumer struct {
	conn        *amqp.Connection
	logger      *zap.Logger
	queueName   string
	concurrency int
	processor   *Processor
	stopChannel chan struct{}
	cancelFunc  context.CancelFunc
	wg          sync.WaitGroup
}

func NewConsumer(conn *amqp.Connection, logger *zap.Logger, queueName string, concurrency int, processor *Processor) (*Consumer, error) {
	c := &Consumer{
		conn:        conn,
		logger:      logger.Named("consumer"),
		queueName:   queueName,
		concurrency: concurrency,
		processor:   processor,
		stopChannel: make(chan struct{}),
	}
	return c, nil
}

func (c *Consumer) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancelFunc = cancel

	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		c.queueName,
		true,               // durable
		false,              // delete when unused
		false,              // exclusive
		false,              // no-wait
		QueueDeclareArgs(), // DLX, должно совпадать с паблишером
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue '%s': %w", c.queueName, err)
	}
	c.logger.Info("Queue declared", zap.String("queue", q.Name))

	// Ограничиваем количество сообщений в обработке
	if err := ch.Qos(c.concurrency, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		"notification-event-consumer", // consumer tag
		false,                         // auto-ack = false
		false,                         // exclusive
		false,                         // no-local
		false,                         // no-wait
		nil,                           // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Consumer started, waiting for messages", zap.Int("concurrency", c.concurrency))

	c.wg.Add(c.concurrency)
	for i := 0; i < c.concurrency; i++ {
		go func(workerID int) {
			defer c.wg.Done()
			logger := c.logger.With(zap.Int("worker_id", workerID))
			logger.Info("Worker started")
			for {
				select {
				case <-ctx.Done():
					logger.Info("Worker stopping due to context cancellation")
					return
				case <-c.stopChannel:
					logger.Info("Worker stopping due to stop signal")
					return
				case d, ok := <-msgs:
					if !ok {
						logger.Info("Message channel closed, worker exiting")
						return
					}
					logger.Debug("Message received", zap.Uint64("delivery_tag", d.DeliveryTag))
					c.processor.ProcessMessage(ctx, d)
				}
			}
		}(i)
	}

	c.logger.Info("All consumer workers started")
	<-c.stopChannel
	c.logger.Info("Stop signal received, cancelling worker context")
	c.cancelFunc()

	c.wg.Wait()
	c.logger.Info("All consumer workers stopped")
	return nil
}

func (c *Consumer) Stop() {
	c.logger.Info("Consumer stop initiated")
	close(c.stopChannel)
}

// Processor превращает событие взаимодействия в строки уведомлений.
type Processor struct {
	logger           *zap.Logger
	db               interfaces.DBTX
	notificationRepo interfaces.NotificationRepository
	followRepo       interfaces.FollowRepository
}

func NewProcessor(logger *zap.Logger, db interfaces.DBTX, notificationRepo interfaces.NotificationRepository, followRepo interfaces.FollowRepository) *Processor {
	return &Processor{
		logger:           logger.Named("processor"),
		db:               db,
		notificationRepo: notificationRepo,
		followRepo:       followRepo,
	}
}

// Persist записывает уведомления для события. new_post разворачивается по
// подписчикам бержери (автор пропускается), остальные типы адресуются
// одному получателю.
func (p *Processor) Persist(ctx context.Context, payload NotificationEventPayload) error {
	if payload.Type == models.NotificationTypeNewPost {
		return p.fanOutNewPost(ctx, payload)
	}

	notification := &models.Notification{
		ID:          uuid.New(),
		RecipientID: payload.RecipientID,
		SenderID:    payload.SenderID,
		Type:        payload.Type,
		RefID:       payload.RefID,
		Message:     payload.Message,
	}
	return p.notificationRepo.Create(ctx, p.db, notification)
}

func (p *Processor) fanOutNewPost(ctx context.Context, payload NotificationEventPayload) error {
	followerIDs, err := p.followRepo.ListFollowerIDs(ctx, p.db, payload.BergerieID)
	if err != nil {
		return fmt.Errorf("failed to list followers for new_post fan-out: %w", err)
	}
	for _, followerID := range followerIDs {
		if followerID == payload.SenderID {
			continue
		}
		notification := &models.Notification{
			ID:          uuid.New(),
			RecipientID: followerID,
			SenderID:    payload.SenderID,
			Type:        payload.Type,
			RefID:       payload.RefID,
			Message:     payload.Message,
		}
		if err := p.notificationRepo.Create(ctx, p.db, notification); err != nil {
			return err
		}
	}
	p.logger.Debug("new_post event fanned out",
		zap.String("bergerieID", payload.BergerieID.String()),
		zap.Int("followers", len(followerIDs)))
	return nil
}

func (p *Processor) ProcessMessage(ctx context.Context, d amqp.Delivery) {
	p.logger.Debug("Processing message", zap.Uint64("delivery_tag", d.DeliveryTag))

	var payload NotificationEventPayload
	if err := json.Unmarshal(d.Body, &payload); err != nil {
		p.logger.Error("Failed to unmarshal notification event",
			zap.Error(err),
			zap.ByteString("body", d.Body),
			zap.Uint64("delivery_tag", d.DeliveryTag))
		// Отклоняем без повторной постановки в очередь
		if ackErr := d.Nack(false, false); ackErr != nil {
			p.logger.Error("Failed to nack message after JSON error", zap.Error(ackErr), zap.Uint64("delivery_tag", d.DeliveryTag))
		}
		return
	}

	if !payload.Type.Valid() {
		p.logger.Warn("Notification event with unknown type, dropping",
			zap.String("type", string(payload.Type)),
			zap.Uint64("delivery_tag", d.DeliveryTag))
		if ackErr := d.Nack(false, false); ackErr != nil {
			p.logger.Error("Failed to nack message with unknown type", zap.Error(ackErr), zap.Uint64("delivery_tag", d.DeliveryTag))
		}
		return
	}

	processCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := p.Persist(processCtx, payload); err != nil {
		p.logger.Error("Failed to persist notification event",
			zap.Error(err),
			zap.String("eventID", payload.EventID.String()),
			zap.Uint64("delivery_tag", d.DeliveryTag))
		// requeue=false: сообщение уйдет в DLQ, повторной доставкой
		// занимается DLQ consumer
		if ackErr := d.Nack(false, false); ackErr != nil {
			p.logger.Error("Failed to nack message after persistence error", zap.Error(ackErr), zap.Uint64("delivery_tag", d.DeliveryTag))
		}
		return
	}

	if ackErr := d.Ack(false); ackErr != nil {
		p.logger.Error("Failed to ack message after processing", zap.Error(ackErr), zap.Uint64("delivery_tag", d.DeliveryTag))
	}
	p.logger.Info("Notification event processed",
		zap.String("eventID", payload.EventID.String()),
		zap.String("type", string(payload.Type)),
		zap.Uint64("delivery_tag", d.DeliveryTag))
}
