package messaging

import (
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"bergerie-server/internal/models"
)

// Имена DLX/DLQ для очереди уведомлений. Используются паблишером,
// консьюмером и DLQ-воркером; все три должны совпадать.
const (
	NotificationEventsDLX           = "notification_events_dlx"
	NotificationEventsDLQ           = "notification_events_dlq"
	NotificationEventsDLQRoutingKey = "dlq"
)

// QueueDeclareArgs возвращает аргументы объявления очереди уведомлений.
func QueueDeclareArgs() amqp.Table {
	return amqp.Table{
		"x-dead-letter-exchange":    NotificationEventsDLX,
		"x-dead-letter-routing-key": NotificationEventsDLQRoutingKey,
	}
}

// NotificationEventPayload - сообщение о событии взаимодействия,
// публикуемое в очередь уведомлений.
//
// Для new_post RecipientID пустой, а BergerieID указывает бержери,
// по подписчикам которой консьюмер разворачивает событие.
type NotificationEventPayload struct {
	EventID     uuid.UUID               `json:"event_id"`
	RecipientID uuid.UUID               `json:"recipient_id"`
	SenderID    uuid.UUID               `json:"sender_id"`
	BergerieID  uuid.UUID               `json:"bergerie_id,omitempty"`
	Type        models.NotificationType `json:"type"`
	RefID       uuid.UUID               `json:"ref_id"`
	Message     string                  `json:"message"`
	OccurredAt  time.Time               `json:"occurred_at"`
}
