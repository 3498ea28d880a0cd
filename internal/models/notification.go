package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType enumerates the supported notification kinds.
type NotificationType string

const (
	NotificationTypeLike    NotificationType = "like"
	NotificationTypeComment NotificationType = "comment"
	NotificationTypeFollow  NotificationType = "follow"
	NotificationTypeNewPost NotificationType = "new_post"
	NotificationTypeSystem  NotificationType = "system"
)

// Valid reports whether t is one of the supported notification kinds.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeLike, NotificationTypeComment, NotificationTypeFollow,
		NotificationTypeNewPost, NotificationTypeSystem:
		return true
	}
	return false
}

// Notification is a persisted in-app notification.
// Created asynchronously by the notification consumer; failures on this path
// never affect the interaction that triggered it.
type Notification struct {
	ID          uuid.UUID        `json:"id"`
	RecipientID uuid.UUID        `json:"recipientId"`
	SenderID    uuid.UUID        `json:"senderId"`
	Type        NotificationType `json:"type"`
	RefID       uuid.UUID        `json:"refId"`
	Message     string           `json:"message"`
	Read        bool             `json:"read"`
	CreatedAt   time.Time        `json:"createdAt"`
}
