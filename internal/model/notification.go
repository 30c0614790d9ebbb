package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationEvent is the payload published to the outbound notification
// queue after a successful mutation. Delivery is best effort; publishers
// never wait for it.
type NotificationEvent struct {
	ID            uuid.UUID         `json:"id"`
	Title         string            `json:"title"`
	Body          string            `json:"body"`
	UnitID        *int64            `json:"unit_id,omitempty"`
	ExcludeUserID *int64            `json:"exclude_user_id,omitempty"`
	Data          map[string]string `json:"data,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

func NewNotificationEvent(title, body string, unitID, excludeUserID *int64, data map[string]string) NotificationEvent {
	return NotificationEvent{
		ID:            uuid.New(),
		Title:         title,
		Body:          body,
		UnitID:        unitID,
		ExcludeUserID: excludeUserID,
		Data:          data,
		CreatedAt:     time.Now(),
	}
}

// PushSubscription is a stored web-push endpoint for a user.
type PushSubscription struct {
	ID        int64     `json:"id"        gorm:"primaryKey;autoIncrement;column:id"`
	UserID    int64     `json:"user_id"   gorm:"column:user_id;not null;index"`
	Endpoint  string    `json:"endpoint"  gorm:"column:endpoint;not null;uniqueIndex"`
	P256dh    string    `json:"p256dh"    gorm:"column:p256dh"`
	Auth      string    `json:"auth"      gorm:"column:auth"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (PushSubscription) TableName() string { return "push_subscriptions" }
