package models

import "time"

// Outbox topics drained by the event monitor.
const (
	TopicNotificationCreated = "notification_created"
	TopicMessageCreated      = "message_created"
)

// OutboxEvent is written in the same transaction as the entity it refers
// to, so the websocket fan-out never observes a half-committed row.
type OutboxEvent struct {
	ID        uint      `gorm:"primaryKey"`
	Topic     string    `gorm:"type:varchar(64);not null"`
	RecordID  uint      `gorm:"not null"`
	Processed bool      `gorm:"default:false;index"`
	CreatedAt time.Time `gorm:"not null"`
}
