package models

import "time"

// Message is append-only. Listings are ordered by created_at ascending
// and clients never re-sort.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"not null;index" json:"conversation_id"`
	SenderType     string    `gorm:"type:varchar(32);not null" json:"sender_type"`
	SenderID       uint      `gorm:"not null" json:"sender_id"`
	SenderName     string    `gorm:"type:varchar(255)" json:"sender_name"`
	Message        string    `gorm:"type:text;not null" json:"message"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}
