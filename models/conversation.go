package models

import "time"

// Conversation types. Direct chats open after a preliminary award;
// coordination groups let Handwerker align on site work while the
// Bauherr reads along.
const (
	ConvDirect                 = "direct"
	ConvProjectGroup           = "project_group"
	ConvHandwerkerCoordination = "handwerker_coordination"
)

type Conversation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Type      string    `gorm:"type:varchar(32);not null" json:"type"`
	ProjectID *uint     `gorm:"index" json:"project_id,omitempty"`
	Title     string    `gorm:"type:varchar(255)" json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationParticipant tracks per-member unread state. UnreadCount is
// server-computed: bumped on every incoming message, reset on mark-read.
type ConversationParticipant struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ConversationID uint       `gorm:"not null;index:idx_conv_member" json:"conversation_id"`
	UserType       string     `gorm:"type:varchar(32);not null;index:idx_conv_member" json:"user_type"`
	UserID         uint       `gorm:"not null;index:idx_conv_member" json:"user_id"`
	DisplayName    string     `gorm:"type:varchar(255)" json:"display_name"`
	UnreadCount    int        `gorm:"default:0" json:"unread_count"`
	LastReadAt     *time.Time `json:"last_read_at,omitempty"`
}
