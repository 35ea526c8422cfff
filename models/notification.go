package models

import (
	"encoding/json"
	"time"
)

// Notification types produced by backend business events. The client's
// dispatch table maps these to dashboard tabs; unknown types are inert.
const (
	NotifNewOffer              = "new_offer"
	NotifNewTender             = "new_tender"
	NotifPreliminaryAccepted   = "preliminary_accepted"
	NotifOfferConfirmed        = "offer_confirmed"
	NotifOfferRejected         = "offer_rejected"
	NotifAwarded               = "awarded"
	NotifAppointmentRequest    = "appointment_request"
	NotifAppointmentConfirmed  = "appointment_confirmed"
	NotifMessageFromBauherr    = "message_from_bauherr"
	NotifMessageFromHandwerker = "message_from_handwerker"
	NotifScheduleGenerated     = "schedule_generated"
	NotifScheduleChangeRequest = "schedule_change_request"
	NotifDeadlineWarning       = "deadline_warning"
)

// Notification is owned by the server; clients only flip Read from
// false to true and delete rows. Metadata is stored as raw JSON because
// legacy writers persisted it both as an object and as a pre-encoded
// string, and readers must tolerate both.
type Notification struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserType    string          `gorm:"type:varchar(32);not null;index:idx_notif_user" json:"user_type"`
	UserID      uint            `gorm:"not null;index:idx_notif_user" json:"user_id"`
	Type        string          `gorm:"type:varchar(64);not null" json:"type"`
	Message     string          `gorm:"type:text" json:"message"`
	Metadata    json.RawMessage `gorm:"type:text" json:"metadata,omitempty"`
	Read        bool            `gorm:"default:false" json:"read"`
	ReferenceID *uint           `json:"reference_id,omitempty"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
}
