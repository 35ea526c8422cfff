package client

import (
	"fmt"
	"strings"
	"time"
)

// Notification type tags as sent by the server. The server owns the
// enumeration; unknown tags stay inert in the dispatcher.
const (
	TypeNewOffer              = "new_offer"
	TypeNewTender             = "new_tender"
	TypePreliminaryAccepted   = "preliminary_accepted"
	TypeOfferConfirmed        = "offer_confirmed"
	TypeOfferRejected         = "offer_rejected"
	TypeAwarded               = "awarded"
	TypeAppointmentRequest    = "appointment_request"
	TypeAppointmentConfirmed  = "appointment_confirmed"
	TypeMessageFromBauherr    = "message_from_bauherr"
	TypeMessageFromHandwerker = "message_from_handwerker"
	TypeScheduleGenerated     = "schedule_generated"
	TypeScheduleChangeRequest = "schedule_change_request"
	TypeDeadlineWarning       = "deadline_warning"
)

// Message-type notifications are surfaced through the conversation
// badge, so the bell badge must not count them a second time.
var messageNotificationTypes = map[string]bool{
	TypeMessageFromBauherr:    true,
	TypeMessageFromHandwerker: true,
}

type Notification struct {
	ID          uint      `json:"id"`
	UserType    string    `json:"user_type"`
	UserID      uint      `json:"user_id"`
	Type        string    `json:"type"`
	Message     string    `json:"message"`
	Metadata    Metadata  `json:"metadata,omitempty"`
	Read        bool      `json:"read"`
	ReferenceID *uint     `json:"reference_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type ConversationInfo struct {
	Name         string `json:"name,omitempty"`
	Type         string `json:"type,omitempty"`
	Title        string `json:"title,omitempty"`
	ProjectTitle string `json:"project_title,omitempty"`
	MemberCount  int    `json:"member_count,omitempty"`
}

type LastMessage struct {
	SenderName string `json:"sender_name"`
	Text       string `json:"text"`
}

type Conversation struct {
	ID               uint             `json:"id"`
	Type             string           `json:"type"`
	ConversationInfo ConversationInfo `json:"conversation_info"`
	UnreadCount      int              `json:"unread_count"`
	LastMessage      *LastMessage     `json:"last_message,omitempty"`
}

type Message struct {
	ID             uint      `json:"id"`
	ConversationID uint      `json:"conversation_id"`
	SenderType     string    `json:"sender_type"`
	SenderID       uint      `json:"sender_id"`
	SenderName     string    `json:"sender_name"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}

// FormatMessage renders the display text for a notification the way the
// notification panel shows it. Types without a template fall back to the
// server-supplied message.
func FormatMessage(n Notification) string {
	md := n.Metadata

	switch n.Type {
	case TypeNewOffer:
		return fmt.Sprintf("Neues Angebot von %s für %s (%s)",
			md.FirstString("company_name"), md.FirstString("trade_name"), formatEUR(md.Float("amount")))
	case TypeNewTender:
		return fmt.Sprintf("Neue Ausschreibung: %s in %s",
			md.FirstString("trade_name"), md.FirstString("project_zip"))
	case TypePreliminaryAccepted:
		return fmt.Sprintf("Vorläufige Beauftragung von %s für %s",
			md.FirstString("bauherr_name"), md.FirstString("trade_name"))
	case TypeOfferConfirmed:
		return fmt.Sprintf("%s hat das Angebot für %s bestätigt",
			md.FirstString("company_name"), md.FirstString("trade_name"))
	case TypeAwarded:
		return fmt.Sprintf("Auftrag erteilt: %s (%s)",
			md.FirstString("trade_name"), formatEUR(md.Float("amount")))
	case TypeAppointmentRequest:
		return fmt.Sprintf("Terminvorschlag von %s", md.FirstString("company_name"))
	default:
		return n.Message
	}
}

// formatEUR renders an amount in German notation (1.234,56 €).
func formatEUR(amount float64) string {
	if amount == 0 {
		return "N/A"
	}

	formatted := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(formatted, ".")
	integerPart := parts[0]

	negative := strings.HasPrefix(integerPart, "-")
	if negative {
		integerPart = integerPart[1:]
	}

	var groups []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerPart[start:i]}, groups...)
	}

	out := strings.Join(groups, ".") + "," + parts[1] + " €"
	if negative {
		out = "-" + out
	}
	return out
}
