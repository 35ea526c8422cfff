package services

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/byndl-mvp/PoC-sub000/models"
)

// Notifier creates notifications for backend business events. The outbox
// row rides in the same transaction so the event monitor only ever sees
// committed notifications.
type Notifier struct {
	DB *gorm.DB
}

func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{DB: db}
}

func (n *Notifier) Notify(userType string, userID uint, notifType, message string, metadata map[string]interface{}, referenceID *uint) (models.Notification, error) {
	notif := models.Notification{
		UserType:    userType,
		UserID:      userID,
		Type:        notifType,
		Message:     message,
		ReferenceID: referenceID,
		CreatedAt:   time.Now(),
	}

	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return notif, err
		}
		notif.Metadata = raw
	}

	err := n.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&notif).Error; err != nil {
			return err
		}
		return tx.Create(&models.OutboxEvent{
			Topic:     models.TopicNotificationCreated,
			RecordID:  notif.ID,
			CreatedAt: time.Now(),
		}).Error
	})

	return notif, err
}

// NotifyMessage fans a chat message out to every other participant as a
// message_from_* notification so the bell badge and the chat badge stay
// in sync without double counting (the client excludes message types
// from the bell count).
func (n *Notifier) NotifyMessage(msg models.Message, participants []models.ConversationParticipant) error {
	notifType := models.NotifMessageFromBauherr
	if msg.SenderType == models.RoleHandwerker {
		notifType = models.NotifMessageFromHandwerker
	}

	for _, p := range participants {
		if p.UserType == msg.SenderType && p.UserID == msg.SenderID {
			continue
		}
		_, err := n.Notify(p.UserType, p.UserID, notifType,
			"Neue Nachricht von "+msg.SenderName,
			map[string]interface{}{"conversation_id": msg.ConversationID},
			nil)
		if err != nil {
			return err
		}
	}
	return nil
}
