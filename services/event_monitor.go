package services

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/byndl-mvp/PoC-sub000/hub"
	"github.com/byndl-mvp/PoC-sub000/models"
)

// EventMonitor drains the outbox table on a fixed interval and pushes
// the referenced records to connected websocket clients.
type EventMonitor struct {
	DB       *gorm.DB
	StopChan chan struct{}
	Interval time.Duration
}

func NewEventMonitor(db *gorm.DB) *EventMonitor {
	return &EventMonitor{
		DB:       db,
		StopChan: make(chan struct{}),
		Interval: 1 * time.Second,
	}
}

func (em *EventMonitor) Start() {
	go func() {
		ticker := time.NewTicker(em.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				em.drainOutbox()
			case <-em.StopChan:
				return
			}
		}
	}()
}

func (em *EventMonitor) Stop() {
	close(em.StopChan)
}

func (em *EventMonitor) drainOutbox() {
	var events []models.OutboxEvent

	tx := em.DB.Begin()

	if err := tx.Where("processed = ?", false).
		Order("created_at ASC").
		Limit(100).
		Find(&events).Error; err != nil {
		tx.Rollback()
		log.Printf("Error fetching outbox events: %v", err)
		return
	}

	for _, event := range events {
		switch event.Topic {
		case models.TopicNotificationCreated:
			em.broadcastNotification(event)
		case models.TopicMessageCreated:
			em.broadcastMessage(event)
		}

		if err := tx.Model(&models.OutboxEvent{}).
			Where("id = ?", event.ID).
			Update("processed", true).Error; err != nil {
			tx.Rollback()
			log.Printf("Error marking outbox event as processed: %v", err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		log.Printf("Error committing outbox drain: %v", err)
		tx.Rollback()
		return
	}

	if len(events) > 0 {
		log.Printf("Drained %d outbox events", len(events))
	}
}

func (em *EventMonitor) broadcastNotification(event models.OutboxEvent) {
	var notif models.Notification
	if err := em.DB.First(&notif, event.RecordID).Error; err != nil {
		log.Printf("Error fetching notification %d: %v", event.RecordID, err)
		return
	}
	hub.BroadcastNotificationCreated(notif)
}

func (em *EventMonitor) broadcastMessage(event models.OutboxEvent) {
	var msg models.Message
	if err := em.DB.First(&msg, event.RecordID).Error; err != nil {
		log.Printf("Error fetching message %d: %v", event.RecordID, err)
		return
	}
	hub.BroadcastMessageCreated(msg)
	hub.BroadcastConversationUpdate(msg.ConversationID)
}
