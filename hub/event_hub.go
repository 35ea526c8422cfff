package hub

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/byndl-mvp/PoC-sub000/models"
)

// Event types pushed to connected dashboards. Polling remains the
// contract; the hub only shortens the wait for clients that keep a
// socket open.
const (
	EventNotificationCreated = "notification_created"
	EventMessageCreated      = "message_created"
	EventConversationUpdate  = "conversation_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// EventHub holds every connected dashboard socket keyed by user role.
type EventHub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var eventHub = EventHub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient adds a connection with its role.
func RegisterClient(conn *websocket.Conn, role string) {
	eventHub.mutex.Lock()
	defer eventHub.mutex.Unlock()
	eventHub.clients[conn] = role
}

// UnregisterClient removes and closes a connection.
func UnregisterClient(conn *websocket.Conn) {
	eventHub.mutex.Lock()
	defer eventHub.mutex.Unlock()
	delete(eventHub.clients, conn)
	conn.Close()
}

// BroadcastNotificationCreated pushes a fresh notification to all clients.
func BroadcastNotificationCreated(notif models.Notification) {
	broadcast(Message{
		Event: EventNotificationCreated,
		Data:  notif,
	})
}

// BroadcastMessageCreated pushes a fresh chat message to all clients.
func BroadcastMessageCreated(msg models.Message) {
	broadcast(Message{
		Event: EventMessageCreated,
		Data:  msg,
	})
}

// BroadcastConversationUpdate signals that unread badges changed.
func BroadcastConversationUpdate(conversationID uint) {
	broadcast(Message{
		Event: EventConversationUpdate,
		Data:  map[string]interface{}{"conversation_id": conversationID},
	})
}

func broadcast(msg Message) {
	eventHub.mutex.Lock()
	defer eventHub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling hub message: %v", err)
		return
	}

	for conn, role := range eventHub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending hub message to %s client: %v", role, err)
			continue
		}
	}
}
