package client

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Poll cadences of the message panel: the conversation list refreshes
// every 10 seconds while the panel is open, the open conversation's
// messages every 5 seconds.
const (
	DefaultConversationInterval = 10 * time.Second
	DefaultMessageInterval      = 5 * time.Second
)

// ConversationPoller maintains the conversation list and, for the
// selected conversation, its message history.
//
// Lifecycle per conversation: closed -> (Select) -> polling ->
// (Deselect or Close) -> closed. Sends are not serialized; a second
// send before the first completes is accepted behavior at this cadence.
type ConversationPoller struct {
	client               *Client
	ConversationInterval time.Duration
	MessageInterval      time.Duration

	mu            sync.RWMutex
	conversations []Conversation
	messages      []Message
	selectedID    uint
	draft         string
	open          bool
	closed        bool
	stopConvs     chan struct{}
	stopMsgs      chan struct{}
}

func NewConversationPoller(c *Client) *ConversationPoller {
	return &ConversationPoller{
		client:               c,
		ConversationInterval: DefaultConversationInterval,
		MessageInterval:      DefaultMessageInterval,
		conversations:        make([]Conversation, 0),
		messages:             make([]Message, 0),
	}
}

// Open starts the conversation-list loop (panel opened).
func (p *ConversationPoller) Open() {
	p.mu.Lock()
	if p.open || p.closed {
		p.mu.Unlock()
		return
	}
	p.open = true
	p.stopConvs = make(chan struct{})
	stop := p.stopConvs
	p.mu.Unlock()

	p.LoadConversations()

	go func() {
		ticker := time.NewTicker(p.ConversationInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				p.LoadConversations()
			case <-stop:
				return
			}
		}
	}()
}

// Close stops both loops (panel closed). A response still in flight is
// discarded rather than stored.
func (p *ConversationPoller) Close() {
	p.Deselect()

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return
	}
	p.open = false
	p.closed = true
	close(p.stopConvs)
}

// Select opens one conversation: loads its messages, marks it read and
// starts the message loop.
func (p *ConversationPoller) Select(conversationID uint) {
	p.Deselect()

	p.mu.Lock()
	p.selectedID = conversationID
	p.stopMsgs = make(chan struct{})
	stop := p.stopMsgs
	p.mu.Unlock()

	p.LoadMessages(conversationID)
	p.MarkRead(conversationID)

	go func() {
		ticker := time.NewTicker(p.MessageInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				p.LoadMessages(conversationID)
			case <-stop:
				return
			}
		}
	}()
}

// Deselect stops the message loop and clears the message view.
func (p *ConversationPoller) Deselect() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selectedID == 0 {
		return
	}
	p.selectedID = 0
	p.messages = make([]Message, 0)
	close(p.stopMsgs)
}

// LoadConversations replaces the local list with the server snapshot.
// Errors keep the previous list; a malformed 2xx body resets to empty.
func (p *ConversationPoller) LoadConversations() {
	path := fmt.Sprintf("/api/conversations/%s/%d", p.client.Session.UserType, p.client.Session.UserID)

	res, err := p.client.get(path)
	if err != nil {
		p.client.Log.Errorf("Fehler beim Laden der Konversationen: %v", err)
		return
	}
	defer res.Body.Close()

	var convs []Conversation
	if err := json.NewDecoder(res.Body).Decode(&convs); err != nil {
		p.client.Log.Errorf("Unexpected conversation payload: %v", err)
		convs = nil
	}
	if convs == nil {
		convs = make([]Conversation, 0)
	}

	p.mu.Lock()
	if !p.closed {
		p.conversations = convs
	}
	p.mu.Unlock()
}

// LoadMessages replaces the message list for one conversation. The
// server returns messages ascending by created_at; no client re-sort.
func (p *ConversationPoller) LoadMessages(conversationID uint) {
	res, err := p.client.get(fmt.Sprintf("/api/conversations/%d/messages", conversationID))
	if err != nil {
		p.client.Log.Errorf("Fehler beim Laden der Nachrichten: %v", err)
		return
	}
	defer res.Body.Close()

	var msgs []Message
	if err := json.NewDecoder(res.Body).Decode(&msgs); err != nil {
		p.client.Log.Errorf("Unexpected message payload: %v", err)
		msgs = nil
	}
	if msgs == nil {
		msgs = make([]Message, 0)
	}

	p.mu.Lock()
	// A slow response for a previously selected conversation must not
	// overwrite the current view.
	if p.selectedID == conversationID {
		p.messages = msgs
	}
	p.mu.Unlock()
}

// MarkRead resets the unread badge for one conversation and refreshes
// the list so the badge updates.
func (p *ConversationPoller) MarkRead(conversationID uint) {
	body := map[string]interface{}{
		"userType": p.client.Session.UserType,
		"userId":   p.client.Session.UserID,
	}
	if err := p.client.postJSON(fmt.Sprintf("/api/conversations/%d/mark-read", conversationID), body); err != nil {
		p.client.Log.Errorf("Fehler beim Markieren als gelesen: %v", err)
		return
	}
	p.LoadConversations()
}

// SetDraft stores the message input text.
func (p *ConversationPoller) SetDraft(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.draft = text
}

func (p *ConversationPoller) Draft() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.draft
}

// Send submits the current draft.
func (p *ConversationPoller) Send() {
	p.SendMessage(p.Draft())
}

// SendMessage posts a message to the selected conversation. Empty or
// whitespace-only text, or no selection, is a no-op. The draft is
// cleared and both views reloaded whether or not the request succeeded.
func (p *ConversationPoller) SendMessage(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	p.mu.RLock()
	conversationID := p.selectedID
	p.mu.RUnlock()
	if conversationID == 0 {
		return
	}

	body := map[string]interface{}{
		"senderType": p.client.Session.UserType,
		"senderId":   p.client.Session.UserID,
		"message":    text,
	}
	if err := p.client.postJSON(fmt.Sprintf("/api/conversations/%d/messages", conversationID), body); err != nil {
		p.client.Log.Errorf("Fehler beim Senden: %v", err)
	}

	p.mu.Lock()
	p.draft = ""
	p.mu.Unlock()

	p.LoadMessages(conversationID)
	p.LoadConversations()
}

// Conversations returns a snapshot copy of the conversation list.
func (p *ConversationPoller) Conversations() []Conversation {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Conversation, len(p.conversations))
	copy(out, p.conversations)
	return out
}

// Messages returns a snapshot copy of the open conversation's messages.
func (p *ConversationPoller) Messages() []Message {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Message, len(p.messages))
	copy(out, p.messages)
	return out
}

// TotalUnread sums the unread badge over all conversations.
func (p *ConversationPoller) TotalUnread() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	total := 0
	for _, c := range p.conversations {
		total += c.UnreadCount
	}
	return total
}
