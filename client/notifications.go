package client

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// DefaultNotificationInterval matches the dashboard's 30 second bell
// refresh.
const DefaultNotificationInterval = 30 * time.Second

// NotificationPoller keeps a near-real-time local view of one user's
// notification list. One goroutine, fixed interval, no in-flight guard:
// overlapping polls are tolerated and the last response to arrive wins,
// which the next tick corrects at worst.
type NotificationPoller struct {
	client   *Client
	Interval time.Duration

	mu            sync.RWMutex
	notifications []Notification
	started       bool
	stopped       bool
	stopChan      chan struct{}
}

func NewNotificationPoller(c *Client) *NotificationPoller {
	return &NotificationPoller{
		client:        c,
		Interval:      DefaultNotificationInterval,
		notifications: make([]Notification, 0),
		stopChan:      make(chan struct{}),
	}
}

// Start issues one immediate load and then polls on the interval.
// Without a logged-in user there is no feed to poll.
func (p *NotificationPoller) Start() {
	if p.client.Session.UserID == 0 {
		return
	}

	p.mu.Lock()
	if p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	p.Load()

	go func() {
		ticker := time.NewTicker(p.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				p.Load()
			case <-p.stopChan:
				return
			}
		}
	}()
}

// Stop cancels the timer. A response still in flight is discarded
// rather than stored.
func (p *NotificationPoller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	close(p.stopChan)
}

// Load replaces the local list with the server snapshot. Transport
// errors and non-2xx responses keep the previous list (stale but
// available); a malformed 2xx body resets the list to empty.
func (p *NotificationPoller) Load() {
	path := fmt.Sprintf("/api/%s/%d/notifications", p.client.Session.UserType, p.client.Session.UserID)

	res, err := p.client.get(path)
	if err != nil {
		p.client.Log.Errorf("Fehler beim Laden der Benachrichtigungen: %v", err)
		return
	}
	defer res.Body.Close()

	var notifs []Notification
	if err := json.NewDecoder(res.Body).Decode(&notifs); err != nil {
		p.client.Log.Errorf("Unexpected notification payload: %v", err)
		notifs = nil
	}
	if notifs == nil {
		notifs = make([]Notification, 0)
	}

	p.store(notifs)
}

func (p *NotificationPoller) store(list []Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.notifications = list
}

// Notifications returns a snapshot copy of the current list.
func (p *NotificationPoller) Notifications() []Notification {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Notification, len(p.notifications))
	copy(out, p.notifications)
	return out
}

// UnreadCount counts unread notifications, excluding message types:
// those are surfaced via the conversation badge instead.
func (p *NotificationPoller) UnreadCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	count := 0
	for _, n := range p.notifications {
		if !n.Read && !messageNotificationTypes[n.Type] {
			count++
		}
	}
	return count
}

// MarkRead marks one notification read on the server and refetches.
// There is no optimistic local mutation; the server round-trip is the
// source of truth. Repeating the call for the same id is harmless.
func (p *NotificationPoller) MarkRead(id uint) {
	if err := p.client.postJSON(fmt.Sprintf("/api/notifications/%d/mark-read", id), nil); err != nil {
		p.client.Log.Errorf("Fehler beim Markieren als gelesen: %v", err)
		return
	}
	p.Load()
}

// MarkAllRead marks the whole feed read and refetches.
func (p *NotificationPoller) MarkAllRead() {
	body := map[string]interface{}{
		"userType": p.client.Session.UserType,
		"userId":   p.client.Session.UserID,
	}
	if err := p.client.postJSON("/api/notifications/mark-all-read", body); err != nil {
		p.client.Log.Errorf("Fehler beim Markieren aller als gelesen: %v", err)
		return
	}
	p.Load()
}

// Delete removes one notification and refetches.
func (p *NotificationPoller) Delete(id uint) {
	if err := p.client.delete(fmt.Sprintf("/api/notifications/%d", id)); err != nil {
		p.client.Log.Errorf("Fehler beim Löschen: %v", err)
		return
	}
	p.Load()
}
