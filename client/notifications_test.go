package client_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/byndl-mvp/PoC-sub000/client"
)

// notifServer is a scripted stand-in for the notification endpoints. The
// list body and status can be swapped mid-test; every request is counted.
type notifServer struct {
	mu        sync.Mutex
	listBody  string
	listCode  int
	listHits  int
	markHits  []string
	otherHits []string
}

func newNotifServer(t *testing.T, listBody string) (*notifServer, *httptest.Server) {
	t.Helper()

	ns := &notifServer{listBody: listBody, listCode: http.StatusOK}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ns.mu.Lock()
		defer ns.mu.Unlock()

		switch {
		case r.Method == http.MethodGet:
			ns.listHits++
			w.WriteHeader(ns.listCode)
			io.WriteString(w, ns.listBody)
		case r.Method == http.MethodPost:
			ns.markHits = append(ns.markHits, r.URL.Path)
			w.WriteHeader(http.StatusOK)
			io.WriteString(w, `{"status":"Success"}`)
		default:
			ns.otherHits = append(ns.otherHits, r.Method+" "+r.URL.Path)
			w.WriteHeader(http.StatusOK)
			io.WriteString(w, `{"status":"Success"}`)
		}
	}))
	t.Cleanup(srv.Close)
	return ns, srv
}

func (ns *notifServer) setList(code int, body string) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	ns.listCode = code
	ns.listBody = body
}

func (ns *notifServer) hits() int {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	return ns.listHits
}

func newTestClient(baseURL string) *client.Client {
	c := client.New(baseURL, client.Session{UserType: "bauherr", UserID: 1, UserName: "Max Muster"})
	c.Log.SetOutput(io.Discard)
	c.Log.SetLevel(logrus.PanicLevel)
	return c
}

func TestLoadReplacesNotificationList(t *testing.T) {
	ns, srv := newNotifServer(t, `[
		{"id":1,"type":"new_offer","read":false},
		{"id":2,"type":"awarded","read":true}
	]`)

	p := client.NewNotificationPoller(newTestClient(srv.URL))
	p.Load()

	notifs := p.Notifications()
	assert.Len(t, notifs, 2)
	assert.Equal(t, uint(1), notifs[0].ID)

	ns.setList(http.StatusOK, `[{"id":3,"type":"new_tender","read":false}]`)
	p.Load()

	notifs = p.Notifications()
	assert.Len(t, notifs, 1)
	assert.Equal(t, uint(3), notifs[0].ID)
}

func TestLoadKeepsStaleListOnServerError(t *testing.T) {
	ns, srv := newNotifServer(t, `[{"id":1,"type":"new_offer","read":false}]`)

	p := client.NewNotificationPoller(newTestClient(srv.URL))
	p.Load()
	assert.Len(t, p.Notifications(), 1)

	ns.setList(http.StatusInternalServerError, `boom`)
	p.Load()

	// Failed refresh: the previous snapshot stays visible.
	assert.Len(t, p.Notifications(), 1)
	assert.Equal(t, uint(1), p.Notifications()[0].ID)
}

func TestLoadResetsListOnMalformedBody(t *testing.T) {
	ns, srv := newNotifServer(t, `[{"id":1,"type":"new_offer","read":false}]`)

	p := client.NewNotificationPoller(newTestClient(srv.URL))
	p.Load()
	assert.Len(t, p.Notifications(), 1)

	// A 2xx body that is not an array wipes the list instead of crashing.
	ns.setList(http.StatusOK, `{}`)
	p.Load()

	assert.NotNil(t, p.Notifications())
	assert.Len(t, p.Notifications(), 0)
}

func TestUnreadCountExcludesMessageTypes(t *testing.T) {
	_, srv := newNotifServer(t, `[
		{"id":1,"type":"new_offer","read":false},
		{"id":2,"type":"message_from_handwerker","read":false},
		{"id":3,"type":"message_from_bauherr","read":false},
		{"id":4,"type":"awarded","read":true},
		{"id":5,"type":"deadline_warning","read":false}
	]`)

	p := client.NewNotificationPoller(newTestClient(srv.URL))
	p.Load()

	// Message notifications are counted by the conversation badge, not
	// the bell.
	assert.Equal(t, 2, p.UnreadCount())
}

func TestMarkReadIsIdempotent(t *testing.T) {
	ns, srv := newNotifServer(t, `[{"id":1,"type":"new_offer","read":true}]`)

	p := client.NewNotificationPoller(newTestClient(srv.URL))
	p.MarkRead(1)
	p.MarkRead(1)

	ns.mu.Lock()
	marks := len(ns.markHits)
	path := ns.markHits[0]
	ns.mu.Unlock()

	assert.Equal(t, 2, marks)
	assert.Equal(t, "/api/notifications/1/mark-read", path)
	// Each successful mark triggered a refetch.
	assert.Equal(t, 2, ns.hits())
	assert.True(t, p.Notifications()[0].Read)
}

func TestPollerLifecycle(t *testing.T) {
	ns, srv := newNotifServer(t, `[]`)

	p := client.NewNotificationPoller(newTestClient(srv.URL))
	p.Interval = 20 * time.Millisecond
	p.Start()

	// Immediate fetch on start, then ticks.
	assert.Eventually(t, func() bool { return ns.hits() >= 3 }, 2*time.Second, 5*time.Millisecond)

	p.Stop()
	after := ns.hits()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, after, ns.hits(), "no fetches after Stop")
}

func TestStartWithoutSessionDoesNothing(t *testing.T) {
	ns, srv := newNotifServer(t, `[]`)

	c := client.New(srv.URL, client.Session{})
	c.Log.SetOutput(io.Discard)

	p := client.NewNotificationPoller(c)
	p.Interval = 10 * time.Millisecond
	p.Start()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, ns.hits())
}

func TestMarkAllReadSendsUserScope(t *testing.T) {
	ns, srv := newNotifServer(t, `[]`)

	p := client.NewNotificationPoller(newTestClient(srv.URL))
	p.MarkAllRead()

	ns.mu.Lock()
	defer ns.mu.Unlock()
	assert.Equal(t, []string{"/api/notifications/mark-all-read"}, ns.markHits)
	assert.Equal(t, 1, ns.listHits)
}

func TestDeleteRefetches(t *testing.T) {
	ns, srv := newNotifServer(t, `[]`)

	p := client.NewNotificationPoller(newTestClient(srv.URL))
	p.Delete(9)

	ns.mu.Lock()
	defer ns.mu.Unlock()
	assert.Equal(t, []string{"DELETE /api/notifications/9"}, ns.otherHits)
	assert.Equal(t, 1, ns.listHits)
}
