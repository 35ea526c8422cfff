package main

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/byndl-mvp/PoC-sub000/client"
	"github.com/byndl-mvp/PoC-sub000/middlewares"
	"github.com/byndl-mvp/PoC-sub000/models"
	"github.com/byndl-mvp/PoC-sub000/router"
	"github.com/byndl-mvp/PoC-sub000/utils"
)

const integrationAdminKey = "integration-admin-key"

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Setenv("ADMIN_KEY", integrationAdminKey)
	os.Exit(m.Run())
}

// TestEndToEndIntegration runs the main flow against the full router:
// 0. Register a Bauherr and a Handwerker, login -> token
// 1. Backend event creates a notification -> Bauherr poller sees it
// 2. Admin creates the direct conversation after the award
// 3. Handwerker sends a message -> Bauherr message poller sees it,
//    unread counter and message notification follow
// 4. Dispatcher click marks the notification read and switches the tab
func TestEndToEndIntegration(t *testing.T) {
	db := setupIntegrationDB()
	// Generous cap: the shortened poll intervals fire far more often
	// than production traffic would.
	r := router.SetupRouter(db, middlewares.NewRateLimiter(1000, 1))
	srv := httptest.NewServer(r)
	defer srv.Close()

	bauherrID := registerUser(t, srv, "Max Muster", "max@example.com", "bauherr", "")
	handwerkerID := registerUser(t, srv, "Dachbau Schmidt GmbH", "info@dachbau-schmidt.de", "handwerker", "Dachbau Schmidt GmbH")

	token := loginUser(t, srv, "max@example.com")
	if token == "" {
		t.Fatal("login returned empty token")
	}

	// Backend business event: a Handwerker submitted an offer.
	createNotificationViaAdmin(t, srv, map[string]interface{}{
		"userType": "bauherr",
		"userId":   bauherrID,
		"type":     "new_offer",
		"message":  "Neues Angebot eingegangen",
		"metadata": map[string]interface{}{"company_name": "Dachbau Schmidt GmbH", "trade_name": "Dachdeckerarbeiten", "amount": 12500.0},
	})

	bauherr := client.New(srv.URL, client.Session{UserType: "bauherr", UserID: bauherrID, UserName: "Max Muster"})
	bauherr.Log.SetOutput(os.Stderr)

	bell := client.NewNotificationPoller(bauherr)
	bell.Interval = 50 * time.Millisecond
	bell.Start()
	defer bell.Stop()

	assert.Eventually(t, func() bool { return bell.UnreadCount() == 1 }, 3*time.Second, 20*time.Millisecond)

	// Preliminary award: the platform opens the direct conversation.
	convID := createConversationViaAdmin(t, srv, bauherrID, handwerkerID)

	bauherrPanel := client.NewConversationPoller(bauherr)
	bauherrPanel.ConversationInterval = 50 * time.Millisecond
	bauherrPanel.MessageInterval = 50 * time.Millisecond
	bauherrPanel.Open()
	defer bauherrPanel.Close()
	bauherrPanel.Select(convID)

	handwerker := client.New(srv.URL, client.Session{UserType: "handwerker", UserID: handwerkerID, UserName: "Dachbau Schmidt GmbH"})
	handwerkerPanel := client.NewConversationPoller(handwerker)
	handwerkerPanel.ConversationInterval = 50 * time.Millisecond
	handwerkerPanel.MessageInterval = 50 * time.Millisecond
	handwerkerPanel.Open()
	defer handwerkerPanel.Close()
	handwerkerPanel.Select(convID)

	handwerkerPanel.SetDraft("Guten Tag, wir können nächste Woche anfangen")
	handwerkerPanel.Send()

	// The Bauherr's message loop picks the message up on its own.
	assert.Eventually(t, func() bool {
		msgs := bauherrPanel.Messages()
		return len(msgs) == 1 && msgs[0].Message == "Guten Tag, wir können nächste Woche anfangen"
	}, 3*time.Second, 20*time.Millisecond)

	// The message also fanned out as a notification, but the bell badge
	// keeps counting only the offer.
	assert.Eventually(t, func() bool {
		for _, n := range bell.Notifications() {
			if n.Type == client.TypeMessageFromHandwerker {
				return true
			}
		}
		return false
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, 1, bell.UnreadCount())

	// Clicking the offer notification switches to the Angebote tab and
	// marks it read server-side.
	var offerNotif client.Notification
	for _, n := range bell.Notifications() {
		if n.Type == client.TypeNewOffer {
			offerNotif = n
		}
	}
	if offerNotif.ID == 0 {
		t.Fatal("offer notification not found in poller state")
	}

	var switchedTo string
	d := client.Dispatcher{
		Poller:    bell,
		SwitchTab: func(tab string) { switchedTo = tab },
	}
	d.HandleClick(offerNotif)

	assert.Equal(t, client.TabAngebote, switchedTo)
	assert.Eventually(t, func() bool { return bell.UnreadCount() == 0 }, 3*time.Second, 20*time.Millisecond)

	// Server-side state agrees with what the bell rendered: the offer is
	// read, only the message notification (owned by the chat badge, never
	// clicked here) stays unread.
	var unread int64
	db.Model(&models.Notification{}).
		Where("user_type = ? AND user_id = ? AND read = ? AND type NOT IN ?",
			"bauherr", bauherrID, false,
			[]string{models.NotifMessageFromBauherr, models.NotifMessageFromHandwerker}).
		Count(&unread)
	assert.Equal(t, int64(0), unread)
}

func setupIntegrationDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:integration?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open in-memory sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Notification{},
		&models.Conversation{},
		&models.ConversationParticipant{},
		&models.Message{},
		&models.OutboxEvent{},
	)
	if err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	return db
}

func registerUser(t *testing.T, srv *httptest.Server, name, email, role, companyName string) uint {
	body, _ := json.Marshal(map[string]interface{}{
		"name":         name,
		"email":        email,
		"password":     "geheim123",
		"role":         role,
		"company_name": companyName,
	})

	res, err := http.Post(srv.URL+"/api/register", "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d", email, res.StatusCode)
	}

	var resp struct {
		Data struct {
			UserID uint `json:"user_id"`
		} `json:"data"`
	}
	json.NewDecoder(res.Body).Decode(&resp)
	if resp.Data.UserID == 0 {
		t.Fatalf("register %s: no user id in response", email)
	}
	return resp.Data.UserID
}

func loginUser(t *testing.T, srv *httptest.Server, email string) string {
	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": "geheim123",
	})

	res, err := http.Post(srv.URL+"/api/login", "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d", email, res.StatusCode)
	}

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	json.NewDecoder(res.Body).Decode(&resp)
	return resp.Data.Token
}

func createNotificationViaAdmin(t *testing.T, srv *httptest.Server, payload map[string]interface{}) {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/notifications", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-admin-key", integrationAdminKey)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("create notification: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create notification: status %d", res.StatusCode)
	}
}

func createConversationViaAdmin(t *testing.T, srv *httptest.Server, bauherrID, handwerkerID uint) uint {
	body, _ := json.Marshal(map[string]interface{}{
		"type": "direct",
		"participants": []map[string]interface{}{
			{"userType": "bauherr", "userId": bauherrID, "displayName": "Max Muster"},
			{"userType": "handwerker", "userId": handwerkerID, "displayName": "Dachbau Schmidt GmbH"},
		},
	})
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/conversations", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-admin-key", integrationAdminKey)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create conversation: status %d", res.StatusCode)
	}

	var resp struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	json.NewDecoder(res.Body).Decode(&resp)
	if resp.Data.ID == 0 {
		t.Fatal("create conversation: no id in response")
	}
	return resp.Data.ID
}
