package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/byndl-mvp/PoC-sub000/hub"
	"github.com/byndl-mvp/PoC-sub000/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventStreamHandler subscribes a dashboard to hub events over a
// websocket. The connection is read-only for the client; we only read
// to detect disconnects.
func EventStreamHandler(c *gin.Context) {
	roleInterface, exists := c.Get("user_type")
	if !exists {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	role := roleInterface.(string)

	if role != models.RoleBauherr && role != models.RoleHandwerker {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	hub.RegisterClient(ws, role)

	for {
		_, _, err := ws.ReadMessage()
		if err != nil {
			break
		}
	}

	hub.UnregisterClient(ws)
}
