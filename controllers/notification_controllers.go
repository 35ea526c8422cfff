package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/byndl-mvp/PoC-sub000/models"
	"github.com/byndl-mvp/PoC-sub000/services"
	"github.com/byndl-mvp/PoC-sub000/utils"
)

type NotificationController struct {
	DB       *gorm.DB
	Notifier *services.Notifier
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db, Notifier: services.NewNotifier(db)}
}

// ListFor returns the notification feed handler for one user role.
// The body is a bare array: the polling client replaces its whole local
// list with it on every fetch.
func (nc *NotificationController) ListFor(userType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.Atoi(c.Param("user_id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}

		notifs := make([]models.Notification, 0)
		if err := nc.DB.Where("user_type = ? AND user_id = ?", userType, userID).
			Order("created_at DESC").
			Find(&notifs).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}

		c.JSON(http.StatusOK, notifs)
	}
}

// CreateNotification is the internal entry point for business events
// (admin key gated).
func (nc *NotificationController) CreateNotification(c *gin.Context) {
	type reqBody struct {
		UserType    string                 `json:"userType" binding:"required"`
		UserID      uint                   `json:"userId" binding:"required"`
		Type        string                 `json:"type" binding:"required"`
		Message     string                 `json:"message"`
		Metadata    map[string]interface{} `json:"metadata"`
		ReferenceID *uint                  `json:"referenceId"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	notif, err := nc.Notifier.Notify(body.UserType, body.UserID, body.Type, body.Message, body.Metadata, body.ReferenceID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Notification created: type=%s user=%s/%d", notif.Type, notif.UserType, notif.UserID)

	utils.RespondJSON(c, http.StatusCreated, "Notification created", notif)
}

// MarkRead flips read to true. Calling it again on the same row is a
// no-op, not an error.
func (nc *NotificationController) MarkRead(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("notif_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := nc.DB.Model(&models.Notification{}).
		Where("id = ?", id).
		Update("read", true).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Notification marked as read", gin.H{"notif_id": id})
}

// MarkAllRead marks every notification of one user as read.
func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	var body struct {
		UserType string `json:"userType" binding:"required"`
		UserID   uint   `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := nc.DB.Model(&models.Notification{}).
		Where("user_type = ? AND user_id = ?", body.UserType, body.UserID).
		Update("read", true).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "All notifications marked as read", nil)
}

// DeleteNotification removes the row; the client refetches afterwards.
func (nc *NotificationController) DeleteNotification(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("notif_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := nc.DB.Delete(&models.Notification{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification deleted", gin.H{"notif_id": id})
}
