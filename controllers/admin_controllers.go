package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/byndl-mvp/PoC-sub000/models"
	"github.com/byndl-mvp/PoC-sub000/utils"
)

type AdminController struct {
	DB *gorm.DB
}

func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{DB: db}
}

// GetPlatformStats returns headline counts for the admin dashboard.
func (ac *AdminController) GetPlatformStats(c *gin.Context) {
	var bauherren, handwerker, projects, notifications, unread, conversations, messages int64

	ac.DB.Model(&models.User{}).Where("role = ?", models.RoleBauherr).Count(&bauherren)
	ac.DB.Model(&models.User{}).Where("role = ?", models.RoleHandwerker).Count(&handwerker)
	ac.DB.Model(&models.Project{}).Count(&projects)
	ac.DB.Model(&models.Notification{}).Count(&notifications)
	ac.DB.Model(&models.Notification{}).Where("read = ?", false).Count(&unread)
	ac.DB.Model(&models.Conversation{}).Count(&conversations)
	ac.DB.Model(&models.Message{}).Count(&messages)

	utils.RespondJSON(c, http.StatusOK, "Platform stats", gin.H{
		"bauherren":            bauherren,
		"handwerker":           handwerker,
		"projects":             projects,
		"notifications":        notifications,
		"unread_notifications": unread,
		"conversations":        conversations,
		"messages":             messages,
	})
}
