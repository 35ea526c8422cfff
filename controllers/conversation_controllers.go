package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/byndl-mvp/PoC-sub000/models"
	"github.com/byndl-mvp/PoC-sub000/services"
	"github.com/byndl-mvp/PoC-sub000/utils"
)

type ConversationController struct {
	DB       *gorm.DB
	Notifier *services.Notifier
}

func NewConversationController(db *gorm.DB) *ConversationController {
	return &ConversationController{DB: db, Notifier: services.NewNotifier(db)}
}

// ConversationInfo is the display metadata block the message panel
// renders per conversation.
type ConversationInfo struct {
	Name         string `json:"name,omitempty"`
	Type         string `json:"type,omitempty"` // counterpart role on direct chats
	Title        string `json:"title,omitempty"`
	ProjectTitle string `json:"project_title,omitempty"`
	MemberCount  int    `json:"member_count,omitempty"`
}

type LastMessage struct {
	SenderName string `json:"sender_name"`
	Text       string `json:"text"`
}

type ConversationSummary struct {
	ID               uint             `json:"id"`
	Type             string           `json:"type"`
	ConversationInfo ConversationInfo `json:"conversation_info"`
	UnreadCount      int              `json:"unread_count"`
	LastMessage      *LastMessage     `json:"last_message,omitempty"`
}

// ListConversations returns the conversation list for one user as a bare
// array. The first path segment carries the user type here; gin allows
// only one wildcard name per segment, so the route shares :id with the
// message routes.
func (cc *ConversationController) ListConversations(c *gin.Context) {
	userType := c.Param("id")
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var memberships []models.ConversationParticipant
	if err := cc.DB.Where("user_type = ? AND user_id = ?", userType, userID).
		Find(&memberships).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	summaries := make([]ConversationSummary, 0, len(memberships))
	for _, membership := range memberships {
		var conv models.Conversation
		if err := cc.DB.First(&conv, membership.ConversationID).Error; err != nil {
			continue
		}

		summary := ConversationSummary{
			ID:          conv.ID,
			Type:        conv.Type,
			UnreadCount: membership.UnreadCount,
		}
		summary.ConversationInfo = cc.buildInfo(conv, membership)

		var last models.Message
		if err := cc.DB.Where("conversation_id = ?", conv.ID).
			Order("created_at DESC").
			First(&last).Error; err == nil {
			summary.LastMessage = &LastMessage{
				SenderName: last.SenderName,
				Text:       last.Message,
			}
		}

		summaries = append(summaries, summary)
	}

	c.JSON(http.StatusOK, summaries)
}

func (cc *ConversationController) buildInfo(conv models.Conversation, viewer models.ConversationParticipant) ConversationInfo {
	var participants []models.ConversationParticipant
	cc.DB.Where("conversation_id = ?", conv.ID).Find(&participants)

	info := ConversationInfo{MemberCount: len(participants)}

	switch conv.Type {
	case models.ConvDirect:
		// The counterpart's name and role label the chat.
		for _, p := range participants {
			if p.ID != viewer.ID {
				info.Name = p.DisplayName
				info.Type = p.UserType
				break
			}
		}
	case models.ConvProjectGroup:
		info.Title = conv.Title
	case models.ConvHandwerkerCoordination:
		info.ProjectTitle = conv.Title
		if conv.ProjectID != nil {
			var project models.Project
			if err := cc.DB.First(&project, *conv.ProjectID).Error; err == nil {
				info.ProjectTitle = project.Title
			}
		}
	}

	return info
}

// ListMessages returns a conversation's messages oldest first, as a bare
// array. Clients do not re-sort.
func (cc *ConversationController) ListMessages(c *gin.Context) {
	convID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	messages := make([]models.Message, 0)
	if err := cc.DB.Where("conversation_id = ?", convID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

// MarkRead resets the caller's unread counter for one conversation.
func (cc *ConversationController) MarkRead(c *gin.Context) {
	convID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var body struct {
		UserType string `json:"userType" binding:"required"`
		UserID   uint   `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	now := time.Now()
	if err := cc.DB.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_type = ? AND user_id = ?", convID, body.UserType, body.UserID).
		Updates(map[string]interface{}{"unread_count": 0, "last_read_at": &now}).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Conversation marked as read", gin.H{"conversation_id": convID})
}

// SendMessage appends a message, bumps every other participant's unread
// counter and fans out message notifications.
func (cc *ConversationController) SendMessage(c *gin.Context) {
	convID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var body struct {
		SenderType string `json:"senderType" binding:"required"`
		SenderID   uint   `json:"senderId" binding:"required"`
		Message    string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if strings.TrimSpace(body.Message) == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("message must not be empty"))
		return
	}

	var participants []models.ConversationParticipant
	if err := cc.DB.Where("conversation_id = ?", convID).Find(&participants).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var sender *models.ConversationParticipant
	for i := range participants {
		if participants[i].UserType == body.SenderType && participants[i].UserID == body.SenderID {
			sender = &participants[i]
			break
		}
	}
	if sender == nil {
		utils.RespondError(c, http.StatusForbidden, errors.New("sender is not a participant of this conversation"))
		return
	}

	msg := models.Message{
		ConversationID: uint(convID),
		SenderType:     body.SenderType,
		SenderID:       body.SenderID,
		SenderName:     sender.DisplayName,
		Message:        body.Message,
		CreatedAt:      time.Now(),
	}

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ConversationParticipant{}).
			Where("conversation_id = ? AND id != ?", convID, sender.ID).
			Update("unread_count", gorm.Expr("unread_count + 1")).Error; err != nil {
			return err
		}
		return tx.Create(&models.OutboxEvent{
			Topic:     models.TopicMessageCreated,
			RecordID:  msg.ID,
			CreatedAt: time.Now(),
		}).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// Notification fan-out failures must not fail the send.
	if err := cc.Notifier.NotifyMessage(msg, participants); err != nil {
		utils.ErrorLogger.Printf("Error creating message notifications: %v", err)
	}

	utils.RespondJSON(c, http.StatusCreated, "Message sent", msg)
}

// CreateConversation sets up a conversation with its participants
// (admin key gated; called after a preliminary award).
func (cc *ConversationController) CreateConversation(c *gin.Context) {
	type participantBody struct {
		UserType    string `json:"userType" binding:"required"`
		UserID      uint   `json:"userId" binding:"required"`
		DisplayName string `json:"displayName"`
	}
	var body struct {
		Type         string            `json:"type" binding:"required"`
		ProjectID    *uint             `json:"projectId"`
		Title        string            `json:"title"`
		Participants []participantBody `json:"participants" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.Type != models.ConvDirect && body.Type != models.ConvProjectGroup && body.Type != models.ConvHandwerkerCoordination {
		utils.RespondError(c, http.StatusBadRequest, errors.New("unknown conversation type"))
		return
	}
	if len(body.Participants) < 2 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("a conversation needs at least two participants"))
		return
	}

	conv := models.Conversation{
		Type:      body.Type,
		ProjectID: body.ProjectID,
		Title:     body.Title,
		CreatedAt: time.Now(),
	}

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&conv).Error; err != nil {
			return err
		}
		for _, p := range body.Participants {
			participant := models.ConversationParticipant{
				ConversationID: conv.ID,
				UserType:       p.UserType,
				UserID:         p.UserID,
				DisplayName:    p.DisplayName,
			}
			if err := tx.Create(&participant).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Conversation created: id=%d type=%s", conv.ID, conv.Type)

	utils.RespondJSON(c, http.StatusCreated, "Conversation created", conv)
}
