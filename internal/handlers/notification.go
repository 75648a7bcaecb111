package handlers

import (
	"errors"
	"net/http"

	"github.com/afterlife-dev/afterlife/db"
	"github.com/afterlife-dev/afterlife/internal/models"
	"github.com/afterlife-dev/afterlife/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type NotificationResponse struct {
	ID         uint   `json:"id"`
	SenderID   *uint  `json:"sender_id,omitempty"`
	Type       string `json:"type"`
	EntityType string `json:"entity_type"`
	EntityID   uint   `json:"entity_id"`
	Message    string `json:"message"`
	IsRead     bool   `json:"is_read"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func ListNotifications(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var notifications []models.Notification

	err = db.DB.Where("recipient_id = ?", userID).Order("updated_at DESC").Limit(100).Find(&notifications).Error

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}

	response := make([]NotificationResponse, 0, len(notifications))

	for _, n := range notifications {
		response = append(response, NotificationResponse{
			ID:         n.ID,
			SenderID:   n.SenderID,
			Type:       n.Type,
			EntityType: n.EntityType,
			EntityID:   n.EntityID,
			Message:    n.Message,
			IsRead:     n.IsRead,
			CreatedAt:  n.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			UpdatedAt:  n.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func UnreadNotificationCount(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var count int64

	err = db.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&count).Error

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notifications"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"unread": count})
}

// MarkNotificationRead flips is_read on one of the caller's own notifications.
func MarkNotificationRead(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var notification models.Notification

	err = db.DB.Where("id = ? AND recipient_id = ?", ctx.Param("notification_id"), userID).First(&notification).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notification"})
		}
		return
	}

	if err := db.DB.Model(&notification).Update("is_read", true).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification as read"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
